// Command modemd is the device-management agent daemon.
//
// It exposes the capabilities of a managed modem over a websocket
// control bus, polls signal quality at a configurable rate, and
// advertises its endpoint over mDNS.
//
// Usage:
//
//	modemd [flags]
//
// Flags:
//
//	-config string     Configuration file path (YAML)
//	-listen string     Bus listen address (overrides config)
//	-state string      Agent state file path (overrides config)
//	-log-level string  Log level: debug, info, warn, error (overrides config)
//
// Examples:
//
//	# Start with defaults and a simulated modem
//	modemd
//
//	# Start with a config file
//	modemd -config /etc/modemd/modemd.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	stdlog "log"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/bus"
	"github.com/modemd-project/modemd-go/pkg/config"
	"github.com/modemd-project/modemd-go/pkg/discovery"
	"github.com/modemd-project/modemd-go/pkg/examples"
	"github.com/modemd-project/modemd-go/pkg/firmware"
	"github.com/modemd-project/modemd-go/pkg/inspect"
	"github.com/modemd-project/modemd-go/pkg/log"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/persistence"
	"github.com/modemd-project/modemd-go/pkg/settings"
	sigcap "github.com/modemd-project/modemd-go/pkg/signal"
	"github.com/modemd-project/modemd-go/pkg/version"
)

var (
	configPath string
	listenAddr string
	statePath  string
	logLevel   string
)

func init() {
	flag.StringVar(&configPath, "config", "", "Configuration file path")
	flag.StringVar(&listenAddr, "listen", "", "Bus listen address (overrides config)")
	flag.StringVar(&statePath, "state", "", "Agent state file path (overrides config)")
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error (overrides config)")
}

func main() {
	flag.Parse()

	cfg, err := config.Load(configPath)
	if err != nil {
		stdlog.Fatalf("Invalid configuration: %v", err)
	}
	if listenAddr != "" {
		cfg.Bus.ListenAddress = listenAddr
	}
	if statePath != "" {
		cfg.StateFile = statePath
	}
	if logLevel != "" {
		cfg.Log.Level = logLevel
		if err := cfg.Validate(); err != nil {
			stdlog.Fatalf("Invalid configuration: %v", err)
		}
	}

	logger, closeLogger, err := setupLogging(cfg.Log)
	if err != nil {
		stdlog.Fatalf("Failed to set up logging: %v", err)
	}
	defer closeLogger()

	stdlog.Printf("modemd %s", version.Version)
	stdlog.Printf("Device: %s", cfg.Device.ID)
	stdlog.Printf("Bus: %s", cfg.Bus.ListenAddress)

	// Authorization gate from configured peer grants. With no peers
	// configured, everything on the bus is allowed.
	var gate auth.Gate = auth.AllowAll{}
	if len(cfg.Peers) > 0 {
		policy := auth.NewPolicyGate()
		for _, grant := range cfg.Peers {
			scopes := make([]auth.Authorization, 0, len(grant.Scopes))
			for _, s := range grant.Scopes {
				scopes = append(scopes, auth.Authorization(s))
			}
			policy.Grant(grant.Peer, scopes...)
		}
		gate = policy
	}

	store := persistence.NewAgentStateStore(cfg.StateFile)

	device := model.NewDevice(cfg.Device.ID)
	device.SetState(model.StateInitializing)

	modem := examples.NewSimulatedModem(examples.SimulatedModemConfig{
		Manufacturer: cfg.Device.Manufacturer,
		Model:        cfg.Device.Model,
	})

	signalIface := sigcap.New(device, modem,
		sigcap.WithLogger(logger),
		sigcap.WithGate(gate),
		sigcap.WithRateHook(func(rate uint32) {
			if err := store.SetSignalRate(cfg.Device.ID, rate); err != nil {
				stdlog.Printf("Failed to persist signal rate: %v", err)
			}
		}),
	)

	signalSupported := true
	if err := signalIface.Initialize(context.Background()); err != nil {
		// An unsupported capability leaves the rest of the agent running.
		signalSupported = false
		stdlog.Printf("Signal capability unavailable: %v", err)
	}

	fwIface := firmware.New(device, modem,
		firmware.WithLogger(logger),
		firmware.WithGate(gate),
		firmware.WithSettingsHook(func(s *settings.UpdateSettings) {
			if err := store.SetUpdateSettings(cfg.Device.ID, s); err != nil {
				stdlog.Printf("Failed to persist update settings: %v", err)
			}
		}),
	)

	firmwareSupported := true
	if err := fwIface.Initialize(context.Background()); err != nil {
		firmwareSupported = false
		stdlog.Printf("Firmware capability unavailable: %v", err)
	}
	if firmwareSupported {
		if saved, err := store.UpdateSettings(cfg.Device.ID); err != nil {
			stdlog.Printf("Failed to load persisted update settings: %v", err)
		} else if saved != nil {
			if err := fwIface.Restore(saved); err != nil {
				stdlog.Printf("Failed to restore update settings: %v", err)
			}
		}
	}

	device.SetState(model.StateEnabling)
	if signalSupported {
		// The persisted rate takes precedence over the configured one.
		rate := cfg.Device.SignalRate
		if persisted, err := store.SignalRate(cfg.Device.ID); err != nil {
			stdlog.Printf("Failed to load persisted state: %v", err)
		} else if persisted != 0 {
			rate = persisted
		}
		if rate != 0 {
			if err := signalIface.SetupRate(rate); err != nil {
				stdlog.Printf("Failed to arm signal polling: %v", err)
			}
		}
		if err := signalIface.Enable(context.Background()); err != nil {
			stdlog.Printf("Failed to enable signal interface: %v", err)
		}
	}
	device.SetState(model.StateEnabled)

	if cfg.Log.Level == "debug" {
		tree := inspect.NewInspector(device).InspectDevice()
		stdlog.Printf("Exposed surface:\n%s", inspect.NewFormatter().FormatDevice(tree))
	}

	server := bus.NewServer(device, bus.WithGate(gate), bus.WithLogger(logger))
	server.WatchObjects()

	go func() {
		if err := server.ListenAndServe(cfg.Bus.ListenAddress); err != nil {
			stdlog.Fatalf("Bus listener failed: %v", err)
		}
	}()

	var advertiser discovery.Advertiser
	if cfg.Discovery.Enabled {
		adCfg := discovery.DefaultAdvertiserConfig()
		adCfg.Interface = cfg.Discovery.Interface
		advertiser = discovery.NewMDNSAdvertiser(adCfg)

		capabilities := make([]string, 0, len(device.Objects()))
		for _, obj := range device.Objects() {
			capabilities = append(capabilities, obj.Name())
		}
		info := &discovery.AgentInfo{
			DeviceID:     cfg.Device.ID,
			Port:         listenPort(cfg.Bus.ListenAddress),
			Version:      version.Version,
			Manufacturer: modem.Manufacturer(),
			Model:        modem.Model(),
			Capabilities: capabilities,
		}
		if err := advertiser.Advertise(info); err != nil {
			stdlog.Printf("Failed to advertise agent: %v", err)
			advertiser = nil
		}
	}

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	sig := <-sigCh

	stdlog.Printf("Received signal: %v", sig)
	stdlog.Println("Shutting down...")

	if advertiser != nil {
		advertiser.Stop()
	}

	// Disable before shutdown so polling stops cleanly.
	device.SetState(model.StateDisabling)
	if err := signalIface.Disable(context.Background()); err != nil {
		stdlog.Printf("Error disabling signal interface: %v", err)
	}
	device.SetState(model.StateDisabled)
	signalIface.Shutdown()
	fwIface.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		stdlog.Printf("Error stopping bus server: %v", err)
	}

	stdlog.Println("Goodbye!")
}

// setupLogging builds the event logger: structured slog output plus an
// optional CBOR event log file.
func setupLogging(cfg config.LogConfig) (log.Logger, func(), error) {
	level := slog.LevelInfo
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	slogger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	loggers := []log.Logger{log.NewSlogAdapter(slogger)}

	closeLogger := func() {}
	if cfg.File != "" {
		fileLogger, err := log.NewFileLogger(cfg.File)
		if err != nil {
			return nil, nil, fmt.Errorf("opening event log file: %w", err)
		}
		loggers = append(loggers, fileLogger)
		closeLogger = func() { _ = fileLogger.Close() }
	}

	if len(loggers) == 1 {
		return loggers[0], closeLogger, nil
	}
	return log.NewMultiLogger(loggers...), closeLogger, nil
}

// listenPort extracts the TCP port from a listen address.
func listenPort(addr string) uint16 {
	_, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return 0
	}
	port, err := strconv.ParseUint(portStr, 10, 16)
	if err != nil {
		return 0
	}
	return uint16(port)
}
