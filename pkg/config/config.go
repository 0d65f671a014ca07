package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config errors.
var (
	ErrMissingDeviceID = errors.New("device id must be set")
	ErrInvalidLogLevel = errors.New("invalid log level")
)

// Config holds the agent configuration.
type Config struct {
	// Device describes the managed device.
	Device DeviceConfig `yaml:"device"`

	// Bus configures the control bus listener.
	Bus BusConfig `yaml:"bus"`

	// Log configures event logging.
	Log LogConfig `yaml:"log"`

	// Discovery configures mDNS advertising.
	Discovery DiscoveryConfig `yaml:"discovery"`

	// StateFile is the path of the persisted agent state.
	StateFile string `yaml:"stateFile"`

	// Peers grants authorization scopes to bus peers.
	Peers []PeerGrant `yaml:"peers"`
}

// DeviceConfig describes the managed device.
type DeviceConfig struct {
	// ID is the device identifier, e.g. "modem0".
	ID string `yaml:"id"`

	// Manufacturer is the modem manufacturer, if known.
	Manufacturer string `yaml:"manufacturer"`

	// Model is the modem model, if known.
	Model string `yaml:"model"`

	// SignalRate is the initial signal polling rate in seconds.
	// A persisted rate takes precedence. 0 disables polling.
	SignalRate uint32 `yaml:"signalRate"`
}

// BusConfig configures the control bus listener.
type BusConfig struct {
	// ListenAddress is the websocket listen address.
	ListenAddress string `yaml:"listenAddress"`
}

// LogConfig configures event logging.
type LogConfig struct {
	// Level is the minimum severity: debug, info, warn, error.
	Level string `yaml:"level"`

	// File is an optional event log file path.
	File string `yaml:"file"`
}

// DiscoveryConfig configures mDNS advertising.
type DiscoveryConfig struct {
	// Enabled turns advertising on.
	Enabled bool `yaml:"enabled"`

	// Interface restricts advertising to one network interface.
	Interface string `yaml:"interface"`
}

// PeerGrant grants authorization scopes to one bus peer.
type PeerGrant struct {
	// Peer is the peer identity.
	Peer string `yaml:"peer"`

	// Scopes are the granted authorization scopes.
	Scopes []string `yaml:"scopes"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Device: DeviceConfig{
			ID: "modem0",
		},
		Bus: BusConfig{
			ListenAddress: ":8947",
		},
		Log: LogConfig{
			Level: "info",
		},
		Discovery: DiscoveryConfig{
			Enabled: true,
		},
		StateFile: "/var/lib/modemd/state.json",
	}
}

// Load reads a configuration file and applies it over the defaults.
// An empty path returns the defaults unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if c.Device.ID == "" {
		return ErrMissingDeviceID
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: %q", ErrInvalidLogLevel, c.Log.Level)
	}
	return nil
}
