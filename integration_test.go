package modemd_test

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/bus"
	"github.com/modemd-project/modemd-go/pkg/discovery"
	"github.com/modemd-project/modemd-go/pkg/examples"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/persistence"
	"github.com/modemd-project/modemd-go/pkg/signal"
	"github.com/modemd-project/modemd-go/pkg/version"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// TestE2E_Discovery tests that a controller can discover an agent via mDNS.
func TestE2E_Discovery(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	advertiser := discovery.NewMDNSAdvertiser(discovery.DefaultAdvertiserConfig())
	defer advertiser.Stop()

	info := &discovery.AgentInfo{
		DeviceID:     "modem-e2e-001",
		Port:         18947,
		Version:      version.Version,
		Manufacturer: "TestCorp",
		Model:        "E2E-100",
		Capabilities: []string{signal.ObjectName},
	}

	if err := advertiser.Advertise(info); err != nil {
		t.Fatalf("Failed to advertise agent: %v", err)
	}

	// Give mDNS time to propagate
	time.Sleep(500 * time.Millisecond)

	browser := discovery.NewMDNSBrowser(discovery.BrowserConfig{})

	findCtx, findCancel := context.WithTimeout(ctx, 5*time.Second)
	defer findCancel()

	found, err := browser.FindAgent(findCtx, "modem-e2e-001")
	if err != nil {
		t.Fatalf("Failed to find agent: %v", err)
	}

	if found.DeviceID != "modem-e2e-001" {
		t.Errorf("DeviceID mismatch: expected modem-e2e-001, got %s", found.DeviceID)
	}
	if found.Port != 18947 {
		t.Errorf("Port mismatch: expected 18947, got %d", found.Port)
	}
	if found.Model != "E2E-100" {
		t.Errorf("Model mismatch: expected E2E-100, got %s", found.Model)
	}
}

// TestE2E_AgentBus tests the full agent stack over a live bus connection:
// device model, simulated backend, signal interface, server dispatch,
// authorization, and flush-driven notifications.
func TestE2E_AgentBus(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	gate := auth.NewPolicyGate()
	gate.Grant("ctl", auth.AuthorizationDeviceControl)

	device := model.NewDevice("modem0")
	device.SetState(model.StateEnabled)

	modem := examples.NewSimulatedModem(examples.SimulatedModemConfig{})
	iface := signal.New(device, modem, signal.WithGate(gate))
	if err := iface.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize signal interface: %v", err)
	}

	server := bus.NewServer(device, bus.WithGate(gate))
	server.WatchObjects()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Failed to listen: %v", err)
	}
	go func() { _ = server.Serve(ln) }()
	defer server.Shutdown(context.Background())

	endpoint := "ws://" + ln.Addr().String() + "/bus"

	client, err := bus.Dial(ctx, endpoint, "ctl")
	if err != nil {
		t.Fatalf("Failed to dial bus: %v", err)
	}
	defer client.Close()

	// Published rate starts at zero
	var rate uint32
	if err := client.GetInto(ctx, "modem0", signal.ObjectName, signal.AttrRate, &rate); err != nil {
		t.Fatalf("Failed to read rate: %v", err)
	}
	if rate != 0 {
		t.Errorf("Initial rate: expected 0, got %d", rate)
	}

	if err := client.Subscribe(ctx); err != nil {
		t.Fatalf("Failed to subscribe: %v", err)
	}

	// An unauthorized peer must not be able to configure polling
	guest, err := bus.Dial(ctx, endpoint, "guest")
	if err != nil {
		t.Fatalf("Failed to dial bus as guest: %v", err)
	}
	defer guest.Close()

	_, err = guest.Invoke(ctx, "modem0", signal.ObjectName, signal.MethodSetup,
		map[string]any{"rate": uint32(30)})
	var se *bus.StatusError
	if err == nil {
		t.Fatal("Expected guest Setup to be denied")
	} else if !errors.As(err, &se) || se.Status != wire.StatusNotAuthorized {
		t.Fatalf("Guest Setup: expected StatusNotAuthorized, got %v", err)
	}

	// Authorized Setup arms polling; the immediate poll publishes
	// readings and the flush reaches the subscriber.
	if _, err := client.Invoke(ctx, "modem0", signal.ObjectName, signal.MethodSetup,
		map[string]any{"rate": uint32(30)}); err != nil {
		t.Fatalf("Failed to invoke Setup: %v", err)
	}

	deadline := time.After(5 * time.Second)
	var reading signal.Reading
	for !reading.Available {
		select {
		case n := <-client.Notifications():
			if n.Device != "modem0" || n.Object != signal.ObjectName {
				t.Errorf("Notification target mismatch: %s/%s", n.Device, n.Object)
			}
			if raw, ok := n.Changes[signal.AttrLteRssi]; ok {
				if err := wire.Unmarshal(raw, &reading); err != nil {
					t.Fatalf("Failed to decode reading: %v", err)
				}
			}
		case <-deadline:
			t.Fatal("Timeout waiting for measurement notification")
		}
	}
	if reading.Value >= 0 {
		t.Errorf("LTE RSSI: expected negative dBm value, got %v", reading.Value)
	}

	if err := client.GetInto(ctx, "modem0", signal.ObjectName, signal.AttrRate, &rate); err != nil {
		t.Fatalf("Failed to re-read rate: %v", err)
	}
	if rate != 30 {
		t.Errorf("Rate after Setup: expected 30, got %d", rate)
	}

	// Disable stops polling; the rate stays published
	if err := iface.Disable(ctx); err != nil {
		t.Fatalf("Disable failed: %v", err)
	}

	// Shutdown detaches the exposed object from the bus surface
	iface.Shutdown()
	_, err = client.Get(ctx, "modem0", signal.ObjectName, signal.AttrRate)
	if err == nil {
		t.Fatal("Expected read after shutdown to fail")
	} else if !errors.As(err, &se) || se.Status != wire.StatusInvalidObject {
		t.Fatalf("Read after shutdown: expected StatusInvalidObject, got %v", err)
	}

	t.Logf("Agent bus flow successful - rate %d armed, LTE RSSI %.1f dBm received", rate, reading.Value)
}

// TestE2E_PersistedRateRestore tests that an explicitly configured rate
// survives an agent restart via the state store.
func TestE2E_PersistedRateRestore(t *testing.T) {
	ctx := context.Background()
	statePath := filepath.Join(t.TempDir(), "state.json")

	store := persistence.NewAgentStateStore(statePath)

	device := model.NewDevice("modem0")
	device.SetState(model.StateEnabling)

	modem := examples.NewSimulatedModem(examples.SimulatedModemConfig{})
	iface := signal.New(device, modem, signal.WithRateHook(func(rate uint32) {
		if err := store.SetSignalRate("modem0", rate); err != nil {
			t.Errorf("Failed to persist rate: %v", err)
		}
	}))
	if err := iface.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize: %v", err)
	}
	if err := iface.SetupRate(45); err != nil {
		t.Fatalf("Failed to set rate: %v", err)
	}
	iface.Disable(ctx)
	iface.Shutdown()

	// Restart: a fresh store reads the persisted rate from disk
	restarted := persistence.NewAgentStateStore(statePath)
	rate, err := restarted.SignalRate("modem0")
	if err != nil {
		t.Fatalf("Failed to load persisted rate: %v", err)
	}
	if rate != 45 {
		t.Fatalf("Persisted rate: expected 45, got %d", rate)
	}

	device2 := model.NewDevice("modem0")
	device2.SetState(model.StateEnabling)
	iface2 := signal.New(device2, examples.NewSimulatedModem(examples.SimulatedModemConfig{}))
	if err := iface2.Initialize(ctx); err != nil {
		t.Fatalf("Failed to initialize restarted interface: %v", err)
	}
	if err := iface2.SetupRate(rate); err != nil {
		t.Fatalf("Failed to restore rate: %v", err)
	}
	if got := iface2.Object().Rate(); got != 45 {
		t.Errorf("Restored rate: expected 45, got %d", got)
	}
	iface2.Disable(ctx)
	iface2.Shutdown()
}
