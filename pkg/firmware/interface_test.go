package firmware

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/settings"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

type bareBackend struct{}

func (bareBackend) Name() string { return "bare" }

type fakeApplier struct {
	mu      sync.Mutex
	applied *settings.UpdateSettings
}

func (a *fakeApplier) Name() string { return "fake" }

func (a *fakeApplier) ApplyUpdateSettings(s *settings.UpdateSettings) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.applied = s
}

func (a *fakeApplier) UpdateSettings() *settings.UpdateSettings {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.applied
}

type fixture struct {
	device  *model.Device
	backend *fakeApplier
	iface   *Interface
	flushes chan map[uint16]any
	hooks   chan *settings.UpdateSettings
}

func newFixture(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		device:  model.NewDevice("modem0"),
		backend: &fakeApplier{},
		flushes: make(chan map[uint16]any, 16),
		hooks:   make(chan *settings.UpdateSettings, 16),
	}
	opts = append(opts, WithSettingsHook(func(s *settings.UpdateSettings) {
		f.hooks <- s
	}))
	f.iface = New(f.device, f.backend, opts...)
	if err := f.iface.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	f.iface.Object().SetFlushHandler(func(changes map[uint16]any) {
		f.flushes <- changes
	})
	return f
}

func fastbootBlob(t *testing.T, cmd string) []byte {
	t.Helper()
	s := settings.NewUpdateSettings(settings.MethodFastboot)
	if err := s.SetFastbootAT(cmd); err != nil {
		t.Fatalf("SetFastbootAT() error = %v", err)
	}
	blob, err := s.Encode()
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	return blob
}

func TestInitializeUnsupported(t *testing.T) {
	device := model.NewDevice("modem0")
	iface := New(device, bareBackend{})

	if err := iface.Initialize(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Initialize() error = %v, want ErrUnsupported", err)
	}
	if iface.Object() == nil {
		t.Error("Object() = nil, want object even without support")
	}
	if _, err := device.Object(ObjectName); err == nil {
		t.Error("unsupported firmware object attached to device")
	}
	// Second call reports the same outcome.
	if err := iface.Initialize(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Errorf("second Initialize() error = %v, want ErrUnsupported", err)
	}
}

func TestInitializeSupported(t *testing.T) {
	f := newFixture(t)

	if _, err := f.device.Object(ObjectName); err != nil {
		t.Fatalf("device.Object(%q) error = %v", ObjectName, err)
	}
	if got := f.iface.Object().UpdateMethod(); got != settings.MethodUnknown {
		t.Errorf("UpdateMethod() = %v, want unknown before any set", got)
	}
	if err := f.iface.Initialize(context.Background()); err != nil {
		t.Errorf("second Initialize() error = %v", err)
	}
}

func TestInitializePublishesExistingSettings(t *testing.T) {
	device := model.NewDevice("modem0")
	backend := &fakeApplier{}
	backend.ApplyUpdateSettings(mustFastboot(t, "AT!BOOTHOLD"))

	iface := New(device, backend)
	if err := iface.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize() error = %v", err)
	}
	if got := iface.Object().UpdateMethod(); got != settings.MethodFastboot {
		t.Errorf("UpdateMethod() = %v, want fastboot", got)
	}
	if got := iface.Object().FastbootAT(); got != "AT!BOOTHOLD" {
		t.Errorf("FastbootAT() = %q, want %q", got, "AT!BOOTHOLD")
	}
}

func mustFastboot(t *testing.T, cmd string) *settings.UpdateSettings {
	t.Helper()
	s := settings.NewUpdateSettings(settings.MethodFastboot)
	if err := s.SetFastbootAT(cmd); err != nil {
		t.Fatalf("SetFastbootAT() error = %v", err)
	}
	return s
}

func TestSetUpdateSettingsApplies(t *testing.T) {
	f := newFixture(t)

	blob := fastbootBlob(t, "AT!BOOTHOLD")
	_, err := f.iface.Object().InvokeMethod(context.Background(),
		MethodSetUpdateSettings, map[string]any{ParamSettings: blob})
	if err != nil {
		t.Fatalf("InvokeMethod() error = %v", err)
	}

	applied := f.backend.UpdateSettings()
	if applied == nil || applied.Method() != settings.MethodFastboot {
		t.Fatalf("backend settings = %+v, want fastboot", applied)
	}
	if got := applied.FastbootAT(); got != "AT!BOOTHOLD" {
		t.Errorf("backend fastboot AT = %q, want %q", got, "AT!BOOTHOLD")
	}
	if got := f.iface.Object().UpdateMethod(); got != settings.MethodFastboot {
		t.Errorf("UpdateMethod() = %v, want fastboot", got)
	}

	select {
	case changes := <-f.flushes:
		if method, ok := changes[AttrUpdateMethod].(uint32); !ok || method != uint32(settings.MethodFastboot) {
			t.Errorf("flushed changes = %v, want updateMethod fastboot", changes)
		}
	default:
		t.Error("no flush after settings applied")
	}

	select {
	case s := <-f.hooks:
		if s.Method() != settings.MethodFastboot {
			t.Errorf("hook settings method = %v, want fastboot", s.Method())
		}
	default:
		t.Error("settings hook not fired")
	}
}

func TestSetUpdateSettingsDenied(t *testing.T) {
	gate := auth.NewPolicyGate()
	f := newFixture(t, WithGate(gate))

	ctx := auth.ContextWithPeer(context.Background(), "guest")
	blob := fastbootBlob(t, "AT!BOOTHOLD")
	_, err := f.iface.Object().InvokeMethod(ctx,
		MethodSetUpdateSettings, map[string]any{ParamSettings: blob})
	if !errors.Is(err, auth.ErrNotAuthorized) {
		t.Fatalf("InvokeMethod() error = %v, want ErrNotAuthorized", err)
	}
	if f.backend.UpdateSettings() != nil {
		t.Error("settings applied despite denial")
	}
	if got := f.iface.Object().UpdateMethod(); got != settings.MethodUnknown {
		t.Errorf("UpdateMethod() = %v, want unknown after denial", got)
	}
	select {
	case s := <-f.hooks:
		t.Errorf("settings hook fired with %+v despite denial", s)
	default:
	}
}

func TestSetUpdateSettingsInvalidParams(t *testing.T) {
	tests := []struct {
		name   string
		params map[string]any
	}{
		{"missing param", map[string]any{}},
		{"wrong type", map[string]any{ParamSettings: "not a record"}},
		{"undecodable blob", map[string]any{ParamSettings: []byte{0xff, 0xff}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			_, err := f.iface.Object().InvokeMethod(context.Background(),
				MethodSetUpdateSettings, tt.params)
			if !errors.Is(err, wire.ErrInvalidArgs) {
				t.Fatalf("InvokeMethod() error = %v, want ErrInvalidArgs", err)
			}
			if f.backend.UpdateSettings() != nil {
				t.Error("settings applied despite invalid parameters")
			}
		})
	}
}

func TestRestoreAppliesWithoutHook(t *testing.T) {
	gate := auth.NewPolicyGate() // denies everything; Restore bypasses it
	f := newFixture(t, WithGate(gate))

	if err := f.iface.Restore(mustFastboot(t, "AT!BOOTHOLD")); err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if got := f.iface.Object().UpdateMethod(); got != settings.MethodFastboot {
		t.Errorf("UpdateMethod() = %v, want fastboot", got)
	}
	if f.backend.UpdateSettings() == nil {
		t.Error("backend settings not applied by Restore")
	}

	select {
	case <-f.flushes:
	default:
		t.Error("no flush after Restore")
	}
	select {
	case s := <-f.hooks:
		t.Errorf("settings hook fired with %+v on Restore", s)
	default:
	}
}

func TestRestoreUnsupportedFails(t *testing.T) {
	device := model.NewDevice("modem0")
	iface := New(device, bareBackend{})
	if err := iface.Initialize(context.Background()); !errors.Is(err, ErrUnsupported) {
		t.Fatalf("Initialize() error = %v, want ErrUnsupported", err)
	}
	if err := iface.Restore(mustFastboot(t, "AT!BOOTHOLD")); !errors.Is(err, ErrFailed) {
		t.Errorf("Restore() error = %v, want ErrFailed", err)
	}
}

func TestShutdownDetaches(t *testing.T) {
	f := newFixture(t)

	f.iface.Shutdown()
	if f.iface.Object() != nil {
		t.Error("Object() != nil after Shutdown")
	}
	if _, err := f.device.Object(ObjectName); err == nil {
		t.Error("firmware object still attached after Shutdown")
	}
	// Idempotent.
	f.iface.Shutdown()
}
