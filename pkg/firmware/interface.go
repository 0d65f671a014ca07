package firmware

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/log"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/settings"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// Interface errors.
var (
	// ErrUnsupported is reported by Initialize when the backend does not
	// accept update settings.
	ErrUnsupported = errors.New("firmware capability not supported")

	// ErrFailed indicates a missing operational precondition.
	ErrFailed = errors.New("firmware operation failed")
)

// Backend is the pluggable driver for one managed device.
type Backend interface {
	// Name identifies the backend implementation (e.g. "at", "qmi").
	Name() string
}

// SettingsApplier is the optional firmware capability of a Backend.
// A capability interface bound to a backend that does not implement it
// reports Unsupported from Initialize.
type SettingsApplier interface {
	// ApplyUpdateSettings hands validated update settings to the modem.
	ApplyUpdateSettings(s *settings.UpdateSettings)

	// UpdateSettings returns the currently applied settings, nil if none.
	UpdateSettings() *settings.UpdateSettings
}

// Interface is the lifecycle controller for the firmware capability of
// one device. It exposes the active update settings and handles the
// authorization-gated SetUpdateSettings invocation.
type Interface struct {
	mu sync.Mutex

	device  *model.Device
	backend Backend
	applier SettingsApplier
	gate    auth.Gate
	logger  log.Logger

	settingsHook func(s *settings.UpdateSettings)

	obj         *Object
	initialized bool
	supported   bool
}

// Option configures an Interface.
type Option func(*Interface)

// WithLogger sets the event logger.
func WithLogger(l log.Logger) Option {
	return func(i *Interface) { i.logger = l }
}

// WithGate sets the authorization gate for SetUpdateSettings invocations.
func WithGate(g auth.Gate) Option {
	return func(i *Interface) { i.gate = g }
}

// WithSettingsHook registers a callback invoked whenever settings are
// applied through the bus, e.g. to persist them across restarts. The
// hook does not fire for Restore.
func WithSettingsHook(h func(s *settings.UpdateSettings)) Option {
	return func(i *Interface) { i.settingsHook = h }
}

// New creates the firmware interface controller for a device.
func New(device *model.Device, backend Backend, opts ...Option) *Interface {
	i := &Interface{
		device:  device,
		backend: backend,
		gate:    auth.AllowAll{},
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = log.OrNoop(i.logger)
	return i
}

// Object returns the exposed firmware object, or nil before Initialize.
func (i *Interface) Object() *Object {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.obj
}

// Initialize creates the exposed object and detects backend support.
// Idempotent. When the backend does not accept update settings, the
// object is created but never attached and ErrUnsupported is returned.
func (i *Interface) Initialize(ctx context.Context) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.initialized {
		if !i.supported {
			return ErrUnsupported
		}
		return nil
	}
	i.initialized = true
	i.obj = NewObject()

	applier, ok := i.backend.(SettingsApplier)
	if !ok {
		i.supported = false
		i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
			"firmware capability not supported by backend"))
		return ErrUnsupported
	}
	i.applier = applier
	i.supported = true

	if s := applier.UpdateSettings(); s != nil {
		i.obj.publish(s)
	}
	i.obj.AddMethod(model.NewMethod(&model.MethodMetadata{
		ID:          MethodSetUpdateSettings,
		Name:        "SetUpdateSettings",
		Description: "Apply firmware update settings",
	}, i.handleSetUpdateSettings))

	if err := i.device.Attach(i.obj.Object); err != nil {
		return fmt.Errorf("attaching firmware object: %w", err)
	}

	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"firmware interface initialized"))
	return nil
}

// Restore applies previously persisted settings without an
// authorization check. Used on startup before the bus is served.
func (i *Interface) Restore(s *settings.UpdateSettings) error {
	i.mu.Lock()
	if i.obj == nil || !i.supported {
		i.mu.Unlock()
		return fmt.Errorf("%w: capability not available", ErrFailed)
	}
	obj := i.obj
	i.applier.ApplyUpdateSettings(s)
	obj.publish(s)
	i.mu.Unlock()

	obj.Flush()
	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"firmware update settings restored"))
	return nil
}

// Shutdown detaches and releases the exposed object. Idempotent.
func (i *Interface) Shutdown() {
	i.mu.Lock()
	defer i.mu.Unlock()

	if i.obj != nil {
		i.device.Detach(ObjectName)
		i.obj = nil
	}
	i.initialized = false
	i.supported = false
	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"firmware interface shut down"))
}

// handleSetUpdateSettings processes the SetUpdateSettings invocation:
// decode and validate the record, authorize, then apply. Nothing
// changes before authorization succeeds.
func (i *Interface) handleSetUpdateSettings(ctx context.Context, params map[string]any) (map[string]any, error) {
	blob, err := settingsParam(params)
	if err != nil {
		return nil, err
	}
	s, err := settings.DecodeUpdateSettings(blob)
	if err != nil {
		return nil, err
	}

	peer := auth.PeerFromContext(ctx)
	if err := i.gate.Authorize(ctx, peer, auth.AuthorizationDeviceControl); err != nil {
		ev := i.event(log.CategoryInvoke, log.SeverityWarn, "set update settings denied")
		ev.Peer = peer
		ev.Error = err.Error()
		i.logger.Log(ev)
		return nil, err
	}

	i.mu.Lock()
	if i.obj == nil || !i.supported {
		i.mu.Unlock()
		return nil, fmt.Errorf("%w: capability not available", ErrFailed)
	}
	obj := i.obj
	i.applier.ApplyUpdateSettings(s)
	obj.publish(s)
	i.mu.Unlock()

	obj.Flush()
	if i.settingsHook != nil {
		i.settingsHook(s)
	}

	ev := i.event(log.CategoryInvoke, log.SeverityInfo, "firmware update settings applied")
	ev.Peer = peer
	i.logger.Log(ev)
	return nil, nil
}

func (i *Interface) event(category log.Category, severity log.Severity, message string) log.Event {
	ev := log.NewEvent(category, severity, message)
	ev.DeviceID = i.device.ID()
	ev.Object = ObjectName
	return ev
}

// settingsParam extracts the encoded settings record.
func settingsParam(params map[string]any) ([]byte, error) {
	v, ok := params[ParamSettings]
	if !ok {
		return nil, fmt.Errorf("%w: missing settings parameter", wire.ErrInvalidArgs)
	}
	blob, ok := v.([]byte)
	if !ok {
		return nil, fmt.Errorf("%w: settings must be an encoded record", wire.ErrInvalidArgs)
	}
	return blob, nil
}
