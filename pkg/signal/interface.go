package signal

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"time"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/log"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// Interface errors.
var (
	// ErrUnsupported is reported by Initialize when the backend does not
	// implement value loading.
	ErrUnsupported = errors.New("signal capability not supported")

	// ErrFailed indicates a missing operational precondition, such as
	// scheduling before the exposed object exists.
	ErrFailed = errors.New("signal operation failed")
)

// refreshContext owns the timer and rate state for one polling
// configuration. A new context replaces the old one on every rate
// change; a completion that finds itself bound to a replaced context
// discards its result.
type refreshContext struct {
	rate     uint32
	timer    Timer
	ctx      context.Context
	cancel   context.CancelFunc
	inFlight bool
}

// Interface is the lifecycle controller for the signal capability of
// one device. It creates and attaches the exposed object, detects
// backend support, drives periodic polling, and handles the
// authorization-gated Setup invocation.
type Interface struct {
	mu sync.Mutex

	device  *model.Device
	backend Backend
	loader  ValueLoader
	gate    auth.Gate
	logger  log.Logger

	newTimer TimerFactory
	rateHook func(rate uint32)

	obj         *Object
	initialized bool
	supported   bool
	refresh     *refreshContext
}

// Option configures an Interface.
type Option func(*Interface)

// WithLogger sets the event logger.
func WithLogger(l log.Logger) Option {
	return func(i *Interface) { i.logger = l }
}

// WithGate sets the authorization gate for Setup invocations.
func WithGate(g auth.Gate) Option {
	return func(i *Interface) { i.gate = g }
}

// WithTimerFactory overrides the polling timer construction.
func WithTimerFactory(f TimerFactory) Option {
	return func(i *Interface) { i.newTimer = f }
}

// WithRateHook registers a callback invoked whenever an explicit rate
// change is published, e.g. to persist the rate across restarts.
func WithRateHook(h func(rate uint32)) Option {
	return func(i *Interface) { i.rateHook = h }
}

// New creates the signal interface controller for a device.
func New(device *model.Device, backend Backend, opts ...Option) *Interface {
	i := &Interface{
		device:   device,
		backend:  backend,
		gate:     auth.AllowAll{},
		newTimer: NewTickerTimer,
	}
	for _, opt := range opts {
		opt(i)
	}
	i.logger = log.OrNoop(i.logger)
	return i
}

// Object returns the exposed signal object, or nil before Initialize.
func (i *Interface) Object() *Object {
	i.mu.Lock()
	defer i.mu.Unlock()
	return i.obj
}

// Initialize creates the exposed object and detects backend support.
// Idempotent: a second call reports the outcome of the first. When the
// backend lacks value loading, the object is created but never attached
// to the device and ErrUnsupported is returned.
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

	loader, ok := i.backend.(ValueLoader)
	if !ok {
		i.supported = false
		i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
			"signal capability not supported by backend"))
		return ErrUnsupported
	}
	i.loader = loader
	i.supported = true

	i.obj.clearReadings()
	i.obj.AddMethod(model.NewMethod(&model.MethodMetadata{
		ID:          MethodSetup,
		Name:        "Setup",
		Description: "Configure the signal polling rate",
	}, i.handleSetup))

	if err := i.device.Attach(i.obj.Object); err != nil {
		return fmt.Errorf("attaching signal object: %w", err)
	}

	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"signal interface initialized"))
	return nil
}

// Enable starts polling at the rate currently published on the rate
// attribute. Fails only if the scheduling procedure itself fails.
func (i *Interface) Enable(ctx context.Context) error {
	if err := i.configureRefresh(false, 0); err != nil {
		return err
	}
	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"signal interface enabled"))
	return nil
}

// Disable stops polling and resets all measurements to unavailable.
// Always succeeds.
func (i *Interface) Disable(ctx context.Context) error {
	i.mu.Lock()
	i.teardownRefreshLocked()
	if i.obj != nil {
		i.obj.clearReadings()
	}
	obj := i.obj
	i.mu.Unlock()

	if obj != nil {
		obj.Flush()
	}
	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"signal interface disabled"))
	return nil
}

// Shutdown detaches and releases the exposed object. Idempotent.
// Shutdown does not clear or flush measurements; callers that need
// polling stopped cleanly must Disable first. Any remaining timer is
// cancelled so a late tick cannot touch the released object.
func (i *Interface) Shutdown() {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.teardownRefreshLocked()
	if i.obj != nil {
		i.device.Detach(ObjectName)
		i.obj = nil
	}
	i.initialized = false
	i.supported = false
	i.logger.Log(i.event(log.CategoryLifecycle, log.SeverityInfo,
		"signal interface shut down"))
}

// SetupRate runs the refresh-scheduling procedure with an explicit
// rate, bypassing the bus invocation path. Used on startup to restore
// a persisted rate.
func (i *Interface) SetupRate(rate uint32) error {
	return i.configureRefresh(true, rate)
}

// handleSetup processes the Setup(rate) invocation: authorize first,
// then reconfigure. The rate must not change before authorization
// succeeds.
func (i *Interface) handleSetup(ctx context.Context, params map[string]any) (map[string]any, error) {
	rate, err := rateParam(params)
	if err != nil {
		return nil, err
	}

	peer := auth.PeerFromContext(ctx)
	if err := i.gate.Authorize(ctx, peer, auth.AuthorizationDeviceControl); err != nil {
		ev := i.event(log.CategoryInvoke, log.SeverityWarn, "setup invocation denied")
		ev.Peer = peer
		ev.Error = err.Error()
		i.logger.Log(ev)
		return nil, err
	}

	if err := i.configureRefresh(true, rate); err != nil {
		return nil, err
	}

	ev := i.event(log.CategoryInvoke, log.SeverityInfo, "signal polling rate configured")
	ev.Peer = peer
	ev.Rate = rate
	i.logger.Log(ev)
	return nil, nil
}

// configureRefresh is the single scheduling procedure shared by Enable
// (explicit=false, reuse the published rate) and Setup (explicit=true).
// The flush, the rate hook, and the first sample run after the mutex is
// released: a slow flush handler or hook must not stall the scheduler,
// and an explicit rate change reaches subscribers before the first poll
// completes against a possibly slow backend.
func (i *Interface) configureRefresh(explicit bool, rate uint32) error {
	i.mu.Lock()
	if i.obj == nil {
		i.mu.Unlock()
		return fmt.Errorf("%w: exposed object not available", ErrFailed)
	}
	if !i.supported {
		i.mu.Unlock()
		return fmt.Errorf("%w: capability not supported by backend", ErrFailed)
	}
	obj := i.obj

	if explicit {
		obj.SetRate(rate)
	} else {
		rate = obj.Rate()
	}

	var rc *refreshContext
	switch {
	case rate == 0:
		// Normal "polling disabled" path, not an error.
		i.teardownRefreshLocked()
		obj.clearReadings()

	case !i.device.State().AtLeast(model.StateEnabling):
		// Rate stays published; the timer arms once the device
		// reaches the enabling state and Enable runs again.

	case i.refresh != nil && i.refresh.rate == rate:
		// Already armed at this rate.

	default:
		i.teardownRefreshLocked()
		ctx, cancel := context.WithCancel(context.Background())
		rc = &refreshContext{rate: rate, ctx: ctx, cancel: cancel}
		rc.timer = i.newTimer(time.Duration(rate)*time.Second, func() { i.poll(rc) })
		i.refresh = rc

		ev := i.event(log.CategoryRefresh, log.SeverityDebug, "signal refresh armed")
		ev.Rate = rate
		i.logger.Log(ev)
	}
	i.mu.Unlock()

	if explicit || rate == 0 {
		obj.Flush()
	}
	if explicit && i.rateHook != nil {
		i.rateHook(rate)
	}
	if rc != nil {
		// First sample without waiting a full interval.
		go i.poll(rc)
	}
	return nil
}

// teardownRefreshLocked cancels the timer and releases the refresh
// context. Caller holds i.mu.
func (i *Interface) teardownRefreshLocked() {
	if i.refresh == nil {
		return
	}
	i.refresh.timer.Stop()
	i.refresh.cancel()
	i.refresh = nil
}

// poll performs one backend load bound to a refresh context. A tick
// that fires while a previous load for the same context is still
// outstanding is skipped; a completion whose context has been replaced
// or torn down discards its result.
func (i *Interface) poll(rc *refreshContext) {
	i.mu.Lock()
	if i.refresh != rc || rc.inFlight {
		i.mu.Unlock()
		return
	}
	rc.inFlight = true
	ctx := rc.ctx
	i.mu.Unlock()

	values, err := i.loader.LoadValues(ctx)

	i.mu.Lock()
	rc.inFlight = false
	if i.refresh != rc || i.obj == nil {
		i.mu.Unlock()
		return
	}
	obj := i.obj
	if err != nil {
		// Soft fail: clear readings, keep the timer running.
		obj.clearReadings()
		i.mu.Unlock()
		obj.Flush()

		ev := i.event(log.CategoryPoll, log.SeverityWarn, "signal poll failed")
		ev.Error = err.Error()
		i.logger.Log(ev)
		return
	}
	obj.publish(values)
	i.mu.Unlock()
	obj.Flush()

	i.logger.Log(i.event(log.CategoryPoll, log.SeverityDebug, "signal poll completed"))
}

func (i *Interface) event(category log.Category, severity log.Severity, message string) log.Event {
	ev := log.NewEvent(category, severity, message)
	ev.DeviceID = i.device.ID()
	ev.Object = ObjectName
	return ev
}

// rateParam extracts the rate parameter, accepting the integer shapes
// a decoded invocation payload can carry.
func rateParam(params map[string]any) (uint32, error) {
	v, ok := params["rate"]
	if !ok {
		return 0, fmt.Errorf("%w: missing rate parameter", wire.ErrInvalidArgs)
	}
	switch n := v.(type) {
	case uint32:
		return n, nil
	case uint64:
		if n > math.MaxUint32 {
			return 0, fmt.Errorf("%w: rate out of range", wire.ErrInvalidArgs)
		}
		return uint32(n), nil
	case int64:
		if n < 0 || n > math.MaxUint32 {
			return 0, fmt.Errorf("%w: rate out of range", wire.ErrInvalidArgs)
		}
		return uint32(n), nil
	case int:
		if n < 0 || int64(n) > math.MaxUint32 {
			return 0, fmt.Errorf("%w: rate out of range", wire.ErrInvalidArgs)
		}
		return uint32(n), nil
	default:
		return 0, fmt.Errorf("%w: rate must be an unsigned integer", wire.ErrInvalidArgs)
	}
}
