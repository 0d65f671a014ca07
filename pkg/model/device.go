package model

import (
	"errors"
	"sync"
)

// Device errors.
var (
	ErrObjectNotFound  = errors.New("object not found")
	ErrDuplicateObject = errors.New("duplicate object name")
)

// StateSubscriber is notified when the device state changes.
type StateSubscriber func(old, new DeviceState)

// Device represents a managed device and its exposed object surface.
// Capability controllers attach their objects while the capability is
// supported and detach them on shutdown.
type Device struct {
	mu sync.RWMutex

	// ID is the unique device identifier.
	id string

	// Coarse operational state.
	state DeviceState

	// Exposed objects indexed by name.
	objects map[string]*Object

	// Subscribers for state changes.
	stateSubs []StateSubscriber
}

// NewDevice creates a new device in StateUnknown.
func NewDevice(id string) *Device {
	return &Device{
		id:      id,
		objects: make(map[string]*Object),
	}
}

// ID returns the unique device identifier.
func (d *Device) ID() string {
	return d.id
}

// State returns the current operational state.
func (d *Device) State() DeviceState {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.state
}

// SetState updates the operational state and notifies subscribers.
func (d *Device) SetState(state DeviceState) {
	d.mu.Lock()
	old := d.state
	if old == state {
		d.mu.Unlock()
		return
	}
	d.state = state
	subs := make([]StateSubscriber, len(d.stateSubs))
	copy(subs, d.stateSubs)
	d.mu.Unlock()

	for _, sub := range subs {
		sub(old, state)
	}
}

// SubscribeState registers a subscriber for state changes.
func (d *Device) SubscribeState(sub StateSubscriber) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stateSubs = append(d.stateSubs, sub)
}

// Attach publishes an object on the device's public surface.
// Returns an error if an object with the same name is already attached.
func (d *Device) Attach(obj *Object) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, exists := d.objects[obj.Name()]; exists {
		return ErrDuplicateObject
	}
	d.objects[obj.Name()] = obj
	return nil
}

// Detach removes an object from the device's public surface.
// Detaching a name that is not attached is a no-op.
func (d *Device) Detach(name string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.objects, name)
}

// Object returns an attached object by name.
func (d *Device) Object(name string) (*Object, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	obj, exists := d.objects[name]
	if !exists {
		return nil, ErrObjectNotFound
	}
	return obj, nil
}

// HasObject returns true if an object with the given name is attached.
func (d *Device) HasObject(name string) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, exists := d.objects[name]
	return exists
}

// Objects returns all attached objects.
func (d *Device) Objects() []*Object {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make([]*Object, 0, len(d.objects))
	for _, obj := range d.objects {
		result = append(result, obj)
	}
	return result
}
