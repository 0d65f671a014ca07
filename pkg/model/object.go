package model

import (
	"context"
	"errors"
	"sync"
)

// Object errors.
var (
	ErrAttributeNotFound = errors.New("attribute not found")
)

// FlushHandler receives the dirty attribute set when an object is flushed.
type FlushHandler func(changes map[uint16]any)

// Object is a bus-visible attribute/method surface exposed for one
// capability of a device.
type Object struct {
	mu sync.RWMutex

	// Name identifies the object on the device's public surface.
	name string

	// Attributes indexed by ID.
	attributes map[uint16]*Attribute

	// Methods indexed by ID.
	methods map[uint8]*Method

	// Handler notified on Flush.
	flushHandler FlushHandler
}

// NewObject creates a new, empty exposed object.
func NewObject(name string) *Object {
	return &Object{
		name:       name,
		attributes: make(map[uint16]*Attribute),
		methods:    make(map[uint8]*Method),
	}
}

// Name returns the object name.
func (o *Object) Name() string {
	return o.name
}

// AddAttribute adds an attribute to the object.
func (o *Object) AddAttribute(attr *Attribute) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.attributes[attr.ID()] = attr
}

// GetAttribute returns an attribute by ID.
func (o *Object) GetAttribute(id uint16) (*Attribute, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	attr, exists := o.attributes[id]
	if !exists {
		return nil, ErrAttributeNotFound
	}
	return attr, nil
}

// ReadAttribute reads an attribute value by ID.
func (o *Object) ReadAttribute(id uint16) (any, error) {
	attr, err := o.GetAttribute(id)
	if err != nil {
		return nil, err
	}
	if !attr.Metadata().Access.CanRead() {
		return nil, ErrAttributeNotFound // Treat non-readable as not found
	}
	return attr.Value(), nil
}

// WriteAttribute writes an attribute value by ID, honoring write access.
func (o *Object) WriteAttribute(id uint16, value any) error {
	attr, err := o.GetAttribute(id)
	if err != nil {
		return err
	}
	return attr.SetValue(value)
}

// SetAttributeInternal sets an attribute value without checking write
// access. Used by capability controllers to publish measurements.
func (o *Object) SetAttributeInternal(id uint16, value any) error {
	attr, err := o.GetAttribute(id)
	if err != nil {
		return err
	}
	return attr.SetValueInternal(value)
}

// ReadAllAttributes returns all readable attribute values.
func (o *Object) ReadAllAttributes() map[uint16]any {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make(map[uint16]any)
	for id, attr := range o.attributes {
		if attr.Metadata().Access.CanRead() {
			result[id] = attr.Value()
		}
	}
	return result
}

// AddMethod adds a method to the object.
func (o *Object) AddMethod(m *Method) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.methods[m.ID()] = m
}

// Methods returns all methods of the object.
func (o *Object) Methods() []*Method {
	o.mu.RLock()
	defer o.mu.RUnlock()

	result := make([]*Method, 0, len(o.methods))
	for _, m := range o.methods {
		result = append(result, m)
	}
	return result
}

// GetMethod returns a method by ID.
func (o *Object) GetMethod(id uint8) (*Method, error) {
	o.mu.RLock()
	defer o.mu.RUnlock()

	m, exists := o.methods[id]
	if !exists {
		return nil, ErrMethodNotFound
	}
	return m, nil
}

// InvokeMethod invokes a method by ID.
func (o *Object) InvokeMethod(ctx context.Context, id uint8, params map[string]any) (map[string]any, error) {
	m, err := o.GetMethod(id)
	if err != nil {
		return nil, err
	}
	return m.Invoke(ctx, params)
}

// SetFlushHandler sets the handler notified on Flush.
func (o *Object) SetFlushHandler(h FlushHandler) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.flushHandler = h
}

// Flush collects all dirty attributes, clears their dirty flags, and
// delivers the change set to the flush handler. Publication of values
// happens-before the handler runs; a flush with no pending changes is a
// no-op.
func (o *Object) Flush() {
	o.mu.RLock()
	handler := o.flushHandler
	changes := make(map[uint16]any)
	for id, attr := range o.attributes {
		if attr.IsDirty() {
			changes[id] = attr.Value()
			attr.ClearDirty()
		}
	}
	o.mu.RUnlock()

	if handler != nil && len(changes) > 0 {
		handler(changes)
	}
}
