package model

import (
	"context"
	"errors"
)

// Method errors.
var (
	ErrMethodNotFound  = errors.New("method not found")
	ErrMethodNoHandler = errors.New("method has no handler")
)

// MethodHandler is the function signature for method handlers.
// The parameters map contains method-specific parameters.
// Returns a result map (may be nil) or an error.
type MethodHandler func(ctx context.Context, params map[string]any) (map[string]any, error)

// MethodMetadata describes a method's properties.
type MethodMetadata struct {
	// ID is the method identifier within the object.
	ID uint8

	// Name is the human-readable method name.
	Name string

	// Description is a human-readable description.
	Description string
}

// Method represents a method instance with its handler.
type Method struct {
	metadata *MethodMetadata
	handler  MethodHandler
}

// NewMethod creates a new method with the given metadata and handler.
func NewMethod(meta *MethodMetadata, handler MethodHandler) *Method {
	return &Method{
		metadata: meta,
		handler:  handler,
	}
}

// ID returns the method ID.
func (m *Method) ID() uint8 {
	return m.metadata.ID
}

// Metadata returns the method metadata.
func (m *Method) Metadata() *MethodMetadata {
	return m.metadata
}

// Invoke executes the method with the given parameters.
func (m *Method) Invoke(ctx context.Context, params map[string]any) (map[string]any, error) {
	if m.handler == nil {
		return nil, ErrMethodNoHandler
	}
	return m.handler(ctx, params)
}

// SetHandler sets or replaces the method handler.
func (m *Method) SetHandler(handler MethodHandler) {
	m.handler = handler
}
