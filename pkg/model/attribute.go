package model

import (
	"errors"
	"fmt"
	"sync"
)

// Access flags for attributes.
type Access uint8

const (
	// AccessRead allows reading the attribute.
	AccessRead Access = 1 << iota

	// AccessWrite allows writing the attribute.
	AccessWrite

	// Common access combinations.

	// AccessReadOnly is read only.
	AccessReadOnly = AccessRead

	// AccessReadWrite is read and write.
	AccessReadWrite = AccessRead | AccessWrite
)

// CanRead returns true if reading is allowed.
func (a Access) CanRead() bool { return a&AccessRead != 0 }

// CanWrite returns true if writing is allowed.
func (a Access) CanWrite() bool { return a&AccessWrite != 0 }

// String returns the access flags as a string.
func (a Access) String() string {
	var s string
	if a.CanRead() {
		s += "R"
	}
	if a.CanWrite() {
		s += "W"
	}
	if s == "" {
		return "-"
	}
	return s
}

// DataType represents the type of an attribute value.
type DataType uint8

const (
	DataTypeUnknown DataType = iota
	DataTypeBool
	DataTypeUint32
	DataTypeFloat64
	DataTypeString
	DataTypeStruct
)

// String returns the data type name.
func (d DataType) String() string {
	names := []string{"unknown", "bool", "uint32", "float64", "string", "struct"}
	if int(d) < len(names) {
		return names[d]
	}
	return "unknown"
}

// AttributeMetadata describes an attribute's properties.
type AttributeMetadata struct {
	// ID is the attribute identifier within the object.
	ID uint16

	// Name is the human-readable attribute name.
	Name string

	// Type is the data type of the attribute value.
	Type DataType

	// Access defines the allowed operations.
	Access Access

	// Default is the default value.
	Default any

	// Description is a human-readable description.
	Description string
}

// Attribute represents an attribute instance with its current value.
type Attribute struct {
	mu       sync.RWMutex
	metadata *AttributeMetadata
	value    any
	dirty    bool // True if value changed since the last flush
}

// Attribute errors.
var (
	ErrAttributeNotWritable = errors.New("attribute is not writable")
	ErrAttributeValueType   = errors.New("invalid value type for attribute")
)

// NewAttribute creates a new attribute with the given metadata.
func NewAttribute(meta *AttributeMetadata) *Attribute {
	return &Attribute{
		metadata: meta,
		value:    meta.Default,
	}
}

// ID returns the attribute ID.
func (a *Attribute) ID() uint16 {
	return a.metadata.ID
}

// Metadata returns the attribute metadata.
func (a *Attribute) Metadata() *AttributeMetadata {
	return a.metadata
}

// Value returns the current attribute value.
func (a *Attribute) Value() any {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.value
}

// SetValue sets the attribute value.
// Returns an error if the attribute is not writable or the value is invalid.
func (a *Attribute) SetValue(value any) error {
	if !a.metadata.Access.CanWrite() {
		return ErrAttributeNotWritable
	}
	return a.setValue(value)
}

// SetValueInternal sets the value without checking write access.
// Used by capability controllers to publish read-only measurements.
func (a *Attribute) SetValueInternal(value any) error {
	return a.setValue(value)
}

func (a *Attribute) setValue(value any) error {
	if err := a.validateValue(value); err != nil {
		return err
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	if a.value != value {
		a.value = value
		a.dirty = true
	}
	return nil
}

// validateValue checks if the value matches the expected type.
func (a *Attribute) validateValue(value any) error {
	switch a.metadata.Type {
	case DataTypeBool:
		if _, ok := value.(bool); !ok {
			return fmt.Errorf("%w: expected bool", ErrAttributeValueType)
		}
	case DataTypeUint32:
		if _, ok := value.(uint32); !ok {
			return fmt.Errorf("%w: expected uint32", ErrAttributeValueType)
		}
	case DataTypeFloat64:
		if _, ok := value.(float64); !ok {
			return fmt.Errorf("%w: expected float64", ErrAttributeValueType)
		}
	case DataTypeString:
		if _, ok := value.(string); !ok {
			return fmt.Errorf("%w: expected string", ErrAttributeValueType)
		}
	}
	// Struct values are compared and published opaquely.
	return nil
}

// IsDirty returns true if the value changed since the last flush.
func (a *Attribute) IsDirty() bool {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.dirty
}

// ClearDirty clears the dirty flag.
func (a *Attribute) ClearDirty() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.dirty = false
}
