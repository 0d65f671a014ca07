package wire

import (
	"errors"

	"github.com/fxamacker/cbor/v2"
)

// Message validation errors.
var (
	ErrMissingID     = errors.New("message has no request ID")
	ErrMissingObject = errors.New("message has no target object")
	ErrUnknownOp     = errors.New("unknown operation")
)

// Op identifies a bus operation.
type Op uint8

const (
	// OpGet reads one attribute from an exposed object.
	OpGet Op = 1

	// OpSet writes one attribute on an exposed object.
	OpSet Op = 2

	// OpInvoke calls a method on an exposed object.
	OpInvoke Op = 3

	// OpSubscribe registers the connection for change notifications.
	OpSubscribe Op = 4
)

// String returns the operation name.
func (o Op) String() string {
	switch o {
	case OpGet:
		return "GET"
	case OpSet:
		return "SET"
	case OpInvoke:
		return "INVOKE"
	case OpSubscribe:
		return "SUBSCRIBE"
	default:
		return "UNKNOWN"
	}
}

// Request is a client-to-agent bus message.
type Request struct {
	// ID correlates the response with this request.
	ID string `cbor:"1,keyasint"`

	// Op is the requested operation.
	Op Op `cbor:"2,keyasint"`

	// Device is the target device identifier.
	Device string `cbor:"3,keyasint,omitempty"`

	// Object is the exposed object name on the device.
	Object string `cbor:"4,keyasint,omitempty"`

	// Attr is the attribute ID for Get/Set.
	Attr uint16 `cbor:"5,keyasint,omitempty"`

	// Method is the method ID for Invoke.
	Method uint8 `cbor:"6,keyasint,omitempty"`

	// Value is the encoded attribute value for Set.
	Value cbor.RawMessage `cbor:"7,keyasint,omitempty"`

	// Params are the encoded method parameters for Invoke.
	Params map[string]cbor.RawMessage `cbor:"8,keyasint,omitempty"`
}

// Validate checks structural validity of the request.
func (r *Request) Validate() error {
	if r.ID == "" {
		return ErrMissingID
	}
	switch r.Op {
	case OpGet, OpSet, OpInvoke:
		if r.Device == "" || r.Object == "" {
			return ErrMissingObject
		}
	case OpSubscribe:
		// Subscribe targets the whole connection.
	default:
		return ErrUnknownOp
	}
	return nil
}

// Response is the agent's reply to a request.
type Response struct {
	// ID matches the originating request.
	ID string `cbor:"1,keyasint"`

	// Status is the outcome of the operation.
	Status Status `cbor:"2,keyasint"`

	// Value is the encoded attribute value for Get responses.
	Value cbor.RawMessage `cbor:"3,keyasint,omitempty"`

	// Result holds encoded method results for Invoke responses.
	Result map[string]cbor.RawMessage `cbor:"4,keyasint,omitempty"`

	// Error is a human-readable error description on failure.
	Error string `cbor:"5,keyasint,omitempty"`
}

// Notification reports attribute changes flushed from an exposed object.
type Notification struct {
	// Device is the device the object belongs to.
	Device string `cbor:"1,keyasint"`

	// Object is the exposed object name.
	Object string `cbor:"2,keyasint"`

	// Changes maps attribute IDs to their encoded new values.
	Changes map[uint16]cbor.RawMessage `cbor:"3,keyasint"`
}

// Frame is the agent-to-client envelope: exactly one field is set.
type Frame struct {
	Response     *Response     `cbor:"1,keyasint,omitempty"`
	Notification *Notification `cbor:"2,keyasint,omitempty"`
}
