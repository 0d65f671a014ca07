package log

import (
	"time"
)

// Event represents an agent log event.
// CBOR encoding uses integer keys for compactness.
type Event struct {
	// Timestamp when the event occurred (nanosecond precision).
	Timestamp time.Time `cbor:"1,keyasint"`

	// Category classifies the event type.
	Category Category `cbor:"2,keyasint"`

	// Severity of the event.
	Severity Severity `cbor:"3,keyasint"`

	// DeviceID is the managed device the event relates to.
	DeviceID string `cbor:"4,keyasint,omitempty"`

	// Object is the exposed object name (e.g. "signal").
	Object string `cbor:"5,keyasint,omitempty"`

	// Peer is the bus caller identity, for invocation events.
	Peer string `cbor:"6,keyasint,omitempty"`

	// Message is the human-readable event description.
	Message string `cbor:"7,keyasint"`

	// Error is the error text, for failure events.
	Error string `cbor:"8,keyasint,omitempty"`

	// Rate is the polling rate in seconds, for refresh events.
	Rate uint32 `cbor:"9,keyasint,omitempty"`
}

// Category classifies the event type.
type Category uint8

const (
	// CategoryLifecycle covers capability initialize/enable/disable/shutdown.
	CategoryLifecycle Category = 0

	// CategoryRefresh covers refresh scheduler (re)configuration.
	CategoryRefresh Category = 1

	// CategoryPoll covers individual poll executions.
	CategoryPoll Category = 2

	// CategoryInvoke covers inbound bus method invocations.
	CategoryInvoke Category = 3

	// CategoryBus covers bus transport activity.
	CategoryBus Category = 4
)

// String returns the category name.
func (c Category) String() string {
	switch c {
	case CategoryLifecycle:
		return "LIFECYCLE"
	case CategoryRefresh:
		return "REFRESH"
	case CategoryPoll:
		return "POLL"
	case CategoryInvoke:
		return "INVOKE"
	case CategoryBus:
		return "BUS"
	default:
		return "UNKNOWN"
	}
}

// Severity classifies how serious an event is.
type Severity uint8

const (
	// SeverityDebug is routine detail.
	SeverityDebug Severity = 0

	// SeverityInfo is notable but expected activity.
	SeverityInfo Severity = 1

	// SeverityWarn is a recovered or tolerated failure.
	SeverityWarn Severity = 2

	// SeverityError is an operation failure surfaced to a caller.
	SeverityError Severity = 3
)

// String returns the severity name.
func (s Severity) String() string {
	switch s {
	case SeverityDebug:
		return "DEBUG"
	case SeverityInfo:
		return "INFO"
	case SeverityWarn:
		return "WARN"
	case SeverityError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// NewEvent creates an event stamped with the current time.
func NewEvent(category Category, severity Severity, message string) Event {
	return Event{
		Timestamp: time.Now(),
		Category:  category,
		Severity:  severity,
		Message:   message,
	}
}
