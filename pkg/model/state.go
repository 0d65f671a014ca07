package model

// DeviceState is the coarse operational state of a managed device.
// The ordering is significant: capability polling is gated on the device
// having reached at least StateEnabling.
type DeviceState int8

const (
	// StateFailed indicates the device is unusable.
	StateFailed DeviceState = -1

	// StateUnknown indicates the state is not known or reportable.
	StateUnknown DeviceState = 0

	// StateInitializing indicates the device is being initialized.
	StateInitializing DeviceState = 1

	// StateLocked indicates the device needs to be unlocked before use.
	StateLocked DeviceState = 2

	// StateDisabled indicates the device is not enabled.
	StateDisabled DeviceState = 3

	// StateDisabling indicates the device is being disabled.
	StateDisabling DeviceState = 4

	// StateEnabling indicates the device is being enabled.
	StateEnabling DeviceState = 5

	// StateEnabled indicates the device is enabled but not registered.
	StateEnabled DeviceState = 6

	// StateSearching indicates the device is searching for a network.
	StateSearching DeviceState = 7

	// StateRegistered indicates the device is registered with a network.
	StateRegistered DeviceState = 8

	// StateDisconnecting indicates a connection is being torn down.
	StateDisconnecting DeviceState = 9

	// StateConnecting indicates a connection is being established.
	StateConnecting DeviceState = 10

	// StateConnected indicates a connection is active.
	StateConnected DeviceState = 11
)

// String returns the state name.
func (s DeviceState) String() string {
	switch s {
	case StateFailed:
		return "FAILED"
	case StateUnknown:
		return "UNKNOWN"
	case StateInitializing:
		return "INITIALIZING"
	case StateLocked:
		return "LOCKED"
	case StateDisabled:
		return "DISABLED"
	case StateDisabling:
		return "DISABLING"
	case StateEnabling:
		return "ENABLING"
	case StateEnabled:
		return "ENABLED"
	case StateSearching:
		return "SEARCHING"
	case StateRegistered:
		return "REGISTERED"
	case StateDisconnecting:
		return "DISCONNECTING"
	case StateConnecting:
		return "CONNECTING"
	case StateConnected:
		return "CONNECTED"
	default:
		return "UNKNOWN"
	}
}

// AtLeast returns true if the state is at or above the given threshold.
func (s DeviceState) AtLeast(threshold DeviceState) bool {
	return s >= threshold
}
