package wire

// Status represents a response status code.
type Status uint8

const (
	// StatusSuccess indicates the operation completed successfully.
	StatusSuccess Status = 0

	// StatusInvalidDevice indicates the device doesn't exist.
	StatusInvalidDevice Status = 1

	// StatusInvalidObject indicates the object isn't attached to the device.
	StatusInvalidObject Status = 2

	// StatusInvalidAttribute indicates the attribute doesn't exist.
	StatusInvalidAttribute Status = 3

	// StatusInvalidMethod indicates the method doesn't exist.
	StatusInvalidMethod Status = 4

	// StatusInvalidArgs indicates a malformed value or parameter set.
	StatusInvalidArgs Status = 5

	// StatusReadOnly indicates an attempt to write a read-only attribute.
	StatusReadOnly Status = 6

	// StatusNotAuthorized indicates the caller lacks the required scope.
	StatusNotAuthorized Status = 7

	// StatusUnsupported indicates the capability is not supported.
	StatusUnsupported Status = 8

	// StatusFailed indicates an operational precondition was missing.
	StatusFailed Status = 9
)

// String returns the status name.
func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "SUCCESS"
	case StatusInvalidDevice:
		return "INVALID_DEVICE"
	case StatusInvalidObject:
		return "INVALID_OBJECT"
	case StatusInvalidAttribute:
		return "INVALID_ATTRIBUTE"
	case StatusInvalidMethod:
		return "INVALID_METHOD"
	case StatusInvalidArgs:
		return "INVALID_ARGS"
	case StatusReadOnly:
		return "READ_ONLY"
	case StatusNotAuthorized:
		return "NOT_AUTHORIZED"
	case StatusUnsupported:
		return "UNSUPPORTED"
	case StatusFailed:
		return "FAILED"
	default:
		return "UNKNOWN"
	}
}

// IsSuccess returns true if the status indicates success.
func (s Status) IsSuccess() bool {
	return s == StatusSuccess
}

// IsError returns true if the status indicates an error.
func (s Status) IsError() bool {
	return s != StatusSuccess
}
