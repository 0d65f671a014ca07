package examples

import "errors"

// ErrSimulatedFailure is returned by a simulated modem put into the
// failing state.
var ErrSimulatedFailure = errors.New("simulated modem failure")
