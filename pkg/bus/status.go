package bus

import (
	"errors"
	"fmt"

	"github.com/modemd-project/modemd-go/pkg/auth"
	"github.com/modemd-project/modemd-go/pkg/model"
	"github.com/modemd-project/modemd-go/pkg/wire"
)

// StatusError reports a non-success bus response to a client caller.
type StatusError struct {
	Status  wire.Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("bus request failed: %s", e.Status)
	}
	return fmt.Sprintf("bus request failed: %s: %s", e.Status, e.Message)
}

// statusFor maps a dispatch error to a wire status code.
func statusFor(err error) wire.Status {
	var se *StatusError
	switch {
	case err == nil:
		return wire.StatusSuccess
	case errors.As(err, &se):
		return se.Status
	case errors.Is(err, model.ErrObjectNotFound):
		return wire.StatusInvalidObject
	case errors.Is(err, model.ErrAttributeNotFound):
		return wire.StatusInvalidAttribute
	case errors.Is(err, model.ErrMethodNotFound):
		return wire.StatusInvalidMethod
	case errors.Is(err, model.ErrMethodNoHandler):
		return wire.StatusUnsupported
	case errors.Is(err, model.ErrAttributeNotWritable):
		return wire.StatusReadOnly
	case errors.Is(err, model.ErrAttributeValueType):
		return wire.StatusInvalidArgs
	case errors.Is(err, wire.ErrInvalidArgs):
		return wire.StatusInvalidArgs
	case errors.Is(err, wire.ErrMissingID), errors.Is(err, wire.ErrMissingObject), errors.Is(err, wire.ErrUnknownOp):
		return wire.StatusInvalidArgs
	case errors.Is(err, auth.ErrNotAuthorized):
		return wire.StatusNotAuthorized
	default:
		return wire.StatusFailed
	}
}
