package intake

import (
	"errors"
	"strings"

	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNoCategory           = goerr.New("no category selected")
	ErrNoSubCategory        = goerr.New("no sub-category selected")
	ErrUnknownField         = goerr.New("unknown field")
	ErrLocked               = goerr.New("form is locked until the UPI is verified")
	ErrInvalidTransition    = goerr.New("transition not allowed in current state")
	ErrStepInvalid          = goerr.New("step has missing values")
	ErrSubmitInFlight       = goerr.New("submission already in progress")
	ErrNotAllowed           = goerr.New("parcel is not allowed for upload")
	ErrWarningUnconfirmed   = goerr.New("land-use warning must be confirmed")
	ErrNoWarning            = goerr.New("no warning to confirm")
	ErrStaleVerification    = goerr.New("form changed while the UPI was being verified")
	ErrImageIndexOutOfRange = goerr.New("image index out of range")
)

const (
	SessionKey = "session"
	StateKey   = "state"
	FieldKey   = "field"
	IndexKey   = "index"
)

// StepError reports the fields that keep a step from being completed.
type StepError struct {
	Step    int
	Missing []string
}

func (e *StepError) Error() string {
	return "step has missing values: " + strings.Join(e.Missing, ", ")
}

// Is matches ErrStepInvalid.
func (e *StepError) Is(target error) bool {
	return errors.Is(ErrStepInvalid, target)
}
