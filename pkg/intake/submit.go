package intake

import (
	"context"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/m-mizutani/goerr/v2"
)

// Submit sends the form. It is accepted only in step 2 with step 1 still
// complete, a complete media step, an allowed parcel and, when the parcel raised a land-use warning, an
// explicit confirmation. A failed submit returns to step 2 with every value
// kept; a successful one discards the values.
func (m *Machine) Submit(ctx context.Context) (submission.Result, error) {
	m.mu.Lock()
	payload, err := m.prepareSubmit()
	if err != nil {
		m.mu.Unlock()
		return submission.Result{}, err
	}
	m.formErrors = nil
	m.inFlight = true
	m.transition(StateSubmitting)
	m.mu.Unlock()

	result, err := m.submitter.Submit(ctx, payload)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.inFlight = false
	if err != nil {
		m.message = submission.FailureMessage(err)
		m.mapSubmitErrors(err)
		m.transition(StateFailed)
		m.transition(StateStep2)
		m.log(ctx).Warn("property submission failed", "error", err)
		return submission.Result{}, err
	}

	m.result = &result
	m.previews.ReleaseAll(m.values)
	m.values = model.Values{}
	m.message = "Property recorded successfully."
	m.notice = ""
	m.transition(StateSuccess)
	m.log(ctx).Info("property submitted", "property_id", result.PropertyID, "warnings", len(result.Warnings))
	return result, nil
}

func (m *Machine) prepareSubmit() (submission.Payload, error) {
	if m.inFlight {
		return submission.Payload{}, ErrSubmitInFlight
	}
	if m.category == nil || m.sub == nil || m.state != StateStep2 {
		return submission.Payload{}, goerr.Wrap(ErrInvalidTransition, "cannot submit", goerr.V(StateKey, m.currentState()))
	}
	if !m.outcome.Allowed {
		return submission.Payload{}, goerr.Wrap(ErrNotAllowed, "cannot submit", goerr.V("reason", m.outcome.Message))
	}
	if missing := m.missingRequired(); len(missing) > 0 {
		return submission.Payload{}, &StepError{Step: 1, Missing: missing}
	}
	if missing := m.missingStep2(); len(missing) > 0 {
		return submission.Payload{}, &StepError{Step: 2, Missing: missing}
	}
	if m.outcome.Warning != "" && !m.confirmed {
		return submission.Payload{}, ErrWarningUnconfirmed
	}

	payload, err := submission.BuildPayload(*m.category, *m.sub, m.values.Clone(), m.outcome.Verification)
	if err != nil {
		m.message = submission.FailureMessage(err)
		m.mapSubmitErrors(err)
		return submission.Payload{}, err
	}
	return payload, nil
}

// mapSubmitErrors attaches the messages of a rejected submit to the fields
// they name. Messages for unknown paths become form-level errors.
func (m *Machine) mapSubmitErrors(err error) {
	payload := submission.FieldErrors(err)
	if len(payload) == 0 {
		return
	}
	mapping := render.MapErrorPayload(m.sub.Fields, payload)
	for name, messages := range mapping.Fields {
		m.fieldErrors[name] = strings.Join(messages, "; ")
	}
	m.formErrors = render.MergeFormErrors(m.formErrors, mapping.Form...)
}
