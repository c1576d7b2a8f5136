package intake

import (
	"context"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/m-mizutani/goerr/v2"
)

// VerifyUPI looks up the current UPI and applies the verdict. A blocked or
// duplicate parcel is not an error: the returned outcome is not allowed and
// its message says why. Errors are returned for a missing UPI, a failed
// lookup, and a form that changed while the lookup ran.
func (m *Machine) VerifyUPI(ctx context.Context) (parcel.Outcome, error) {
	m.mu.Lock()
	if err := m.editable(); err != nil {
		m.mu.Unlock()
		return parcel.Outcome{}, err
	}
	req := parcel.Request{
		UPI:      strings.TrimSpace(m.values.Text(FieldUPI)),
		OwnerID:  m.values.Text(FieldOwnerID),
		Category: m.category.Clone(),
	}
	m.resetVerification()
	m.message = ""
	epoch := m.epoch
	m.mu.Unlock()

	outcome, err := m.verifier.Verify(ctx, req)

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.epoch != epoch {
		m.log(ctx).Info("discarding stale verification", "upi", req.UPI)
		return outcome, goerr.Wrap(ErrStaleVerification, "verification discarded", goerr.V(parcel.UPIKey, req.UPI))
	}

	m.message = outcome.Message
	if err != nil {
		m.outcome = parcel.Outcome{Message: outcome.Message}
		m.log(ctx).Warn("UPI verification failed", "upi", req.UPI, "error", err)
		return outcome, err
	}

	m.outcome = outcome
	if outcome.Verified && outcome.Allowed {
		m.verifiedUPI = req.UPI
		m.mergeParcelFields()
	}
	m.log(ctx).Info("UPI verified",
		"upi", req.UPI,
		"allowed", outcome.Allowed,
		"warning", outcome.Warning != "",
	)
	return outcome, nil
}
