package parcel

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/goerr/v2"
)

// Client is the subset of the backend the verifier needs.
type Client interface {
	LookupParcel(ctx context.Context, upi, ownerID string) ([]byte, error)
	MyProperties(ctx context.Context) ([]map[string]any, error)
}

// Request names the parcel to verify and the category it is filed under.
type Request struct {
	UPI      string
	OwnerID  string
	Category taxonomy.Category
}

// Verifier runs the parcel lookup followed by the duplicate check.
type Verifier struct {
	client Client
	logger *slog.Logger
}

// VerifierOption configures a Verifier.
type VerifierOption func(*Verifier)

// WithLogger overrides the logger used for ignored duplicate-check failures.
func WithLogger(logger *slog.Logger) VerifierOption {
	return func(v *Verifier) {
		if logger != nil {
			v.logger = logger
		}
	}
}

// NewVerifier builds a verifier on top of client.
func NewVerifier(client Client, opts ...VerifierOption) *Verifier {
	v := &Verifier{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(v)
		}
	}
	return v
}

// Verify looks up req.UPI. A blocked or duplicate parcel is not an error: the
// outcome carries Allowed=false and the reason. Errors are returned for a
// missing UPI and for a failed lookup, with Outcome.Message set to the text
// to show the user.
func (v *Verifier) Verify(ctx context.Context, req Request) (Outcome, error) {
	upi := strings.TrimSpace(req.UPI)
	if upi == "" {
		return Outcome{Message: MsgUPIRequired}, ErrUPIRequired
	}

	body, err := v.client.LookupParcel(ctx, upi, req.OwnerID)
	if err != nil {
		return Outcome{Message: Message(err)}, goerr.Wrap(ErrLookupFailed, "parcel lookup failed",
			goerr.V(UPIKey, upi), goerr.V("cause", err.Error()))
	}
	parsed, err := Parse(upi, body)
	if err != nil {
		return Outcome{Message: Message(err)}, err
	}

	duplicate := false
	mine, err := v.client.MyProperties(ctx)
	if err != nil {
		v.log(ctx).Warn("duplicate check failed, ignoring", "upi", upi, "error", err)
	} else {
		duplicate = Duplicate(mine, upi)
	}

	out := Assess(parsed, req.Category, duplicate)
	v.log(ctx).Debug("parcel verified",
		"upi", upi,
		"allowed", out.Allowed,
		"warning", out.Warning != "",
	)
	return out, nil
}

func (v *Verifier) log(ctx context.Context) *slog.Logger {
	if v.logger != nil {
		return v.logger
	}
	return logging.From(ctx)
}

// Message extracts the text shown for a failed lookup: the backend detail
// when there is one, else the error text.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		if msg := apiErr.DetailText(); msg != "" {
			return msg
		}
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return "Failed to verify UPI"
}
