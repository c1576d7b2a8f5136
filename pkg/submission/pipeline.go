package submission

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/validation"
	"github.com/m-mizutani/goerr/v2"
)

// Client is the subset of the backend the pipeline needs.
type Client interface {
	CreateProperty(ctx context.Context, payload any) (api.Created, error)
	UploadPropertyImage(ctx context.Context, propertyID string, image model.Upload) error
}

// Result describes a created property.
type Result struct {
	PropertyID string   `json:"property_id"`
	Uploaded   int      `json:"uploaded"`
	Warnings   []string `json:"warnings,omitempty"`
}

// Pipeline validates a payload, creates the property and then uploads its
// images.
type Pipeline struct {
	client Client
	logger *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger overrides the logger used for upload warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewPipeline returns a pipeline on top of client.
func NewPipeline(client Client, opts ...Option) *Pipeline {
	p := &Pipeline{client: client}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Submit sends payload. It fails only when validation or the create call
// fails; image upload failures are logged and returned as warnings.
func (p *Pipeline) Submit(ctx context.Context, payload Payload) (Result, error) {
	if check := validation.ValidatePayload(payload.Body); !check.Valid {
		return Result{}, &InvalidPayloadError{Issues: check.Issues}
	}

	created, err := p.client.CreateProperty(ctx, payload.Body)
	if err != nil {
		return Result{}, goerr.Wrap(err, "failed to create property", goerr.V(UPIKey, payload.Body["upi"]))
	}

	result := Result{PropertyID: created.IDString()}
	logger := p.log(ctx).With("property_id", result.PropertyID)
	if result.PropertyID == "" {
		if len(payload.Images) > 0 {
			result.Warnings = append(result.Warnings, "Property created without an id; images were not uploaded.")
		}
		return result, nil
	}

	for _, image := range payload.Images {
		if err := p.client.UploadPropertyImage(ctx, result.PropertyID, image); err != nil {
			logger.Warn("failed to upload image", "file", image.Name, "error", err)
			result.Warnings = append(result.Warnings, fmt.Sprintf("Failed to upload image %s: %s", image.Name, ErrorMessage(err)))
			continue
		}
		result.Uploaded++
	}
	if payload.Model3D != nil {
		logger.Warn("3D model not uploaded, backend has no endpoint for it", "file", payload.Model3D.Name)
		result.Warnings = append(result.Warnings, fmt.Sprintf("3D model %s was not uploaded.", payload.Model3D.Name))
	}

	logger.Info("property created", "images", result.Uploaded, "warnings", len(result.Warnings))
	return result, nil
}

func (p *Pipeline) log(ctx context.Context) *slog.Logger {
	if p.logger != nil {
		return p.logger
	}
	return logging.From(ctx)
}
