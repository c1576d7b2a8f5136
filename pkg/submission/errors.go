package submission

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/validation"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNonNumericID   = goerr.New("id is not a backend id")
	ErrInvalidPayload = goerr.New("payload failed validation")
)

const (
	CategoryKey    = "category"
	SubCategoryKey = "subcategory"
	UPIKey         = "upi"
)

// FailurePrefix starts every user-facing create failure.
const FailurePrefix = "Failed to create property: "

// InvalidPayloadError lists the schema issues of a rejected payload.
type InvalidPayloadError struct {
	Issues []validation.SchemaIssue
}

func (e *InvalidPayloadError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, issue := range e.Issues {
		if issue.Field != "" {
			parts = append(parts, issue.Field+": "+issue.Message)
			continue
		}
		parts = append(parts, issue.Message)
	}
	return "payload failed validation: " + strings.Join(parts, "; ")
}

func (e *InvalidPayloadError) Is(target error) bool {
	return target == ErrInvalidPayload
}

// ErrorMessage extracts a human message from a failed call. A string detail
// is used as-is, a non_serializable_fields list is summarised, any other
// detail is rendered as JSON and anything else falls back to the error text.
func ErrorMessage(err error) string {
	if err == nil {
		return ""
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch detail := apiErr.DetailValue().(type) {
		case nil:
		case string:
			return detail
		case map[string]any:
			if fields, ok := detail["non_serializable_fields"].([]any); ok {
				return "Non-serializable fields: " + describeFields(fields)
			}
			return apiErr.DetailText()
		default:
			return apiErr.DetailText()
		}
	}

	var invalid *InvalidPayloadError
	if errors.As(err, &invalid) {
		return invalid.Error()
	}
	return err.Error()
}

// FailureMessage is the status line shown after a failed submit.
func FailureMessage(err error) string {
	return FailurePrefix + ErrorMessage(err)
}

func describeFields(fields []any) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		entry, _ := f.(map[string]any)
		parts = append(parts, fmt.Sprintf("%s(%s)", model.Text(entry["key"]), model.Text(entry["type"])))
	}
	return strings.Join(parts, ", ")
}

// FieldErrors extracts per-path messages from a failed call so they can be
// mapped onto form fields. Validation detail lists ({"loc": [...], "msg": ...})
// are keyed by their dotted location and detail objects by their keys. Schema
// issues of a rejected payload are keyed by field. Anything else yields nil.
func FieldErrors(err error) map[string][]string {
	if err == nil {
		return nil
	}

	out := make(map[string][]string)
	var invalid *InvalidPayloadError
	if errors.As(err, &invalid) {
		for _, issue := range invalid.Issues {
			key := issue.Field
			if key == "" {
				key = issue.Path
			}
			out[key] = append(out[key], issue.Message)
		}
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) {
		switch detail := apiErr.DetailValue().(type) {
		case []any:
			for _, item := range detail {
				entry, ok := item.(map[string]any)
				if !ok {
					continue
				}
				key := locationKey(entry["loc"])
				out[key] = append(out[key], model.Text(entry["msg"]))
			}
		case map[string]any:
			for key, value := range detail {
				if key == "non_serializable_fields" {
					continue
				}
				out[key] = append(out[key], detailMessages(value)...)
			}
		}
	}

	if len(out) == 0 {
		return nil
	}
	return out
}

func locationKey(loc any) string {
	parts, ok := loc.([]any)
	if !ok {
		return model.Text(loc)
	}
	segments := make([]string, 0, len(parts))
	for _, part := range parts {
		segments = append(segments, model.Text(part))
	}
	return strings.Join(segments, ".")
}

func detailMessages(value any) []string {
	switch v := value.(type) {
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			out = append(out, model.Text(item))
		}
		return out
	default:
		return []string{model.Text(v)}
	}
}
