package validation

import (
	_ "embed"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/m-mizutani/goerr/v2"
)

//go:embed schema/property.json
var propertySchemaJSON []byte

var ErrInvalidSchema = goerr.New("invalid property schema")

// SchemaIssue represents a validation error with optional location metadata.
type SchemaIssue struct {
	Path    string `json:"path,omitempty"`
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
}

// SchemaValidationResult captures the outcome of a payload check.
type SchemaValidationResult struct {
	Valid  bool          `json:"valid"`
	Issues []SchemaIssue `json:"issues,omitempty"`
}

var (
	propertySchemaOnce sync.Once
	propertySchema     *openapi3.Schema
	propertySchemaErr  error
)

// PropertySchema returns the schema create-property payloads must satisfy.
func PropertySchema() (*openapi3.Schema, error) {
	propertySchemaOnce.Do(func() {
		var s openapi3.Schema
		if err := json.Unmarshal(propertySchemaJSON, &s); err != nil {
			propertySchemaErr = goerr.Wrap(ErrInvalidSchema, "failed to decode property schema", goerr.V("cause", err.Error()))
			return
		}
		propertySchema = &s
	})
	return propertySchema, propertySchemaErr
}

// ValidatePayload checks a create-property payload. The payload is
// round-tripped through JSON first so typed values are seen the way the
// backend will see them.
func ValidatePayload(payload any) SchemaValidationResult {
	schema, err := PropertySchema()
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: err.Error()}}}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: "payload is not serialisable: " + err.Error()}}}
	}
	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return SchemaValidationResult{Issues: []SchemaIssue{{Message: err.Error()}}}
	}

	if err := schema.VisitJSON(doc, openapi3.MultiErrors()); err != nil {
		issues := collectIssues(err)
		sort.SliceStable(issues, func(i, j int) bool {
			return issues[i].Path < issues[j].Path
		})
		return SchemaValidationResult{Issues: issues}
	}
	return SchemaValidationResult{Valid: true}
}

func collectIssues(err error) []SchemaIssue {
	var multi openapi3.MultiError
	if errors.As(err, &multi) {
		var out []SchemaIssue
		for _, inner := range multi {
			out = append(out, collectIssues(inner)...)
		}
		return out
	}

	var schemaErr *openapi3.SchemaError
	if errors.As(err, &schemaErr) {
		pointer := schemaErr.JSONPointer()
		issue := SchemaIssue{Message: strings.TrimSpace(schemaErr.Reason)}
		if len(pointer) > 0 {
			issue.Path = "/" + strings.Join(escapePointer(pointer), "/")
			issue.Field = fieldPathFromPointer(issue.Path)
		}
		if issue.Message == "" {
			issue.Message = strings.TrimSpace(schemaErr.Error())
		}
		return []SchemaIssue{issue}
	}

	return []SchemaIssue{{Message: strings.TrimSpace(err.Error())}}
}

func escapePointer(segments []string) []string {
	out := make([]string, len(segments))
	for i, segment := range segments {
		segment = strings.ReplaceAll(segment, "~", "~0")
		out[i] = strings.ReplaceAll(segment, "/", "~1")
	}
	return out
}

// fieldPathFromPointer turns "/details/amenities/0" into
// "details.amenities.0".
func fieldPathFromPointer(pointer string) string {
	trimmed := strings.TrimPrefix(strings.TrimSpace(pointer), "#")
	trimmed = strings.TrimPrefix(trimmed, "/")
	if trimmed == "" {
		return ""
	}

	parts := strings.Split(trimmed, "/")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		segment := strings.ReplaceAll(part, "~1", "/")
		segment = strings.ReplaceAll(segment, "~0", "~")
		if segment == "" {
			continue
		}
		out = append(out, segment)
	}
	return strings.Join(out, ".")
}
