package render

import (
	"sort"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
)

// HiddenField is a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string
	Value string
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: model.Text(value),
	}
}

// CSRFToken carries a CSRF token under the caller's input name.
func CSRFToken(name, token string) HiddenField {
	return Hidden(name, token)
}

// SessionField carries the intake session id so a posted form can be matched
// to its server-side state.
func SessionField(sessionID string) HiddenField {
	return Hidden("session_id", sessionID)
}

// IdentityFields carries the identity values preserved across sub-category
// changes (UPI and owner) so they survive a form round trip.
func IdentityFields(values model.Values) []HiddenField {
	var out []HiddenField
	for _, name := range []string{"upi", "owner_id", "owner_name"} {
		if values.Has(name) {
			out = append(out, Hidden(name, values[name]))
		}
	}
	return out
}

// MergeHiddenFields returns base with fields applied. Empty names are
// ignored; later fields win.
func MergeHiddenFields(base map[string]string, fields ...HiddenField) map[string]string {
	if len(base) == 0 && len(fields) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(fields))
	for key, value := range base {
		if trimmed := strings.TrimSpace(key); trimmed != "" {
			out[trimmed] = value
		}
	}
	for _, field := range fields {
		name := strings.TrimSpace(field.Name)
		if name == "" {
			continue
		}
		out[name] = field.Value
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// SortedHiddenFields orders hidden fields by name for deterministic output.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}
	names := make([]string, 0, len(fields))
	for name := range fields {
		if strings.TrimSpace(name) != "" {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	result := make([]HiddenField, 0, len(names))
	for _, name := range names {
		result = append(result, HiddenField{Name: strings.TrimSpace(name), Value: fields[name]})
	}
	return result
}
