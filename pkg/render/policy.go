package render

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/m-mizutani/goerr/v2"
)

var (
	ErrNotANumber      = goerr.New("value is not a number")
	ErrInvalidOption   = goerr.New("value is not one of the field options")
	ErrNotInteractive  = goerr.New("field does not accept input")
	ErrUnsupportedType = goerr.New("value type not supported by field")
)

const (
	FieldKey = "field"
	ValueKey = "value"
)

var builtUpPattern = regexp.MustCompile(`built[\s\-_]?up|builtup|built`)

// IsBuiltUp reports whether field captures a built-up area, which may not
// exceed the plot size.
func IsBuiltUp(field taxonomy.FormField) bool {
	if field.Type != taxonomy.FieldNumber {
		return false
	}
	return builtUpPattern.MatchString(strings.ToLower(field.Name)) ||
		strings.Contains(strings.ToLower(field.Label), "built")
}

// Change is the outcome of applying raw input to a field.
type Change struct {
	Name  string
	Value any
	// Clamped is set when a built-up value was capped to the plot size.
	Clamped bool
	// Warning is a transient user-facing notice.
	Warning string
	// FieldError is an inline message to show next to the control.
	FieldError string
}

// Apply validates raw input for field and returns the value to store. The
// value replaces the previous one atomically; a rejected input leaves the
// previous value in place.
func Apply(field taxonomy.FormField, raw any, plotSize float64) (Change, error) {
	change := Change{Name: field.Name}
	fail := func(sentinel error) (Change, error) {
		return Change{}, goerr.Wrap(sentinel, "invalid input", goerr.V(FieldKey, field.Name), goerr.V(ValueKey, raw))
	}

	switch field.Type {
	case taxonomy.FieldSectionHeader:
		return fail(ErrNotInteractive)

	case taxonomy.FieldSelect, taxonomy.FieldRadio:
		if raw == nil {
			change.Value = ""
			return change, nil
		}
		s, ok := raw.(string)
		if !ok {
			return fail(ErrUnsupportedType)
		}
		if s != "" && !field.HasOption(s) {
			return fail(ErrInvalidOption)
		}
		change.Value = s
		return change, nil

	case taxonomy.FieldMultiSelect:
		picked, ok := stringList(raw)
		if !ok {
			return fail(ErrUnsupportedType)
		}
		set := make(map[string]struct{}, len(picked))
		for _, p := range picked {
			if !field.HasOption(p) {
				return fail(ErrInvalidOption)
			}
			set[p] = struct{}{}
		}
		ordered := make([]string, 0, len(set))
		for _, option := range field.Options {
			if _, ok := set[option]; ok {
				ordered = append(ordered, option)
			}
		}
		change.Value = ordered
		return change, nil

	case taxonomy.FieldCheckbox:
		switch v := raw.(type) {
		case nil:
			change.Value = false
		case bool:
			change.Value = v
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				if strings.EqualFold(strings.TrimSpace(v), "on") {
					b = true
				} else {
					return fail(ErrUnsupportedType)
				}
			}
			change.Value = b
		default:
			return fail(ErrUnsupportedType)
		}
		return change, nil

	case taxonomy.FieldNumber:
		if model.IsEmpty(raw) {
			change.Value = ""
			return change, nil
		}
		if s, ok := raw.(string); ok && strings.TrimSpace(s) == "" {
			change.Value = ""
			return change, nil
		}
		n, ok := model.Number(raw)
		if !ok {
			return fail(ErrNotANumber)
		}
		change.Value = n
		if IsBuiltUp(field) && plotSize > 0 && n > plotSize {
			limit := strconv.FormatFloat(plotSize, 'f', -1, 64)
			change.Value = plotSize
			change.Clamped = true
			change.Warning = fmt.Sprintf("Value cannot exceed plot size (%s sqm).", limit)
			change.FieldError = "Cannot exceed " + limit
		}
		return change, nil

	default:
		switch v := raw.(type) {
		case nil:
			change.Value = ""
		case string:
			change.Value = v
		default:
			change.Value = model.Text(v)
		}
		return change, nil
	}
}

func stringList(raw any) ([]string, bool) {
	switch v := raw.(type) {
	case nil:
		return []string{}, true
	case []string:
		return v, true
	case string:
		if v == "" {
			return []string{}, true
		}
		return []string{v}, true
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}
