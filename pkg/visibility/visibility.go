package visibility

import (
	"reflect"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// Evaluator determines whether a field is shown for the current values.
type Evaluator interface {
	Eval(field taxonomy.FormField, values model.Values) (bool, error)
}

// EvaluatorFunc adapts a function into an Evaluator.
type EvaluatorFunc func(field taxonomy.FormField, values model.Values) (bool, error)

// Eval delegates to the underlying function.
func (fn EvaluatorFunc) Eval(field taxonomy.FormField, values model.Values) (bool, error) {
	return fn(field, values)
}

// Conditional shows a field when it has no condition, or when the dependent
// value strictly equals the expected one.
var Conditional Evaluator = EvaluatorFunc(func(field taxonomy.FormField, values model.Values) (bool, error) {
	return Visible(field, values), nil
})

// Visible applies the conditional rule without an evaluator indirection.
func Visible(field taxonomy.FormField, values model.Values) bool {
	cond := field.Conditional
	if cond == nil {
		return true
	}
	return StrictEqual(values[cond.Field], cond.Value)
}

// StrictEqual compares two values without coercion: "1" never equals 1 and
// lists never equal each other. Numeric kinds compare by value.
func StrictEqual(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if fa, ok := numeric(a); ok {
		fb, ok := numeric(b)
		return ok && fa == fb
	}
	ta, tb := reflect.TypeOf(a), reflect.TypeOf(b)
	if ta != tb || !ta.Comparable() {
		return false
	}
	return a == b
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint64:
		return float64(n), true
	}
	return 0, false
}

// Filter returns the fields evaluator keeps, in schema order. A nil evaluator
// uses Conditional.
func Filter(fields []taxonomy.FormField, values model.Values, evaluator Evaluator) ([]taxonomy.FormField, error) {
	if len(fields) == 0 {
		return nil, nil
	}
	if evaluator == nil {
		evaluator = Conditional
	}

	result := make([]taxonomy.FormField, 0, len(fields))
	for _, field := range fields {
		ok, err := evaluator.Eval(field, values)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}
		result = append(result, field)
	}
	return result, nil
}

// MissingRequired lists the visible required fields without a value.
func MissingRequired(fields []taxonomy.FormField, values model.Values) []string {
	var missing []string
	for _, field := range fields {
		if !field.Required || !Visible(field, values) {
			continue
		}
		if model.IsEmpty(values[field.Name]) {
			missing = append(missing, field.Name)
		}
	}
	return missing
}
