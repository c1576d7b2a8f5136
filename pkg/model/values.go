package model

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Values maps field names to their current value.
type Values map[string]any

// Clone returns a copy whose slices are not shared with v.
func (v Values) Clone() Values {
	if v == nil {
		return Values{}
	}
	out := make(Values, len(v))
	for key, value := range v {
		out[key] = cloneValue(value)
	}
	return out
}

func cloneValue(value any) any {
	switch typed := value.(type) {
	case []string:
		return append([]string(nil), typed...)
	case []Upload:
		return append([]Upload(nil), typed...)
	case []any:
		return append([]any(nil), typed...)
	default:
		return value
	}
}

// Text returns the textual form of the named value.
func (v Values) Text(name string) string {
	return Text(v[name])
}

// Number returns the named value as a float when it holds a number or a
// numeric string.
func (v Values) Number(name string) (float64, bool) {
	return Number(v[name])
}

// Has reports whether the named value is present and non-empty.
func (v Values) Has(name string) bool {
	return !IsEmpty(v[name])
}

// IsEmpty reports whether value counts as unanswered: nil, the empty string,
// or an empty list.
func IsEmpty(value any) bool {
	switch typed := value.(type) {
	case nil:
		return true
	case string:
		return typed == ""
	case []string:
		return len(typed) == 0
	case []Upload:
		return len(typed) == 0
	case []any:
		return len(typed) == 0
	case *Upload:
		return typed == nil
	}
	return false
}

// Text renders value the way a text control would display it.
func Text(value any) string {
	switch typed := value.(type) {
	case nil:
		return ""
	case string:
		return typed
	case float64:
		return strconv.FormatFloat(typed, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(typed), 'f', -1, 32)
	case int:
		return strconv.Itoa(typed)
	case int64:
		return strconv.FormatInt(typed, 10)
	case json.Number:
		return typed.String()
	case bool:
		return strconv.FormatBool(typed)
	case []string:
		return strings.Join(typed, ", ")
	case Upload:
		return typed.Name
	default:
		return fmt.Sprint(typed)
	}
}

// Number parses value as a float. Empty values, non-numeric strings, NaN
// and infinities report false.
func Number(value any) (float64, bool) {
	f, ok := number(value)
	if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

func number(value any) (float64, bool) {
	switch typed := value.(type) {
	case float64:
		return typed, true
	case float32:
		return float64(typed), true
	case int:
		return float64(typed), true
	case int64:
		return float64(typed), true
	case json.Number:
		f, err := typed.Float64()
		return f, err == nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, false
		}
		f, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// Truthy mirrors how optional payload values are collapsed to null: false,
// zero and empty values are absent.
func Truthy(value any) bool {
	if IsEmpty(value) {
		return false
	}
	switch typed := value.(type) {
	case bool:
		return typed
	case float64:
		return typed != 0
	case int:
		return typed != 0
	case int64:
		return typed != 0
	}
	return true
}
