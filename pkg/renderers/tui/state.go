package tui

import (
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/visibility"
)

// State tracks collected values and server-provided errors keyed by field
// name.
type State struct {
	values model.Values
	errors map[string][]string
}

// NewState seeds the state with prefilled values and errors.
func NewState(prefill model.Values, errs map[string][]string) *State {
	values := prefill.Clone()
	if values == nil {
		values = make(model.Values)
	}
	return &State{
		values: values,
		errors: cloneErrors(errs),
	}
}

// Values returns the current value map (mutable).
func (s *State) Values() model.Values {
	if s == nil {
		return nil
	}
	return s.values
}

// ErrorsFor returns the errors attached to a field.
func (s *State) ErrorsFor(name string) []string {
	if s == nil || len(s.errors) == 0 {
		return nil
	}
	return s.errors[name]
}

// Set stores value and clears the field's server errors. Empty answers
// remove the key.
func (s *State) Set(name string, value any) {
	delete(s.errors, name)
	if model.IsEmpty(value) {
		delete(s.values, name)
		return
	}
	s.values[name] = value
}

// Prune drops values of fields whose condition is unmet so hidden answers do
// not leak into the output.
func (s *State) Prune(fields []taxonomy.FormField) {
	for _, field := range fields {
		if !visibility.Visible(field, s.values) {
			delete(s.values, field.Name)
		}
	}
}

func cloneErrors(src map[string][]string) map[string][]string {
	out := make(map[string][]string, len(src))
	for k, v := range src {
		out[k] = append([]string(nil), v...)
	}
	return out
}
