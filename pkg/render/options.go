package render

import "github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"

// Options describe per-request data that renderers use to draw controls
// without mutating the schema.
type Options struct {
	// Values pre-populates controls and drives conditional visibility.
	Values model.Values
	// Errors surfaces field-scoped messages keyed by field name.
	Errors map[string][]string
	// FormErrors are messages not tied to a field.
	FormErrors []string
	// Warnings are non-blocking notices such as a land-use mismatch.
	Warnings []string
	// Disabled locks every interactive control, e.g. until the UPI is
	// verified. Section headers ignore it.
	Disabled bool
	// PlotSize caps built-up area inputs. Zero means unknown.
	PlotSize float64
	// Action and Hidden configure the submission target of HTML forms.
	Action string
	Hidden []HiddenField
	// Theme and Language are read once at startup and passed down.
	Theme    string
	Language string
	// Translator localizes chrome strings and field labels for Language.
	// Nil keeps the schema labels.
	Translator Translator
}
