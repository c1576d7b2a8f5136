package intake

import (
	"errors"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/validation"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/visibility"
)

// Report is the outcome of checking filled-in values against a form without
// a session.
type Report struct {
	Valid   bool                     `json:"valid"`
	Missing []string                 `json:"missing"`
	Issues  []validation.SchemaIssue `json:"issues"`
	// Values are the inputs after the value policy, with hidden fields
	// removed.
	Values model.Values `json:"values"`
}

// Check runs the step 1 completeness check, the value policy and the
// property schema over values. The schema stage only runs when both ids are
// numeric backend ids; the built-in taxonomy has none.
func Check(cat taxonomy.Category, sub taxonomy.SubCategory, values model.Values) Report {
	fields := make([]taxonomy.FormField, 0, len(IdentityFields)+len(sub.Fields))
	fields = append(fields, IdentityFields...)
	fields = append(fields, sub.Fields...)

	report := Report{Missing: []string{}, Issues: []validation.SchemaIssue{}, Values: model.Values{}}
	for _, field := range fields {
		if field.Type == taxonomy.FieldSectionHeader || !visibility.Visible(field, values) {
			continue
		}
		raw, ok := values[field.Name]
		if !ok {
			continue
		}
		change, err := render.Apply(field, raw, 0)
		if err != nil {
			report.Issues = append(report.Issues, validation.SchemaIssue{
				Field:   field.Name,
				Message: policyMessage(err),
			})
			continue
		}
		if !model.IsEmpty(change.Value) {
			report.Values[field.Name] = change.Value
		}
	}
	report.Missing = append(report.Missing, visibility.MissingRequired(fields, report.Values)...)

	payload, err := submission.BuildPayload(cat, sub, report.Values, nil)
	switch {
	case errors.Is(err, submission.ErrNonNumericID):
	case err != nil:
		report.Issues = append(report.Issues, validation.SchemaIssue{Message: submission.ErrorMessage(err)})
	case len(report.Missing) == 0:
		report.Issues = append(report.Issues, validation.ValidatePayload(payload.Body).Issues...)
	}

	report.Valid = len(report.Missing) == 0 && len(report.Issues) == 0
	return report
}

func policyMessage(err error) string {
	for _, sentinel := range []error{render.ErrNotANumber, render.ErrInvalidOption, render.ErrUnsupportedType, render.ErrNotInteractive} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
