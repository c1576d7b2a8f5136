package render

import (
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/visibility"
)

// ControlKind is the visual control chosen for a field type.
type ControlKind string

const (
	ControlDivider     ControlKind = "divider"
	ControlText        ControlKind = "text"
	ControlNumber      ControlKind = "number"
	ControlSelect      ControlKind = "select"
	ControlRadio       ControlKind = "radio"
	ControlCheckbox    ControlKind = "checkbox"
	ControlMultiSelect ControlKind = "multiselect"
)

func kindOf(t taxonomy.FieldType) ControlKind {
	switch t {
	case taxonomy.FieldSectionHeader:
		return ControlDivider
	case taxonomy.FieldNumber:
		return ControlNumber
	case taxonomy.FieldSelect:
		return ControlSelect
	case taxonomy.FieldRadio:
		return ControlRadio
	case taxonomy.FieldCheckbox:
		return ControlCheckbox
	case taxonomy.FieldMultiSelect:
		return ControlMultiSelect
	default:
		return ControlText
	}
}

// Choice is one option of a select, radio or multiselect control.
type Choice struct {
	Value    string
	Selected bool
}

// Control is the renderer-neutral description of one visible field.
type Control struct {
	Kind     ControlKind
	Name     string
	Label    string
	Width    taxonomy.Width
	Required bool
	Disabled bool
	// Value is the textual value for text, number, select and radio controls.
	Value string
	// Checked is set for checkbox controls.
	Checked bool
	// Choices lists options with the current selection flagged.
	Choices []Choice
	// Max caps built-up area inputs; zero means no cap.
	Max    float64
	Errors []string
}

// Interactive reports whether the control accepts input.
func (c Control) Interactive() bool {
	return c.Kind != ControlDivider
}

// RenderField maps a field and the current values to a control. It reports
// false when the field's condition is unmet, in which case the field is
// neither drawn nor validated.
func RenderField(field taxonomy.FormField, values model.Values, disabled bool, opts Options) (Control, bool) {
	if !visibility.Visible(field, values) {
		return Control{}, false
	}

	ctrl := Control{
		Kind:     kindOf(field.Type),
		Name:     field.Name,
		Label:    field.Label,
		Width:    field.Width,
		Required: field.Required,
	}
	if ctrl.Width == "" {
		ctrl.Width = taxonomy.WidthFull
	}
	if ctrl.Kind == ControlDivider {
		return ctrl, true
	}

	ctrl.Disabled = disabled
	ctrl.Errors = opts.Errors[field.Name]
	value := values[field.Name]

	switch ctrl.Kind {
	case ControlCheckbox:
		ctrl.Checked, _ = value.(bool)
	case ControlMultiSelect:
		selected := make(map[string]struct{})
		if list, ok := value.([]string); ok {
			for _, v := range list {
				selected[v] = struct{}{}
			}
		}
		ctrl.Choices = choices(field.Options, func(option string) bool {
			_, ok := selected[option]
			return ok
		})
	case ControlSelect, ControlRadio:
		current := model.Text(value)
		ctrl.Value = current
		ctrl.Choices = choices(field.Options, func(option string) bool {
			return option == current
		})
	case ControlNumber:
		ctrl.Value = model.Text(value)
		if IsBuiltUp(field) && opts.PlotSize > 0 {
			ctrl.Max = opts.PlotSize
		}
	default:
		ctrl.Value = model.Text(value)
	}
	return ctrl, true
}

func choices(options []string, selected func(string) bool) []Choice {
	out := make([]Choice, 0, len(options))
	for _, option := range options {
		out = append(out, Choice{Value: option, Selected: selected(option)})
	}
	return out
}

// RenderForm returns the controls for every visible field of form in schema
// order.
func RenderForm(form Form, opts Options) []Control {
	fields := form.Fields()
	out := make([]Control, 0, len(fields))
	for _, field := range fields {
		ctrl, ok := RenderField(field, opts.Values, opts.Disabled, opts)
		if !ok {
			continue
		}
		out = append(out, ctrl)
	}
	return out
}
