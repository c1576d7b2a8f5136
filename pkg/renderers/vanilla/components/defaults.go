package components

import (
	"bytes"
	"html"
	"strconv"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
)

// NewDefaultRegistry returns a registry populated with the built-in control
// components.
func NewDefaultRegistry() *Registry {
	registry := New()
	registerDefaults(registry)
	return registry
}

func registerDefaults(registry *Registry) {
	registry.MustRegister(NameText, Descriptor{Renderer: textRenderer})
	registry.MustRegister(NameNumber, Descriptor{Renderer: numberRenderer})
	registry.MustRegister(NameSelect, Descriptor{Renderer: selectRenderer})
	registry.MustRegister(NameCheckbox, Descriptor{Renderer: checkboxRenderer})
	registry.MustRegister(NameRadio, Descriptor{Renderer: radioRenderer, OwnsChrome: true})
	registry.MustRegister(NameMultiSelect, Descriptor{Renderer: multiSelectRenderer, OwnsChrome: true})
	registry.MustRegister(NameDivider, Descriptor{Renderer: dividerRenderer, OwnsChrome: true})
}

// ControlID is the element id of a field's input.
func ControlID(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return "sl-" + trimmed
}

// LabelID is the element id of a field's label or legend.
func LabelID(name string) string {
	controlID := ControlID(name)
	if controlID == "" {
		return ""
	}
	return controlID + "-label"
}

func textRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	var builder strings.Builder
	builder.WriteString(`<input type="text" class="safeland-input"`)
	writeCommonAttributes(&builder, ctrl)
	writeAttr(&builder, "value", ctrl.Value)
	builder.WriteString(`>`)
	buf.WriteString(builder.String())
	return nil
}

func numberRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	var builder strings.Builder
	builder.WriteString(`<input type="number" class="safeland-input" inputmode="decimal" step="any" min="0"`)
	if ctrl.Max > 0 {
		writeAttr(&builder, "max", strconv.FormatFloat(ctrl.Max, 'f', -1, 64))
	}
	writeCommonAttributes(&builder, ctrl)
	writeAttr(&builder, "value", ctrl.Value)
	builder.WriteString(`>`)
	buf.WriteString(builder.String())
	return nil
}

func selectRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	var builder strings.Builder
	builder.WriteString(`<select class="safeland-select"`)
	writeCommonAttributes(&builder, ctrl)
	builder.WriteString(`>`)
	builder.WriteString(`<option value="">Select...</option>`)
	for _, choice := range ctrl.Choices {
		builder.WriteString(`<option`)
		writeAttr(&builder, "value", choice.Value)
		if choice.Selected {
			builder.WriteString(` selected`)
		}
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(choice.Value))
		builder.WriteString(`</option>`)
	}
	builder.WriteString(`</select>`)
	buf.WriteString(builder.String())
	return nil
}

func checkboxRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	var builder strings.Builder
	builder.WriteString(`<input type="checkbox" class="safeland-checkbox" value="true"`)
	writeCommonAttributes(&builder, ctrl)
	if ctrl.Checked {
		builder.WriteString(` checked`)
	}
	builder.WriteString(`>`)
	buf.WriteString(builder.String())
	return nil
}

func radioRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	return optionGroup(buf, ctrl, "radio")
}

func multiSelectRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	return optionGroup(buf, ctrl, "checkbox")
}

func optionGroup(buf *bytes.Buffer, ctrl render.Control, inputType string) error {
	var builder strings.Builder
	builder.WriteString(`<fieldset class="safeland-options"`)
	writeAttr(&builder, "id", ControlID(ctrl.Name))
	writeAttr(&builder, "aria-labelledby", LabelID(ctrl.Name))
	if ctrl.Disabled {
		builder.WriteString(` disabled`)
	}
	builder.WriteString(`>`)

	builder.WriteString(`<legend class="safeland-label"`)
	writeAttr(&builder, "id", LabelID(ctrl.Name))
	builder.WriteString(`>`)
	builder.WriteString(html.EscapeString(ctrl.Label))
	if ctrl.Required {
		builder.WriteString(`<span class="safeland-required" aria-hidden="true">*</span>`)
	}
	builder.WriteString(`</legend>`)

	for idx, choice := range ctrl.Choices {
		optionID := ControlID(ctrl.Name) + "-" + strconv.Itoa(idx)
		builder.WriteString(`<label class="safeland-option"`)
		writeAttr(&builder, "for", optionID)
		builder.WriteString(`><input`)
		writeAttr(&builder, "type", inputType)
		writeAttr(&builder, "id", optionID)
		writeAttr(&builder, "name", ctrl.Name)
		writeAttr(&builder, "value", choice.Value)
		if choice.Selected {
			builder.WriteString(` checked`)
		}
		if ctrl.Required && inputType == "radio" {
			builder.WriteString(` required`)
		}
		builder.WriteString(`>`)
		builder.WriteString(html.EscapeString(choice.Value))
		builder.WriteString(`</label>`)
	}
	builder.WriteString(`</fieldset>`)
	buf.WriteString(builder.String())
	return nil
}

func dividerRenderer(buf *bytes.Buffer, ctrl render.Control) error {
	var builder strings.Builder
	builder.WriteString(`<h2 class="safeland-section"`)
	writeAttr(&builder, "id", ControlID(ctrl.Name))
	builder.WriteString(`>`)
	builder.WriteString(html.EscapeString(ctrl.Label))
	builder.WriteString(`</h2>`)
	buf.WriteString(builder.String())
	return nil
}

func writeCommonAttributes(builder *strings.Builder, ctrl render.Control) {
	writeAttr(builder, "id", ControlID(ctrl.Name))
	writeAttr(builder, "name", ctrl.Name)
	if ctrl.Required {
		builder.WriteString(` required aria-required="true"`)
	}
	if ctrl.Disabled {
		builder.WriteString(` disabled`)
	}
	if len(ctrl.Errors) > 0 {
		builder.WriteString(` aria-invalid="true"`)
		writeAttr(builder, "aria-describedby", ControlID(ctrl.Name)+"-errors")
	}
}

func writeAttr(builder *strings.Builder, name, value string) {
	if value == "" && name != "value" {
		return
	}
	builder.WriteByte(' ')
	builder.WriteString(name)
	builder.WriteString(`="`)
	builder.WriteString(html.EscapeString(value))
	builder.WriteString(`"`)
}
