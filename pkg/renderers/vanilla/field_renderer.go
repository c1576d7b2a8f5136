package vanilla

import (
	"bytes"
	"html"
	"slices"
	"strings"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/vanilla/components"
)

type componentRenderer struct {
	registry       *components.Registry
	requiredLabel  string
	usedComponents map[string]struct{}
}

func newComponentRenderer(registry *components.Registry, requiredLabel string) *componentRenderer {
	if registry == nil {
		registry = components.NewDefaultRegistry()
	}
	return &componentRenderer{
		registry:       registry,
		requiredLabel:  requiredLabel,
		usedComponents: make(map[string]struct{}),
	}
}

func (r *componentRenderer) render(ctrl render.Control) (string, error) {
	var control bytes.Buffer
	descriptor, err := r.registry.Render(&control, ctrl)
	if err != nil {
		return "", err
	}
	r.usedComponents[descriptor.Name] = struct{}{}
	return buildFieldMarkup(ctrl, descriptor.OwnsChrome, control.String(), r.requiredLabel), nil
}

func (r *componentRenderer) stylesheets() []string {
	if len(r.usedComponents) == 0 {
		return nil
	}
	names := make([]string, 0, len(r.usedComponents))
	for name := range r.usedComponents {
		names = append(names, name)
	}
	slices.Sort(names)
	return r.registry.Stylesheets(names)
}

func buildFieldMarkup(ctrl render.Control, ownsChrome bool, control, requiredLabel string) string {
	var builder strings.Builder
	builder.Grow(len(control) + 256)

	builder.WriteString(`<div class="`)
	builder.WriteString(string(ClassField))
	builder.WriteString(` safeland-width-`)
	builder.WriteString(html.EscapeString(string(ctrl.Width)))
	if ctrl.Kind == render.ControlDivider {
		builder.WriteString(` safeland-field-divider`)
	}
	if len(ctrl.Errors) > 0 {
		builder.WriteString(` safeland-field-invalid`)
	}
	builder.WriteString(`" data-field="`)
	builder.WriteString(html.EscapeString(ctrl.Name))
	builder.WriteString(`" data-kind="`)
	builder.WriteString(html.EscapeString(string(ctrl.Kind)))
	builder.WriteString(`">`)

	if !ownsChrome && strings.TrimSpace(ctrl.Label) != "" {
		builder.WriteString(`<label class="safeland-label" id="`)
		builder.WriteString(html.EscapeString(components.LabelID(ctrl.Name)))
		builder.WriteString(`" for="`)
		builder.WriteString(html.EscapeString(components.ControlID(ctrl.Name)))
		builder.WriteString(`">`)
		builder.WriteString(html.EscapeString(ctrl.Label))
		if ctrl.Required {
			builder.WriteString(`<span class="safeland-required" title="`)
			builder.WriteString(html.EscapeString(requiredLabel))
			builder.WriteString(`">*</span>`)
		}
		builder.WriteString(`</label>`)
	}

	builder.WriteString(control)

	if len(ctrl.Errors) > 0 {
		builder.WriteString(`<ul class="safeland-field-errors" id="`)
		builder.WriteString(html.EscapeString(components.ControlID(ctrl.Name)))
		builder.WriteString(`-errors" role="alert">`)
		for _, msg := range ctrl.Errors {
			builder.WriteString(`<li>`)
			builder.WriteString(html.EscapeString(msg))
			builder.WriteString(`</li>`)
		}
		builder.WriteString(`</ul>`)
	}

	builder.WriteString(`</div>`)
	return builder.String()
}
