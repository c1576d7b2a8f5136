package tui

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"slices"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/visibility"
)

const Name = "tui"

// noneOption leads the choices of optional select and radio fields.
const noneOption = "(none)"

// Renderer implements render.Renderer for terminal-driven sessions. Fields
// are prompted in schema order; conditions are re-evaluated against the
// answers given so far.
type Renderer struct {
	driver            PromptDriver
	outputFormat      OutputFormat
	submitTransformer SubmitTransformer
	theme             Theme
	logger            *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		theme:        Theme{SectionPrefix: "== ", InfoPrefix: "i ", ErrorPrefix: "! "},
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(r)
	}
	if r.driver == nil {
		r.driver = NewSurveyDriver(nil)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible field and serializes the answers.
// Options.Values pre-fill defaults; a disabled form is not prompted.
func (r *Renderer) Render(ctx context.Context, form render.Form, opts render.Options) ([]byte, error) {
	values, err := r.Collect(ctx, form, opts)
	if err != nil {
		return nil, err
	}
	if r.submitTransformer != nil {
		values, err = r.submitTransformer(values)
		if err != nil {
			return nil, goerr.Wrap(err, "submit transformer failed")
		}
	}
	return r.serialize(form.Fields(), values)
}

// Collect runs the prompts and returns the answers merged over opts.Values.
func (r *Renderer) Collect(ctx context.Context, form render.Form, opts render.Options) (model.Values, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if r.driver == nil {
		return nil, ErrNoDriver
	}
	if opts.Disabled {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+render.Localize(opts.Translator, opts.Language, render.KeyLocked, "Verify the UPI to unlock the form.", nil))
		return nil, goerr.Wrap(ErrFormLocked, "cannot collect values", goerr.V("sub_category", form.SubCategory.Name))
	}

	state := NewState(opts.Values, opts.Errors)
	for _, msg := range opts.FormErrors {
		_ = r.driver.Info(ctx, r.theme.ErrorPrefix+msg)
	}
	for _, msg := range opts.Warnings {
		_ = r.driver.Info(ctx, r.theme.InfoPrefix+msg)
	}

	p := prompter{Renderer: r, state: state, opts: opts}
	for _, field := range form.Fields() {
		if !visibility.Visible(field, state.Values()) {
			continue
		}
		if err := p.field(ctx, field); err != nil {
			return nil, err
		}
	}
	state.Prune(form.Fields())

	r.log(ctx).Debug("terminal form collected",
		slog.String("sub_category", form.SubCategory.Name),
		slog.Int("values", len(state.Values())),
	)
	return state.Values(), nil
}

type prompter struct {
	*Renderer
	state *State
	opts  render.Options
}

func (p prompter) label(field taxonomy.FormField) string {
	label := field.Label
	if label == "" {
		label = field.Name
	}
	label = render.Localize(p.opts.Translator, p.opts.Language, render.FieldLabelKey(field.Name), label, nil)
	if field.Required {
		label += " *"
	}
	return label
}

func (p prompter) field(ctx context.Context, field taxonomy.FormField) error {
	if field.Type == taxonomy.FieldSectionHeader {
		return p.driver.Info(ctx, p.theme.SectionPrefix+p.label(field))
	}
	for _, msg := range p.state.ErrorsFor(field.Name) {
		_ = p.driver.Info(ctx, p.theme.ErrorPrefix+field.Name+": "+msg)
	}

	for {
		raw, err := p.ask(ctx, field)
		if err != nil {
			return err
		}
		change, err := render.Apply(field, raw, p.opts.PlotSize)
		if err != nil {
			_ = p.driver.Info(ctx, fmt.Sprintf("%sInvalid %s: %s", p.theme.ErrorPrefix, field.Name, reason(err)))
			continue
		}
		if field.Required && model.IsEmpty(change.Value) {
			_ = p.driver.Info(ctx, p.theme.ErrorPrefix+p.label(field)+" is required")
			continue
		}
		if change.Warning != "" {
			_ = p.driver.Info(ctx, p.theme.InfoPrefix+change.Warning)
		}
		p.state.Set(field.Name, change.Value)
		return nil
	}
}

func (p prompter) ask(ctx context.Context, field taxonomy.FormField) (any, error) {
	current := p.state.Values()[field.Name]
	label := p.label(field)

	switch field.Type {
	case taxonomy.FieldCheckbox:
		return p.driver.Confirm(ctx, ConfirmConfig{Message: label, Default: model.Truthy(current)})

	case taxonomy.FieldSelect, taxonomy.FieldRadio:
		options := field.Options
		offset := 0
		if !field.Required {
			options = append([]string{noneOption}, field.Options...)
			offset = 1
		}
		def := indexOf(field.Options, model.Text(current))
		if def >= 0 {
			def += offset
		}
		idx, err := p.driver.Select(ctx, SelectConfig{
			Message:      label,
			Options:      options,
			DefaultIndex: def,
		})
		if err != nil {
			return nil, err
		}
		idx -= offset
		if idx < 0 || idx >= len(field.Options) {
			return "", nil
		}
		return field.Options[idx], nil

	case taxonomy.FieldMultiSelect:
		var defaults []int
		if picked, ok := current.([]string); ok {
			defaults = indicesOf(field.Options, picked)
		}
		indices, err := p.driver.MultiSelect(ctx, SelectConfig{
			Message:  label,
			Options:  field.Options,
			Defaults: defaults,
		})
		if err != nil {
			return nil, err
		}
		return optionsAt(field.Options, indices), nil

	default:
		help := ""
		if render.IsBuiltUp(field) && p.opts.PlotSize > 0 {
			help = fmt.Sprintf("At most %s sqm", model.Text(p.opts.PlotSize))
		}
		return p.driver.Input(ctx, InputConfig{
			Message: label,
			Default: model.Text(current),
			Help:    help,
		})
	}
}

func (r *Renderer) serialize(fields []taxonomy.FormField, values model.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return []byte(flattenForm(values)), nil
	case OutputFormatPrettyText:
		return []byte(prettyPrint(fields, values)), nil
	default:
		out, err := json.MarshalIndent(values, "", "  ")
		if err != nil {
			return nil, goerr.Wrap(err, "failed to encode values")
		}
		return out, nil
	}
}

func (r *Renderer) log(ctx context.Context) *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.From(ctx)
}

func flattenForm(values model.Values) string {
	form := url.Values{}
	for name, value := range values {
		if list, ok := value.([]string); ok {
			for _, item := range list {
				form.Add(name, item)
			}
			continue
		}
		form.Set(name, model.Text(value))
	}
	return form.Encode()
}

func prettyPrint(fields []taxonomy.FormField, values model.Values) string {
	var builder strings.Builder
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		seen[field.Name] = struct{}{}
		value, ok := values[field.Name]
		if !ok || field.Type == taxonomy.FieldSectionHeader {
			continue
		}
		label := field.Label
		if label == "" {
			label = field.Name
		}
		fmt.Fprintf(&builder, "%s: %s\n", label, model.Text(value))
	}

	var extra []string
	for name := range values {
		if _, ok := seen[name]; !ok {
			extra = append(extra, name)
		}
	}
	slices.Sort(extra)
	for _, name := range extra {
		fmt.Fprintf(&builder, "%s: %s\n", name, model.Text(values[name]))
	}
	return builder.String()
}

func reason(err error) string {
	for _, sentinel := range []error{render.ErrNotANumber, render.ErrInvalidOption, render.ErrUnsupportedType} {
		if errors.Is(err, sentinel) {
			return sentinel.Error()
		}
	}
	return err.Error()
}
