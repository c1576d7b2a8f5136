package cli

import (
	"context"
	"errors"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/tui"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

var (
	ErrSessionAborted = goerr.New("intake session aborted")
	ErrNoCategories   = goerr.New("taxonomy has no categories")
)

// session walks one property through the intake machine on a terminal.
type session struct {
	machine    *intake.Machine
	taxonomy   intake.Taxonomy
	driver     tui.PromptDriver
	renderer   *tui.Renderer
	language   string
	translator render.Translator
	readFile   func(string) ([]byte, error)
}

func newSession(machine *intake.Machine, tax intake.Taxonomy, driver tui.PromptDriver, language string, translator render.Translator) *session {
	return &session{
		machine:    machine,
		taxonomy:   tax,
		driver:     driver,
		renderer:   tui.New(tui.WithPromptDriver(driver), tui.WithLogger(logging.Default())),
		language:   language,
		translator: translator,
		readFile:   os.ReadFile,
	}
}

func (s *session) run(ctx context.Context) (submission.Result, error) {
	if err := s.chooseForm(ctx); err != nil {
		return submission.Result{}, err
	}
	if err := s.verify(ctx); err != nil {
		return submission.Result{}, err
	}
	if err := s.details(ctx); err != nil {
		return submission.Result{}, err
	}
	if err := s.media(ctx); err != nil {
		return submission.Result{}, err
	}
	return s.submit(ctx)
}

func (s *session) chooseForm(ctx context.Context) error {
	snap := s.taxonomy.Snapshot()
	if len(snap.Categories) == 0 {
		return ErrNoCategories
	}
	labels := make([]string, len(snap.Categories))
	for i, cat := range snap.Categories {
		labels[i] = cat.Label
	}
	idx, err := s.driver.Select(ctx, tui.SelectConfig{Message: "Property category", Options: labels})
	if err != nil {
		return err
	}
	cat := snap.Categories[idx]
	if err := s.machine.SelectCategory(cat.Name); err != nil {
		return err
	}
	if len(cat.SubCategories) == 0 {
		return goerr.Wrap(taxonomy.ErrSubCategoryNotFound, "category has no forms", goerr.V(taxonomy.CategoryKey, cat.Name))
	}

	labels = make([]string, len(cat.SubCategories))
	for i, sub := range cat.SubCategories {
		labels[i] = sub.Label
	}
	idx, err = s.driver.Select(ctx, tui.SelectConfig{Message: "Property type", Options: labels})
	if err != nil {
		return err
	}
	return s.machine.SelectSubCategory(cat.SubCategories[idx].Name)
}

// verify asks for the identity fields until the parcel is allowed or the
// user gives up.
func (s *session) verify(ctx context.Context) error {
	for {
		if err := s.collectFields(ctx, intake.IdentityFields); err != nil {
			return err
		}

		outcome, err := s.machine.VerifyUPI(ctx)
		switch {
		case err != nil:
			s.info(ctx, "! "+parcel.Message(err))
		case !outcome.Allowed:
			s.info(ctx, "! "+outcome.Message)
		default:
			s.info(ctx, "i "+outcome.Message)
			if outcome.Warning == "" {
				return nil
			}
			ok, err := s.driver.Confirm(ctx, tui.ConfirmConfig{Message: outcome.Warning + " Continue anyway?"})
			if err != nil {
				return err
			}
			if ok {
				return s.machine.ConfirmWarning()
			}
		}

		again, err := s.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Try another UPI?", Default: true})
		if err != nil {
			return err
		}
		if !again {
			return ErrSessionAborted
		}
	}
}

// details fills step 1 until every visible required field has a value.
func (s *session) details(ctx context.Context) error {
	for {
		form, ok := s.machine.Form()
		if !ok {
			return intake.ErrNoSubCategory
		}
		opts := s.options()
		values, err := s.renderer.Collect(ctx, form, opts)
		if err != nil {
			return err
		}
		if err := s.store(ctx, form.Fields(), values); err != nil {
			return err
		}

		err = s.machine.Advance()
		var stepErr *intake.StepError
		if !errors.As(err, &stepErr) {
			return err
		}
		s.info(ctx, "! Missing: "+strings.Join(stepErr.Missing, ", "))
	}
}

// media fills step 2: the scalar media fields, the images and the optional
// 3D model.
func (s *session) media(ctx context.Context) error {
	form := render.Form{SubCategory: taxonomy.SubCategory{Name: "media", Label: "Media", Fields: intake.MediaFields}}
	values, err := s.renderer.Collect(ctx, form, s.options())
	if err != nil {
		return err
	}
	if err := s.store(ctx, intake.MediaFields, values); err != nil {
		return err
	}

	for {
		raw, err := s.driver.Input(ctx, tui.InputConfig{
			Message: "Property images *",
			Help:    "Comma separated file paths",
		})
		if err != nil {
			return err
		}
		uploads, err := s.load(splitPaths(raw))
		if err == nil && len(uploads) == 0 {
			err = goerr.New("at least one image is required")
		}
		if err == nil {
			err = s.machine.AttachImages(uploads...)
		}
		if err == nil {
			break
		}
		s.info(ctx, "! "+err.Error())
	}

	raw, err := s.driver.Input(ctx, tui.InputConfig{Message: "3D model file", Help: "Optional file path"})
	if err != nil {
		return err
	}
	if path := strings.TrimSpace(raw); path != "" {
		uploads, err := s.load([]string{path})
		if err == nil {
			err = s.machine.AttachModel(uploads[0])
		}
		if err != nil {
			s.info(ctx, "! 3D model skipped: "+err.Error())
		}
	}
	return nil
}

func (s *session) submit(ctx context.Context) (submission.Result, error) {
	for {
		result, err := s.machine.Submit(ctx)
		if err == nil {
			s.info(ctx, "i "+s.machine.Status().Message)
			for _, warning := range result.Warnings {
				s.info(ctx, "! "+warning)
			}
			return result, nil
		}
		s.info(ctx, "! "+submission.FailureMessage(err))

		var stepErr *intake.StepError
		if errors.As(err, &stepErr) {
			return submission.Result{}, err
		}
		again, promptErr := s.driver.Confirm(ctx, tui.ConfirmConfig{Message: "Retry submission?", Default: true})
		if promptErr != nil {
			return submission.Result{}, promptErr
		}
		if !again {
			return submission.Result{}, err
		}
	}
}

// collectFields prompts fields one by one outside the locked form.
func (s *session) collectFields(ctx context.Context, fields []taxonomy.FormField) error {
	current := s.machine.Values()
	for _, field := range fields {
		label := render.Localize(s.translator, s.language, render.FieldLabelKey(field.Name), field.Label, nil)
		if field.Required {
			label += " *"
		}
		for {
			raw, err := s.driver.Input(ctx, tui.InputConfig{Message: label, Default: current.Text(field.Name)})
			if err != nil {
				return err
			}
			if _, err := s.machine.Set(field.Name, strings.TrimSpace(raw)); err != nil {
				s.info(ctx, "! "+err.Error())
				continue
			}
			break
		}
	}
	return nil
}

// store copies collected answers for fields into the machine.
func (s *session) store(ctx context.Context, fields []taxonomy.FormField, values model.Values) error {
	for _, field := range fields {
		value, ok := values[field.Name]
		if !ok || field.Type == taxonomy.FieldSectionHeader {
			continue
		}
		change, err := s.machine.Set(field.Name, value)
		if err != nil {
			return goerr.Wrap(err, "failed to store answer", goerr.V(intake.FieldKey, field.Name))
		}
		if change.Warning != "" {
			s.info(ctx, "i "+change.Warning)
		}
	}
	return nil
}

func (s *session) options() render.Options {
	opts := s.machine.RenderOptions()
	opts.Language = s.language
	opts.Translator = s.translator
	return opts
}

func (s *session) load(paths []string) ([]model.Upload, error) {
	return loadUploads(s.readFile, paths)
}

func loadUploads(readFile func(string) ([]byte, error), paths []string) ([]model.Upload, error) {
	uploads := make([]model.Upload, 0, len(paths))
	for _, path := range paths {
		data, err := readFile(path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
		}
		uploads = append(uploads, model.Upload{
			Name:        filepath.Base(path),
			ContentType: mime.TypeByExtension(strings.ToLower(filepath.Ext(path))),
			Data:        data,
		})
	}
	return uploads, nil
}

func (s *session) info(ctx context.Context, msg string) {
	_ = s.driver.Info(ctx, msg)
}

func splitPaths(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
