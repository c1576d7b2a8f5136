package safeland

import (
	"context"
	"io/fs"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/vanilla"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// Form pairs a category with the sub-category whose fields are rendered.
type Form = render.Form

// RenderOptions describes per-request values, errors and lock state that
// renderers use without mutating the schema.
type RenderOptions = render.Options

// Report is the outcome of an offline values check.
type Report = intake.Report

// NewStore returns a taxonomy store primed with the built-in schema.
func NewStore(options ...taxonomy.Option) *taxonomy.Store {
	return taxonomy.NewStore(options...)
}

// NewMachine starts an intake session over store.
func NewMachine(store intake.Taxonomy, verifier intake.Verifier, submitter intake.Submitter, options ...intake.Option) *intake.Machine {
	return intake.New(store, verifier, submitter, options...)
}

// NewRegistry returns a renderer registry holding the HTML renderer. Callers
// may register their own renderers alongside it.
func NewRegistry() (*render.Registry, error) {
	html, err := vanilla.New()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build renderer")
	}
	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	return registry, nil
}

// Generate renders the named sub-category form with the renderer registered
// under rendererName.
func Generate(ctx context.Context, registry *render.Registry, store intake.Taxonomy, rendererName, category, subCategory string, opts RenderOptions) ([]byte, error) {
	cat, sub, err := store.Snapshot().Lookup(category, subCategory)
	if err != nil {
		return nil, err
	}
	renderer, err := registry.Get(rendererName)
	if err != nil {
		return nil, err
	}
	return renderer.Render(ctx, Form{Category: cat, SubCategory: sub}, opts)
}

// GenerateHTML renders the named sub-category form with the vanilla
// renderer. It is the simplest entry point for callers that just want HTML.
func GenerateHTML(ctx context.Context, store intake.Taxonomy, category, subCategory string, opts RenderOptions) ([]byte, error) {
	registry, err := NewRegistry()
	if err != nil {
		return nil, err
	}
	return Generate(ctx, registry, store, vanilla.Name, category, subCategory, opts)
}

// Check validates values against a sub-category without a session.
func Check(store intake.Taxonomy, category, subCategory string, values model.Values) (Report, error) {
	cat, sub, err := store.Snapshot().Lookup(category, subCategory)
	if err != nil {
		return Report{}, err
	}
	return intake.Check(cat, sub, values), nil
}

// EmbeddedTemplates exposes the built-in page layout so callers can reuse or
// extend it without importing the renderer package directly.
func EmbeddedTemplates() fs.FS {
	return vanilla.TemplatesFS()
}

// AssetsFS exposes the stylesheet served under /assets/.
//
// Typical mount:
//
//	mux.Handle("/assets/",
//	  http.StripPrefix("/assets/",
//	    http.FileServerFS(safeland.AssetsFS()),
//	  ),
//	)
func AssetsFS() fs.FS {
	return vanilla.AssetsFS()
}
