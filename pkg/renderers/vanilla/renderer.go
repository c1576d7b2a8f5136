package vanilla

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	rendertemplate "github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render/template"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/vanilla/components"
)

const Name = "vanilla"

var ErrNoTemplates = goerr.New("vanilla renderer has no template renderer")

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	registry         *components.Registry
	themes           *render.Themes
	stylesheets      []string
	stylesheetsSet   bool
	inlineStyles     bool
	logger           *slog.Logger
}

// WithTemplatesFS supplies an alternate page layout bundle via fs.FS. The
// bundle must hold page.html at its root.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads the page layout from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithRegistry replaces the default component registry.
func WithRegistry(registry *components.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.registry = registry
		}
	}
}

// WithThemes replaces the built-in theme manifests. Options.Theme names the
// variant to render.
func WithThemes(themes *render.Themes) Option {
	return func(cfg *config) {
		if themes != nil {
			cfg.themes = themes
		}
	}
}

// WithStylesheets sets the stylesheet links emitted in the page head. The
// default links the theme's stylesheet asset.
func WithStylesheets(hrefs ...string) Option {
	return func(cfg *config) {
		cfg.stylesheets = append([]string(nil), hrefs...)
		cfg.stylesheetsSet = true
	}
}

// WithInlineStyles inlines the embedded stylesheet into the page head.
func WithInlineStyles(enabled bool) Option {
	return func(cfg *config) {
		cfg.inlineStyles = enabled
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(cfg *config) {
		cfg.logger = logger
	}
}

// Renderer draws a sub-category form as a standalone HTML page.
// Without configured stylesheets the page links the theme's stylesheet asset.
type Renderer struct {
	templates       rendertemplate.TemplateRenderer
	registry        *components.Registry
	themes          *render.Themes
	stylesheets     []string
	themeStylesheet bool
	inlineStyles    bool
	logger          *slog.Logger
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the vanilla renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{
		templateFS: TemplatesFS(),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.registry == nil {
		cfg.registry = components.NewDefaultRegistry()
	}
	if cfg.themes == nil {
		themes, err := render.DefaultThemes()
		if err != nil {
			return nil, goerr.Wrap(err, "failed to load themes")
		}
		cfg.themes = themes
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := rendertemplate.New(rendertemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to configure template renderer")
		}
		renderer = engine
	}

	return &Renderer{
		templates:       renderer,
		registry:        cfg.registry,
		themes:          cfg.themes,
		stylesheets:     cfg.stylesheets,
		themeStylesheet: !cfg.stylesheetsSet,
		inlineStyles:    cfg.inlineStyles,
		logger:          cfg.logger,
	}, nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

// Render draws every visible field of form. Hidden fields, warnings and
// form-level errors come from options.
func (r *Renderer) Render(ctx context.Context, form render.Form, options render.Options) ([]byte, error) {
	if r.templates == nil {
		return nil, ErrNoTemplates
	}

	selection, err := r.themes.Select("", options.Theme)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to resolve theme", goerr.V("sub_category", form.SubCategory.Name))
	}
	themeCfg := render.ThemeConfig(selection)

	tr, locale := options.Translator, options.Language
	label := func(key, fallback string) string {
		return render.Localize(tr, locale, key, fallback, nil)
	}

	controls := render.RenderForm(form, options)
	render.LocalizeControls(controls, tr, locale)

	fields := newComponentRenderer(r.registry, label(render.KeyRequired, "Required"))
	var body strings.Builder
	for _, ctrl := range controls {
		markup, err := fields.render(ctrl)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to render field", goerr.V("sub_category", form.SubCategory.Name))
		}
		body.WriteString(markup)
	}

	iconMarkup, iconName := categoryIcon(form.Category.Icon)
	stylesheets := append([]string(nil), r.stylesheets...)
	if r.themeStylesheet {
		if href := themeCfg.AssetURL("stylesheet"); href != "" {
			stylesheets = append(stylesheets, href)
		}
	}
	stylesheets = append(stylesheets, fields.stylesheets()...)
	inline := ""
	if r.inlineStyles {
		inline = defaultStylesheet()
	}

	hidden := make([]map[string]string, 0, len(options.Hidden))
	for _, field := range options.Hidden {
		if field.Name == "" {
			continue
		}
		hidden = append(hidden, map[string]string{"name": field.Name, "value": field.Value})
	}

	data := map[string]any{
		"title":         firstNonEmpty(form.SubCategory.Label, form.SubCategory.Name),
		"category":      firstNonEmpty(form.Category.Label, form.Category.Name),
		"icon":          iconMarkup,
		"icon_name":     iconName,
		"body":          body.String(),
		"form_errors":   options.FormErrors,
		"warnings":      options.Warnings,
		"hidden":        hidden,
		"action":        options.Action,
		"theme":         themeCfg.Variant,
		"theme_name":    themeCfg.Theme,
		"theme_style":   render.CSSVarsStyle(themeCfg.CSSVars),
		"language":      firstNonEmpty(locale, "en"),
		"stylesheets":   stylesheets,
		"inline_styles": inline,
		"disabled":      options.Disabled,
		"classes":       chromeClasses(),
		"labels": map[string]string{
			"submit":   label(render.KeySubmit, "Save property"),
			"locked":   label(render.KeyLocked, "Verify the UPI to unlock the form."),
			"errors":   label(render.KeyErrors, "Please fix the following"),
			"warnings": label(render.KeyWarnings, "Please review"),
		},
	}

	result, err := r.templates.RenderTemplate(PageTemplate, data)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to render page", goerr.V("sub_category", form.SubCategory.Name))
	}
	r.log(ctx).Debug("form rendered",
		slog.String("category", form.Category.Name),
		slog.String("sub_category", form.SubCategory.Name),
		slog.Int("fields", len(controls)),
	)
	return []byte(result), nil
}

func (r *Renderer) log(ctx context.Context) *slog.Logger {
	if r.logger != nil {
		return r.logger
	}
	return logging.From(ctx)
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
