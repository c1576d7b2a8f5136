package render

import (
	"sort"
	"strings"

	theme "github.com/goliatone/go-theme"
	"github.com/m-mizutani/goerr/v2"
)

const (
	ThemeName    = "safeland"
	VariantLight = "light"
	VariantDark  = "dark"

	// ThemeKey and VariantKey tag theme lookup errors.
	ThemeKey   = "theme"
	VariantKey = "variant"
)

var (
	ErrThemeNotFound   = goerr.New("theme not found")
	ErrVariantNotFound = goerr.New("theme variant not found")
)

// Manifest is the built-in theme. Tokens become --<token> CSS variables on
// the page; the light variant keeps the base tokens.
func Manifest() *theme.Manifest {
	return &theme.Manifest{
		Name:    ThemeName,
		Version: "1.0.0",
		Tokens: map[string]string{
			"sl-fg":      "#1f2937",
			"sl-muted":   "#6b7280",
			"sl-border":  "#d1d5db",
			"sl-accent":  "#0f766e",
			"sl-error":   "#b91c1c",
			"sl-warning": "#b45309",
			"sl-bg":      "#ffffff",
		},
		Assets: theme.Assets{
			Prefix: "/assets",
			Files:  map[string]string{"stylesheet": "safeland.css"},
		},
		Variants: map[string]theme.Variant{
			VariantLight: {},
			VariantDark: {
				Tokens: map[string]string{
					"sl-fg":     "#f3f4f6",
					"sl-muted":  "#9ca3af",
					"sl-border": "#374151",
					"sl-bg":     "#111827",
				},
			},
		},
	}
}

// Themes selects a theme and variant from registered manifests. The first
// manifest is the default theme; its default variant is light when it has
// one.
type Themes struct {
	provider       theme.ThemeProvider
	manifests      map[string]*theme.Manifest
	defaultTheme   string
	defaultVariant string
}

var _ theme.ThemeSelector = (*Themes)(nil)

// NewThemes registers manifests with a go-theme registry.
func NewThemes(manifests ...*theme.Manifest) (*Themes, error) {
	registry := theme.NewRegistry()
	t := &Themes{manifests: make(map[string]*theme.Manifest, len(manifests))}
	for _, manifest := range manifests {
		if manifest == nil {
			continue
		}
		if err := registry.Register(manifest); err != nil {
			return nil, goerr.Wrap(err, "failed to register theme", goerr.V(ThemeKey, manifest.Name))
		}
		t.manifests[manifest.Name] = manifest
		if t.defaultTheme == "" {
			t.defaultTheme = manifest.Name
			t.defaultVariant = defaultVariant(manifest)
		}
	}
	t.provider = registry
	return t, nil
}

// DefaultThemes holds only the built-in manifest.
func DefaultThemes() (*Themes, error) {
	return NewThemes(Manifest())
}

// Provider exposes the underlying registry to go-theme consumers.
func (t *Themes) Provider() theme.ThemeProvider {
	return t.provider
}

// Select resolves name and variant. Empty values fall back to the defaults.
func (t *Themes) Select(name, variant string, _ ...theme.QueryOption) (*theme.Selection, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		name = t.defaultTheme
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil, goerr.Wrap(ErrThemeNotFound, "select failed", goerr.V(ThemeKey, name))
	}

	variant = strings.TrimSpace(variant)
	if variant == "" {
		variant = defaultVariant(manifest)
	}
	if _, ok := manifest.Variants[variant]; !ok && variant != "" {
		return nil, goerr.Wrap(ErrVariantNotFound, "select failed",
			goerr.V(ThemeKey, name), goerr.V(VariantKey, variant), goerr.V("available", variantNames(manifest)))
	}
	return &theme.Selection{Theme: name, Variant: variant, Manifest: manifest}, nil
}

// Variants lists the variant names of the named theme.
func (t *Themes) Variants(name string) []string {
	if strings.TrimSpace(name) == "" {
		name = t.defaultTheme
	}
	manifest, ok := t.manifests[name]
	if !ok {
		return nil
	}
	return variantNames(manifest)
}

// ThemeConfig flattens a selection into renderer settings. Variant tokens,
// templates and asset files override the base ones.
func ThemeConfig(selection *theme.Selection) *theme.RendererConfig {
	if selection == nil || selection.Manifest == nil {
		return nil
	}
	manifest := selection.Manifest
	variant := manifest.Variants[selection.Variant]

	tokens := mergeStrings(manifest.Tokens, variant.Tokens)
	vars := make(map[string]string, len(tokens))
	for key, value := range tokens {
		vars["--"+key] = value
	}

	prefix := manifest.Assets.Prefix
	if variant.Assets.Prefix != "" {
		prefix = variant.Assets.Prefix
	}
	files := mergeStrings(manifest.Assets.Files, variant.Assets.Files)

	return &theme.RendererConfig{
		Theme:    selection.Theme,
		Variant:  selection.Variant,
		Partials: mergeStrings(manifest.Templates, variant.Templates),
		Tokens:   tokens,
		CSSVars:  vars,
		AssetURL: func(key string) string {
			file, ok := files[key]
			if !ok {
				return ""
			}
			return strings.TrimSuffix(prefix, "/") + "/" + strings.TrimPrefix(file, "/")
		},
	}
}

// CSSVarsStyle renders CSS variables as an inline style, ordered by name.
func CSSVarsStyle(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	for i, name := range names {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(name + ": " + vars[name] + ";")
	}
	return b.String()
}

func defaultVariant(manifest *theme.Manifest) string {
	if _, ok := manifest.Variants[VariantLight]; ok {
		return VariantLight
	}
	names := variantNames(manifest)
	if len(names) == 0 {
		return ""
	}
	return names[0]
}

func variantNames(manifest *theme.Manifest) []string {
	names := make([]string, 0, len(manifest.Variants))
	for name := range manifest.Variants {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func mergeStrings(base, override map[string]string) map[string]string {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}
	out := make(map[string]string, len(base)+len(override))
	for key, value := range base {
		out[key] = value
	}
	for key, value := range override {
		out[key] = value
	}
	return out
}
