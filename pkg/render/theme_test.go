package render_test

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	theme "github.com/goliatone/go-theme"
	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
)

func TestThemesSelectDefaults(t *testing.T) {
	themes, err := render.DefaultThemes()
	gt.NoError(t, err).Required()
	gt.Value(t, themes.Provider()).NotNil()
	gt.Value(t, themes.Variants("")).Equal([]string{render.VariantDark, render.VariantLight})

	selection, err := themes.Select("", "")
	gt.NoError(t, err).Required()
	gt.Value(t, selection.Theme).Equal(render.ThemeName)
	gt.Value(t, selection.Variant).Equal(render.VariantLight)

	_, err = themes.Select("", "sepia")
	gt.Error(t, err).Is(render.ErrVariantNotFound)
	_, err = themes.Select("acme", "")
	gt.Error(t, err).Is(render.ErrThemeNotFound)
}

func TestThemeConfigMergesVariant(t *testing.T) {
	themes, err := render.DefaultThemes()
	gt.NoError(t, err).Required()
	selection, err := themes.Select(render.ThemeName, render.VariantDark)
	gt.NoError(t, err).Required()

	cfg := render.ThemeConfig(selection)
	gt.Value(t, cfg.Variant).Equal(render.VariantDark)
	gt.Value(t, cfg.Tokens["sl-bg"]).Equal("#111827")
	gt.Value(t, cfg.Tokens["sl-accent"]).Equal("#0f766e")
	gt.Value(t, cfg.CSSVars["--sl-bg"]).Equal("#111827")
	gt.Value(t, cfg.AssetURL("stylesheet")).Equal("/assets/safeland.css")
	gt.Value(t, cfg.AssetURL("script")).Equal("")
	gt.Value(t, render.ThemeConfig(nil) == nil).Equal(true)
}

func TestThemesCustomManifest(t *testing.T) {
	themes, err := render.NewThemes(&theme.Manifest{
		Name:    "ministry",
		Version: "1.0.0",
		Tokens:  map[string]string{"sl-accent": "#1d4ed8"},
		Assets: theme.Assets{
			Prefix: "/static/ministry/",
			Files:  map[string]string{"stylesheet": "base.css"},
		},
		Variants: map[string]theme.Variant{
			"contrast": {
				Tokens: map[string]string{"sl-fg": "#000000"},
				Assets: theme.Assets{Files: map[string]string{"stylesheet": "contrast.css"}},
			},
		},
	})
	gt.NoError(t, err).Required()

	selection, err := themes.Select("", "")
	gt.NoError(t, err).Required()
	gt.Value(t, selection.Variant).Equal("contrast")

	cfg := render.ThemeConfig(selection)
	want := map[string]string{"--sl-accent": "#1d4ed8", "--sl-fg": "#000000"}
	if diff := cmp.Diff(want, cfg.CSSVars); diff != "" {
		t.Fatalf("css vars mismatch (-want +got):\n%s", diff)
	}
	gt.Value(t, cfg.AssetURL("stylesheet")).Equal("/static/ministry/contrast.css")
}

func TestCSSVarsStyle(t *testing.T) {
	gt.Value(t, render.CSSVarsStyle(nil)).Equal("")
	gt.Value(t, render.CSSVarsStyle(map[string]string{"--b": "2", "--a": "1"})).Equal("--a: 1; --b: 2;")
}
