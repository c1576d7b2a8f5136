package template_test

import (
	"embed"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render/template"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/testsupport"
)

//go:embed testdata/templates/*.html
var embeddedTemplates embed.FS

func newEngine(t *testing.T, opts ...template.Option) *template.Engine {
	t.Helper()
	sub, err := fs.Sub(embeddedTemplates, "testdata/templates")
	gt.NoError(t, err).Required()
	engine, err := template.New(append([]template.Option{template.WithFS(sub)}, opts...)...)
	gt.NoError(t, err).Required()
	return engine
}

func TestEngineRenderTemplate(t *testing.T) {
	engine := newEngine(t)

	result, written := testsupport.CaptureTemplateOutput(t, func(w io.Writer) (string, error) {
		return engine.RenderTemplate("hello", map[string]any{"name": "Aline"}, w)
	})

	want := testsupport.MustReadGoldenString(t, filepath.Join("testdata", "hello.golden"))
	gt.Value(t, result).Equal(want)
	gt.Value(t, written).Equal(want)
}

func TestEngineGlobalContext(t *testing.T) {
	engine := newEngine(t, template.WithGlobalData(map[string]any{
		"settings": map[string]any{"env": "staging"},
	}))
	type parcelView struct {
		UPI string `json:"upi"`
	}
	gt.NoError(t, engine.GlobalContext(map[string]any{
		"parcel": parcelView{UPI: "  1/02/03/04/5678 "},
	})).Required()

	result, err := engine.RenderTemplate("use-global.html", nil)
	gt.NoError(t, err).Required()
	gt.Value(t, result).Equal(testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-global.golden")))
}

func TestEngineRegisterFilter(t *testing.T) {
	engine := newEngine(t)
	shout := func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	}
	if err := engine.RegisterFilter("shout", shout); err != nil {
		// Filters are process-wide; a second run in the same binary sees it.
		gt.Error(t, err).Is(template.ErrFilterExists)
	}

	result, err := engine.RenderTemplate("use-filter", map[string]any{"district": "Gasabo"})
	gt.NoError(t, err).Required()
	gt.Value(t, result).Equal(testsupport.MustReadGoldenString(t, filepath.Join("testdata", "use-filter.golden")))

	gt.Error(t, engine.RegisterFilter(" ", shout)).Is(template.ErrFilterInvalid)
}

func TestEngineRenderString(t *testing.T) {
	engine := newEngine(t)
	result, err := engine.RenderString(`{% for u in uses %}{{ u }};{% endfor %}`, map[string]any{
		"uses": []string{"Residential", "Commercial"},
	})
	gt.NoError(t, err).Required()
	gt.Value(t, result).Equal("Residential;Commercial;")
}

func TestEngineErrors(t *testing.T) {
	_, err := template.New()
	gt.Error(t, err).Is(template.ErrNoTemplateSource)

	engine := newEngine(t)
	_, err = engine.RenderTemplate("missing", nil)
	gt.Value(t, err).NotNil()
}
