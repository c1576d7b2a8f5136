package config_test

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/m-mizutani/gt"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

const taxonomyDoc = `
categories:
  - name: residential
    label: Residential
    subcategories:
      - name: garage
        label: Garage
        fields:
          - { name: built_area, label: "Built-up Area (sqm)", type: number, required: true }
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	gt.NoError(t, os.WriteFile(path, []byte(content), 0o600)).Required()
	return path
}

func TestLoadFile(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantErr bool
	}{
		{
			name: "full configuration",
			content: `
taxonomy = "taxonomy.yaml"
theme = "dark"
language = "rw"

[labels.rw]
"form.submit" = "Bika umutungo"

[backend]
base_url = "https://api.example.rw"
username = "agent@example.rw"
timeout = "5s"
`,
		},
		{
			name:    "empty file",
			content: ``,
		},
		{
			name:    "unknown theme",
			content: `theme = "neon"`,
			wantErr: true,
		},
		{
			name: "empty label",
			content: `
[labels.rw]
"form.submit" = " "
`,
			wantErr: true,
		},
		{
			name:    "malformed TOML",
			content: `theme = `,
			wantErr: true,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), "safeland.toml", tc.content)
			file, err := config.LoadFile(path)
			if tc.wantErr {
				gt.Error(t, err)
				return
			}
			gt.NoError(t, err).Required()
			gt.Value(t, file).NotNil()
		})
	}
}

func TestAppResolvesFileSettings(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "taxonomy.yaml", taxonomyDoc)
	path := writeFile(t, dir, "safeland.toml", `
taxonomy = "taxonomy.yaml"
theme = "dark"
language = "rw"

[labels.RW]
"form.submit" = "Bika umutungo"

[backend]
base_url = "https://api.example.rw"
username = "agent@example.rw"
timeout = "5s"
`)

	app := config.NewAppForTest(path, "", "", "")
	backend := config.NewBackendForTest("", "", "secret", 0)
	gt.NoError(t, app.Configure(backend)).Required()

	gt.Value(t, app.Theme()).Equal(config.ThemeDark)
	gt.Value(t, app.Language()).Equal("rw")
	gt.Bool(t, backend.Enabled()).True()
	gt.NoError(t, backend.Validate())

	cats, err := app.Categories()
	gt.NoError(t, err).Required()
	gt.Array(t, cats).Length(1)
	gt.Value(t, cats[0].SubCategories[0].Name).Equal("garage")

	msg, err := app.Translator().Translate("rw", render.KeySubmit)
	gt.NoError(t, err).Required()
	gt.Value(t, msg).Equal("Bika umutungo")
}

func TestAppFlagsWinOverFile(t *testing.T) {
	path := writeFile(t, t.TempDir(), "safeland.toml", `theme = "dark"`)

	app := config.NewAppForTest(path, "", "light", "fr")
	gt.NoError(t, app.Configure(nil)).Required()
	gt.Value(t, app.Theme()).Equal(config.ThemeLight)
	gt.Value(t, app.Language()).Equal("fr")

	cats, err := app.Categories()
	gt.NoError(t, err).Required()
	gt.Array(t, cats).Length(len(taxonomy.Default()))
}

func TestAppRejectsUnknownTheme(t *testing.T) {
	app := config.NewAppForTest("", "", "sepia", "")
	gt.Error(t, app.Configure(nil)).Is(render.ErrVariantNotFound)
}

func TestBackendValidate(t *testing.T) {
	tests := []struct {
		name    string
		backend *config.Backend
		wantErr error
	}{
		{name: "not configured", backend: config.NewBackendForTest("", "", "", 0), wantErr: config.ErrBackendNotConfigured},
		{name: "relative url", backend: config.NewBackendForTest("api.example.rw", "", "", 0)},
		{name: "password without username", backend: config.NewBackendForTest("https://api.example.rw", "", "pw", 0)},
		{name: "negative timeout", backend: config.NewBackendForTest("https://api.example.rw", "", "", -time.Second)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.backend.Validate()
			if tc.wantErr != nil {
				gt.Error(t, err).Is(tc.wantErr)
				return
			}
			gt.Error(t, err)
		})
	}

	client, err := config.NewBackendForTest("https://api.example.rw", "agent", "pw", 0).Configure()
	gt.NoError(t, err).Required()
	gt.Value(t, client).NotNil()
}

func TestBackendLogValueRedactsPassword(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	logger.Info("backend", "backend", config.NewBackendForTest("https://api.example.rw", "agent", "hunter2", 0))

	gt.String(t, buf.String()).Contains(`"password.len":7`)
	gt.Bool(t, bytes.Contains(buf.Bytes(), []byte("hunter2"))).False()
}

func TestLoggerValidate(t *testing.T) {
	gt.NoError(t, config.NewLoggerForTest("debug", "json", "stderr").Validate())
	gt.Error(t, config.NewLoggerForTest("loud", "json", "stderr").Validate())
	gt.Error(t, config.NewLoggerForTest("info", "xml", "stderr").Validate())
}

func TestLoadDotEnv(t *testing.T) {
	gt.NoError(t, config.LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")))

	path := writeFile(t, t.TempDir(), ".env", "SAFELAND_TEST_DOTENV=loaded\n")
	t.Setenv("SAFELAND_TEST_DOTENV", "")
	os.Unsetenv("SAFELAND_TEST_DOTENV")
	gt.NoError(t, config.LoadDotEnv(path)).Required()
	gt.Value(t, os.Getenv("SAFELAND_TEST_DOTENV")).Equal("loaded")
}
