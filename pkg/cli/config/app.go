package config

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

const (
	ThemeLight = render.VariantLight
	ThemeDark  = render.VariantDark
)

// File is the optional TOML configuration file.
type File struct {
	// Taxonomy is a YAML taxonomy document replacing the built-in one.
	// Relative paths resolve against the config file.
	Taxonomy string `toml:"taxonomy"`
	Theme    string `toml:"theme"`
	Language string `toml:"language"`
	// Labels maps a locale to translated labels, e.g. [labels.rw].
	Labels  map[string]map[string]string `toml:"labels"`
	Backend BackendFile                  `toml:"backend"`
}

// BackendFile holds backend defaults. The password is only read from flags
// or the environment.
type BackendFile struct {
	BaseURL  string `toml:"base_url"`
	Username string `toml:"username"`
	Timeout  string `toml:"timeout"`
}

// Validate checks if the File is valid
func (f *File) Validate() error {
	if f.Theme != "" {
		if err := checkTheme(f.Theme); err != nil {
			return err
		}
	}
	for locale, labels := range f.Labels {
		if strings.TrimSpace(locale) == "" {
			return goerr.New("labels locale is empty")
		}
		for key, value := range labels {
			if strings.TrimSpace(value) == "" {
				return goerr.New("label is empty", goerr.V("locale", locale), goerr.V("key", key))
			}
		}
	}
	return nil
}

// LoadFile loads the configuration from a TOML file
func LoadFile(path string) (*File, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", path))
	}

	var file File
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V("path", path))
	}
	if err := file.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V("path", path))
	}
	if file.Taxonomy != "" && !filepath.IsAbs(file.Taxonomy) {
		file.Taxonomy = filepath.Join(filepath.Dir(path), file.Taxonomy)
	}
	return &file, nil
}

// LoadDotEnv reads KEY=value pairs from path into the environment. Variables
// already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return goerr.Wrap(err, "failed to load env file", goerr.V("path", path))
	}
	return nil
}

// App holds CLI flags for rendering and the taxonomy source
type App struct {
	configPath string
	taxonomy   string
	theme      string
	language   string

	file File
}

func (x *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "TOML configuration file",
			Sources:     cli.EnvVars("SAFELAND_CONFIG"),
			Destination: &x.configPath,
		},
		&cli.StringFlag{
			Name:        "taxonomy",
			Usage:       "YAML taxonomy document replacing the built-in schema",
			Sources:     cli.EnvVars("SAFELAND_TAXONOMY"),
			Destination: &x.taxonomy,
		},
		&cli.StringFlag{
			Name:        "theme",
			Usage:       "Form theme variant (light, dark)",
			Category:    "Appearance",
			Sources:     cli.EnvVars("SAFELAND_THEME"),
			Destination: &x.theme,
		},
		&cli.StringFlag{
			Name:        "language",
			Usage:       "Form language, e.g. en or rw",
			Category:    "Appearance",
			Sources:     cli.EnvVars("SAFELAND_LANGUAGE"),
			Destination: &x.language,
		},
	}
}

// Configure reads the config file, if any, and fills backend settings left
// empty on the command line.
func (x *App) Configure(backend *Backend) error {
	if x.configPath != "" {
		file, err := LoadFile(x.configPath)
		if err != nil {
			return err
		}
		x.file = *file
		if backend != nil {
			backend.applyFile(file.Backend)
		}
	}
	return x.Validate()
}

func (x *App) Validate() error {
	return checkTheme(x.Theme())
}

// checkTheme accepts the variants of the built-in theme.
func checkTheme(variant string) error {
	themes, err := render.DefaultThemes()
	if err != nil {
		return err
	}
	if _, err := themes.Select(render.ThemeName, variant); err != nil {
		return goerr.Wrap(err, "unknown theme", goerr.V("theme", variant))
	}
	return nil
}

// Theme is the flag value, then the file value, then light.
func (x *App) Theme() string {
	return firstNonEmpty(x.theme, x.file.Theme, ThemeLight)
}

// Language is the flag value, then the file value, then en.
func (x *App) Language() string {
	return firstNonEmpty(x.language, x.file.Language, "en")
}

// Categories returns the static taxonomy: the --taxonomy document, the file's
// taxonomy, or the built-in one.
func (x *App) Categories() ([]taxonomy.Category, error) {
	path := firstNonEmpty(x.taxonomy, x.file.Taxonomy)
	if path == "" {
		return taxonomy.Default(), nil
	}
	cats, err := taxonomy.LoadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to load taxonomy override")
	}
	return cats, nil
}

// Translator is the English catalog merged with the file's labels.
func (x *App) Translator() render.Catalog {
	extra := make(render.Catalog, len(x.file.Labels))
	for locale, labels := range x.file.Labels {
		extra[locale] = labels
	}
	return render.DefaultCatalog().Merge(extra)
}

func (x App) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("config", x.configPath),
		slog.String("taxonomy", firstNonEmpty(x.taxonomy, x.file.Taxonomy, "built-in")),
		slog.String("theme", x.Theme()),
		slog.String("language", x.Language()),
		slog.Int("label_locales", len(x.file.Labels)),
	)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
