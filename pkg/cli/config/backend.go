package config

import (
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
)

var ErrBackendNotConfigured = goerr.New("backend base URL is not configured")

const defaultBackendTimeout = 30 * time.Second

// Backend holds CLI flags for the property backend
type Backend struct {
	baseURL  string
	username string
	password string
	timeout  time.Duration
}

func (x *Backend) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "backend-url",
			Usage:       "Base URL of the property backend",
			Category:    "Backend",
			Sources:     cli.EnvVars("SAFELAND_BACKEND_URL"),
			Destination: &x.baseURL,
		},
		&cli.StringFlag{
			Name:        "backend-username",
			Usage:       "Account used to log in to the backend",
			Category:    "Backend",
			Sources:     cli.EnvVars("SAFELAND_BACKEND_USERNAME"),
			Destination: &x.username,
		},
		&cli.StringFlag{
			Name:        "backend-password",
			Usage:       "Password of the backend account",
			Category:    "Backend",
			Sources:     cli.EnvVars("SAFELAND_BACKEND_PASSWORD"),
			Destination: &x.password,
		},
		&cli.DurationFlag{
			Name:        "backend-timeout",
			Usage:       "Per-request timeout for backend calls (default 30s)",
			Category:    "Backend",
			Sources:     cli.EnvVars("SAFELAND_BACKEND_TIMEOUT"),
			Destination: &x.timeout,
		},
	}
}

// Enabled reports whether a backend URL was given.
func (x *Backend) Enabled() bool {
	return strings.TrimSpace(x.baseURL) != ""
}

// applyFile fills settings left empty on the command line from the config
// file.
func (x *Backend) applyFile(f BackendFile) {
	if x.baseURL == "" {
		x.baseURL = f.BaseURL
	}
	if x.username == "" {
		x.username = f.Username
	}
	if f.Timeout != "" && x.timeout == 0 {
		if d, err := time.ParseDuration(f.Timeout); err == nil {
			x.timeout = d
		}
	}
}

func (x *Backend) Validate() error {
	if !x.Enabled() {
		return ErrBackendNotConfigured
	}
	u, err := url.Parse(x.baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return goerr.New("invalid backend URL", goerr.V("url", x.baseURL))
	}
	if x.timeout < 0 {
		return goerr.New("backend timeout must not be negative", goerr.V("timeout", x.timeout))
	}
	if (x.username == "") != (x.password == "") {
		return goerr.New("backend username and password must be set together")
	}
	return nil
}

// Configure builds the backend client.
func (x *Backend) Configure() (*api.Client, error) {
	if err := x.Validate(); err != nil {
		return nil, err
	}
	timeout := x.timeout
	if timeout == 0 {
		timeout = defaultBackendTimeout
	}
	opts := []api.Option{
		api.WithTimeout(timeout),
		api.WithLogger(logging.Default()),
	}
	if x.username != "" {
		opts = append(opts, api.WithCredentials(x.username, x.password))
	}
	client, err := api.New(x.baseURL, opts...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create backend client")
	}
	return client, nil
}

func (x Backend) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("url", x.baseURL),
		slog.String("username", x.username),
		slog.Int("password.len", len(x.password)),
		slog.Duration("timeout", x.timeout),
	)
}
