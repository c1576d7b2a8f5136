package cli

import (
	"context"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
)

// Run executes the safeland command line.
func Run(ctx context.Context, args []string, version string) error {
	return run(ctx, args, version, os.Stdout)
}

func run(ctx context.Context, args []string, version string, out io.Writer) error {
	envFile := os.Getenv("SAFELAND_ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := config.LoadDotEnv(envFile); err != nil {
		logging.Default().Error("failed to load env file", "error", err)
		return err
	}

	var loggerCfg config.Logger
	var closer func()

	app := &cli.Command{
		Name:    "safeland",
		Usage:   "Safe Land property intake forms",
		Version: version,
		Writer:  out,
		Flags:   loggerCfg.Flags(),
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			f, err := loggerCfg.Configure()
			if err != nil {
				return ctx, err
			}
			closer = f

			logging.Default().Debug("Starting safeland", "logger", loggerCfg)
			return ctx, nil
		},
		After: func(ctx context.Context, c *cli.Command) error {
			if closer != nil {
				closer()
			}
			return nil
		},
		Commands: []*cli.Command{
			cmdServe(),
			cmdTaxonomy(),
			cmdValidate(),
			cmdForm(),
			cmdIntake(),
			cmdAdmin(),
		},
	}

	if err := app.Run(ctx, args); err != nil {
		logging.Default().Error("failed to run app", "error", err)
		return err
	}

	return nil
}
