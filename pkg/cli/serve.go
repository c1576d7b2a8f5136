package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/server"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

func cmdServe() *cli.Command {
	var addr string
	var refresh time.Duration
	var appCfg config.App
	var backendCfg config.Backend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":8080",
			Sources:     cli.EnvVars("SAFELAND_ADDR"),
			Destination: &addr,
		},
		&cli.DurationFlag{
			Name:        "taxonomy-refresh",
			Usage:       "Reload the backend taxonomy at this interval (0 disables)",
			Sources:     cli.EnvVars("SAFELAND_TAXONOMY_REFRESH"),
			Destination: &refresh,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serve form previews and the validation API",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(&backendCfg); err != nil {
				return goerr.Wrap(err, "invalid configuration")
			}
			logger := logging.Default()
			logger.Info("Configuration loaded", "app", appCfg, "backend", backendCfg)

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			client, err := backendClient(&backendCfg)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, &appCfg, client)
			if err != nil {
				return err
			}
			if client != nil && refresh > 0 {
				go refreshTaxonomy(ctx, store, refresh)
			}

			srv, err := server.New(store,
				server.WithAppearance(appCfg.Theme(), appCfg.Language()),
				server.WithTranslator(appCfg.Translator()),
				server.WithLogger(logger),
			)
			if err != nil {
				return goerr.Wrap(err, "failed to create server")
			}
			return srv.Run(ctx, addr)
		},
	}
}

func refreshTaxonomy(ctx context.Context, store *taxonomy.Store, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			store.Load(ctx)
		}
	}
}
