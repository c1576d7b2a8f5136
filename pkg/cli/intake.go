package cli

import (
	"context"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/parcel"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/tui"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/submission"
)

func cmdIntake() *cli.Command {
	var appCfg config.App
	var backendCfg config.Backend

	var flags []cli.Flag
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)

	return &cli.Command{
		Name:    "intake",
		Aliases: []string{"i"},
		Usage:   "Record a property interactively: verify its UPI, fill the form and submit",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(&backendCfg); err != nil {
				return goerr.Wrap(err, "invalid configuration")
			}
			client, err := backendCfg.Configure()
			if err != nil {
				return goerr.Wrap(err, "intake needs a backend")
			}
			store, err := openStore(ctx, &appCfg, client)
			if err != nil {
				return err
			}

			logger := logging.Default()
			machine := intake.New(store,
				parcel.NewVerifier(client, parcel.WithLogger(logger)),
				submission.NewPipeline(client, submission.WithLogger(logger)),
				intake.WithLogger(logger),
				intake.WithTransitionHook(func(from, to intake.State) {
					logger.Debug("intake state changed", "from", from, "to", to)
				}),
			)
			out := c.Root().Writer
			s := newSession(machine, store, tui.NewSurveyDriver(out), appCfg.Language(), appCfg.Translator())

			result, err := s.run(ctx)
			if err != nil {
				return goerr.Wrap(err, "intake session failed", goerr.V(intake.SessionKey, machine.ID()))
			}
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(result)
		},
	}
}
