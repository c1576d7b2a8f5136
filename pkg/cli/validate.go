package cli

import (
	"context"
	"encoding/json"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/intake"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

var ErrInvalidValues = goerr.New("values do not complete the form")

func cmdValidate() *cli.Command {
	var appCfg config.App

	return &cli.Command{
		Name:      "validate",
		Aliases:   []string{"v"},
		Usage:     "Check a JSON values file against a sub-category form offline",
		ArgsUsage: "<category> <subcategory> <values.json>",
		Flags:     appCfg.Flags(),
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 3 {
				return goerr.New("expected category, sub-category and values file", goerr.V("args", c.Args().Slice()))
			}
			if err := appCfg.Configure(nil); err != nil {
				return goerr.Wrap(err, "invalid configuration")
			}
			cats, err := appCfg.Categories()
			if err != nil {
				return err
			}
			cat, sub, err := taxonomy.Snapshot{Categories: cats}.Lookup(c.Args().Get(0), c.Args().Get(1))
			if err != nil {
				return err
			}

			path := c.Args().Get(2)
			// #nosec G304 - path is expected to be provided by CLI argument
			data, err := os.ReadFile(path)
			if err != nil {
				return goerr.Wrap(err, "failed to read values file", goerr.V("path", path))
			}
			var values model.Values
			if err := json.Unmarshal(data, &values); err != nil {
				return goerr.Wrap(err, "failed to parse values file", goerr.V("path", path))
			}

			report := intake.Check(cat, sub, values)
			enc := json.NewEncoder(c.Root().Writer)
			enc.SetIndent("", "  ")
			if err := enc.Encode(report); err != nil {
				return goerr.Wrap(err, "failed to write report")
			}

			logging.Default().Debug("values checked", "category", cat.Name, "sub_category", sub.Name, "valid", report.Valid)
			if !report.Valid {
				return goerr.Wrap(ErrInvalidValues, "validation failed",
					goerr.V("missing", report.Missing), goerr.V("issues", len(report.Issues)))
			}
			return nil
		},
	}
}
