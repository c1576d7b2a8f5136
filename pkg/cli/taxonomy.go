package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

func cmdTaxonomy() *cli.Command {
	var format string
	var appCfg config.App
	var backendCfg config.Backend

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "format",
			Aliases:     []string{"f"},
			Usage:       "Output format (tree, json)",
			Value:       "tree",
			Destination: &format,
		},
	}
	flags = append(flags, appCfg.Flags()...)
	flags = append(flags, backendCfg.Flags()...)

	return &cli.Command{
		Name:    "taxonomy",
		Aliases: []string{"t"},
		Usage:   "Print the active taxonomy, joined with the backend when configured",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if err := appCfg.Configure(&backendCfg); err != nil {
				return goerr.Wrap(err, "invalid configuration")
			}
			client, err := backendClient(&backendCfg)
			if err != nil {
				return err
			}
			store, err := openStore(ctx, &appCfg, client)
			if err != nil {
				return err
			}
			if client != nil {
				if err := store.LastError(); err != nil {
					return goerr.Wrap(err, "failed to load backend taxonomy")
				}
			}

			snap := store.Snapshot()
			out := c.Root().Writer
			switch format {
			case "json":
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(snap)
			case "tree":
				return writeTree(out, snap)
			default:
				return goerr.New("unknown output format", goerr.V("format", format))
			}
		},
	}
}

func writeTree(w io.Writer, snap taxonomy.Snapshot) error {
	if _, err := fmt.Fprintf(w, "taxonomy (%s)\n", snap.Origin); err != nil {
		return goerr.Wrap(err, "failed to write taxonomy")
	}
	for _, cat := range snap.Categories {
		if _, err := fmt.Fprintf(w, "%s [%s]\n", cat.Label, cat.ID); err != nil {
			return goerr.Wrap(err, "failed to write taxonomy")
		}
		for _, sub := range cat.SubCategories {
			if _, err := fmt.Fprintf(w, "  - %s [%s] %d fields\n", sub.Label, sub.ID, len(sub.Fields)); err != nil {
				return goerr.Wrap(err, "failed to write taxonomy")
			}
		}
	}
	return nil
}
