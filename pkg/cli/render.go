package cli

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/render"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/tui"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/renderers/vanilla"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// newRenderers registers the HTML renderer and a terminal renderer that
// prompts on out.
func newRenderers(out io.Writer, logger *slog.Logger) (*render.Registry, error) {
	html, err := vanilla.New(vanilla.WithLogger(logger))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to build html renderer")
	}

	registry := render.NewRegistry()
	if err := registry.Register(html); err != nil {
		return nil, err
	}
	if err := registry.Register(tui.New(tui.WithPromptDriver(tui.NewSurveyDriver(out)), tui.WithLogger(logger))); err != nil {
		return nil, err
	}
	return registry, nil
}

func cmdForm() *cli.Command {
	var appCfg config.App
	var rendererName string
	var valuesPath string
	var output string

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "renderer",
			Aliases:     []string{"r"},
			Usage:       "Renderer to use (vanilla, tui)",
			Value:       vanilla.Name,
			Destination: &rendererName,
		},
		&cli.StringFlag{
			Name:        "values",
			Usage:       "JSON file of values to pre-fill",
			Destination: &valuesPath,
		},
		&cli.StringFlag{
			Name:        "output",
			Aliases:     []string{"o"},
			Usage:       "Write the form to this file instead of stdout",
			Destination: &output,
		},
	}
	flags = append(flags, appCfg.Flags()...)

	return &cli.Command{
		Name:      "form",
		Aliases:   []string{"f"},
		Usage:     "Render a sub-category form with the chosen renderer",
		ArgsUsage: "<category> <subcategory>",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			if c.Args().Len() != 2 {
				return goerr.New("expected category and sub-category", goerr.V("args", c.Args().Slice()))
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

			values := model.Values{}
			if valuesPath != "" {
				// #nosec G304 - path is expected to be provided by CLI argument
				data, err := os.ReadFile(valuesPath)
				if err != nil {
					return goerr.Wrap(err, "failed to read values file", goerr.V("path", valuesPath))
				}
				if err := json.Unmarshal(data, &values); err != nil {
					return goerr.Wrap(err, "failed to parse values file", goerr.V("path", valuesPath))
				}
			}

			logger := logging.Default()
			registry, err := newRenderers(c.Root().Writer, logger)
			if err != nil {
				return err
			}
			renderer, err := registry.Get(rendererName)
			if err != nil {
				return goerr.Wrap(err, "unknown renderer", goerr.V("available", registry.List()))
			}

			opts := render.Options{
				Values:     values,
				Hidden:     render.IdentityFields(values),
				Theme:      appCfg.Theme(),
				Language:   appCfg.Language(),
				Translator: appCfg.Translator(),
			}
			if size, ok := values.Number("size"); ok {
				opts.PlotSize = size
			}
			out, err := renderer.Render(ctx, render.Form{Category: cat, SubCategory: sub}, opts)
			if err != nil {
				return goerr.Wrap(err, "failed to render form",
					goerr.V(taxonomy.CategoryKey, cat.Name), goerr.V(taxonomy.SubCategoryKey, sub.Name), goerr.V(render.RendererKey, rendererName))
			}

			logger.Debug("form rendered", "renderer", rendererName, "category", cat.Name, "sub_category", sub.Name, "bytes", len(out))
			if output != "" {
				if err := os.WriteFile(output, out, 0o600); err != nil {
					return goerr.Wrap(err, "failed to write form", goerr.V("path", output))
				}
				return nil
			}
			_, err = c.Root().Writer.Write(out)
			return err
		},
	}
}
