package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/taxonomy"
)

// backendClient builds the backend client, or returns nil when no backend
// URL is configured.
func backendClient(backendCfg *config.Backend) (*api.Client, error) {
	if !backendCfg.Enabled() {
		return nil, nil
	}
	client, err := backendCfg.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "failed to configure backend")
	}
	return client, nil
}

// openStore builds the taxonomy store from the static schema and, with a
// client, joins the backend's categories into it.
func openStore(ctx context.Context, appCfg *config.App, client *api.Client) (*taxonomy.Store, error) {
	cats, err := appCfg.Categories()
	if err != nil {
		return nil, err
	}
	opts := []taxonomy.Option{
		taxonomy.WithStatic(cats),
		taxonomy.WithLogger(logging.Default()),
	}
	if client != nil {
		opts = append(opts, taxonomy.WithSource(client))
	}

	store := taxonomy.NewStore(opts...)
	if client != nil {
		store.Load(ctx)
	}
	return store, nil
}
