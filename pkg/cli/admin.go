package cli

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/admin"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/cli/config"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/logging"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/model"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/roles"
)

// adminEnv is shared by every admin subcommand.
type adminEnv struct {
	app     config.App
	backend config.Backend
}

func (e *adminEnv) flags() []cli.Flag {
	var flags []cli.Flag
	flags = append(flags, e.app.Flags()...)
	flags = append(flags, e.backend.Flags()...)
	return flags
}

func (e *adminEnv) service(ctx context.Context) (*admin.Service, error) {
	if err := e.app.Configure(&e.backend); err != nil {
		return nil, goerr.Wrap(err, "invalid configuration")
	}
	client, err := e.backend.Configure()
	if err != nil {
		return nil, goerr.Wrap(err, "admin commands need a backend")
	}
	store, err := openStore(ctx, &e.app, client)
	if err != nil {
		return nil, err
	}
	return admin.New(client, admin.WithStore(store), admin.WithLogger(logging.Default())), nil
}

func cmdAdmin() *cli.Command {
	env := &adminEnv{}
	return &cli.Command{
		Name:  "admin",
		Usage: "Manage agencies, users and the backend taxonomy",
		Flags: env.flags(),
		Commands: []*cli.Command{
			cmdAdminAgency(env),
			cmdAdminUser(env),
			cmdAdminCategory(env),
		},
	}
}

func cmdAdminAgency(env *adminEnv) *cli.Command {
	var mine bool
	return &cli.Command{
		Name:  "agency",
		Usage: "List, approve or delete agencies",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List agencies",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "mine", Usage: "Only agencies owned by the caller", Destination: &mine},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					agencies, err := svc.Agencies(ctx, mine)
					if err != nil {
						return err
					}
					return writeResult(c.Root().Writer, agencies)
				},
			},
			{
				Name:      "approve",
				Usage:     "Approve a pending agency",
				ArgsUsage: "<agency-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					return svc.ApproveAgency(ctx, id)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete an agency",
				ArgsUsage: "<agency-id>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					return svc.DeleteAgency(ctx, id)
				},
			},
		},
	}
}

func cmdAdminUser(env *adminEnv) *cli.Command {
	var actor []string
	var assign []string

	return &cli.Command{
		Name:  "user",
		Usage: "List users, change roles or status",
		Commands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List users",
				Action: func(ctx context.Context, c *cli.Command) error {
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					users, err := svc.Users(ctx)
					if err != nil {
						return err
					}
					return writeResult(c.Root().Writer, users)
				},
			},
			{
				Name:      "role",
				Usage:     "Replace a user's roles",
				ArgsUsage: "<user-id>",
				Flags: []cli.Flag{
					&cli.StringSliceFlag{
						Name:        "actor-role",
						Usage:       "Roles of the account performing the change",
						Sources:     cli.EnvVars("SAFELAND_ACTOR_ROLES"),
						Required:    true,
						Destination: &actor,
					},
					&cli.StringSliceFlag{
						Name:        "role",
						Aliases:     []string{"r"},
						Usage:       "Role to assign; repeat for several",
						Required:    true,
						Destination: &assign,
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					actorRoles, err := parseRoles(actor)
					if err != nil {
						return err
					}
					targets, err := parseRoles(assign)
					if err != nil {
						return err
					}
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					return svc.AssignRoles(ctx, actorRoles, id, targets)
				},
			},
			{
				Name:      "status",
				Usage:     "Set a user's status (active, inactive, suspended)",
				ArgsUsage: "<user-id> <status>",
				Action: func(ctx context.Context, c *cli.Command) error {
					id, err := argID(c, 0)
					if err != nil {
						return err
					}
					status := strings.TrimSpace(c.Args().Get(1))
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					return svc.SetUserStatus(ctx, id, status)
				},
			},
		},
	}
}

func cmdAdminCategory(env *adminEnv) *cli.Command {
	var id, parent int64
	var name, label, icon string

	return &cli.Command{
		Name:  "category",
		Usage: "Create, update or delete backend categories and sub-categories",
		Commands: []*cli.Command{
			{
				Name:  "create",
				Usage: "Create a category, or a sub-category with --parent; --id updates",
				Flags: []cli.Flag{
					&cli.Int64Flag{Name: "id", Usage: "Existing id to update", Destination: &id},
					&cli.Int64Flag{Name: "parent", Usage: "Category id of a new sub-category", Destination: &parent},
					&cli.StringFlag{Name: "name", Usage: "Machine name", Required: true, Destination: &name},
					&cli.StringFlag{Name: "label", Usage: "Display label", Required: true, Destination: &label},
					&cli.StringFlag{Name: "icon", Usage: "Icon file to upload", Destination: &icon},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					var upload *model.Upload
					if icon != "" {
						uploads, err := loadUploads(os.ReadFile, []string{icon})
						if err != nil {
							return err
						}
						upload = &uploads[0]
					}
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					if parent > 0 {
						sub, err := svc.SaveSubCategory(ctx, id, api.SubCategoryInput{CategoryID: parent, Name: name, Label: label, Icon: upload})
						if err != nil {
							return err
						}
						return writeResult(c.Root().Writer, sub)
					}
					cat, err := svc.SaveCategory(ctx, id, api.CategoryInput{Name: name, Label: label, Icon: upload})
					if err != nil {
						return err
					}
					return writeResult(c.Root().Writer, cat)
				},
			},
			{
				Name:      "delete",
				Usage:     "Delete a category, or a sub-category with --sub",
				ArgsUsage: "<id>",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "sub", Usage: "The id is a sub-category"},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					target, err := argID(c, 0)
					if err != nil {
						return err
					}
					svc, err := env.service(ctx)
					if err != nil {
						return err
					}
					if c.Bool("sub") {
						return svc.DeleteSubCategory(ctx, target)
					}
					return svc.DeleteCategory(ctx, target)
				},
			},
		},
	}
}

func argID(c *cli.Command, index int) (int64, error) {
	raw := strings.TrimSpace(c.Args().Get(index))
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, goerr.New("expected a positive numeric id", goerr.V("arg", raw))
	}
	return id, nil
}

func parseRoles(names []string) ([]roles.Role, error) {
	out := make([]roles.Role, 0, len(names))
	for _, name := range names {
		r := roles.Role(strings.TrimSpace(name))
		if !roles.Valid(r) {
			return nil, goerr.Wrap(roles.ErrUnknownRole, "invalid role", goerr.V(roles.RoleKey, name))
		}
		out = append(out, r)
	}
	return out, nil
}

func writeResult(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return goerr.Wrap(err, "failed to write result")
	}
	return nil
}
