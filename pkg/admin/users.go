package admin

import (
	"context"

	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/api"
	"github.com/lscblack/Safe-Land-Rwanda-sub000/pkg/roles"
	"github.com/m-mizutani/goerr/v2"
)

const (
	AgencyKey = "agency"
	UserKey   = "user_id"
)

// Users lists every account.
func (s *Service) Users(ctx context.Context) ([]api.User, error) {
	users, err := s.client.ListUsers(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list users")
	}
	return users, nil
}

// SetUserStatus activates, deactivates or suspends an account.
func (s *Service) SetUserStatus(ctx context.Context, userID int64, status string) error {
	if err := s.client.SetUserStatus(ctx, userID, status); err != nil {
		return goerr.Wrap(err, "failed to set user status", goerr.V(UserKey, userID))
	}
	return nil
}

// AssignRoles replaces a user's roles. The actor's hierarchy is checked
// before anything is sent.
func (s *Service) AssignRoles(ctx context.Context, actor []roles.Role, userID int64, targets []roles.Role) error {
	if err := roles.CheckAssignment(actor, targets); err != nil {
		return goerr.Wrap(err, "role assignment rejected", goerr.V(UserKey, userID))
	}

	names := make([]string, 0, len(targets))
	for _, r := range targets {
		names = append(names, string(r))
	}
	if err := s.client.AssignRoles(ctx, api.RoleAssignment{UserID: userID, Roles: names}); err != nil {
		return goerr.Wrap(err, "failed to assign roles", goerr.V(UserKey, userID))
	}
	s.log(ctx).Info("roles assigned", UserKey, userID, "roles", names)
	return nil
}
