package api

import (
	"context"
	"net/http"
	"strconv"
)

// ListUsers lists every account.
func (c *Client) ListUsers(ctx context.Context) ([]User, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/admin/users", nil, nil)
	if err != nil {
		return nil, err
	}
	return decodeItems[User](body)
}

// SetUserStatus activates, deactivates or suspends an account.
func (c *Client) SetUserStatus(ctx context.Context, userID int64, status string) error {
	input := StatusInput{Status: status}
	if err := Validate(input); err != nil {
		return err
	}
	path := "/api/admin/users/" + strconv.FormatInt(userID, 10) + "/status"
	_, err := c.do(ctx, http.MethodPut, path, jsonBody(input), nil)
	return err
}

// AssignRoles replaces the roles of a user.
func (c *Client) AssignRoles(ctx context.Context, assignment RoleAssignment) error {
	if err := Validate(assignment); err != nil {
		return err
	}
	_, err := c.do(ctx, http.MethodPut, "/api/user/role", jsonBody(assignment), nil)
	return err
}
