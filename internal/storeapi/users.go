package storeapi

import (
	"context"
	"net/http"
	"net/url"

	"storefront/internal/models"
)

// ListUsers returns every account (administrators only).
func (c *Conn) ListUsers(ctx context.Context) ([]models.User, int, error) {
	var users []models.User
	env, err := c.getData(ctx, "/users", nil, &users)
	if err != nil {
		return nil, 0, err
	}
	return users, env.Results, nil
}

// DeleteUser removes an account.
func (c *Conn) DeleteUser(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/users/"+url.PathEscape(id), nil, nil, nil)
}

// UpdateUserRole changes an account's role.
func (c *Conn) UpdateUserRole(ctx context.Context, id, role string) error {
	return c.do(ctx, http.MethodPatch, "/users/"+url.PathEscape(id), nil, map[string]string{"role": role}, nil)
}

// UpdateMe edits the signed-in user's profile.
func (c *Conn) UpdateMe(ctx context.Context, form models.ProfileForm) (*models.User, error) {
	var res struct {
		User models.User `json:"user"`
	}
	if err := c.do(ctx, http.MethodPut, "/users/updateMe", nil, form, &res); err != nil {
		return nil, err
	}
	return &res.User, nil
}

// ChangeMyPassword changes the signed-in user's password. The API issues a
// new token which supersedes the current one.
func (c *Conn) ChangeMyPassword(ctx context.Context, form models.PasswordForm) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPut, "/users/changeMyPassword", nil, form, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
