package storeapi

import (
	"context"
	"net/http"

	"storefront/internal/models"
)

// SignIn exchanges credentials for a token.
func (c *Conn) SignIn(ctx context.Context, form models.SignInForm) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signin", nil, form, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SignUp registers an account and returns its token.
func (c *Conn) SignUp(ctx context.Context, form models.SignUpForm) (*models.AuthResult, error) {
	var res models.AuthResult
	if err := c.do(ctx, http.MethodPost, "/auth/signup", nil, form, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// VerifyToken asks the API who owns the current token.
func (c *Conn) VerifyToken(ctx context.Context) (*models.Identity, error) {
	var res struct {
		Message string          `json:"message"`
		Decoded models.Identity `json:"decoded"`
	}
	if err := c.do(ctx, http.MethodGet, "/auth/verifyToken", nil, nil, &res); err != nil {
		return nil, err
	}
	return &res.Decoded, nil
}
