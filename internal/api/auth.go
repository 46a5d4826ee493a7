package api

import (
	"context"
	"net/http"

	"github.com/tecsocial/client/internal/model"
)

// Login authenticates with email and password. No token is required.
func (c *Client) Login(ctx context.Context, email, password string) (model.AuthResult, error) {
	var res model.AuthResult
	body := map[string]string{"email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/login", nil, body, &res, false)
	return res, err
}

// Signup registers a new account. The response carries the credential of
// the freshly created user.
func (c *Client) Signup(ctx context.Context, username, email, password string) (model.AuthResult, error) {
	var res model.AuthResult
	body := map[string]string{"username": username, "email": email, "password": password}
	err := c.do(ctx, http.MethodPost, "/auth/signup", nil, body, &res, false)
	return res, err
}
