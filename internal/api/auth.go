// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jeranaias/genstudio-tui/internal/model"
)

// Credentials is the login form payload.
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates and returns the user record. The backend answers
// with Set-Cookie headers that the jar keeps for subsequent calls.
func (c *Client) Login(ctx context.Context, creds Credentials) (*model.User, error) {
	var raw json.RawMessage
	if err := c.DoJSON(ctx, http.MethodPost, "/api/auth/login", creds, &raw); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return c.CurrentUser(ctx)
	}
	user, err := decodeOne[model.User](raw, "user")
	if err != nil {
		return nil, err
	}
	if user.ID.IsZero() && user.Email == "" {
		return c.CurrentUser(ctx)
	}
	return &user, nil
}

// Logout ends the server session.
func (c *Client) Logout(ctx context.Context) error {
	return c.DoJSON(ctx, http.MethodPost, "/api/auth/logout", nil, nil)
}

// CurrentUser returns the authenticated user. A 401 satisfies
// errors.Is(err, ErrUnauthorized).
func (c *Client) CurrentUser(ctx context.Context) (*model.User, error) {
	var raw json.RawMessage
	if err := c.DoJSON(ctx, http.MethodGet, "/api/users/me", nil, &raw); err != nil {
		return nil, err
	}
	user, err := decodeOne[model.User](raw, "user")
	if err != nil {
		return nil, err
	}
	return &user, nil
}
