package appwrite

import (
	"context"
	"net/http"

	"fieldops.service/internal/core/model"
	"fieldops.service/internal/ports/backend"
)

func (c *Client) CreateSession(ctx context.Context, email, password string) (model.Session, error) {
	var session model.Session
	err := c.do(ctx, http.MethodPost, "/account/sessions/email", nil, map[string]string{
		"email":    email,
		"password": password,
	}, &session)
	return session, err
}

func (c *Client) CreateAccount(ctx context.Context, email, password, name string) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodPost, "/account", nil, map[string]string{
		"userId":   backend.AutoID,
		"email":    email,
		"password": password,
		"name":     name,
	}, &user)
	return user, err
}

func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var user model.User
	err := c.do(ctx, http.MethodGet, "/account", nil, nil, &user)
	return user, err
}

func (c *Client) DeleteSession(ctx context.Context) error {
	if err := c.do(ctx, http.MethodDelete, "/account/sessions/current", nil, nil, nil); err != nil {
		return err
	}
	c.clearSession()
	return nil
}
