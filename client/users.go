package client

import (
	"context"
	"net/http"

	"github.com/SergeyParamoshkin/blog/internal/model"
)

type registrationEnvelope struct {
	User model.Registration `json:"user"`
}

type credentialsEnvelope struct {
	User model.Credentials `json:"user"`
}

type userUpdateEnvelope struct {
	User model.UserUpdate `json:"user"`
}

// Register creates a new account and returns the user with a fresh
// token.
func (c *Client) Register(ctx context.Context, reg model.Registration) (model.User, error) {
	var envelope model.UserEnvelope

	if err := c.do(ctx, http.MethodPost, "/users", registrationEnvelope{User: reg}, &envelope); err != nil {
		return model.User{}, err
	}

	return envelope.User, nil
}

// Login exchanges credentials for the user with a fresh token.
func (c *Client) Login(ctx context.Context, creds model.Credentials) (model.User, error) {
	var envelope model.UserEnvelope

	if err := c.do(ctx, http.MethodPost, "/users/login", credentialsEnvelope{User: creds}, &envelope); err != nil {
		return model.User{}, err
	}

	return envelope.User, nil
}

// CurrentUser fetches the account behind the installed token.
func (c *Client) CurrentUser(ctx context.Context) (model.User, error) {
	var envelope model.UserEnvelope

	if err := c.do(ctx, http.MethodGet, "/user", nil, &envelope); err != nil {
		return model.User{}, err
	}

	return envelope.User, nil
}

// UpdateUser applies a partial profile update and returns the merged
// server copy.
func (c *Client) UpdateUser(ctx context.Context, update model.UserUpdate) (model.User, error) {
	var envelope model.UserEnvelope

	if err := c.do(ctx, http.MethodPut, "/user", userUpdateEnvelope{User: update}, &envelope); err != nil {
		return model.User{}, err
	}

	return envelope.User, nil
}
