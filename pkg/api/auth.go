package api

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a token and the signed-in user's profile.
func (c *Client) Login(ctx context.Context, creds Credentials) (*LoginResult, error) {
	var result LoginResult
	err := c.do(ctx, call{
		operation: "login",
		method:    http.MethodPost,
		path:      "/api/auth/login",
		body:      creds,
		out:       &result,
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// Register creates a new customer account.
func (c *Client) Register(ctx context.Context, input RegistrationInput) (*APIMessage, error) {
	var ack APIMessage
	err := c.do(ctx, call{
		operation: "register",
		method:    http.MethodPost,
		path:      "/api/auth/register",
		body:      input,
		out:       &ack,
	})
	if err != nil {
		return nil, err
	}
	return &ack, nil
}
