package client

import (
	"context"
	"net/http"
)

// Login exchanges credentials for a bearer token and stores it.
func (c *Client) Login(ctx context.Context, username, password string) (Session, error) {
	payload := map[string]string{"username": username, "password": password}
	return c.authenticate(ctx, "/api/auth/login", payload)
}

// Register creates an account and stores the token issued for it.
func (c *Client) Register(ctx context.Context, username, password, email string) (Session, error) {
	payload := map[string]string{"username": username, "password": password, "email": email}
	return c.authenticate(ctx, "/api/auth/register", payload)
}

func (c *Client) authenticate(ctx context.Context, path string, payload any) (Session, error) {
	var session Session
	if err := c.do(ctx, http.MethodPost, path, payload, &session, authRequest); err != nil {
		return Session{}, err
	}
	c.tokens.SetToken(session.Token)
	return session, nil
}

// Logout revokes the session server-side. The local token is cleared even
// when the call fails.
func (c *Client) Logout(ctx context.Context) error {
	defer c.tokens.Clear()
	if !c.Authenticated() {
		return nil
	}
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, authRequest)
}
