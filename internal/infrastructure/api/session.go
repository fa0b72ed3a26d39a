package api

import (
	"context"
	"net/http"
)

// SyncSession exchanges the signed-in email for the API's credential cookie.
// The cookie lands in the client's jar and rides along on every later call.
func (c *Client) SyncSession(ctx context.Context, email string) error {
	return c.do(ctx, "api.SyncSession", request{
		method: http.MethodPost,
		path:   "/jwt",
		body:   sessionRequest{Email: email},
	}, nil)
}

// EndSession asks the API to clear the credential cookie
func (c *Client) EndSession(ctx context.Context) error {
	return c.do(ctx, "api.EndSession", request{
		method: http.MethodPost,
		path:   "/logout",
	}, nil)
}
