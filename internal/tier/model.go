package tier

import (
	"context"
	"encoding/json"
	"net/http"
)

// PushModel uploads a pricing model and returns the API's reply.
func (c *Client) PushModel(ctx context.Context, model json.RawMessage) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodPost, "/v1/push", model)
}

// PullModel downloads the current pricing model.
func (c *Client) PullModel(ctx context.Context) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, "/v1/pull", nil)
}

// Ping returns the identity of the caller as seen by the API.
func (c *Client) Ping(ctx context.Context) (json.RawMessage, error) {
	return c.doJSON(ctx, http.MethodGet, "/v1/whoami", nil)
}
