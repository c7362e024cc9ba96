package tier

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strings"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

// RawResponse represents a low-level API response.
type RawResponse struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// FetchOptions describes an arbitrary API request.
type FetchOptions struct {
	Method  string
	Headers http.Header
	Body    []byte
}

// Fetch performs an authenticated request against any API path. Absolute
// URLs are used as-is; the key is only sent when they point at the API host.
func (c *Client) Fetch(ctx context.Context, path string, opts FetchOptions) (*RawResponse, error) {
	method := strings.ToUpper(opts.Method)
	if method == "" {
		method = http.MethodGet
		if len(opts.Body) > 0 {
			method = http.MethodPost
		}
	}
	requestURL := buildRawURL(c.baseURL, path)

	var body io.Reader
	if len(opts.Body) > 0 {
		body = bytes.NewReader(opts.Body)
	}

	resp, err := c.doRequestOnce(ctx, method, requestURL, body, opts.Headers, sameHost(requestURL, c.baseURL))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, clierrors.WrapContext(method, requestURL, resp.StatusCode, newAPIError(resp))
	}
	return resp, nil
}

// sameHost reports whether rawURL has the scheme and host of baseURL.
func sameHost(rawURL, baseURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Scheme, base.Scheme) && strings.EqualFold(u.Host, base.Host)
}

func buildRawURL(baseURL, path string) string {
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return baseURL + path
}
