// Package tier is the HTTP client for the tier API and its login endpoints.
package tier

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/tierdev/tier-cli/internal/debug"
	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

const (
	defaultBaseURL = "https://api.tier.run"
	defaultWebURL  = "https://tier.run"
	defaultTimeout = 30 * time.Second
	userAgent      = "tier-cli"
)

// Auth types understood by the API.
const (
	AuthBasic  = "basic"
	AuthBearer = "bearer"
)

// Client is the tier API client
type Client struct {
	httpClient  *http.Client
	apiKey      string
	authType    string
	baseURL     string
	webURL      string
	disableAuth bool
	userAgent   string
}

// NewClient creates a new tier API client with the given key
func NewClient(apiKey string) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		apiKey:    apiKey,
		authType:  AuthBasic,
		baseURL:   defaultBaseURL,
		webURL:    defaultWebURL,
		userAgent: userAgent,
	}
}

// WithHTTPClient sets a custom HTTP client
func (c *Client) WithHTTPClient(client *http.Client) *Client {
	c.httpClient = client
	return c
}

// WithBaseURL sets the API base URL (useful for testing)
func (c *Client) WithBaseURL(baseURL string) *Client {
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

// WithWebURL sets the URL of the web app that serves the login endpoints.
func (c *Client) WithWebURL(webURL string) *Client {
	c.webURL = strings.TrimRight(webURL, "/")
	return c
}

// WithAuthType selects how the key is sent: "basic" or "bearer".
func (c *Client) WithAuthType(authType string) *Client {
	c.authType = strings.ToLower(authType)
	return c
}

// WithAuthHeaderDisabled disables sending the Authorization header.
func (c *Client) WithAuthHeaderDisabled() *Client {
	c.disableAuth = true
	return c
}

// WithUserAgent sets the User-Agent sent with every request.
func (c *Client) WithUserAgent(ua string) *Client {
	c.userAgent = ua
	return c
}

// WithDebugOutput enables debug mode for HTTP request/response logging to the provided writer.
func (c *Client) WithDebugOutput(w io.Writer) *Client {
	baseTransport := c.httpClient.Transport
	if baseTransport == nil {
		baseTransport = http.DefaultTransport
	}

	c.httpClient.Transport = debug.NewDebugTransport(baseTransport, w)
	return c
}

// authorization returns the Authorization header value, or "" when none
// should be sent.
func (c *Client) authorization() string {
	if c.disableAuth || c.apiKey == "" {
		return ""
	}
	if c.authType == AuthBearer {
		return "Bearer " + c.apiKey
	}
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(c.apiKey+":"))
}

// doRequestOnce performs a single HTTP request and reads the whole body.
// Transport failures come back as *errors.TransientError; HTTP status codes
// are not interpreted here.
func (c *Client) doRequestOnce(ctx context.Context, method, requestURL string, body io.Reader, headers http.Header, withAuth bool) (*RawResponse, error) {
	req, err := http.NewRequestWithContext(ctx, method, requestURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if withAuth {
		if auth := c.authorization(); auth != "" {
			req.Header.Set("Authorization", auth)
		}
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
	req.Header.Set("Accept", "application/json")
	for key, values := range headers {
		req.Header.Del(key)
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if body != nil && req.Header.Get("Content-Type") == "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &clierrors.TransientError{Op: method + " " + requestURL, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &clierrors.TransientError{Op: method + " " + requestURL, Err: fmt.Errorf("failed to read response: %w", err)}
	}

	return &RawResponse{
		StatusCode: resp.StatusCode,
		Headers:    resp.Header.Clone(),
		Body:       data,
	}, nil
}

// doJSON sends in (if non-nil) as JSON to the API and returns the raw JSON
// response. Status codes >= 400 become *APIError.
func (c *Client) doJSON(ctx context.Context, method, path string, in any) (json.RawMessage, error) {
	requestURL := c.baseURL + path

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.doRequestOnce(ctx, method, requestURL, body, nil, true)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= 400 {
		return nil, clierrors.WrapContext(method, requestURL, resp.StatusCode, newAPIError(resp))
	}
	if len(bytes.TrimSpace(resp.Body)) == 0 {
		return json.RawMessage("null"), nil
	}
	if !json.Valid(resp.Body) {
		return nil, clierrors.WrapContext(method, requestURL, resp.StatusCode, fmt.Errorf("failed to decode response: invalid JSON"))
	}
	return json.RawMessage(resp.Body), nil
}
