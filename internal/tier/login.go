package tier

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

const (
	// ClientID identifies the CLI to the login endpoints.
	ClientID = "tier-cli"

	deviceCodeGrantType = "urn:ietf:params:oauth:grant-type:device_code"
)

// DeviceAuthorization is the answer to InitLogin: exactly one of Success
// and Err is set.
type DeviceAuthorization struct {
	Success *oauth2.DeviceAuthResponse
	Err     *ErrorResponse
}

// PollStatus is the outcome of one token poll.
type PollStatus string

const (
	PollPending  PollStatus = "pending"
	PollSlowDown PollStatus = "slow_down"
	PollApproved PollStatus = "approved"
	PollDenied   PollStatus = "denied"
	PollExpired  PollStatus = "expired"
)

// PollResult is the decoded answer of the token endpoint.
type PollResult struct {
	Status    PollStatus
	Token     string
	TokenType string
	Message   string
}

type initLoginRequest struct {
	ClientID string `json:"client_id"`
	Scope    string `json:"scope"`
}

type pollLoginRequest struct {
	ClientID   string `json:"client_id"`
	GrantType  string `json:"grant_type"`
	DeviceCode string `json:"device_code"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type,omitempty"`
	ErrorResponse
}

// InitLogin starts a device authorization for projectRoot. An error payload
// from the server is returned in DeviceAuthorization.Err, not as an error.
func (c *Client) InitLogin(ctx context.Context, projectRoot string) (*DeviceAuthorization, error) {
	resp, err := c.postLogin(ctx, "/auth/cli", initLoginRequest{ClientID: ClientID, Scope: projectRoot})
	if err != nil {
		return nil, err
	}

	var errResp ErrorResponse
	if json.Unmarshal(resp.Body, &errResp) == nil && (errResp.OAuthError != "" || resp.StatusCode >= 400 && errResp.Message != "") {
		return &DeviceAuthorization{Err: &errResp}, nil
	}
	if resp.StatusCode >= 400 {
		return nil, clierrors.WrapContext(http.MethodPost, c.webURL+"/auth/cli", resp.StatusCode, newAPIError(resp))
	}

	var success oauth2.DeviceAuthResponse
	if err := json.Unmarshal(resp.Body, &success); err != nil {
		return nil, fmt.Errorf("failed to decode device authorization: %w", err)
	}
	if success.DeviceCode == "" || success.UserCode == "" || success.VerificationURI == "" {
		return nil, fmt.Errorf("incomplete device authorization: missing device_code, user_code or verification_uri")
	}
	return &DeviceAuthorization{Success: &success}, nil
}

// PollLogin asks the token endpoint whether deviceCode was approved.
// OAuth error codes map to a PollStatus; anything unrecognised is returned
// as an error.
func (c *Client) PollLogin(ctx context.Context, deviceCode string) (*PollResult, error) {
	resp, err := c.postLogin(ctx, "/auth/token", pollLoginRequest{
		ClientID:   ClientID,
		GrantType:  deviceCodeGrantType,
		DeviceCode: deviceCode,
	})
	if err != nil {
		return nil, err
	}

	var tok tokenResponse
	if err := json.Unmarshal(resp.Body, &tok); err != nil {
		if resp.StatusCode >= 400 {
			return nil, clierrors.WrapContext(http.MethodPost, c.webURL+"/auth/token", resp.StatusCode, newAPIError(resp))
		}
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}

	msg := tok.Description
	if msg == "" {
		msg = tok.Message
	}
	switch tok.OAuthError {
	case "":
	case "authorization_pending":
		return &PollResult{Status: PollPending}, nil
	case "slow_down":
		return &PollResult{Status: PollSlowDown}, nil
	case "access_denied":
		return &PollResult{Status: PollDenied, Message: msg}, nil
	case "expired_token":
		return &PollResult{Status: PollExpired, Message: msg}, nil
	default:
		return nil, clierrors.WrapContext(http.MethodPost, c.webURL+"/auth/token", resp.StatusCode, &tok.ErrorResponse)
	}

	if resp.StatusCode >= 400 {
		return nil, clierrors.WrapContext(http.MethodPost, c.webURL+"/auth/token", resp.StatusCode, newAPIError(resp))
	}
	if tok.AccessToken == "" {
		return nil, fmt.Errorf("token response has no access_token")
	}
	return &PollResult{
		Status:    PollApproved,
		Token:     tok.AccessToken,
		TokenType: strings.ToLower(tok.TokenType),
	}, nil
}

// postLogin sends an unauthenticated JSON request to the web app. The
// response is returned whatever its status, since the token endpoint
// reports pending and denied states as 400s.
func (c *Client) postLogin(ctx context.Context, path string, in any) (*RawResponse, error) {
	data, err := json.Marshal(in)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request body: %w", err)
	}
	return c.doRequestOnce(ctx, http.MethodPost, c.webURL+path, bytes.NewReader(data), nil, false)
}
