package tier

import (
	"encoding/json"
	"fmt"
	"mime"
	"strings"
)

// ErrorResponse is the error body the tier API and the login endpoints
// send. The login endpoints use the OAuth field names.
type ErrorResponse struct {
	Status      int    `json:"status,omitempty"`
	Code        string `json:"code,omitempty"`
	Message     string `json:"message,omitempty"`
	OAuthError  string `json:"error,omitempty"`
	Description string `json:"error_description,omitempty"`
}

// Error implements the error interface
func (e *ErrorResponse) Error() string {
	code := e.Code
	if code == "" {
		code = e.OAuthError
	}
	msg := e.Message
	if msg == "" {
		msg = e.Description
	}
	switch {
	case code != "" && msg != "":
		return fmt.Sprintf("%s: %s", code, msg)
	case msg != "":
		return msg
	default:
		return code
	}
}

// APIError is returned for any response with status >= 400.
type APIError struct {
	StatusCode  int
	ContentType string
	Body        []byte
	Response    *ErrorResponse
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Response != nil {
		if msg := e.Response.Error(); msg != "" {
			return fmt.Sprintf("tier API error %d: %s", e.StatusCode, msg)
		}
	}
	return fmt.Sprintf("tier API error %d", e.StatusCode)
}

// IsJSON reports whether the error body was sent as JSON.
func (e *APIError) IsJSON() bool {
	mediaType, _, err := mime.ParseMediaType(e.ContentType)
	if err != nil {
		return strings.HasPrefix(e.ContentType, "application/json")
	}
	return mediaType == "application/json" || strings.HasSuffix(mediaType, "+json")
}

// JSONBody returns the decoded error body when it is JSON.
func (e *APIError) JSONBody() (any, bool) {
	if !e.IsJSON() || len(e.Body) == 0 {
		return nil, false
	}
	var v any
	if err := json.Unmarshal(e.Body, &v); err != nil {
		return nil, false
	}
	return v, true
}

func newAPIError(resp *RawResponse) *APIError {
	apiErr := &APIError{
		StatusCode:  resp.StatusCode,
		ContentType: resp.Headers.Get("Content-Type"),
		Body:        resp.Body,
	}
	var errResp ErrorResponse
	if err := json.Unmarshal(resp.Body, &errResp); err == nil {
		apiErr.Response = &errResp
	}
	return apiErr
}
