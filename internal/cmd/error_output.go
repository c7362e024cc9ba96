package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
	"github.com/tierdev/tier-cli/internal/redact"
	"github.com/tierdev/tier-cli/internal/tier"
)

// printCommandError writes one error report: the message, the usage line
// for usage errors, the redacted remote error body, and a hint.
func printCommandError(w io.Writer, err error) {
	if err == nil {
		return
	}

	_, _ = fmt.Fprintln(w, err)
	if usage := clierrors.UsageLine(err); usage != "" {
		_, _ = fmt.Fprintln(w, usage)
	}
	if detail, ok := errorDetail(err); ok {
		_, _ = fmt.Fprintln(w)
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		_ = enc.Encode(detail)
	}
	if suggestion := clierrors.UserSuggestion(err); suggestion != "" {
		_, _ = fmt.Fprintf(w, "Hint: %s\n", suggestion)
	}
}

// errorDetail returns the object printed under a remote error: the parsed
// body when the API answered with JSON, otherwise an envelope describing
// the failure. Both are redacted.
func errorDetail(err error) (any, bool) {
	var apiErr *tier.APIError
	if !errors.As(err, &apiErr) {
		return nil, false
	}
	if body, ok := apiErr.JSONBody(); ok {
		return redact.Value(body), true
	}
	return redact.Value(buildErrorEnvelope(err)), true
}

func buildErrorEnvelope(err error) map[string]interface{} {
	errMap := map[string]interface{}{
		"message": err.Error(),
	}

	var contextual *clierrors.ContextualError
	if errors.As(err, &contextual) {
		errMap["method"] = contextual.Method
		errMap["url"] = contextual.URL
		if contextual.StatusCode > 0 {
			errMap["status"] = contextual.StatusCode
		}
	}

	var apiErr *tier.APIError
	if errors.As(err, &apiErr) {
		errMap["type"] = "tier_api"
		errMap["status"] = apiErr.StatusCode
		if apiErr.ContentType != "" {
			errMap["content_type"] = apiErr.ContentType
		}
		// Bodies that are not JSON cannot be redacted and are left out.
		var body any
		if len(apiErr.Body) > 0 && json.Unmarshal(apiErr.Body, &body) == nil {
			errMap["body"] = body
		}
	}

	return map[string]interface{}{"error": errMap}
}
