package errors

import (
	"errors"
	"fmt"
)

// UsageError represents bad or missing command-line arguments.
// Usage is the one-line usage string printed after the message.
type UsageError struct {
	Message string
	Usage   string
}

func (e *UsageError) Error() string {
	return e.Message
}

// NewUsageError creates a UsageError for the given usage line.
func NewUsageError(message, usage string) *UsageError {
	return &UsageError{Message: message, Usage: usage}
}

// ConfigError represents an invalid configuration value.
type ConfigError struct {
	Field   string
	Value   string
	Message string
}

func (e *ConfigError) Error() string {
	if e.Value != "" {
		return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Message)
	}
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthError represents authentication failures
type AuthError struct {
	Reason     string
	Suggestion string
	Err        error
}

func (e *AuthError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("authentication error: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("authentication error: %s", e.Reason)
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// AuthRequiredError reports that no credential could be resolved for a
// command that needs one.
func AuthRequiredError(err error) error {
	return &AuthError{
		Reason:     "not logged in",
		Suggestion: "Run 'tier login' in this project, or set TIER_KEY",
		Err:        err,
	}
}

// TransientError is a network or protocol failure that may succeed on retry.
type TransientError struct {
	Op  string
	Err error
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransientError) Unwrap() error {
	return e.Err
}

// FlowError is a terminal device-login failure (denied, expired, or an error
// reported by the authorization server).
type FlowError struct {
	State   string
	Message string
}

func (e *FlowError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("login %s: %s", e.State, e.Message)
	}
	return "login " + e.State
}

// Type checkers
func IsUsageError(err error) bool {
	var e *UsageError
	return errors.As(err, &e)
}

func IsConfigError(err error) bool {
	var e *ConfigError
	return errors.As(err, &e)
}

func IsAuthError(err error) bool {
	var e *AuthError
	return errors.As(err, &e)
}

func IsTransient(err error) bool {
	var e *TransientError
	return errors.As(err, &e)
}

func IsFlowError(err error) bool {
	var e *FlowError
	return errors.As(err, &e)
}

// UserSuggestion returns a suggestion string if err carries one.
func UserSuggestion(err error) string {
	var ae *AuthError
	if errors.As(err, &ae) {
		return ae.Suggestion
	}
	return ""
}

// UsageLine returns the usage string of a UsageError in err's chain.
func UsageLine(err error) string {
	var ue *UsageError
	if errors.As(err, &ue) {
		return ue.Usage
	}
	return ""
}

// ContextualError wraps an error with HTTP request context for debugging.
type ContextualError struct {
	Method     string
	URL        string
	StatusCode int
	Err        error
}

// WrapContext wraps an error with HTTP request context.
// StatusCode can be 0 if the request never completed.
// Returns nil if err is nil.
func WrapContext(method, url string, statusCode int, err error) error {
	if err == nil {
		return nil
	}
	return &ContextualError{
		Method:     method,
		URL:        url,
		StatusCode: statusCode,
		Err:        err,
	}
}

func (e *ContextualError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("%s %s (%d): %s", e.Method, e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("%s %s: %s", e.Method, e.URL, e.Err)
}

func (e *ContextualError) Unwrap() error {
	return e.Err
}
