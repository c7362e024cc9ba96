// Package validate checks user-supplied values before they reach the API.
package validate

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
)

// Error names the offending field and why its value was rejected.
type Error struct {
	Field  string
	Reason string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// NonEmpty validates that a required string field is not empty.
func NonEmpty(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return &Error{Field: field, Reason: "cannot be empty"}
	}
	return nil
}

// URL validates that raw is an absolute http or https URL with a host.
func URL(field, raw string) error {
	if raw == "" {
		return &Error{Field: field, Reason: "cannot be empty"}
	}

	u, err := url.Parse(raw)
	if err != nil {
		return &Error{Field: field, Reason: err.Error()}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &Error{Field: field, Reason: "expected an http or https URL"}
	}
	if u.Host == "" {
		return &Error{Field: field, Reason: "missing host"}
	}
	return nil
}

// JSONObject validates that data is a JSON object (not an array, string, etc.).
func JSONObject(field string, data []byte) error {
	if len(strings.TrimSpace(string(data))) == 0 {
		return &Error{Field: field, Reason: "cannot be empty"}
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(data, &obj); err != nil {
		return &Error{Field: field, Reason: "expected a JSON object"}
	}
	return nil
}

// HeaderName validates an HTTP header field name (an RFC 7230 token).
func HeaderName(name string) error {
	if name == "" {
		return &Error{Field: "header", Reason: "name cannot be empty"}
	}
	for _, r := range name {
		if !isTokenRune(r) {
			return &Error{Field: "header", Reason: fmt.Sprintf("invalid character %q in name %q", r, name)}
		}
	}
	return nil
}

func isTokenRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("!#$%&'*+-.^_`|~", r)
}
