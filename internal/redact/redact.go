// Package redact scrubs credentials from values before they are printed.
package redact

import (
	"encoding/json"
	"net/http"
	"strings"
)

// Marker replaces every redacted value.
const Marker = "{redacted}"

// TokenKeys are JSON keys that carry secrets in tier API payloads.
var TokenKeys = []string{"authorization", "access_token", "refresh_token", "device_code"}

// Value returns a copy of v with every map entry whose key is
// "authorization" (in any case) replaced by Marker. Maps and slices are
// walked recursively; other values are returned unchanged.
func Value(v any) any {
	return walk(v, []string{"authorization"})
}

// Keys is like Value but redacts the given keys, compared case-insensitively.
func Keys(v any, keys ...string) any {
	return walk(v, keys)
}

func walk(v any, keys []string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if matches(k, keys) {
				out[k] = Marker
				continue
			}
			out[k] = walk(val, keys)
		}
		return out
	case map[string]string:
		out := make(map[string]any, len(t))
		for k, val := range t {
			if matches(k, keys) {
				out[k] = Marker
				continue
			}
			out[k] = val
		}
		return out
	case http.Header:
		out := make(map[string]any, len(t))
		for k, vals := range t {
			if matches(k, keys) {
				out[k] = Marker
				continue
			}
			out[k] = strings.Join(vals, ", ")
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = walk(val, keys)
		}
		return out
	default:
		return v
	}
}

func matches(k string, keys []string) bool {
	for _, key := range keys {
		if strings.EqualFold(k, key) {
			return true
		}
	}
	return false
}

// JSON redacts TokenKeys inside a JSON document. Input that is not valid
// JSON, or that mentions none of the keys, is returned unchanged.
func JSON(data []byte) []byte {
	lower := strings.ToLower(string(data))
	found := false
	for _, key := range TokenKeys {
		if strings.Contains(lower, `"`+key+`"`) {
			found = true
			break
		}
	}
	if !found {
		return data
	}

	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return data
	}
	out, err := json.Marshal(Keys(v, TokenKeys...))
	if err != nil {
		return data
	}
	return out
}

// Authorization redacts an Authorization header value, keeping the scheme.
func Authorization(value string) string {
	if value == "" {
		return ""
	}
	if scheme, _, ok := strings.Cut(value, " "); ok {
		return scheme + " " + Marker
	}
	return Marker
}

// Secret returns Marker for any non-empty secret.
func Secret(s string) string {
	if s == "" {
		return ""
	}
	return Marker
}
