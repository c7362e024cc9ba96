// Package cmdutil holds input helpers shared by tier commands.
package cmdutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/tierdev/tier-cli/internal/validate"
)

// ReadInputSource reads input from a file path, or from stdin when path is "-".
func ReadInputSource(path string, stdin io.Reader) (string, error) {
	data, err := readSource(path, stdin)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readSource(path string, stdin io.Reader) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("input file path is required")
	}
	if path == "-" {
		if stdin == nil {
			stdin = os.Stdin
		}
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %q: %w", path, err)
	}
	return data, nil
}

// ResolveBody resolves a request body given inline, as @file, or as "-"
// for stdin. Inline values are returned unchanged.
func ResolveBody(raw string, stdin io.Reader) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "-" {
		return ReadInputSource("-", stdin)
	}
	if strings.HasPrefix(trimmed, "@") {
		return ReadInputSource(trimmed[1:], stdin)
	}
	return raw, nil
}

// NormalizeJSONInput unwraps double-serialized JSON strings when possible.
// If the input is a JSON string containing JSON, it returns the inner JSON.
// Only one level is removed; anything else is returned unchanged.
func NormalizeJSONInput(raw string) string {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return raw
	}

	var inner string
	if err := json.Unmarshal([]byte(trimmed), &inner); err != nil {
		return raw
	}

	innerTrimmed := strings.TrimSpace(inner)
	if innerTrimmed == "" {
		return raw
	}
	if json.Valid([]byte(innerTrimmed)) {
		return innerTrimmed
	}

	return raw
}

// ParseModel strips JSONC comments and trailing commas from data and returns
// the compacted JSON document. The document must be a JSON object.
func ParseModel(data []byte) (json.RawMessage, error) {
	stripped := jsonc.ToJSON(data)

	var buf bytes.Buffer
	if err := json.Compact(&buf, stripped); err != nil {
		return nil, fmt.Errorf("parsing pricing model: %w", err)
	}
	if err := validate.JSONObject("pricing model", buf.Bytes()); err != nil {
		return nil, err
	}
	return json.RawMessage(buf.Bytes()), nil
}

// ReadModel reads a pricing model from path ("-" for stdin) and parses it
// with ParseModel.
func ReadModel(path string, stdin io.Reader) (json.RawMessage, error) {
	data, err := readSource(path, stdin)
	if err != nil {
		return nil, err
	}
	model, err := ParseModel(data)
	if err != nil {
		if path == "-" {
			return nil, err
		}
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return model, nil
}
