package output

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

// Format represents the output format type.
type Format string

const (
	// FormatJSON is pretty-printed JSON format (default).
	FormatJSON Format = "json"
	// FormatYAML is YAML format.
	FormatYAML Format = "yaml"
	// FormatText is human-readable key-value format.
	FormatText Format = "text"
)

// ParseFormat converts a string to a Format type.
// Empty string defaults to FormatJSON.
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON, "":
		return FormatJSON, nil
	case FormatYAML, "yml":
		return FormatYAML, nil
	case FormatText:
		return FormatText, nil
	default:
		return "", &clierrors.ConfigError{Field: "output", Value: s, Message: "expected json, yaml or text"}
	}
}

// Printer handles output formatting across different formats.
type Printer struct {
	w      io.Writer
	format Format
}

// NewPrinter creates a new Printer that writes to w in the given format.
func NewPrinter(w io.Writer, format Format) *Printer {
	return &Printer{w: w, format: format}
}

// Print outputs data in the configured format after applying any
// --jsonpath and --query transforms found in ctx.
func (p *Printer) Print(ctx context.Context, data interface{}) error {
	query := strings.TrimSpace(QueryFromContext(ctx))
	path := strings.TrimSpace(JSONPathFromContext(ctx))

	// Raw JSON that needs no reshaping is indented as-is so numbers keep
	// their original representation.
	if raw, ok := data.(json.RawMessage); ok && p.format == FormatJSON && query == "" && path == "" {
		return p.printRawJSON(raw)
	}

	normalized, err := normalizeToInterface(data)
	if err != nil {
		return err
	}

	if path != "" {
		normalized, err = applyJSONPath(normalized, path)
		if err != nil {
			return err
		}
	}

	results := []interface{}{normalized}
	if query != "" {
		results, err = runQuery(query, normalized)
		if err != nil {
			return err
		}
	}

	for _, v := range results {
		if err := p.printOne(v); err != nil {
			return err
		}
	}
	return nil
}

func (p *Printer) printOne(v interface{}) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(v)
	case FormatYAML:
		return p.printYAML(v)
	case FormatText:
		return p.printText(v)
	default:
		return fmt.Errorf("unsupported format: %s", p.format)
	}
}

func (p *Printer) printRawJSON(raw json.RawMessage) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		raw = json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return fmt.Errorf("invalid JSON response: %w", err)
	}
	buf.WriteByte('\n')
	_, err := p.w.Write(buf.Bytes())
	return err
}

func (p *Printer) printJSON(v interface{}) error {
	enc := json.NewEncoder(p.w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// printYAML outputs data as YAML.
func (p *Printer) printYAML(v interface{}) error {
	enc := yaml.NewEncoder(p.w)
	enc.SetIndent(2)
	defer func() { _ = enc.Close() }()
	return enc.Encode(v)
}

// printText writes objects as sorted "key: value" lines, lists one item per
// line and scalars verbatim. Nested values are rendered as compact JSON.
func (p *Printer) printText(v interface{}) error {
	switch val := v.(type) {
	case nil:
		return nil
	case map[string]interface{}:
		keys := make([]string, 0, len(val))
		for k := range val {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if _, err := fmt.Fprintf(p.w, "%s: %s\n", k, formatValue(val[k])); err != nil {
				return err
			}
		}
		return nil
	case []interface{}:
		for _, item := range val {
			if _, err := fmt.Fprintln(p.w, formatValue(item)); err != nil {
				return err
			}
		}
		return nil
	default:
		_, err := fmt.Fprintln(p.w, formatValue(val))
		return err
	}
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case map[string]interface{}, []interface{}:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprintf("%v", val)
		}
		return string(b)
	default:
		return fmt.Sprintf("%v", val)
	}
}
