package output

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/PaesslerAG/jsonpath"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

// normalizeToInterface converts data into the map/slice form the query
// engines understand.
func normalizeToInterface(data interface{}) (interface{}, error) {
	var buf []byte
	switch v := data.(type) {
	case nil, map[string]interface{}, []interface{}, string, bool, float64:
		return data, nil
	case json.RawMessage:
		buf = bytes.TrimSpace(v)
		if len(buf) == 0 {
			return nil, nil
		}
	default:
		b, err := json.Marshal(data)
		if err != nil {
			return nil, fmt.Errorf("failed to encode data: %w", err)
		}
		buf = b
	}
	var out interface{}
	if err := json.Unmarshal(buf, &out); err != nil {
		return nil, fmt.Errorf("failed to decode data: %w", err)
	}
	return out, nil
}

func applyJSONPath(data interface{}, raw string) (interface{}, error) {
	normalized := normalizeJSONPath(raw)
	if normalized == "" {
		return nil, clierrors.NewUsageError("invalid --jsonpath value", "example: --jsonpath '$.plans'")
	}
	value, err := jsonpath.Get(normalized, data)
	if err != nil {
		return nil, clierrors.NewUsageError(fmt.Sprintf("invalid --jsonpath value: %v", err), "example: --jsonpath '$.plans'")
	}
	return value, nil
}

// normalizeJSONPath accepts "plans", ".plans" and "$.plans" alike.
func normalizeJSONPath(path string) string {
	trimmed := strings.TrimSpace(path)
	switch {
	case trimmed == "":
		return ""
	case strings.HasPrefix(trimmed, "$"), strings.HasPrefix(trimmed, "@"):
		return trimmed
	case strings.HasPrefix(trimmed, "."), strings.HasPrefix(trimmed, "["):
		return "$" + trimmed
	default:
		return "$." + trimmed
	}
}
