package output

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{in: "", want: FormatJSON},
		{in: "json", want: FormatJSON},
		{in: " YAML ", want: FormatYAML},
		{in: "yml", want: FormatYAML},
		{in: "text", want: FormatText},
		{in: "table", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				if !clierrors.IsConfigError(err) {
					t.Fatalf("expected ConfigError, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseFormat(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPrintRawJSONIndentsTwoSpaces(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON)

	raw := json.RawMessage(`{"plans":{"plan:free@0":{"title":"Free"}},"total":12345678901234567890}`)
	if err := p.Print(context.Background(), raw); err != nil {
		t.Fatalf("Print: %v", err)
	}

	want := "{\n  \"plans\": {\n    \"plan:free@0\": {\n      \"title\": \"Free\"\n    }\n  },\n  \"total\": 12345678901234567890\n}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintEmptyRawJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), json.RawMessage(nil)); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if buf.String() != "null\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintInvalidRawJSON(t *testing.T) {
	var buf bytes.Buffer
	err := NewPrinter(&buf, FormatJSON).Print(context.Background(), json.RawMessage(`{nope`))
	if err == nil {
		t.Fatal("expected error")
	}
}

func TestPrintStructJSON(t *testing.T) {
	type info struct {
		Host string `json:"host"`
		HTML string `json:"html"`
	}

	var buf bytes.Buffer
	if err := NewPrinter(&buf, FormatJSON).Print(context.Background(), info{Host: "api.tier.run", HTML: "<b>"}); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "{\n  \"host\": \"api.tier.run\",\n  \"html\": \"<b>\"\n}\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintYAML(t *testing.T) {
	var buf bytes.Buffer
	data := map[string]interface{}{"org": "acme", "plans": []interface{}{"free"}}
	if err := NewPrinter(&buf, FormatYAML).Print(context.Background(), data); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "org: acme\nplans:\n  - free\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintText(t *testing.T) {
	tests := []struct {
		name string
		data interface{}
		want string
	}{
		{
			name: "object sorted",
			data: map[string]interface{}{"url": "https://api.tier.run", "debug": false, "nested": map[string]interface{}{"a": 1}},
			want: "debug: false\nnested: {\"a\":1}\nurl: https://api.tier.run\n",
		},
		{
			name: "list",
			data: []interface{}{"a", 2, nil},
			want: "a\n2\n\n",
		},
		{
			name: "scalar",
			data: "/work/app",
			want: "/work/app\n",
		},
		{
			name: "raw json object",
			data: json.RawMessage(`{"org":"org:acme"}`),
			want: "org: org:acme\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			if err := NewPrinter(&buf, FormatText).Print(context.Background(), tt.data); err != nil {
				t.Fatalf("Print: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintWithQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".plans | keys[]")
	raw := json.RawMessage(`{"plans":{"plan:pro@1":{},"plan:free@0":{}}}`)

	if err := NewPrinter(&buf, FormatJSON).Print(ctx, raw); err != nil {
		t.Fatalf("Print: %v", err)
	}
	want := "\"plan:free@0\"\n\"plan:pro@1\"\n"
	if buf.String() != want {
		t.Errorf("output = %q, want %q", buf.String(), want)
	}
}

func TestPrintWithQueryText(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".org")
	if err := NewPrinter(&buf, FormatText).Print(ctx, json.RawMessage(`{"org":"org:acme"}`)); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if buf.String() != "org:acme\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintInvalidQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".plans | ")
	err := NewPrinter(&buf, FormatJSON).Print(ctx, json.RawMessage(`{}`))
	if !clierrors.IsUsageError(err) {
		t.Fatalf("expected UsageError, got %v", err)
	}
	if !strings.Contains(err.Error(), "invalid --query") {
		t.Errorf("error = %q", err.Error())
	}
}

func TestPrintQueryRuntimeError(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithQuery(context.Background(), ".org + 1")
	err := NewPrinter(&buf, FormatJSON).Print(ctx, json.RawMessage(`{"org":"org:acme"}`))
	if err == nil || !strings.Contains(err.Error(), "query error") {
		t.Fatalf("expected query error, got %v", err)
	}
}

func TestPrintWithJSONPath(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{path: "$.org", want: "\"org:acme\"\n"},
		{path: ".org", want: "\"org:acme\"\n"},
		{path: "org", want: "\"org:acme\"\n"},
		{path: "$.plans[1]", want: "\"plan:pro@1\"\n"},
	}

	raw := json.RawMessage(`{"org":"org:acme","plans":["plan:free@0","plan:pro@1"]}`)
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			var buf bytes.Buffer
			ctx := WithJSONPath(context.Background(), tt.path)
			if err := NewPrinter(&buf, FormatJSON).Print(ctx, raw); err != nil {
				t.Fatalf("Print: %v", err)
			}
			if buf.String() != tt.want {
				t.Errorf("output = %q, want %q", buf.String(), tt.want)
			}
		})
	}
}

func TestPrintJSONPathThenQuery(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithJSONPath(context.Background(), "$.plans")
	ctx = WithQuery(ctx, "length")
	raw := json.RawMessage(`{"plans":["plan:free@0","plan:pro@1"]}`)

	if err := NewPrinter(&buf, FormatJSON).Print(ctx, raw); err != nil {
		t.Fatalf("Print: %v", err)
	}
	if buf.String() != "2\n" {
		t.Errorf("output = %q", buf.String())
	}
}

func TestPrintJSONPathMissingKey(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithJSONPath(context.Background(), "$.missing")
	err := NewPrinter(&buf, FormatJSON).Print(ctx, json.RawMessage(`{"org":"org:acme"}`))
	if !clierrors.IsUsageError(err) {
		t.Fatalf("expected UsageError, got %v", err)
	}
}

func TestNormalizeJSONPath(t *testing.T) {
	tests := map[string]string{
		"":    "",
		"  ":  "",
		"$.a": "$.a",
		"@.a": "@.a",
		".a":  "$.a",
		"[0]": "$[0]",
		"a.b": "$.a.b",
	}
	for in, want := range tests {
		if got := normalizeJSONPath(in); got != want {
			t.Errorf("normalizeJSONPath(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestContextDefaults(t *testing.T) {
	ctx := context.Background()
	if FormatFromContext(ctx) != FormatJSON {
		t.Errorf("default format = %q", FormatFromContext(ctx))
	}
	if QueryFromContext(ctx) != "" || JSONPathFromContext(ctx) != "" {
		t.Error("expected empty query and jsonpath")
	}

	ctx = WithFormat(ctx, FormatYAML)
	if FormatFromContext(ctx) != FormatYAML {
		t.Errorf("format = %q", FormatFromContext(ctx))
	}
}
