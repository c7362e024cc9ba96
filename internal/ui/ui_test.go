package ui

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/muesli/termenv"

	clierrors "github.com/tierdev/tier-cli/internal/errors"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		mode    ColorMode
		noColor string
		want    ColorMode
	}{
		{name: "ColorAuto with NO_COLOR set", mode: ColorAuto, noColor: "1", want: ColorNever},
		{name: "ColorAlways with NO_COLOR set", mode: ColorAlways, noColor: "1", want: ColorNever},
		{name: "ColorNever", mode: ColorNever, want: ColorNever},
		{name: "ColorAlways", mode: ColorAlways, want: ColorAlways},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("NO_COLOR", tt.noColor)

			ui := New(tt.mode)
			if ui == nil {
				t.Fatal("New() returned nil")
			}
			if ui.color != tt.want {
				t.Errorf("New() color mode = %v, want %v", ui.color, tt.want)
			}
		})
	}
}

func TestParseColorMode(t *testing.T) {
	tests := map[string]ColorMode{
		"":       ColorAuto,
		"auto":   ColorAuto,
		"Always": ColorAlways,
		"never":  ColorNever,
	}
	for in, want := range tests {
		got, err := ParseColorMode(in)
		if err != nil || got != want {
			t.Errorf("ParseColorMode(%q) = %v, %v; want %v", in, got, err, want)
		}
	}
	if _, err := ParseColorMode("rainbow"); !clierrors.IsConfigError(err) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestContextIntegration(t *testing.T) {
	ui := New(ColorNever)
	ctx := WithUI(context.Background(), ui)

	if FromContext(ctx) != ui {
		t.Error("FromContext() did not return the same UI instance")
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext() returned nil for context without UI")
	}
}

func TestOutputMethods(t *testing.T) {
	tests := []struct {
		name     string
		fn       func(*UI, string, ...any)
		input    string
		expected string
	}{
		{name: "Success", fn: (*UI).Success, input: "Logged into tier!", expected: "✓ Logged into tier!"},
		{name: "Warning", fn: (*UI).Warning, input: "potential issue", expected: "⚠ potential issue"},
		{name: "Error", fn: (*UI).Error, input: "something failed", expected: "✗ something failed"},
		{name: "Info", fn: (*UI).Info, input: "Waiting...", expected: "ℹ Waiting..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			ui := NewWithWriter(&buf, ColorNever)

			tt.fn(ui, tt.input)

			output := strings.TrimSpace(buf.String())
			if !strings.Contains(output, tt.expected) {
				t.Errorf("%s output = %q, want to contain %q", tt.name, output, tt.expected)
			}
		})
	}
}

func TestOutputMethodsWithFormatting(t *testing.T) {
	var buf bytes.Buffer
	ui := NewWithWriter(&buf, ColorNever)

	ui.Success("project: %s", "/work/app")

	expected := "✓ project: /work/app"
	if !strings.Contains(buf.String(), expected) {
		t.Errorf("Success with formatting = %q, want to contain %q", buf.String(), expected)
	}
}

func TestColorNeverHasNoEscapes(t *testing.T) {
	var buf bytes.Buffer
	ui := NewWithWriter(&buf, ColorNever)
	ui.Error("boom")
	_, _ = buf.WriteString(ui.Code("ABCD-EFGH"))

	if strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("unexpected escape sequence in %q", buf.String())
	}
}

func TestColorAlwaysHasEscapes(t *testing.T) {
	t.Setenv("NO_COLOR", "")
	var buf bytes.Buffer
	ui := NewWithWriter(&buf, ColorAlways)
	ui.Success("ok")

	if !strings.Contains(buf.String(), "\x1b[") {
		t.Errorf("expected escape sequence in %q", buf.String())
	}
}

func TestWriter(t *testing.T) {
	ui := New(ColorNever)
	if ui.Writer() == nil {
		t.Fatal("Writer() returned nil")
	}
	if ui.Writer() != ui.out {
		t.Error("Writer() did not return the underlying output writer")
	}
	if ui.out.Profile != termenv.Ascii {
		t.Errorf("ColorNever should use Ascii profile, got %v", ui.out.Profile)
	}
}
