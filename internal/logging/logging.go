// Package logging provides structured logging configuration using slog.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/tierdev/tier-cli/internal/redact"
)

// EnvFormat selects the log handler ("text" or "json").
const EnvFormat = "TIER_LOG_FORMAT"

// handlerType specifies the output format for the logger.
type handlerType int

const (
	handlerText handlerType = iota
	handlerJSON
)

// secretAttrs are attribute keys whose values never reach the log.
var secretAttrs = map[string]bool{
	"authorization": true,
	"token":         true,
	"api_key":       true,
	"key":           true,
	"device_code":   true,
}

func scrub(_ []string, a slog.Attr) slog.Attr {
	if secretAttrs[strings.ToLower(a.Key)] {
		return slog.String(a.Key, redact.Marker)
	}
	return a
}

// setup is the internal helper that configures the global slog logger.
// It reduces duplication between Setup and SetupJSON.
func setup(debug bool, w io.Writer, ht handlerType) {
	if w == nil {
		w = os.Stderr
	}

	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: scrub,
	}

	var handler slog.Handler
	switch ht {
	case handlerJSON:
		handler = slog.NewJSONHandler(w, opts)
	default:
		handler = slog.NewTextHandler(w, opts)
	}

	logger := slog.New(handler)
	slog.SetDefault(logger)
}

// Setup configures the global slog logger with text output.
// If debug is true, sets level to Debug; otherwise Info.
// Output goes to the provided writer (defaults to os.Stderr if nil).
func Setup(debug bool, w io.Writer) {
	setup(debug, w, handlerText)
}

// SetupJSON configures the global slog logger with JSON output.
// If debug is true, sets level to Debug; otherwise Info.
// Output goes to the provided writer (defaults to os.Stderr if nil).
func SetupJSON(debug bool, w io.Writer) {
	setup(debug, w, handlerJSON)
}

// SetupFormat picks the handler by name; anything but "json" is text.
func SetupFormat(debug bool, w io.Writer, format string) {
	if strings.EqualFold(strings.TrimSpace(format), "json") {
		SetupJSON(debug, w)
		return
	}
	Setup(debug, w)
}
