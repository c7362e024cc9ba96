package debug

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/tierdev/tier-cli/internal/redact"
)

const (
	maxRequestBody  = 500
	maxResponseBody = 1000
)

// DebugTransport wraps http.RoundTripper to log requests/responses when debug mode is enabled
type DebugTransport struct {
	Transport http.RoundTripper
	Output    io.Writer
}

// NewDebugTransport creates a new DebugTransport with the given base transport
// If output is nil, it defaults to os.Stderr
func NewDebugTransport(base http.RoundTripper, output io.Writer) *DebugTransport {
	if base == nil {
		base = http.DefaultTransport
	}
	if output == nil {
		output = os.Stderr
	}
	return &DebugTransport{
		Transport: base,
		Output:    output,
	}
}

// RoundTrip implements http.RoundTripper
func (t *DebugTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()

	_, _ = fmt.Fprintf(t.Output, "\n--> %s %s\n", req.Method, req.URL)
	t.writeHeaders(req.Header)

	if req.Body != nil {
		bodyBytes, err := io.ReadAll(req.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [ERROR reading request body: %v]\n", err)
		} else {
			req.Body = io.NopCloser(bytes.NewReader(bodyBytes)) // Restore body for actual request
			t.writeBody(bodyBytes, maxRequestBody)
		}
	}

	resp, err := t.Transport.RoundTrip(req)
	duration := time.Since(start)

	if err != nil {
		_, _ = fmt.Fprintf(t.Output, "<-- ERROR: %v (%s)\n\n", err, duration)
		return resp, err
	}

	_, _ = fmt.Fprintf(t.Output, "<-- %s (%s)\n", resp.Status, duration)
	t.writeHeaders(resp.Header)

	if resp.Body != nil {
		bodyBytes, err := io.ReadAll(resp.Body)
		if err != nil {
			_, _ = fmt.Fprintf(t.Output, "    [ERROR reading response body: %v]\n\n", err)
		} else {
			resp.Body = io.NopCloser(bytes.NewReader(bodyBytes)) // Restore body for caller
			t.writeBody(bodyBytes, maxResponseBody)
		}
	}

	_, _ = fmt.Fprintln(t.Output)
	return resp, err
}

func (t *DebugTransport) writeHeaders(h http.Header) {
	keys := make([]string, 0, len(h))
	for key := range h {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	for _, key := range keys {
		val := strings.Join(h[key], ", ")
		if strings.EqualFold(key, "Authorization") || strings.EqualFold(key, "Set-Cookie") {
			val = redact.Authorization(h.Get(key))
		}
		_, _ = fmt.Fprintf(t.Output, "    %s: %s\n", key, val)
	}
}

// writeBody prints a body with token fields scrubbed and long output cut.
func (t *DebugTransport) writeBody(body []byte, limit int) {
	if len(body) == 0 {
		return
	}
	bodyStr := string(redact.JSON(body))
	if len(bodyStr) > limit {
		bodyStr = bodyStr[:limit] + "... [truncated]"
	}
	_, _ = fmt.Fprintf(t.Output, "    Body: %s\n", bodyStr)
}
