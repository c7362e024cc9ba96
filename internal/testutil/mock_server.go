// Package testutil provides testing utilities for the tier CLI.
package testutil

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// Request is a request the mock server received.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// MockServer provides a test HTTP server for API mocking.
type MockServer struct {
	server   *httptest.Server
	handlers map[string]http.HandlerFunc
	requests []Request
	mu       sync.RWMutex
}

// NewMockServer creates a new mock server.
func NewMockServer() *MockServer {
	ms := &MockServer{
		handlers: make(map[string]http.HandlerFunc),
	}

	ms.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := r.Method + " " + r.URL.Path

		body, _ := io.ReadAll(r.Body)
		r.Body = io.NopCloser(bytes.NewReader(body))

		ms.mu.Lock()
		ms.requests = append(ms.requests, Request{
			Method: r.Method,
			Path:   r.URL.Path,
			Header: r.Header.Clone(),
			Body:   body,
		})
		handler, ok := ms.handlers[key]
		ms.mu.Unlock()

		if ok {
			handler(w, r)
			return
		}

		http.NotFound(w, r)
	}))

	return ms
}

// URL returns the server's base URL.
func (ms *MockServer) URL() string {
	return ms.server.URL
}

// Close shuts down the server.
func (ms *MockServer) Close() {
	ms.server.Close()
}

// Handle registers a custom handler for a method+path.
func (ms *MockServer) Handle(method, path string, handler http.HandlerFunc) {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers[method+" "+path] = handler
}

// HandleJSON registers a handler that returns JSON with the given status.
func (ms *MockServer) HandleJSON(method, path string, status int, response interface{}) {
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_ = json.NewEncoder(w).Encode(response)
	})
}

// HandleSequence registers a handler that answers with each JSON response in
// turn, repeating the last one once the list is exhausted.
func (ms *MockServer) HandleSequence(method, path string, status []int, responses []interface{}) {
	var mu sync.Mutex
	i := 0
	ms.Handle(method, path, func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		n := i
		if i < len(responses)-1 {
			i++
		}
		mu.Unlock()

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status[n])
		_ = json.NewEncoder(w).Encode(responses[n])
	})
}

// HandleError registers a handler that returns a tier API error.
func (ms *MockServer) HandleError(method, path string, status int, code, message string) {
	ms.HandleJSON(method, path, status, map[string]interface{}{
		"status":  status,
		"code":    code,
		"message": message,
	})
}

// HandleOAuthError registers a handler that returns an OAuth error body,
// as the login endpoints do.
func (ms *MockServer) HandleOAuthError(method, path string, status int, code string) {
	ms.HandleJSON(method, path, status, map[string]interface{}{
		"error": code,
	})
}

// Requests returns the requests received so far.
func (ms *MockServer) Requests() []Request {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	out := make([]Request, len(ms.requests))
	copy(out, ms.requests)
	return out
}

// LastRequest returns the most recent request, or nil if none arrived.
func (ms *MockServer) LastRequest() *Request {
	ms.mu.RLock()
	defer ms.mu.RUnlock()
	if len(ms.requests) == 0 {
		return nil
	}
	r := ms.requests[len(ms.requests)-1]
	return &r
}

// Reset clears all registered handlers and recorded requests.
func (ms *MockServer) Reset() {
	ms.mu.Lock()
	defer ms.mu.Unlock()
	ms.handlers = make(map[string]http.HandlerFunc)
	ms.requests = nil
}
