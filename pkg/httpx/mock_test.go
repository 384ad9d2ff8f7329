package httpx_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"sync"
)

// mockRoundTripper is a mock implementation of http.RoundTripper.
// It allows us to simulate different network responses (success, failure)
// for each attempt, without making real network calls.
type mockRoundTripper struct {
	// A slice of functions, where each function represents the outcome
	// of one `Do` attempt.
	responses []func(*http.Request) (*http.Response, error)
	// attempt tracks the current call number.
	attempt int
}

// RoundTrip satisfies the http.RoundTripper interface. It invokes the response
// function corresponding to the current attempt number.
func (m *mockRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	// Going out of bounds means the client made more calls than configured.
	if m.attempt >= len(m.responses) {
		return nil, errors.New("mockRoundTripper: too many attempts")
	}

	responseFunc := m.responses[m.attempt]
	m.attempt++
	return responseFunc(req)
}

// mockReadCloser is a response body that records whether it was closed.
type mockReadCloser struct {
	reader io.Reader
	mu     sync.Mutex
	closed bool
}

// newMockReadCloser creates a new mock body from a string.
func newMockReadCloser(data string) *mockReadCloser {
	return &mockReadCloser{reader: strings.NewReader(data)}
}

// Read satisfies the io.Reader interface, delegating to the internal reader.
func (m *mockReadCloser) Read(p []byte) (n int, err error) {
	return m.reader.Read(p)
}

// Close satisfies the io.Closer interface. It records that it has been called.
func (m *mockReadCloser) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	return nil
}

// isClosed safely checks if the Close method has been called.
func (m *mockReadCloser) isClosed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

// respond returns a response function with the given status and body.
func respond(status int, body io.ReadCloser) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{StatusCode: status, Body: body}, nil
	}
}
