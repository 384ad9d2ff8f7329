// Package httpx extends the standard HTTP client with retries. It is used to
// download baseline result files that live on a remote server.
package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrNotRewindable is returned when a request carries a body that cannot be
// replayed for a second attempt.
var ErrNotRewindable = errors.New("GetBody function must be set on the request for retrying")

// RetryClient is an extension of the standard HTTP client.
// It provides a DoRetry method that keeps executing the given request until it succeeds.
// Here, success means the `Do` method returned a response that is not a server error.
type RetryClient struct {
	*http.Client
}

// NewRetryClient returns a RetryClient whose requests time out after timeout.
func NewRetryClient(timeout time.Duration) *RetryClient {
	return &RetryClient{Client: &http.Client{Timeout: timeout}}
}

// DoRetry internally calls the `Do` method of the standard HTTP client on the given request.
// If `Do` returns an error or a 5xx status, the operation is retried up to maxAttempts times.
func (rc *RetryClient) DoRetry(req *http.Request, maxAttempts int, delay time.Duration) (*http.Response, error) {
	// Request must be rewindable for retries. Requests without a body always are.
	hasBody := req.Body != nil && req.Body != http.NoBody
	if hasBody && req.GetBody == nil {
		return nil, ErrNotRewindable
	}

	// This will hold the error that will be returned of all retries fail.
	var errFinal error

	for i := 0; i < maxAttempts; i++ {
		// Clone the request for each attempt.
		reqClone := req.Clone(req.Context())
		reqClone.RequestURI = ""

		// Create a fresh body for this attempt.
		if req.GetBody != nil {
			bodyReader, err := req.GetBody()
			if err != nil {
				return nil, fmt.Errorf("error in the GetBody call: %w", err)
			}
			reqClone.Body = bodyReader
		}

		// Attempt the request.
		response, err := rc.Do(reqClone)
		switch {
		case err != nil:
			errFinal = err
		case response.StatusCode >= http.StatusInternalServerError:
			// Server errors are transient. Drain the body so the connection can be reused.
			_, _ = io.Copy(io.Discard, response.Body)
			_ = response.Body.Close()
			errFinal = fmt.Errorf("unexpected status code: %d", response.StatusCode)
		default:
			// Success! The caller is now responsible for closing the response body.
			return response, nil
		}

		// Don't execute the waiting code if this is the last iteration.
		if i == maxAttempts-1 {
			break
		}

		// Timer to wait before next retry.
		timer := time.NewTimer(delay)
		// Wait before the next retry while respecting the request's context.
		select {
		case <-reqClone.Context().Done():
			timer.Stop()
			return nil, reqClone.Context().Err()
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("all %d attempts failed, last error: %w", maxAttempts, errFinal)
}
