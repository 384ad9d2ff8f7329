package httpx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Fetch downloads the body at url with a GET request, retrying transient
// failures. Any status other than 200 is an error.
func (rc *RetryClient) Fetch(ctx context.Context, url string, maxAttempts int, delay time.Duration) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("error while creating the request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	response, err := rc.DoRetry(req, maxAttempts, delay)
	if err != nil {
		return nil, fmt.Errorf("error while fetching %s: %w", url, err)
	}
	defer func() { _ = response.Body.Close() }()

	if response.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("error while fetching %s: unexpected status code: %d", url, response.StatusCode)
	}

	body, err := io.ReadAll(response.Body)
	if err != nil {
		return nil, fmt.Errorf("error while reading the response body: %w", err)
	}
	return body, nil
}
