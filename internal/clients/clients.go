// Package clients talks to the remote services the loader depends on: the
// config service that owns column schemas and the partner service.
package clients

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// maxResponseBytes bounds how much of a response body is read.
const maxResponseBytes = 1 << 20

// ErrNotFound is wrapped by StatusError for 404 responses.
var ErrNotFound = errors.New("not found")

// StatusError is returned when a remote service answers with a non-2xx status.
type StatusError struct {
	Service    string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s service: GET %s: status %d", e.Service, e.URL, e.StatusCode)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Unwrap lets errors.Is(err, ErrNotFound) match 404 responses.
func (e *StatusError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	return nil
}

// baseClient holds the shared HTTP plumbing of the service clients.
type baseClient struct {
	service string
	baseURL string
	http    *http.Client
}

func newBaseClient(service, baseURL string, timeout time.Duration) baseClient {
	return baseClient{
		service: service,
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: timeout},
	}
}

// get issues a GET for the path built from segments, each one escaped,
// and returns the response body.
func (c baseClient) get(ctx context.Context, segments ...string) ([]byte, error) {
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	target := c.baseURL + "/" + strings.Join(escaped, "/")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, fmt.Errorf("%s service: build request: %w", c.service, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s service: GET %s: %w", c.service, target, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%s service: read response: %w", c.service, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{
			Service:    c.service,
			URL:        target,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(truncate(string(body), 200)),
		}
	}
	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
