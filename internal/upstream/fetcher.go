// Package upstream fetches the raw SDN CSV snapshot over HTTP.
package upstream

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/starford/algiz/internal/apperr"
)

// Fetcher retrieves one raw CSV document from the configured source.
type Fetcher interface {
	// Fetch performs a single GET and returns the response body as text.
	Fetch(ctx context.Context) (string, error)
	// Source returns the configured upstream URL, for health reporting.
	Source() string
}

// Client is the HTTP Fetcher. It performs exactly one request per call,
// bounded by the configured timeout; retry policy belongs to the caller.
type Client struct {
	url       string
	userAgent string
	http      *http.Client
}

// NewClient creates a Client for url with the given request timeout.
// A nil httpClient falls back to a plain http.Client; the timeout is applied
// either way.
func NewClient(url, userAgent string, timeout time.Duration, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	httpClient.Timeout = timeout
	return &Client{url: url, userAgent: userAgent, http: httpClient}
}

// Source returns the configured upstream URL.
func (c *Client) Source() string {
	return c.url
}

// Fetch GETs the configured URL. Any transport error, timeout, or non-2xx
// status wraps apperr.ErrUpstreamUnavailable carrying the cause.
func (c *Client) Fetch(ctx context.Context) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", apperr.ErrUpstreamUnavailable, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/csv")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", apperr.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: unexpected status %d", apperr.ErrUpstreamUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: read body: %v", apperr.ErrUpstreamUnavailable, err)
	}
	return string(body), nil
}
