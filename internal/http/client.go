package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultUserAgent is sent when no other user agent is configured. Some
// image CDNs refuse requests without a browser-like agent.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// StatusError is returned by Get when the server answers with anything but
// 200 OK.
type StatusError struct {
	Code   int
	Status string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Status)
}

// Client wraps HTTP operations with a middleware chain and a timeout.
//
// Example usage:
//
//	client := NewClient(10*time.Second, Chain(
//	    WithUserAgent(DefaultUserAgent),
//	    WithRateLimit(200*time.Millisecond),
//	    WithLogging(),
//	))
//
//	data, err := client.Get(ctx, "https://example.com/cover.jpg")
type Client struct {
	httpClient *http.Client
}

// NewClient creates a client with the given timeout. The middleware wraps
// http.DefaultTransport; pass Passthrough for none.
func NewClient(timeout time.Duration, mw Middleware) *Client {
	if mw == nil {
		mw = Passthrough
	}
	return &Client{
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: mw(http.DefaultTransport),
		},
	}
}

// Get performs a GET request and returns the response body as bytes.
//
// Returns an error if:
//   - The request fails or times out
//   - The response status is not 200 OK (a *StatusError)
//   - Reading the body fails
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &StatusError{Code: resp.StatusCode, Status: resp.Status}
	}

	return io.ReadAll(resp.Body)
}
