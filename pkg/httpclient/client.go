package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ErrServerStatus marks 5xx responses so callers and the circuit breaker can
// distinguish upstream failures from client errors.
var ErrServerStatus = errors.New("upstream server error")

// Client wraps http.Client with sane timeouts and helpers for talking to
// external services.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default 10 second request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithTransport overrides the underlying transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		c.httpClient.Transport = rt
	}
}

// New creates a client rooted at baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Do sends the request and reads the full body. Responses with a 5xx status
// return an error wrapping ErrServerStatus.
func (c *Client) Do(req *http.Request) (int, []byte, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return resp.StatusCode, nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return resp.StatusCode, body, fmt.Errorf("%w: status %d", ErrServerStatus, resp.StatusCode)
	}

	return resp.StatusCode, body, nil
}

// Post sends a POST with the given body and content type, relative to the
// client's base URL.
func (c *Client) Post(ctx context.Context, path, contentType string, body io.Reader) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, body)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", contentType)

	return c.Do(req)
}
