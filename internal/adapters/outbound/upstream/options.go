package upstream

import (
	"net/http"
	"time"
)

// Option configures the upstream Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled HTTP client, mostly for tests.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithTimeout bounds every forwarded call, including reading the response.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.timeout = timeout
	}
}

// WithMaxResponseBytes caps the buffered response body. Zero disables the cap.
func WithMaxResponseBytes(limit int64) Option {
	return func(c *Client) {
		c.maxResponseBytes = limit
	}
}
