// internal/common/http/client.go
package http

import (
	"net/http"
	"time"
)

// Client is the outbound HTTP client shared by collaborators. It stamps
// every request with a fixed set of headers.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
}

func NewClient(timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{},
	}
}

// WithHeader returns the client with an extra header set on every request.
func (c *Client) WithHeader(key, value string) *Client {
	c.headers[key] = value
	return c
}

func (c *Client) Do(req *http.Request) (*http.Response, error) {
	for k, v := range c.headers {
		if req.Header.Get(k) == "" {
			req.Header.Set(k, v)
		}
	}
	return c.httpClient.Do(req)
}
