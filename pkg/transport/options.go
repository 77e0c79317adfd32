package transport

import (
	"net/http"

	"go.uber.org/zap"
)

// Option for the API client
type Option func(*Client)

// WithHTTPClient overrides the default http client
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithLogger sets a logger for the client. Requests are logged at debug level.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.l = l
		}
	}
}

// WithUserAgent sets the User-Agent header
func WithUserAgent(agent string) Option {
	return func(c *Client) {
		if agent != "" {
			c.userAgent = agent
		}
	}
}
