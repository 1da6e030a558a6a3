package shaarli

import (
	"net/http"
	"time"

	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/logger"
)

// Option is a functional option for configuring the Client.
type Option func(*Client) error

// WithInsecure disables TLS certificate verification.
func WithInsecure(insecure bool) Option {
	return func(c *Client) error {
		c.config.SkipTLSVerify = insecure
		return nil
	}
}

// WithTimeout bounds each request. Zero disables the timeout.
func WithTimeout(timeout time.Duration) Option {
	return func(c *Client) error {
		if timeout < 0 {
			return errors.NewConfigurationErrorf("negative timeout %s", timeout)
		}
		c.config.Timeout = timeout
		return nil
	}
}

// WithLogger sets the logger.
func WithLogger(l *logger.Logger) Option {
	return func(c *Client) error {
		if l != nil {
			c.log = l
		}
		return nil
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) error {
		if ua != "" {
			c.config.UserAgent = ua
		}
		return nil
	}
}

// WithHTTPClient replaces the underlying HTTP client. WithInsecure and
// WithTimeout have no effect on a replaced client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) error {
		c.config.HTTPClient = hc
		return nil
	}
}

// WithClock sets the clock used for the token issued-at claim.
func WithClock(now func() time.Time) Option {
	return func(c *Client) error {
		if now == nil {
			return errors.NewConfigurationError("nil clock")
		}
		c.now = now
		return nil
	}
}
