// Package shaarli is a client for the Shaarli REST API v1.
//
// Every operation is described by an entry of the endpoint registry. A call
// is validated against that entry, built into a method, path and parameter
// set, signed with a fresh HS512 token and sent:
//
//	client, err := shaarli.New("https://links.example.org", secret)
//	if err != nil {
//		return err
//	}
//	resp, err := client.Request(ctx, "get-links", nil, shaarli.Params{"limit": "all"})
package shaarli

import (
	"context"
	stderrors "errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/shaarli/shaarli-client-go/internal/auth"
	"github.com/shaarli/shaarli-client-go/internal/endpoint"
	"github.com/shaarli/shaarli-client-go/internal/errors"
	httpclient "github.com/shaarli/shaarli-client-go/internal/http"
	"github.com/shaarli/shaarli-client-go/internal/logger"
	"github.com/shaarli/shaarli-client-go/internal/metrics"
)

// Params maps parameter names to values.
type Params = endpoint.Params

// Response is a completed API response, whatever its status code.
type Response = httpclient.Response

// credential is checked once at construction.
type credential struct {
	URI    string `validate:"required"`
	Secret string `validate:"required"`
}

var (
	validate = validator.New()

	missingCredential = map[string]string{
		"URI":    "missing Shaarli URI",
		"Secret": "missing Shaarli secret",
	}
)

// Client talks to one Shaarli instance. It is safe for sequential use; each
// call signs its own token.
type Client struct {
	uri    string
	secret string

	config  httpclient.ClientConfig
	log     *logger.Logger
	now     func() time.Time
	metrics *metrics.Collector

	transport *httpclient.Client
}

// New creates a client for the instance at uri. Trailing slashes are
// stripped from uri. An empty uri or secret is a configuration error.
func New(uri, secret string, opts ...Option) (*Client, error) {
	c := &Client{
		uri:     strings.TrimRight(uri, "/"),
		secret:  secret,
		config:  httpclient.DefaultClientConfig(),
		log:     logger.Nop(),
		now:     time.Now,
		metrics: metrics.New(),
	}

	if err := validate.Struct(credential{URI: c.uri, Secret: c.secret}); err != nil {
		var fieldErrs validator.ValidationErrors
		if stderrors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
			return nil, errors.NewConfigurationError(missingCredential[fieldErrs[0].Field()])
		}
		return nil, errors.NewConfigurationErrorf("invalid credentials: %v", err)
	}

	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}

	signer := auth.NewJWTAuth(c.secret).WithClock(c.now)
	c.transport = httpclient.NewClient(c.config, signer, c.log)
	c.log = c.log.WithComponent("client").WithField("instance", c.uri)

	return c, nil
}

// URI returns the instance URI without trailing slash.
func (c *Client) URI() string {
	return c.uri
}

// Stats returns the accounting of every call made by the client.
func (c *Client) Stats() *metrics.Snapshot {
	return c.metrics.Snapshot()
}

// Request validates params against the named endpoint, builds the call and
// sends it. HTTP error statuses are returned as responses, not errors.
func (c *Client) Request(ctx context.Context, name string, resource interface{}, params Params) (*Response, error) {
	if err := endpoint.Validate(name, params); err != nil {
		return nil, err
	}

	call, err := Build(name, resource, params)
	if err != nil {
		return nil, err
	}

	return c.Do(ctx, name, call)
}

// Do sends a call built by Build.
func (c *Client) Do(ctx context.Context, name string, call *Call) (*Response, error) {
	log := c.log.WithEndpoint(name)
	log.Debugf("%s %s", call.Method, call.Path)

	resp, err := c.transport.Send(ctx, httpclient.Request{
		Method:  call.Method,
		BaseURI: c.uri,
		Path:    call.Path,
		Params:  call.Params,
	})
	if err != nil {
		// Only transport failures count as attempted requests.
		if errors.IsTransport(err) {
			c.metrics.RecordRequest(name, 0)
		}
		c.metrics.RecordError(errors.GetErrorType(err).String())
		log.WithError(err).Debug("request failed")
		return nil, err
	}

	c.metrics.RecordRequest(name, resp.BytesSent)
	c.metrics.RecordResponse(resp.StatusCode, int64(len(resp.Body)), resp.Duration)

	return resp, nil
}
