// Package http sends authenticated requests to a Shaarli instance.
package http

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/idna"

	"github.com/shaarli/shaarli-client-go/internal/auth"
	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/logger"
)

// APIVersion is the only Shaarli REST API version spoken by the client.
const APIVersion = 1

// Client sends one request at a time to a Shaarli instance.
type Client struct {
	client    *http.Client
	userAgent string
	auth      auth.Provider
	log       *logger.Logger
}

// ClientConfig holds configuration for the HTTP client.
type ClientConfig struct {
	// Timeout bounds the whole round trip; zero means no timeout.
	Timeout       time.Duration
	UserAgent     string
	SkipTLSVerify bool
	// HTTPClient replaces the client built from the fields above.
	HTTPClient *http.Client
}

// DefaultClientConfig returns the defaults: TLS verification on, no timeout.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		UserAgent: "shaarli-client-go",
	}
}

// NewClient creates a new HTTP client authenticating with provider.
func NewClient(config ClientConfig, provider auth.Provider, log *logger.Logger) *Client {
	if log == nil {
		log = logger.Nop()
	}
	if provider == nil {
		provider = &auth.NoAuth{}
	}
	log = log.WithComponent("http")

	httpClient := config.HTTPClient
	if httpClient == nil {
		transport := &http.Transport{
			Proxy: http.ProxyFromEnvironment,
			DialContext: (&net.Dialer{
				Timeout:   30 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   10 * time.Second,
			ExpectContinueTimeout: 1 * time.Second,
			ForceAttemptHTTP2:     true,
			TLSClientConfig: &tls.Config{
				InsecureSkipVerify: config.SkipTLSVerify,
			},
		}
		httpClient = &http.Client{
			Transport: transport,
			Timeout:   config.Timeout,
		}
	}

	if config.SkipTLSVerify {
		log.Warn("TLS certificate verification is disabled (insecure mode)")
	}

	return &Client{
		client:    httpClient,
		userAgent: config.UserAgent,
		auth:      provider,
		log:       log,
	}
}

// Request is one API call.
type Request struct {
	Method string
	// BaseURI is the instance URI without trailing slash.
	BaseURI string
	// Path is relative to the API root, e.g. "links/12".
	Path   string
	Params map[string]interface{}
}

// Response is the outcome of a completed round trip, whatever its status.
type Response struct {
	StatusCode  int
	Status      string
	Header      http.Header
	Body        []byte
	ContentType string
	RequestID   string
	Duration    time.Duration
	// BytesSent is the size of the JSON request body, zero for GET.
	BytesSent int64
}

// EndpointURI returns the full URI of path on the instance.
func EndpointURI(baseURI, path string) string {
	return fmt.Sprintf("%s/api/v%d/%s", baseURI, APIVersion, path)
}

// Send performs the request. GET parameters are query-encoded, every other
// method sends them as a JSON body. Non-2xx responses are returned as-is.
func (c *Client) Send(ctx context.Context, r Request) (*Response, error) {
	start := time.Now()
	target := EndpointURI(r.BaseURI, r.Path)

	u, err := ValidateURL(target)
	if err != nil {
		return nil, err
	}

	var body io.Reader
	var sent int64
	if r.Method == http.MethodGet {
		if query := EncodeQuery(r.Params); len(query) > 0 {
			u.RawQuery = query.Encode()
		}
	} else {
		params := r.Params
		if params == nil {
			params = map[string]interface{}{}
		}
		data, err := json.Marshal(params)
		if err != nil {
			return nil, errors.NewParseError("request_encoding", err)
		}
		body = bytes.NewReader(data)
		sent = int64(len(data))
	}

	req, err := http.NewRequestWithContext(ctx, r.Method, u.String(), body)
	if err != nil {
		return nil, errors.NewInvalidURLError(target, err.Error())
	}

	requestID := uuid.NewString()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Signed at send time so every request carries a fresh token.
	headers, err := c.auth.Headers()
	if err != nil {
		return nil, errors.NewConfigurationErrorf("cannot sign request: %v", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	c.log.Debugf("%s %s", r.Method, u.String())

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, errors.Categorize(err, target)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.NewNetworkError(target, "body_read", err)
	}

	result := &Response{
		StatusCode:  resp.StatusCode,
		Status:      resp.Status,
		Header:      resp.Header,
		Body:        data,
		ContentType: resp.Header.Get("Content-Type"),
		RequestID:   requestID,
		Duration:    time.Since(start),
		BytesSent:   sent,
	}

	c.log.RequestEvent(r.Method, target, requestID, resp.StatusCode, result.Duration)
	if httpErr := errors.CategorizeHTTPStatus(resp.StatusCode, target); httpErr != nil {
		if httpErr.Type == errors.ServerError {
			c.log.Errorf("%s returned %s (%s)", target, resp.Status, httpErr.Type)
		} else {
			c.log.Warnf("%s returned %s (%s)", target, resp.Status, httpErr.Type)
		}
	}

	return result, nil
}

// ValidateURL parses raw and rejects URIs that cannot address an instance:
// missing scheme, scheme other than http(s), missing or invalid host.
func ValidateURL(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return nil, errors.NewInvalidURLError(raw, err.Error())
	}

	switch u.Scheme {
	case "":
		return nil, errors.NewInvalidURLError(raw, "no scheme supplied")
	case "http", "https":
	default:
		return nil, errors.NewInvalidURLError(raw, fmt.Sprintf("unsupported scheme %q", u.Scheme))
	}

	host := u.Hostname()
	if host == "" {
		return nil, errors.NewInvalidURLError(raw, "no host supplied")
	}
	if net.ParseIP(host) == nil {
		if _, err := idna.Lookup.ToASCII(host); err != nil {
			return nil, errors.NewInvalidURLError(raw, fmt.Sprintf("invalid host %q: %v", host, err))
		}
	}

	return u, nil
}

// EncodeQuery renders params as query values. Lists repeat the key.
func EncodeQuery(params map[string]interface{}) url.Values {
	values := url.Values{}

	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		switch v := params[k].(type) {
		case nil:
		case string:
			values.Set(k, v)
		case []string:
			for _, item := range v {
				values.Add(k, item)
			}
		case int:
			values.Set(k, strconv.Itoa(v))
		case bool:
			values.Set(k, strconv.FormatBool(v))
		default:
			values.Set(k, fmt.Sprint(v))
		}
	}

	return values
}
