package shaarli

import (
	"bytes"
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/shaarli/shaarli-client-go/internal/errors"
	"github.com/shaarli/shaarli-client-go/internal/logger"
)

const testSecret = "s3kr37!"

type recordedRequest struct {
	method string
	path   string
	query  map[string][]string
	auth   string
	agent  string
	body   map[string]interface{}
}

type testServer struct {
	*httptest.Server
	requests atomic.Int32

	mu   sync.Mutex
	last recordedRequest
}

func (ts *testServer) Last() recordedRequest {
	ts.mu.Lock()
	defer ts.mu.Unlock()
	return ts.last
}

func newTestServer(t *testing.T, status int, response string) *testServer {
	t.Helper()
	ts := &testServer{}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.requests.Add(1)
		data, _ := io.ReadAll(r.Body)
		ts.mu.Lock()
		ts.last = recordedRequest{
			method: r.Method,
			path:   r.URL.Path,
			query:  r.URL.Query(),
			auth:   r.Header.Get("Authorization"),
			agent:  r.Header.Get("User-Agent"),
		}
		if len(data) > 0 {
			json.Unmarshal(data, &ts.last.body)
		}
		ts.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		io.WriteString(w, response)
	}))
	t.Cleanup(ts.Close)
	return ts
}

func issuedAt(t *testing.T, header string) int64 {
	t.Helper()

	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok {
		t.Fatalf("Authorization = %q, want Bearer token", header)
	}
	parsed, err := jwt.Parse(token, func(*jwt.Token) (interface{}, error) {
		return []byte(testSecret), nil
	}, jwt.WithValidMethods([]string{"HS512"}))
	if err != nil {
		t.Fatalf("jwt.Parse() error: %v", err)
	}
	iat, err := parsed.Claims.GetIssuedAt()
	if err != nil || iat == nil {
		t.Fatalf("iat claim missing: %v", err)
	}
	return iat.Unix()
}

// =============================================================================
// Construction Tests
// =============================================================================

func TestNew_StripsTrailingSlashes(t *testing.T) {
	tests := map[string]string{
		"http://host/shaarli///": "http://host/shaarli",
		"http://host/shaarli/":   "http://host/shaarli",
		"http://host":            "http://host",
	}

	for in, want := range tests {
		c, err := New(in, testSecret)
		if err != nil {
			t.Fatalf("New(%q) error: %v", in, err)
		}
		if c.URI() != want {
			t.Errorf("URI() = %s, want %s", c.URI(), want)
		}
	}
}

func TestNew_MissingCredentials(t *testing.T) {
	tests := []struct {
		name    string
		uri     string
		secret  string
		wantMsg string
	}{
		{"empty uri", "", testSecret, "missing Shaarli URI"},
		{"slashes only", "///", testSecret, "missing Shaarli URI"},
		{"empty secret", "http://host", "", "missing Shaarli secret"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.uri, tt.secret)
			if !errors.IsConfiguration(err) {
				t.Fatalf("New() error = %v, want configuration error", err)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("error = %v, want %q", err, tt.wantMsg)
			}
		})
	}
}

func TestNew_OptionErrors(t *testing.T) {
	if _, err := New("http://host", testSecret, WithTimeout(-time.Second)); !errors.IsConfiguration(err) {
		t.Errorf("WithTimeout(-1s) error = %v, want configuration error", err)
	}
	if _, err := New("http://host", testSecret, WithClock(nil)); !errors.IsConfiguration(err) {
		t.Errorf("WithClock(nil) error = %v, want configuration error", err)
	}
}

// =============================================================================
// Request Tests
// =============================================================================

func TestRequest_SignsEveryCall(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)

	now := time.Unix(1500000000, 0)
	c, err := New(server.URL, testSecret, WithClock(func() time.Time { return now }))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	if _, err := c.GetInfo(context.Background()); err != nil {
		t.Fatalf("GetInfo() error: %v", err)
	}
	if got := issuedAt(t, server.Last().auth); got != 1500000000 {
		t.Errorf("iat = %d, want 1500000000", got)
	}

	now = now.Add(90 * time.Second)
	if _, err := c.GetInfo(context.Background()); err != nil {
		t.Fatalf("GetInfo() error: %v", err)
	}
	if got := issuedAt(t, server.Last().auth); got != 1500000090 {
		t.Errorf("iat = %d, want 1500000090", got)
	}
}

func TestRequest_GetLinks(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `[]`)
	c, _ := New(server.URL+"/", testSecret)

	resp, err := c.GetLinks(context.Background(), Params{
		"offset":     42,
		"limit":      "all",
		"searchtags": []string{"go", "rust"},
	})
	if err != nil {
		t.Fatalf("GetLinks() error: %v", err)
	}

	if server.Last().method != http.MethodGet || server.Last().path != "/api/v1/links" {
		t.Errorf("request = %s %s", server.Last().method, server.Last().path)
	}
	q := server.Last().query
	if q["offset"][0] != "42" || q["limit"][0] != "all" || q["searchtags"][0] != "go rust" {
		t.Errorf("query = %v", q)
	}
	if string(resp.Body) != `[]` {
		t.Errorf("Body = %s", resp.Body)
	}
}

func TestRequest_PutLink(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"id":46}`)
	c, _ := New(server.URL, testSecret)

	_, err := c.PutLink(context.Background(), 46, Params{
		"title": []string{"New", "title"},
		"tags":  []string{"a", "b"},
	})
	if err != nil {
		t.Fatalf("PutLink() error: %v", err)
	}

	if server.Last().method != http.MethodPut || server.Last().path != "/api/v1/links/46" {
		t.Errorf("request = %s %s", server.Last().method, server.Last().path)
	}
	if server.Last().body["title"] != "New title" {
		t.Errorf("body = %v", server.Last().body)
	}
	tags, _ := server.Last().body["tags"].([]interface{})
	if len(tags) != 2 {
		t.Errorf("tags = %v", server.Last().body["tags"])
	}
}

func TestRequest_TagHelpers(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New(server.URL, testSecret)
	ctx := context.Background()

	tests := []struct {
		name       string
		call       func() (*Response, error)
		wantMethod string
		wantPath   string
	}{
		{"get-tags", func() (*Response, error) { return c.GetTags(ctx, Params{"visibility": "private"}) }, http.MethodGet, "/api/v1/tags"},
		{"get-tag", func() (*Response, error) { return c.GetTag(ctx, "go") }, http.MethodGet, "/api/v1/tags/go"},
		{"put-tag", func() (*Response, error) { return c.PutTag(ctx, "go", Params{"name": "golang"}) }, http.MethodPut, "/api/v1/tags/go"},
		{"delete-tag", func() (*Response, error) { return c.DeleteTag(ctx, "go") }, http.MethodDelete, "/api/v1/tags/go"},
		{"delete-link", func() (*Response, error) { return c.DeleteLink(ctx, 12) }, http.MethodDelete, "/api/v1/links/12"},
		{"post-link", func() (*Response, error) { return c.PostLink(ctx, Params{"url": "https://example.org"}) }, http.MethodPost, "/api/v1/links"},
		{"get-history", func() (*Response, error) { return c.GetHistory(ctx, Params{"limit": "5"}) }, http.MethodGet, "/api/v1/history"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := tt.call(); err != nil {
				t.Fatalf("%s error: %v", tt.name, err)
			}
			if server.Last().method != tt.wantMethod || server.Last().path != tt.wantPath {
				t.Errorf("request = %s %s, want %s %s",
					server.Last().method, server.Last().path, tt.wantMethod, tt.wantPath)
			}
		})
	}
}

func TestRequest_ValidationStopsBeforeSending(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New(server.URL, testSecret)

	_, err := c.Request(context.Background(), "post-link", nil, Params{
		"url":    "https://example.org",
		"zzz":    1,
		"author": "me",
	})

	var valErr *errors.ValidationError
	if !stderrors.As(err, &valErr) {
		t.Fatalf("error = %v, want *ValidationError", err)
	}
	if valErr.Endpoint != "post-link" {
		t.Errorf("Endpoint = %s, want post-link", valErr.Endpoint)
	}
	for _, key := range []string{"post-link", "zzz", "author"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error = %v, missing %q", err, key)
		}
	}
	if server.requests.Load() != 0 {
		t.Errorf("server received %d requests, want 0", server.requests.Load())
	}
}

func TestRequest_ErrorStatusReturnsResponse(t *testing.T) {
	server := newTestServer(t, http.StatusUnauthorized, `{"message":"Invalid JWT"}`)
	c, _ := New(server.URL, testSecret)

	resp, err := c.GetInfo(context.Background())
	if err != nil {
		t.Fatalf("GetInfo() error: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("StatusCode = %d, want 401", resp.StatusCode)
	}

	stats := c.Stats()
	if stats.StatusCodes[http.StatusUnauthorized] != 1 {
		t.Errorf("StatusCodes = %v", stats.StatusCodes)
	}
}

func TestRequest_TransportError(t *testing.T) {
	c, _ := New("htp://shaarli", testSecret)

	_, err := c.GetInfo(context.Background())
	if !errors.IsTransport(err) {
		t.Fatalf("error = %v, want transport error", err)
	}

	stats := c.Stats()
	if stats.RequestsTotal != 1 || stats.ErrorsTotal != 1 || stats.ErrorCounts["invalid_url"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestDo_EncodingErrorIsNotCounted(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New(server.URL, testSecret)

	_, err := c.Do(context.Background(), "post-link", &Call{
		Method: http.MethodPost,
		Path:   "links",
		Params: Params{"url": make(chan int)},
	})
	if errors.GetErrorType(err) != errors.Parse {
		t.Fatalf("error = %v, want parse error", err)
	}
	if server.requests.Load() != 0 {
		t.Errorf("server received %d requests, want 0", server.requests.Load())
	}

	stats := c.Stats()
	if stats.RequestsTotal != 0 || stats.ErrorCounts["parse"] != 1 {
		t.Errorf("stats = %+v", stats)
	}
}

func TestRequest_Stats(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{"ok":true}`)
	c, _ := New(server.URL, testSecret)
	ctx := context.Background()

	c.GetInfo(ctx)
	c.PostLink(ctx, Params{"url": "https://example.org"})

	stats := c.Stats()
	if stats.RequestsTotal != 2 {
		t.Errorf("RequestsTotal = %d, want 2", stats.RequestsTotal)
	}
	if stats.Endpoints["get-info"] != 1 || stats.Endpoints["post-link"] != 1 {
		t.Errorf("Endpoints = %v", stats.Endpoints)
	}
	if stats.BytesSent == 0 {
		t.Error("BytesSent should count the JSON body")
	}
	if stats.BytesReceived != int64(2*len(`{"ok":true}`)) {
		t.Errorf("BytesReceived = %d", stats.BytesReceived)
	}
}

// =============================================================================
// Option Tests
// =============================================================================

type countingTransport struct {
	calls atomic.Int32
	next  http.RoundTripper
}

func (c *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	c.calls.Add(1)
	return c.next.RoundTrip(r)
}

func TestWithHTTPClient(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	transport := &countingTransport{next: http.DefaultTransport}

	c, err := New(server.URL, testSecret, WithHTTPClient(&http.Client{Transport: transport}))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := c.GetInfo(context.Background()); err != nil {
		t.Fatalf("GetInfo() error: %v", err)
	}
	if transport.calls.Load() != 1 {
		t.Errorf("custom transport used %d times, want 1", transport.calls.Load())
	}
}

func TestWithUserAgent(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	c, _ := New(server.URL, testSecret, WithUserAgent("my-agent/1.0"))

	c.GetInfo(context.Background())
	if server.Last().agent != "my-agent/1.0" {
		t.Errorf("User-Agent = %q", server.Last().agent)
	}
}

func TestWithTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	c, _ := New(server.URL, testSecret, WithTimeout(20*time.Millisecond))
	_, err := c.GetInfo(context.Background())
	if errors.GetErrorType(err) != errors.Timeout {
		t.Errorf("error type = %v (%v), want timeout", errors.GetErrorType(err), err)
	}
}

func TestWithInsecure(t *testing.T) {
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, `{}`)
	}))
	defer server.Close()

	secure, _ := New(server.URL, testSecret)
	if _, err := secure.GetInfo(context.Background()); errors.GetErrorType(err) != errors.TLS {
		t.Errorf("error = %v, want TLS error", err)
	}

	insecure, _ := New(server.URL, testSecret, WithInsecure(true))
	if _, err := insecure.GetInfo(context.Background()); err != nil {
		t.Errorf("insecure GetInfo() error: %v", err)
	}
}

func TestWithLogger_InstanceField(t *testing.T) {
	server := newTestServer(t, http.StatusOK, `{}`)
	var buf bytes.Buffer
	log := logger.New(logger.Config{Level: logger.DebugLevel, Output: &buf})

	c, err := New(server.URL+"/", testSecret, WithLogger(log))
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	if _, err := c.GetInfo(context.Background()); err != nil {
		t.Fatalf("GetInfo() error: %v", err)
	}

	want := `"instance":"` + server.URL + `"`
	if !strings.Contains(buf.String(), want) {
		t.Errorf("log = %s, want %s", buf.String(), want)
	}
}
