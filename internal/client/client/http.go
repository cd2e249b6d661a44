package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/villaresmetals/console/internal/common"
	"github.com/villaresmetals/console/internal/logging"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// HTTPClient is the authenticated request builder. Every call re-reads the
// credential from its CredentialSource, so logins and logouts take effect on
// the next request without rebuilding the client.
type HTTPClient struct {
	baseURL   *url.URL
	http      *http.Client
	creds     CredentialSource
	logger    logging.Logger
	metrics   *Metrics
	requestID func() string
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) {
		c.http = hc
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) {
		c.logger = l
	}
}

func WithMetrics(m *Metrics) Option {
	return func(c *HTTPClient) {
		c.metrics = m
	}
}

// NewHTTPClient builds a request builder rooted at baseURL. creds may be nil,
// in which case only Request.Credential is ever sent.
func NewHTTPClient(baseURL string, creds CredentialSource, opts ...Option) (*HTTPClient, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid base URL %q: scheme and host required", baseURL)
	}

	c := &HTTPClient{
		baseURL:   u,
		http:      &http.Client{Timeout: DefaultTimeout},
		creds:     creds,
		logger:    logging.Nop(),
		requestID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Do sends req. A transport failure, or a 2xx body that cannot be decoded
// into out, returns an error wrapping ErrNetwork. Any HTTP status, including
// 4xx and 5xx, returns a *Response and a nil error; inspect Response.OK or
// Response.Err.
func (c *HTTPClient) Do(ctx context.Context, req Request, out any) (*Response, error) {
	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	httpResp, err := c.http.Do(httpReq)
	if err != nil {
		c.observe(ctx, req, "network", 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	duration := time.Since(start)
	if err != nil {
		c.observe(ctx, req, "network", httpResp.StatusCode, duration)
		return nil, fmt.Errorf("%w: read %s %s: %w", ErrNetwork, req.Method, req.Path, err)
	}

	resp := &Response{
		Method:     req.Method,
		Path:       req.Path,
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
		Duration:   duration,
	}

	if !resp.OK() {
		c.observe(ctx, req, "failure", resp.StatusCode, duration)
		return resp, nil
	}

	if out != nil && len(bytes.TrimSpace(body)) > 0 {
		if err := json.Unmarshal(body, out); err != nil {
			c.observe(ctx, req, "network", resp.StatusCode, duration)
			return nil, fmt.Errorf("%w: decode %s %s: %w", ErrNetwork, req.Method, req.Path, err)
		}
	}

	c.observe(ctx, req, "success", resp.StatusCode, duration)
	return resp, nil
}

func (c *HTTPClient) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	u := c.baseURL.JoinPath(strings.TrimPrefix(req.Path, "/"))
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	httpReq.Header.Set("Content-Type", common.ContentTypeJSON)
	httpReq.Header.Set("Accept", common.ContentTypeJSON)
	httpReq.Header.Set(common.RequestIDHeaderName, c.requestID())

	if req.Anonymous {
		return httpReq, nil
	}

	token := req.Credential
	if token == "" && c.creds != nil {
		stored, ok, err := c.creds.Get(ctx)
		if err != nil {
			return nil, fmt.Errorf("%w: read credential: %w", ErrNetwork, err)
		}
		if ok {
			token = stored
		}
	}
	if token != "" {
		httpReq.Header.Set(common.AuthorizationHeaderName, common.BasicScheme+token)
	}

	return httpReq, nil
}

func (c *HTTPClient) observe(ctx context.Context, req Request, outcome string, status int, d time.Duration) {
	c.metrics.observe(req.Method, outcome, d)
	c.logger.Debug(ctx, "backend request",
		"method", req.Method,
		"path", req.Path,
		"status", status,
		"outcome", outcome,
		"duration", d,
	)
}
