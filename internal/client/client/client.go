package client

import (
	"context"
	"net/http"
	"net/url"
	"time"
)

// Client issues requests against the backend REST API. The console's caches
// and session depend on this interface; HTTPClient is the implementation.
type Client interface {
	Do(ctx context.Context, req Request, out any) (*Response, error)
}

// CredentialSource yields the encoded credential to decorate requests with.
// ok is false when no credential is persisted.
type CredentialSource interface {
	Get(ctx context.Context) (token string, ok bool, err error)
}

// Request describes one call to the backend.
type Request struct {
	Method string
	Path   string
	Query  url.Values
	// Body is JSON-encoded when non-nil.
	Body any
	// Credential, when set, is sent instead of the persisted one.
	Credential string
	// Anonymous suppresses the Authorization header entirely.
	Anonymous bool
}

// Response is any HTTP response received from the backend, successful or not.
type Response struct {
	Method     string
	Path       string
	StatusCode int
	Header     http.Header
	Body       []byte
	Duration   time.Duration
}

// OK reports a 2xx status.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// Err returns nil for 2xx and a *StatusError otherwise.
func (r *Response) Err() error {
	if r.OK() {
		return nil
	}
	return &StatusError{Method: r.Method, Path: r.Path, Code: r.StatusCode}
}
