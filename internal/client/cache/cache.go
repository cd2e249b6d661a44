// Package cache keeps per-entity snapshots of the backend collections.
//
// A Cache never patches its collection locally. Loads replace it wholesale
// with the server's answer, mutations only report success, and callers
// reload afterwards to observe server-assigned fields. A failed load keeps
// the previous collection visible and records LastError.
//
// Every fetch draws a sequence number and only commits if no later fetch
// has committed first, so a slow early response cannot overwrite a newer
// one. Loading stays true while any fetch is in flight.
package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"sync"

	"github.com/villaresmetals/console/internal/client/client"
	"github.com/villaresmetals/console/internal/client/models"
	"github.com/villaresmetals/console/internal/logging"
)

// Snapshot is a consistent view of a cache's state.
type Snapshot[T any] struct {
	Items     []T
	Loading   bool
	LastError error
}

// Option configures a cache.
type Option func(*settings)

type settings struct {
	logger         logging.Logger
	onUnauthorized func(context.Context)
}

func WithLogger(l logging.Logger) Option {
	return func(s *settings) {
		s.logger = l
	}
}

// OnUnauthorized registers fn to run whenever an operation gets a 401.
func OnUnauthorized(fn func(ctx context.Context)) Option {
	return func(s *settings) {
		s.onUnauthorized = fn
	}
}

// Cache mirrors one backend collection endpoint.
type Cache[T any] struct {
	name   string
	path   string
	client client.Client
	schema models.Schema[T]
	settings

	mu        sync.Mutex
	items     []T
	lastErr   error
	inflight  int
	issued    uint64
	committed uint64
}

// New returns an empty cache for the collection at path.
func New[T any](name, path string, c client.Client, schema models.Schema[T], opts ...Option) *Cache[T] {
	s := settings{logger: logging.Nop()}
	for _, opt := range opts {
		opt(&s)
	}
	return &Cache[T]{
		name:     name,
		path:     "/" + strings.Trim(path, "/"),
		client:   c,
		schema:   schema,
		settings: s,
		items:    []T{},
	}
}

func (c *Cache[T]) Name() string {
	return c.name
}

// Snapshot returns the collection, loading flag and last error together.
func (c *Cache[T]) Snapshot() Snapshot[T] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot[T]{Items: slices.Clone(c.items), Loading: c.inflight > 0, LastError: c.lastErr}
}

func (c *Cache[T]) Items() []T {
	return c.Snapshot().Items
}

func (c *Cache[T]) Loading() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inflight > 0
}

func (c *Cache[T]) LastError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Load replaces the collection with the server's list.
func (c *Cache[T]) Load(ctx context.Context) error {
	return c.fetch(ctx, "load", client.Request{Method: http.MethodGet, Path: c.path})
}

// Fetch reads a single record without touching the collection.
func (c *Cache[T]) Fetch(ctx context.Context, id int) (T, error) {
	var zero T
	resp, err := c.send(ctx, "fetch", client.Request{Method: http.MethodGet, Path: c.itemPath(id)})
	if err != nil {
		return zero, err
	}
	v, err := c.schema.Decode(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%w: %w", client.ErrNetwork, err)
	}
	return v, nil
}

// Add creates item on the server. The collection is left as is.
func (c *Cache[T]) Add(ctx context.Context, item T) error {
	return c.mutate(ctx, "add", http.MethodPost, c.path, item)
}

// Update replaces the record id on the server. The collection is left as is.
func (c *Cache[T]) Update(ctx context.Context, id int, item T) error {
	return c.mutate(ctx, "update", http.MethodPut, c.itemPath(id), item)
}

// Remove deletes the record id on the server. The collection is left as is.
func (c *Cache[T]) Remove(ctx context.Context, id int) error {
	_, err := c.send(ctx, "remove", client.Request{Method: http.MethodDelete, Path: c.itemPath(id)})
	return err
}

func (c *Cache[T]) mutate(ctx context.Context, op, method, path string, item T) error {
	body, err := c.schema.Encode(item)
	if err != nil {
		return err
	}
	_, err = c.send(ctx, op, client.Request{Method: method, Path: path, Body: json.RawMessage(body)})
	return err
}

// fetch runs a list request and commits its result under the fencing rule.
func (c *Cache[T]) fetch(ctx context.Context, op string, req client.Request) error {
	seq := c.begin()

	var items []T
	resp, err := c.send(ctx, op, req)
	if err == nil {
		items, err = c.schema.DecodeList(resp.Body)
		if err != nil {
			err = fmt.Errorf("%w: %w", client.ErrNetwork, err)
		}
	}

	if !c.finish(seq, items, err) {
		c.logger.Debug(ctx, "discarded superseded response", "cache", c.name, "op", op, "seq", seq)
	}
	return err
}

func (c *Cache[T]) begin() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.issued++
	c.inflight++
	return c.issued
}

// finish reports whether the result was committed.
func (c *Cache[T]) finish(seq uint64, items []T, err error) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.inflight--
	if seq <= c.committed {
		return false
	}
	c.committed = seq
	if err != nil {
		c.lastErr = err
		return true
	}
	c.items = items
	c.lastErr = nil
	return true
}

// send issues req and turns any non-2xx into an error, firing the
// unauthorized hook on 401.
func (c *Cache[T]) send(ctx context.Context, op string, req client.Request) (*client.Response, error) {
	resp, err := c.client.Do(ctx, req, nil)
	if err == nil {
		err = resp.Err()
	}
	if err == nil {
		return resp, nil
	}

	c.logger.Warn(ctx, "cache operation failed", "cache", c.name, "op", op, "kind", client.Kind(err).String(), "error", err)
	if client.Kind(err) == client.KindUnauthorized && c.onUnauthorized != nil {
		c.onUnauthorized(ctx)
	}
	return nil, fmt.Errorf("%s %s: %w", c.name, op, err)
}

func (c *Cache[T]) itemPath(id int) string {
	return c.path + "/" + strconv.Itoa(id)
}
