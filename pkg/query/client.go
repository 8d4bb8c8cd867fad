// Package query is a small client-side cache of remote reads keyed by
// resource identifier. Readers subscribe to a key; a successful write elsewhere
// invalidates the key, which refetches once and reseeds every subscriber.
package query

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"golang.org/x/sync/singleflight"
)

// FetchFunc loads the current value of a key from its source.
type FetchFunc func(ctx context.Context) (any, error)

// Listener receives every fresh value delivered for a key.
type Listener func(value any)

type entry struct {
	fetch  FetchFunc
	value  any
	loaded bool
	stale  bool
	// gen increases on every invalidation; fetches started under an older
	// generation do not overwrite the entry.
	gen  uint64
	subs map[uint64]Listener

	fetches       int
	invalidations int
}

// Client is the registry of cached queries. Safe for concurrent use.
type Client struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSub uint64
	group   singleflight.Group
	log     *slog.Logger
}

func NewClient(log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		entries: make(map[string]*entry),
		log:     log,
	}
}

// Register binds key to fetch. Registering an existing key replaces the
// fetcher but keeps cached data and subscribers.
func (c *Client) Register(key string, fetch FetchFunc) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if e, ok := c.entries[key]; ok {
		e.fetch = fetch
		return
	}
	c.entries[key] = &entry{fetch: fetch, subs: make(map[uint64]Listener)}
}

// Fetch returns the cached value, loading it if absent or stale.
func (c *Client) Fetch(ctx context.Context, key string) (any, error) {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil, fmt.Errorf("query %q is not registered", key)
	}
	if e.loaded && !e.stale {
		v := e.value
		c.mu.Unlock()
		return v, nil
	}
	c.mu.Unlock()

	v, _, err := c.load(ctx, key)
	return v, err
}

// load runs the fetcher, deduplicating concurrent loads of the same
// generation. The bool reports whether the result was stored.
func (c *Client) load(ctx context.Context, key string) (any, bool, error) {
	c.mu.Lock()
	e := c.entries[key]
	gen := e.gen
	fetch := e.fetch
	c.mu.Unlock()

	if fetch == nil {
		return nil, false, fmt.Errorf("query %q has no fetcher", key)
	}

	type result struct {
		value  any
		stored bool
	}

	res, err, _ := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		v, err := fetch(ctx)
		if err != nil {
			return nil, err
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		e.fetches++
		if e.gen != gen {
			c.log.Debug("Discarding query result from before invalidation", "key", key, "gen", gen, "current", e.gen)
			return result{value: v}, nil
		}
		e.value = v
		e.loaded = true
		e.stale = false
		return result{value: v, stored: true}, nil
	})
	if err != nil {
		return nil, false, err
	}
	r := res.(result)
	return r.value, r.stored, nil
}

// Subscribe registers fn for fresh values of key. The returned func
// removes the subscription.
func (c *Client) Subscribe(key string, fn Listener) func() {
	c.mu.Lock()
	defer c.mu.Unlock()

	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: make(map[uint64]Listener)}
		c.entries[key] = e
	}
	c.nextSub++
	id := c.nextSub
	e.subs[id] = fn

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		delete(e.subs, id)
	}
}

// Invalidate marks key stale, refetches it once and hands the fresh value
// to every subscriber. With no subscribers the key is only marked stale and
// the next Fetch reloads it.
func (c *Client) Invalidate(ctx context.Context, key string) error {
	c.mu.Lock()
	e, ok := c.entries[key]
	if !ok {
		c.mu.Unlock()
		return nil
	}
	e.gen++
	e.stale = true
	e.invalidations++
	hasSubs := len(e.subs) > 0
	hasFetch := e.fetch != nil
	c.mu.Unlock()

	c.log.Debug("Query invalidated", "key", key)
	if !hasSubs || !hasFetch {
		return nil
	}

	v, stored, err := c.load(ctx, key)
	if err != nil {
		return fmt.Errorf("refetch %q: %w", key, err)
	}
	if !stored {
		return nil
	}

	c.mu.Lock()
	listeners := make([]Listener, 0, len(e.subs))
	for _, fn := range e.subs {
		listeners = append(listeners, fn)
	}
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(v)
	}
	return nil
}

// Stats reports how often key was fetched and invalidated.
func (c *Client) Stats(key string) (fetches, invalidations int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e, ok := c.entries[key]; ok {
		return e.fetches, e.invalidations
	}
	return 0, 0
}
