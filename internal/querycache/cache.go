// Package querycache is the client-side store of fetched API responses,
// keyed by resource path.
//
// Reads go through Query, which fetches on a miss or a stale entry.
// Writes never touch the map directly: a mutation calls Invalidate, which
// marks entries stale and then refetches every key somebody is subscribed to.
package querycache

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

type FetchFunc func(ctx context.Context) (any, error)

type QueryResult struct {
	Data      any
	IsLoading bool
	Err       error
	FetchedAt time.Time
}

type entry struct {
	data      any
	err       error
	stale     bool
	fetchedAt time.Time
	// gen changes on every invalidation; a fetch started under an older gen
	// may still store its data but cannot mark the entry fresh.
	gen      uint64
	fetch    FetchFunc
	inflight int
	subs     map[int]func(QueryResult)
}

func (e *entry) result() QueryResult {
	return QueryResult{
		Data:      e.data,
		IsLoading: e.inflight > 0,
		Err:       e.err,
		FetchedAt: e.fetchedAt,
	}
}

type Cache struct {
	mu      sync.Mutex
	entries map[string]*entry
	nextSub int
	group   singleflight.Group

	staleTime  time.Duration
	retries    int
	retryDelay time.Duration
	now        func() time.Time
}

type Option func(*Cache)

// WithStaleTime lets entries expire on their own. Zero means an entry stays
// fresh until invalidated.
func WithStaleTime(d time.Duration) Option {
	return func(c *Cache) { c.staleTime = d }
}

// WithRetries sets how many extra attempts a failed query gets.
func WithRetries(n int) Option {
	return func(c *Cache) { c.retries = n }
}

func WithRetryDelay(d time.Duration) Option {
	return func(c *Cache) { c.retryDelay = d }
}

func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New returns a cache whose queries retry once.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries: make(map[string]*entry),
		retries: 1,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListKey is the key of a collection, e.g. /api/students.
func ListKey(resource string) string {
	return "/api/" + resource
}

// ItemKey is the key of one record, e.g. /api/students/42.
func ItemKey(resource string, id int) string {
	return fmt.Sprintf("/api/%s/%d", resource, id)
}

func (c *Cache) entryLocked(key string) *entry {
	e, ok := c.entries[key]
	if !ok {
		e = &entry{subs: make(map[int]func(QueryResult))}
		c.entries[key] = e
	}
	return e
}

func (c *Cache) freshLocked(e *entry) bool {
	if e.fetchedAt.IsZero() || e.stale || e.err != nil {
		return false
	}
	return c.staleTime <= 0 || c.now().Sub(e.fetchedAt) < c.staleTime
}

// Query returns the cached result for key, fetching first when there is
// none or it is stale. Concurrent callers for one key share a single fetch.
// fetch becomes the key's refetch function for later invalidations.
func (c *Cache) Query(ctx context.Context, key string, fetch FetchFunc) QueryResult {
	c.mu.Lock()
	e := c.entryLocked(key)
	e.fetch = fetch
	if c.freshLocked(e) {
		result := e.result()
		c.mu.Unlock()
		return result
	}
	gen := e.gen
	c.mu.Unlock()

	return c.refetch(ctx, key, gen)
}

// Get returns what is cached for key without fetching.
func (c *Cache) Get(key string) (QueryResult, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok || (e.fetchedAt.IsZero() && e.err == nil && e.inflight == 0) {
		return QueryResult{}, false
	}
	return e.result(), true
}

// Subscribe calls fn with every result stored under key until the returned
// func is called.
func (c *Cache) Subscribe(key string, fn func(QueryResult)) (unsubscribe func()) {
	c.mu.Lock()
	e := c.entryLocked(key)
	id := c.nextSub
	c.nextSub++
	e.subs[id] = fn
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			delete(e.subs, id)
			c.mu.Unlock()
		})
	}
}

// Invalidate marks the given keys stale, then refetches the subscribed ones
// and returns once those refetches have stored their results. A collection
// key also covers its query-string variants (/api/cards?studentId=1).
func (c *Cache) Invalidate(ctx context.Context, keys ...string) {
	type target struct {
		key string
		gen uint64
	}

	c.mu.Lock()
	var targets []target
	for k, e := range c.entries {
		if !matches(k, keys) {
			continue
		}
		e.stale = true
		e.gen++
		if len(e.subs) > 0 && e.fetch != nil {
			targets = append(targets, target{key: k, gen: e.gen})
		}
	}
	c.mu.Unlock()

	var g errgroup.Group
	for _, t := range targets {
		g.Go(func() error {
			c.refetch(ctx, t.key, t.gen)
			return nil
		})
	}
	g.Wait()
}

func matches(key string, keys []string) bool {
	for _, k := range keys {
		if key == k || strings.HasPrefix(key, k+"?") {
			return true
		}
	}
	return false
}

// refetch runs one shared fetch per key and generation, stores the outcome
// and notifies subscribers outside the lock. Whichever fetch resolves last
// owns the entry.
func (c *Cache) refetch(ctx context.Context, key string, gen uint64) QueryResult {
	v, _, _ := c.group.Do(fmt.Sprintf("%s#%d", key, gen), func() (any, error) {
		c.mu.Lock()
		e := c.entryLocked(key)
		// an earlier flight for this generation may have finished meanwhile
		if e.gen == gen && c.freshLocked(e) {
			result := e.result()
			c.mu.Unlock()
			return result, nil
		}
		fetch := e.fetch
		e.inflight++
		c.mu.Unlock()

		data, err := c.withRetry(ctx, fetch)

		c.mu.Lock()
		e.inflight--
		if err != nil {
			e.err = err
		} else {
			e.data = data
			e.err = nil
			e.fetchedAt = c.now()
			e.stale = e.gen != gen
		}
		result := e.result()
		listeners := make([]func(QueryResult), 0, len(e.subs))
		for _, fn := range e.subs {
			listeners = append(listeners, fn)
		}
		c.mu.Unlock()

		for _, fn := range listeners {
			fn(result)
		}
		return result, nil
	})
	return v.(QueryResult)
}

func (c *Cache) withRetry(ctx context.Context, fetch FetchFunc) (any, error) {
	if fetch == nil {
		return nil, fmt.Errorf("querycache: no fetch function registered")
	}
	for attempt := 0; ; attempt++ {
		data, err := fetch(ctx)
		if err == nil || attempt >= c.retries || ctx.Err() != nil {
			return data, err
		}
		if c.retryDelay > 0 {
			select {
			case <-time.After(c.retryDelay):
			case <-ctx.Done():
				return nil, err
			}
		}
	}
}
