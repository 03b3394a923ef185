package content

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"compagnie-lumen.org/web/internal/cms"
)

// DefaultRevalidate is how long a resolved record is served before it is recomputed.
const DefaultRevalidate = 300 * time.Second

// Cache applies a time-based revalidation policy on top of a Resolver and an Enumerator.
// Concurrent misses for one key share a single fetch; not-found results are never stored.
type Cache struct {
	resolver   *Resolver
	enumerator *Enumerator
	pages      *ttlCache[Resolution]
	lists      *ttlCache[[]cms.Item]
}

// CacheOption customises a Cache.
type CacheOption func(*Cache)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.pages.now = now
			c.lists.now = now
		}
	}
}

// NewCache wraps resolver and enumerator. A non-positive ttl uses DefaultRevalidate.
func NewCache(resolver *Resolver, enumerator *Enumerator, ttl time.Duration, opts ...CacheOption) *Cache {
	if ttl <= 0 {
		ttl = DefaultRevalidate
	}
	c := &Cache{
		resolver:   resolver,
		enumerator: enumerator,
		pages:      newTTLCache(ttl, cloneResolution),
		lists:      newTTLCache(ttl, cloneItems),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Resolve is the cached form of Resolver.Resolve.
func (c *Cache) Resolve(ctx context.Context, logicalPath []string, loc string) (cms.Item, error) {
	res, err := c.ResolveWithSource(ctx, logicalPath, loc)
	if err != nil {
		return cms.Item{}, err
	}
	return res.Item, nil
}

// ResolveWithSource is the cached form of Resolver.ResolveWithSource.
func (c *Cache) ResolveWithSource(ctx context.Context, logicalPath []string, loc string) (Resolution, error) {
	joined, ok := joinLogicalPath(logicalPath)
	if !ok {
		return Resolution{}, ErrNotFound
	}
	key := loc + "|" + joined
	return c.pages.get(ctx, key, func(ctx context.Context) (Resolution, error) {
		return c.resolver.ResolveWithSource(ctx, logicalPath, loc)
	})
}

// Items is the cached form of Enumerator.Items. Partial listings are returned with their
// error and not stored.
func (c *Cache) Items(ctx context.Context, typeTag string) ([]cms.Item, error) {
	return c.lists.get(ctx, typeTag, func(ctx context.Context) ([]cms.Item, error) {
		return c.enumerator.Items(ctx, typeTag)
	})
}

// Purge drops every cached entry.
func (c *Cache) Purge() {
	c.pages.purge()
	c.lists.purge()
}

type cacheEntry[T any] struct {
	value   T
	expires time.Time
}

type ttlCache[T any] struct {
	mu    sync.RWMutex
	items map[string]cacheEntry[T]
	group singleflight.Group
	ttl   time.Duration
	now   func() time.Time
	clone func(T) T
}

func newTTLCache[T any](ttl time.Duration, clone func(T) T) *ttlCache[T] {
	return &ttlCache[T]{
		items: map[string]cacheEntry[T]{},
		ttl:   ttl,
		now:   time.Now,
		clone: clone,
	}
}

type loadResult[T any] struct {
	value T
	err   error
}

func (c *ttlCache[T]) get(ctx context.Context, key string, load func(context.Context) (T, error)) (T, error) {
	c.mu.RLock()
	entry, ok := c.items[key]
	c.mu.RUnlock()
	if ok && !c.now().After(entry.expires) {
		return c.clone(entry.value), nil
	}

	// The shared load must outlive any single caller's cancellation.
	shared := context.WithoutCancel(ctx)
	v, _, _ := c.group.Do(key, func() (any, error) {
		value, err := load(shared)
		if err == nil {
			c.mu.Lock()
			c.items[key] = cacheEntry[T]{value: c.clone(value), expires: c.now().Add(c.ttl)}
			c.mu.Unlock()
		} else if errors.Is(err, ErrNotFound) {
			c.mu.Lock()
			delete(c.items, key)
			c.mu.Unlock()
		}
		return loadResult[T]{value: value, err: err}, nil
	})
	res := v.(loadResult[T])
	return c.clone(res.value), res.err
}

func (c *ttlCache[T]) purge() {
	c.mu.Lock()
	c.items = map[string]cacheEntry[T]{}
	c.mu.Unlock()
}

func cloneResolution(r Resolution) Resolution {
	r.Item = r.Item.Clone()
	return r
}

func cloneItems(items []cms.Item) []cms.Item {
	if items == nil {
		return nil
	}
	out := make([]cms.Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}
