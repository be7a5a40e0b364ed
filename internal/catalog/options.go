package catalog

import (
	"context"
	"sync"
	"time"

	"github.com/SonAcx/Customer360/internal/model"
)

// FilterOptionsCache memoizes the city/state pick-list for a fixed TTL. The
// list changes rarely and the query scans the whole master, so one hour of
// staleness is an accepted trade here. Presence data is never cached. No
// eviction beyond expiry; the key space is a single empty query.
type FilterOptionsCache struct {
	src Catalog
	ttl time.Duration
	now func() time.Time

	mu        sync.Mutex
	opts      []model.FilterOption
	fetchedAt time.Time
}

// NewFilterOptionsCache wraps a catalog with a TTL memo of FilterOptions.
func NewFilterOptionsCache(src Catalog, ttl time.Duration) *FilterOptionsCache {
	return &FilterOptionsCache{src: src, ttl: ttl, now: time.Now}
}

// Options returns the cached pick-list, refreshing it from the catalog when
// the TTL has lapsed. A refresh failure is returned as-is; the previous
// value is not served stale.
func (c *FilterOptionsCache) Options(ctx context.Context) ([]model.FilterOption, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.opts != nil && c.now().Sub(c.fetchedAt) < c.ttl {
		return c.opts, nil
	}

	opts, err := c.src.FilterOptions(ctx)
	if err != nil {
		return nil, err
	}
	if opts == nil {
		opts = []model.FilterOption{}
	}
	c.opts = opts
	c.fetchedAt = c.now()
	return c.opts, nil
}
