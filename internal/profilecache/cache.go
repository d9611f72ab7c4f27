// Package profilecache memoises the public ATProto profile API behind
// a TTL-bounded, readers-writer-locked map, bounding outbound fetch
// concurrency with a semaphore.
package profilecache

import (
	"context"
	"sync"
	"time"
)

const (
	// DefaultTTL is how long a cached profile is considered fresh.
	DefaultTTL = 4 * time.Hour

	// maxConcurrentFetches bounds outbound profile fetches in flight
	// at any one time, across all callers of a single Cache.
	maxConcurrentFetches = 4
)

// entry is a cached (fetched-at, profile) pair. Once it is older than
// the cache's TTL, lookups treat it as absent and the next successful
// fetch overwrites it; it is not deleted otherwise.
type entry struct {
	fetchedAt time.Time
	user      User
}

// Fetcher retrieves a profile from the network. It is the one
// suspension point in Cache.Get.
type Fetcher interface {
	FetchProfile(ctx context.Context, did string) (User, error)
}

// Cache memoises User lookups by DID. The zero value is not usable;
// build one with New.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]entry

	fetcher Fetcher
	ttl     time.Duration
	sem     chan struct{}
}

// New builds a Cache backed by fetcher, using ttl (DefaultTTL if zero)
// and a fetch concurrency bound of 4.
func New(fetcher Fetcher, ttl time.Duration) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		entries: make(map[string]entry),
		fetcher: fetcher,
		ttl:     ttl,
		sem:     make(chan struct{}, maxConcurrentFetches),
	}
}

// Get returns the profile for did, fetching on miss or on a stale hit
// (age >= ttl). There is no negative caching: a fetch error is
// returned to the caller, who decides whether to insert a placeholder
// via Put. The fetch itself happens outside any lock; only the map
// insert is a (brief) writer critical section.
func (c *Cache) Get(ctx context.Context, did string) (User, error) {
	if u, ok := c.lookup(did); ok {
		return u, nil
	}

	select {
	case c.sem <- struct{}{}:
	case <-ctx.Done():
		return User{}, ctx.Err()
	}
	defer func() { <-c.sem }()

	u, err := c.fetcher.FetchProfile(ctx, did)
	if err != nil {
		return User{}, err
	}

	c.Put(did, u)
	return u, nil
}

// lookup returns the cached user for did if present and fresher than
// ttl. A stale entry is treated as absent (the next successful Get
// will overwrite it via Put).
func (c *Cache) lookup(did string) (User, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	e, ok := c.entries[did]
	if !ok || time.Since(e.fetchedAt) >= c.ttl {
		return User{}, false
	}
	return e.user, true
}

// Put inserts or overwrites the cached entry for did, stamped with the
// current time. Get calls it after every successful fetch.
func (c *Cache) Put(did string, u User) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[did] = entry{fetchedAt: time.Now(), user: u}
}
