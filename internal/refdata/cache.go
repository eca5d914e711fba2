// Package refdata caches the persona and team lists fetched at connect
// time. Entries are keyed by credential and expire after a fixed TTL, so
// a long-lived session picks up roster changes without hammering the API
// on every screen change.
package refdata

import (
	"context"
	"sync"
	"time"

	"eaglepub/internal/api"
)

// DefaultTTL is how long a fetched snapshot stays fresh.
const DefaultTTL = 300 * time.Second

// Fetcher is the slice of the API client the cache depends on.
type Fetcher interface {
	FetchPersonas(ctx context.Context, credential string) ([]api.Persona, error)
	FetchTeams(ctx context.Context, credential string) ([]api.Team, error)
}

// Snapshot is one cached fetch pair.
type Snapshot struct {
	Personas  []api.Persona
	Teams     []api.Team
	FetchedAt time.Time
}

// Stale reports whether the snapshot's age exceeds ttl at the given time.
func (s Snapshot) Stale(now time.Time, ttl time.Duration) bool {
	return now.Sub(s.FetchedAt) > ttl
}

// Cache holds at most one snapshot per credential. Each session owns its
// own Cache; the mutex is there because bubbletea commands run off the
// update goroutine, not for cross-session sharing.
type Cache struct {
	fetcher Fetcher
	ttl     time.Duration
	now     func() time.Time

	mu      sync.Mutex
	entries map[string]Snapshot
}

// CacheOption customizes Cache construction.
type CacheOption func(*Cache)

// WithTTL overrides the snapshot time-to-live.
func WithTTL(ttl time.Duration) CacheOption {
	return func(c *Cache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithClock substitutes the time source for tests.
func WithClock(now func() time.Time) CacheOption {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// New creates a Cache backed by the given fetcher.
func New(fetcher Fetcher, opts ...CacheOption) *Cache {
	c := &Cache{
		fetcher: fetcher,
		ttl:     DefaultTTL,
		now:     time.Now,
		entries: map[string]Snapshot{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the snapshot for the credential, fetching a fresh pair on
// first use, after expiry, or when force is set. A failed fetch leaves any
// previous snapshot in place and is reported to the caller.
func (c *Cache) Get(ctx context.Context, credential string, force bool) (Snapshot, error) {
	c.mu.Lock()
	entry, cached := c.entries[credential]
	c.mu.Unlock()

	if cached && !force && !entry.Stale(c.now(), c.ttl) {
		return entry, nil
	}

	personas, err := c.fetcher.FetchPersonas(ctx, credential)
	if err != nil {
		return Snapshot{}, err
	}
	teams, err := c.fetcher.FetchTeams(ctx, credential)
	if err != nil {
		return Snapshot{}, err
	}

	fresh := Snapshot{Personas: personas, Teams: teams, FetchedAt: c.now()}
	c.mu.Lock()
	c.entries[credential] = fresh
	c.mu.Unlock()
	return fresh, nil
}

// Invalidate drops the entry for one credential, regardless of age.
func (c *Cache) Invalidate(credential string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, credential)
}

// Reset drops every entry. Used by the manual refresh action.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]Snapshot{}
}
