// Package sdncache owns the in-memory snapshot of the SDN list and its
// demand-driven refresh policy.
package sdncache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/starford/algiz/internal/checksum"
	"github.com/starford/algiz/internal/csvdec"
	"github.com/starford/algiz/internal/models"
	"github.com/starford/algiz/internal/upstream"
)

// Snapshot is one fully-decoded copy of the upstream CSV. It is immutable
// once constructed; a refresh replaces the snapshot wholesale, so a reader
// holding a reference keeps a consistent view regardless of later refreshes.
type Snapshot struct {
	Rows      []models.RawRow
	FetchedAt time.Time
	Checksum  string
}

const refreshKey = "refresh"

// Cache mediates between the slow upstream source and concurrent readers.
//
// The current snapshot lives behind an atomic pointer: reads against a fresh
// cache are lock-free, and replacing it is a single atomic swap, so readers
// never observe a partially-built snapshot and snapshot visibility is
// monotonic. Refreshes are coalesced through a singleflight group — a burst
// of stale readers produces exactly one upstream fetch, with every caller
// attached to its outcome.
//
// A failed refresh never evicts the current snapshot; the previous good copy
// keeps serving until a refresh succeeds.
type Cache struct {
	fetcher upstream.Fetcher
	ttl     time.Duration

	current atomic.Pointer[Snapshot]
	group   singleflight.Group

	mu          sync.Mutex
	lastAttempt time.Time
	lastSuccess time.Time

	// OnRefresh and OnFailure, when non-nil, are invoked from the refresh
	// path after a snapshot swap or a failed cycle. Set before first use.
	OnRefresh func(*Snapshot)
	OnFailure func(error)
}

// New creates a Cache over fetcher with the given freshness window.
func New(fetcher upstream.Fetcher, ttl time.Duration) *Cache {
	return &Cache{fetcher: fetcher, ttl: ttl}
}

// Rows returns the current snapshot's rows, refreshing first when the cache
// is cold or stale.
//
// When a refresh fails but a previous snapshot exists, the stale rows are
// returned TOGETHER with the error: the query path keeps serving, the health
// path reports degraded. Rows is nil only when no fetch has ever succeeded.
func (c *Cache) Rows(ctx context.Context) ([]models.RawRow, error) {
	if snap := c.fresh(); snap != nil {
		return snap.Rows, nil
	}

	v, err, _ := c.group.Do(refreshKey, func() (any, error) {
		// A coalesced caller may arrive just after the previous flight
		// completed; re-check before fetching again.
		if snap := c.fresh(); snap != nil {
			return snap, nil
		}
		return c.refresh(ctx)
	})
	if err != nil {
		if snap := c.current.Load(); snap != nil {
			return snap.Rows, err
		}
		return nil, err
	}
	return v.(*Snapshot).Rows, nil
}

// Snapshot returns the current snapshot, or nil before the first successful
// refresh. It never triggers I/O.
func (c *Cache) Snapshot() *Snapshot {
	return c.current.Load()
}

// Source returns the upstream URL the cache refreshes from.
func (c *Cache) Source() string {
	return c.fetcher.Source()
}

// LastAttempt returns when a refresh cycle last started, successful or not.
func (c *Cache) LastAttempt() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastAttempt
}

// LastSuccess returns when a refresh cycle last replaced the snapshot.
func (c *Cache) LastSuccess() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSuccess
}

func (c *Cache) fresh() *Snapshot {
	snap := c.current.Load()
	if snap != nil && time.Since(snap.FetchedAt) < c.ttl {
		return snap
	}
	return nil
}

// refresh runs one fetch+decode cycle and atomically installs the result.
// Nothing is committed on failure.
func (c *Cache) refresh(ctx context.Context) (*Snapshot, error) {
	c.mu.Lock()
	c.lastAttempt = time.Now()
	c.mu.Unlock()

	raw, err := c.fetcher.Fetch(ctx)
	if err != nil {
		c.failed(err)
		return nil, err
	}

	sum := checksum.Sum([]byte(raw))
	var rows []models.RawRow
	if prev := c.current.Load(); prev != nil && prev.Checksum == sum {
		// Identical content; skip the decode and reuse the rows.
		rows = prev.Rows
	} else {
		rows, err = csvdec.Decode(raw)
		if err != nil {
			c.failed(err)
			return nil, err
		}
	}

	snap := &Snapshot{Rows: rows, FetchedAt: time.Now(), Checksum: sum}
	c.current.Store(snap)

	c.mu.Lock()
	c.lastSuccess = snap.FetchedAt
	c.mu.Unlock()

	if c.OnRefresh != nil {
		c.OnRefresh(snap)
	}
	return snap, nil
}

func (c *Cache) failed(err error) {
	if c.OnFailure != nil {
		c.OnFailure(err)
	}
}
