// Package lease caches short-lived upload credentials per segment.
package lease

import (
	"context"
	"sync"
	"time"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/oneconcern/datahub/pkg/model"
)

// Key identifies the segment a lease is scoped to
type Key struct {
	DatasetID string
	Draft     uint32
	Segment   string
}

// RefreshFunc fetches a fresh lease for a segment from the server
type RefreshFunc func(ctx context.Context, key Key) (model.Lease, error)

type entry struct {
	mu    sync.Mutex
	lease model.Lease
}

// Cache of upload leases.
//
// Only one refresh per segment is in flight at any time: concurrent callers
// wait for it and observe the fresh lease. Callers always get their own copy.
type Cache struct {
	settings
	refresh RefreshFunc

	mu      sync.Mutex
	entries map[Key]*entry

	refreshes     atomic.Int64
	invalidations atomic.Int64
}

// New lease cache
func New(refresh RefreshFunc, opts ...Option) *Cache {
	if refresh == nil {
		panic("dev error: lease cache requires a refresh function")
	}
	c := &Cache{
		settings: defaultSettings(),
		refresh:  refresh,
		entries:  make(map[Key]*entry),
	}
	for _, apply := range opts {
		apply(&c.settings)
	}
	return c
}

func (c *Cache) entry(key Key) *entry {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		e = &entry{}
		c.entries[key] = e
	}
	return e
}

// Acquire a valid lease for a segment, refreshing it from the server when expired
func (c *Cache) Acquire(ctx context.Context, key Key) (model.Lease, error) {
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	now := c.now()
	if !e.lease.Expired(now) {
		return e.lease.Clone(), nil
	}

	fresh, err := c.refresh(ctx, key)
	if err != nil {
		c.l.Warn("could not refresh upload lease",
			zap.String("dataset", key.DatasetID), zap.String("segment", key.Segment), zap.Error(err))
		return model.Lease{}, err
	}
	c.refreshes.Inc()
	c.m.LeaseRefreshed()
	if fresh.Expired(now) {
		c.l.Warn("server issued an already expired upload lease",
			zap.String("segment", key.Segment), zap.Time("expireAt", fresh.ExpireAt))
	}
	c.l.Debug("refreshed upload lease",
		zap.String("dataset", key.DatasetID),
		zap.String("segment", key.Segment),
		zap.String("backend", string(fresh.Backend)),
		zap.Time("expireAt", fresh.ExpireAt),
	)

	e.lease = fresh
	return fresh.Clone(), nil
}

// Invalidate the lease of a segment, so the next Acquire refreshes it
func (c *Cache) Invalidate(key Key) {
	e := c.entry(key)
	e.mu.Lock()
	defer e.mu.Unlock()

	e.lease.ExpireAt = time.Unix(0, 0)
	c.invalidations.Inc()
	c.m.LeaseInvalidated()
	c.l.Info("invalidated upload lease", zap.String("dataset", key.DatasetID), zap.String("segment", key.Segment))
}

// Refreshes counts the leases fetched from the server
func (c *Cache) Refreshes() int64 {
	return c.refreshes.Load()
}

// Invalidations counts the leases invalidated
func (c *Cache) Invalidations() int64 {
	return c.invalidations.Load()
}
