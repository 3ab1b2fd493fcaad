// Package profile resolves and memoizes user profiles.
package profile

import (
	"context"
	"strconv"
	"sync"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"sokrate-backend-go/internal/models"
)

// Loader fetches a profile from its source of truth. A missing profile is
// reported as (nil, nil).
type Loader interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
}

// Invalidator is implemented by loaders that keep their own copy of a profile.
type Invalidator interface {
	Invalidate(ctx context.Context, userID string) error
}

// Recorder receives cache events. It is satisfied by metrics.Collector.
type Recorder interface {
	RecordProfileCache(result string)
}

type entry struct {
	profile *models.Profile // nil when the user has no profile yet
}

// Cache is a read-through, coalescing profile cache shared by the whole process.
type Cache struct {
	loader   Loader
	logger   *zap.Logger
	recorder Recorder

	group singleflight.Group

	mu      sync.Mutex
	entries map[string]entry
	gens    map[string]uint64
}

// NewCache creates a Cache over loader. logger and recorder may be nil.
func NewCache(loader Loader, logger *zap.Logger, recorder Recorder) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{
		loader:   loader,
		logger:   logger,
		recorder: recorder,
		entries:  make(map[string]entry),
		gens:     make(map[string]uint64),
	}
}

// Get returns the profile for userID. An empty userID disables the lookup and
// returns (nil, nil). Concurrent callers for the same userID share one fetch.
func (c *Cache) Get(ctx context.Context, userID string) (*models.Profile, error) {
	if userID == "" {
		return nil, nil
	}

	c.mu.Lock()
	if e, ok := c.entries[userID]; ok {
		c.mu.Unlock()
		c.record("hit")
		return e.profile, nil
	}
	gen := c.gens[userID]
	c.mu.Unlock()
	c.record("miss")

	// Each invalidation opens a new flight, so a read issued after it never joins
	// a fetch that started before it.
	key := userID + "#" + strconv.FormatUint(gen, 10)
	ch := c.group.DoChan(key, func() (interface{}, error) {
		c.record("fetch")
		p, err := c.loader.GetProfile(context.WithoutCancel(ctx), userID)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		if c.gens[userID] == gen {
			c.entries[userID] = entry{profile: p}
		}
		c.mu.Unlock()
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			c.record("error")
			c.logger.Warn("Profile fetch failed", zap.String("user_id", userID), zap.Error(res.Err))
			return nil, res.Err
		}
		p, _ := res.Val.(*models.Profile)
		return p, nil
	}
}

// Invalidate drops the cached profile for userID. Any fetch already in flight
// for it will not repopulate the cache.
func (c *Cache) Invalidate(ctx context.Context, userID string) {
	c.mu.Lock()
	c.gens[userID]++
	delete(c.entries, userID)
	c.mu.Unlock()

	if inv, ok := c.loader.(Invalidator); ok {
		if err := inv.Invalidate(ctx, userID); err != nil {
			c.logger.Warn("Second-tier profile invalidation failed", zap.String("user_id", userID), zap.Error(err))
		}
	}
}

func (c *Cache) record(result string) {
	if c.recorder != nil {
		c.recorder.RecordProfileCache(result)
	}
}
