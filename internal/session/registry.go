package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Registry keeps one Store per client instance. Stores are created lazily and
// evicted once idle for longer than the configured TTL.
type Registry struct {
	provider       Provider
	logger         *zap.Logger
	resolveTimeout time.Duration
	idleTTL        time.Duration
	unreportedTTL  time.Duration

	mu        sync.Mutex
	stores    map[string]*Store
	listeners []Listener
}

// RegistryConfig contains options for creating a Registry.
type RegistryConfig struct {
	ResolveTimeout time.Duration
	IdleTTL        time.Duration
	// UnreportedTTL evicts stores the identity provider never answered for,
	// such as crawler visits. Defaults to 5 minutes, capped at IdleTTL.
	UnreportedTTL time.Duration
	Logger        *zap.Logger
}

const defaultUnreportedTTL = 5 * time.Minute

// NewRegistry creates an empty Registry backed by provider.
func NewRegistry(provider Provider, cfg RegistryConfig) *Registry {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	unreported := cfg.UnreportedTTL
	if unreported <= 0 {
		unreported = defaultUnreportedTTL
	}
	if cfg.IdleTTL > 0 && unreported > cfg.IdleTTL {
		unreported = cfg.IdleTTL
	}
	return &Registry{
		provider:       provider,
		logger:         logger,
		resolveTimeout: cfg.ResolveTimeout,
		idleTTL:        cfg.IdleTTL,
		unreportedTTL:  unreported,
		stores:         make(map[string]*Store),
	}
}

// OnTransition attaches fn to every store created from now on. Call it during
// startup, before the registry serves any client.
func (r *Registry) OnTransition(fn Listener) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}

// Get returns the store for id, creating it when id is empty or unknown. The
// returned bool is true when a new store was created; its ID must then be handed
// back to the client.
func (r *Registry) Get(id string) (*Store, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if id != "" {
		if s, ok := r.stores[id]; ok {
			return s, false
		}
	}
	if _, err := uuid.Parse(id); err != nil {
		id = uuid.NewString()
	}

	s := NewStore(id, r.provider, WithLogger(r.logger), WithResolveTimeout(r.resolveTimeout))
	for _, fn := range r.listeners {
		s.Subscribe(fn)
	}
	r.stores[id] = s
	return s, true
}

// Drop tears down the store for id, if any.
func (r *Registry) Drop(id string) {
	r.mu.Lock()
	s, ok := r.stores[id]
	delete(r.stores, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// Len returns the number of live stores.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.stores)
}

// Sweep evicts stores idle since before now-idleTTL, or before
// now-unreportedTTL when the provider never answered for them, and returns how
// many were removed.
func (r *Registry) Sweep(now time.Time) int {
	cutoff := now.Add(-r.idleTTL)
	unreportedCutoff := now.Add(-r.unreportedTTL)

	r.mu.Lock()
	var stale []*Store
	for id, s := range r.stores {
		limit := cutoff
		if !s.Reported() {
			limit = unreportedCutoff
		}
		if s.IdleSince().Before(limit) {
			stale = append(stale, s)
			delete(r.stores, id)
		}
	}
	r.mu.Unlock()

	for _, s := range stale {
		s.Close()
	}
	return len(stale)
}

// Run sweeps idle stores periodically until ctx is done.
func (r *Registry) Run(ctx context.Context) {
	interval := r.unreportedTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := r.Sweep(now); n > 0 {
				r.logger.Info("Evicted idle sessions", zap.Int("count", n))
			}
		}
	}
}
