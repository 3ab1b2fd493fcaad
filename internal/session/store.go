package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/models"
)

// ErrSignOut wraps any failure reported by the identity provider on sign-out.
var ErrSignOut = errors.New("sign-out failed")

// ErrNotSignedIn is returned by SignOut when there is no identity to sign out.
var ErrNotSignedIn = errors.New("no signed-in identity")

// Provider is the identity provider as seen by a Store.
type Provider interface {
	SignOut(ctx context.Context, identity models.Identity) error
}

// Listener is called after every transition with the previous and the new session.
type Listener func(prev, next Session)

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store is the single source of truth for one client instance's session.
type Store struct {
	id       string
	provider Provider
	logger   *zap.Logger

	mu        sync.Mutex
	current   Session
	listeners []listenerEntry
	nextID    uint64
	touched   time.Time
	timer     *time.Timer
	reported  bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithResolveTimeout resolves the store to Anonymous if no provider callback
// arrives within d.
func WithResolveTimeout(d time.Duration) StoreOption {
	return func(s *Store) {
		if d <= 0 {
			return
		}
		s.timer = time.AfterFunc(d, func() {
			s.logger.Warn("Session resolution timed out; treating client as anonymous",
				zap.String("session_id", s.id), zap.Duration("timeout", d))
			s.Apply(Event{TimedOut: true})
		})
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *zap.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewStore creates a Store in the Unresolved state.
func NewStore(id string, provider Provider, opts ...StoreOption) *Store {
	s := &Store{
		id:       id,
		provider: provider,
		logger:   zap.NewNop(),
		current:  Session{State: Unresolved},
		touched:  time.Now(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// ID returns the client-instance key of this store.
func (s *Store) ID() string {
	return s.id
}

// Current returns the latest known session. It never blocks on I/O.
func (s *Store) Current() Session {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touched = time.Now()
	return s.current
}

// Subscribe registers fn for every future transition. The returned function
// removes the subscription and may be called more than once.
func (s *Store) Subscribe(fn Listener) (unsubscribe func()) {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, l := range s.listeners {
				if l.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

// Apply feeds one provider event into the state machine and notifies listeners
// if the session changed.
func (s *Store) Apply(ev Event) {
	s.mu.Lock()
	if !ev.TimedOut {
		s.reported = true
	}
	prev := s.current
	next, changed := Next(prev, ev)
	if !changed {
		s.mu.Unlock()
		return
	}
	s.current = next
	s.touched = time.Now()
	if s.timer != nil && prev.State == Unresolved {
		s.timer.Stop()
	}
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.Unlock()

	s.logger.Debug("Session transition",
		zap.String("session_id", s.id),
		zap.Stringer("from", prev.State),
		zap.Stringer("to", next.State),
		zap.String("user_id", next.UserID()))

	for _, l := range listeners {
		l.fn(prev, next)
	}
}

// SignOut asks the provider to end the session. On success the store moves to
// Anonymous; on failure the session is left untouched and the error returned.
func (s *Store) SignOut(ctx context.Context) error {
	cur := s.Current()
	if cur.Identity == nil {
		return ErrNotSignedIn
	}
	if err := s.provider.SignOut(ctx, *cur.Identity); err != nil {
		s.logger.Error("Sign-out failed",
			zap.String("session_id", s.id), zap.String("user_id", cur.Identity.ID), zap.Error(err))
		return fmt.Errorf("%w: %v", ErrSignOut, err)
	}
	s.Apply(SignedOut())
	return nil
}

// IdleSince reports the last time the store was read or changed.
func (s *Store) IdleSince() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touched
}

// Reported reports whether the identity provider ever answered for this
// client. A store resolved only by the timeout has not been reported.
func (s *Store) Reported() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.reported
}

// Close stops the resolve timer and drops all listeners.
func (s *Store) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	s.listeners = nil
}
