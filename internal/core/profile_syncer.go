package core

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/session"
)

const profileSyncTimeout = 10 * time.Second

// ProfileSyncer upserts the profile stub whenever a session becomes
// Authenticated. The upsert runs in the background and never blocks the
// transition that triggered it.
type ProfileSyncer struct {
	ctx      context.Context
	repo     db.ProfileRepository
	cache    ProfileCache
	recorder Recorder
	logger   *zap.Logger
	wg       sync.WaitGroup
}

// NewProfileSyncer creates a ProfileSyncer. Background upserts are cancelled
// when ctx is done. recorder and logger may be nil.
func NewProfileSyncer(ctx context.Context, repo db.ProfileRepository, cache ProfileCache, recorder Recorder, logger *zap.Logger) *ProfileSyncer {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileSyncer{ctx: ctx, repo: repo, cache: cache, recorder: recorder, logger: logger}
}

// OnTransition is a session.Listener.
func (s *ProfileSyncer) OnTransition(prev, next session.Session) {
	if next.State != session.Authenticated || next.Identity == nil {
		return
	}
	if prev.State == session.Authenticated && prev.UserID() == next.UserID() {
		return
	}
	identity := *next.Identity

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(s.ctx, profileSyncTimeout)
		defer cancel()

		created, err := s.repo.EnsureProfile(ctx, identity)
		if err != nil {
			s.recorder.RecordProfileSync("error")
			s.logger.Error("Profile sync failed", zap.String("user_id", identity.ID), zap.Error(err))
			return
		}
		s.cache.Invalidate(ctx, identity.ID)
		if created {
			s.recorder.RecordProfileSync("created")
			s.logger.Info("Profile created", zap.String("user_id", identity.ID))
			return
		}
		s.recorder.RecordProfileSync("updated")
	}()
}

// Wait blocks until every in-flight upsert has finished.
func (s *ProfileSyncer) Wait() {
	s.wg.Wait()
}
