package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/models"
)

const maxDisplayNameLen = 100

// OnboardingStatus is the body of GET /api/subscription/onboarding-status.
type OnboardingStatus struct {
	IsNewUser              bool `json:"isNewUser"`
	HasCompletedOnboarding bool `json:"hasCompletedOnboarding"`
}

// profileService implements ProfileService. Reads go through the cache, writes
// go to the repository and then invalidate the cache.
type profileService struct {
	repo   db.ProfileRepository
	cache  ProfileCache
	logger *zap.Logger
}

// NewProfileService creates a new ProfileService instance.
func NewProfileService(repo db.ProfileRepository, cache ProfileCache, logger *zap.Logger) ProfileService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &profileService{repo: repo, cache: cache, logger: logger}
}

func (s *profileService) Get(ctx context.Context, userID string) (*models.Profile, error) {
	p, err := s.cache.Get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile for user '%s': %w", userID, err)
	}
	if p == nil {
		return nil, ErrProfileNotFound
	}
	return p, nil
}

func (s *profileService) UpdatePreferences(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error) {
	var update models.ProfileUpdate
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || utf8.RuneCountInString(name) > maxDisplayNameLen {
			return nil, fmt.Errorf("%w: displayName must be 1-%d characters", ErrInvalidInput, maxDisplayNameLen)
		}
		update.DisplayName = &name
	}
	if req.Theme != nil {
		if !req.Theme.Valid() {
			return nil, fmt.Errorf("%w: theme must be light, dark or system", ErrInvalidInput)
		}
		update.Theme = req.Theme
	}
	if update.DisplayName == nil && update.Theme == nil {
		return nil, fmt.Errorf("%w: nothing to update", ErrInvalidInput)
	}
	return s.write(ctx, userID, update)
}

func (s *profileService) SetPlan(ctx context.Context, userID string, plan models.Plan, customerID string) (*models.Profile, error) {
	update := models.ProfileUpdate{Plan: &plan}
	if customerID != "" {
		update.StripeCustomerID = &customerID
	}
	p, err := s.write(ctx, userID, update)
	if err != nil {
		return nil, err
	}
	s.logger.Info("Plan updated", zap.String("user_id", userID), zap.String("plan", string(plan)))
	return p, nil
}

func (s *profileService) OnboardingStatus(ctx context.Context, userID string) (OnboardingStatus, error) {
	_, err := s.Get(ctx, userID)
	switch {
	case err == nil:
		return OnboardingStatus{IsNewUser: false, HasCompletedOnboarding: true}, nil
	case errors.Is(err, ErrProfileNotFound):
		return OnboardingStatus{IsNewUser: true, HasCompletedOnboarding: false}, nil
	default:
		return OnboardingStatus{}, err
	}
}

func (s *profileService) write(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error) {
	p, err := s.repo.SetProfile(ctx, userID, update)
	// Invalidate even on failure: the write may have landed before the error surfaced.
	s.cache.Invalidate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to update profile for user '%s': %w", userID, err)
	}
	return p, nil
}
