package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sokrate-backend-go/internal/db/mocks"
	"sokrate-backend-go/internal/models"
)

func TestProfileService_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := newFakeCache()
	cache.profiles["uid-1"] = &models.Profile{ID: "uid-1", Plan: models.PlanPro}
	svc := NewProfileService(mocks.NewMockProfileRepository(ctrl), cache, nil)

	p, err := svc.Get(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, models.PlanPro, p.Plan)

	_, err = svc.Get(context.Background(), "uid-missing")
	assert.ErrorIs(t, err, ErrProfileNotFound)
}

func TestProfileService_UpdatePreferences(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProfileRepository(ctrl)
	cache := newFakeCache()
	svc := NewProfileService(repo, cache, nil)

	dark := models.ThemeDark
	name := "  Ada  "
	repo.EXPECT().SetProfile(gomock.Any(), "uid-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u models.ProfileUpdate) (*models.Profile, error) {
			require.NotNil(t, u.DisplayName)
			assert.Equal(t, "Ada", *u.DisplayName)
			assert.Equal(t, models.ThemeDark, *u.Theme)
			assert.Nil(t, u.Plan, "preferences must never touch the plan")
			return &models.Profile{ID: "uid-1", DisplayName: "Ada", Theme: models.ThemeDark}, nil
		})

	p, err := svc.UpdatePreferences(context.Background(), "uid-1", models.UpdateProfileRequest{DisplayName: &name, Theme: &dark})

	require.NoError(t, err)
	assert.Equal(t, "Ada", p.DisplayName)
	assert.Equal(t, []string{"uid-1"}, cache.invalidations())
}

func TestProfileService_UpdatePreferencesValidation(t *testing.T) {
	ctrl := gomock.NewController(t)
	svc := NewProfileService(mocks.NewMockProfileRepository(ctrl), newFakeCache(), nil)

	bad := models.Theme("neon")
	blank := "   "
	tests := []struct {
		name string
		req  models.UpdateProfileRequest
	}{
		{"empty request", models.UpdateProfileRequest{}},
		{"unknown theme", models.UpdateProfileRequest{Theme: &bad}},
		{"blank name", models.UpdateProfileRequest{DisplayName: &blank}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.UpdatePreferences(context.Background(), "uid-1", tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestProfileService_SetPlanInvalidatesOnFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProfileRepository(ctrl)
	cache := newFakeCache()
	svc := NewProfileService(repo, cache, nil)

	repo.EXPECT().SetProfile(gomock.Any(), "uid-1", gomock.Any()).Return(nil, errors.New("deadline exceeded"))

	_, err := svc.SetPlan(context.Background(), "uid-1", models.PlanPro, "cus_1")

	assert.Error(t, err)
	assert.Equal(t, []string{"uid-1"}, cache.invalidations())
}

func TestProfileService_SetPlanWritesCustomer(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockProfileRepository(ctrl)
	svc := NewProfileService(repo, newFakeCache(), nil)

	repo.EXPECT().SetProfile(gomock.Any(), "uid-1", gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u models.ProfileUpdate) (*models.Profile, error) {
			assert.Equal(t, models.PlanFree, *u.Plan)
			assert.Nil(t, u.StripeCustomerID)
			return &models.Profile{ID: "uid-1", Plan: models.PlanFree}, nil
		})

	p, err := svc.SetPlan(context.Background(), "uid-1", models.PlanFree, "")
	require.NoError(t, err)
	assert.Equal(t, models.PlanFree, p.Plan)
}

func TestProfileService_OnboardingStatus(t *testing.T) {
	ctrl := gomock.NewController(t)
	cache := newFakeCache()
	cache.profiles["uid-1"] = &models.Profile{ID: "uid-1"}
	svc := NewProfileService(mocks.NewMockProfileRepository(ctrl), cache, nil)

	st, err := svc.OnboardingStatus(context.Background(), "uid-1")
	require.NoError(t, err)
	assert.Equal(t, OnboardingStatus{IsNewUser: false, HasCompletedOnboarding: true}, st)

	st, err = svc.OnboardingStatus(context.Background(), "uid-new")
	require.NoError(t, err)
	assert.Equal(t, OnboardingStatus{IsNewUser: true, HasCompletedOnboarding: false}, st)

	cache.err = errors.New("unavailable")
	_, err = svc.OnboardingStatus(context.Background(), "uid-1")
	assert.Error(t, err)
}
