package db

//go:generate mockgen -source=interfaces.go -destination=mocks/mocks.go -package=mocks

import (
	"context"
	"errors"

	"sokrate-backend-go/internal/models"
)

// ErrNotFound is returned when a document does not exist.
var ErrNotFound = errors.New("document not found")

// ProfileRepository defines the storage operations for user profiles.
type ProfileRepository interface {
	// GetProfile returns (nil, nil) when the user has no profile yet.
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	// SetProfile merges update into the profile, creating it if needed. createdAt
	// is only written on the first write.
	SetProfile(ctx context.Context, userID string, update models.ProfileUpdate) (*models.Profile, error)
	// EnsureProfile creates a free-plan stub for identity, or refreshes its
	// identity fields if the profile already exists. It reports whether a new
	// profile was created.
	EnsureProfile(ctx context.Context, identity models.Identity) (bool, error)
	// FindByStripeCustomer returns the profile linked to a Stripe customer.
	FindByStripeCustomer(ctx context.Context, customerID string) (*models.Profile, error)
}

// HistoryRepository defines the storage operations for study history.
type HistoryRepository interface {
	Add(ctx context.Context, userID string, item models.HistoryItem) (string, error)
	List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error)
	Delete(ctx context.Context, userID, itemID string) error
}

// FeedbackRepository defines the storage operations for feedback submissions.
type FeedbackRepository interface {
	Create(ctx context.Context, item models.FeedbackItem) (string, error)
	GetByID(ctx context.Context, feedbackID string) (*models.FeedbackItem, error)
	ListByUser(ctx context.Context, userID string) ([]models.FeedbackItem, error)
	Delete(ctx context.Context, feedbackID string) error
}
