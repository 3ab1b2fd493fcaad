package core

import (
	"context"

	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/models"
)

// ProfileService defines the profile operations exposed to handlers.
type ProfileService interface {
	// Get returns the cached profile, or ErrProfileNotFound.
	Get(ctx context.Context, userID string) (*models.Profile, error)
	UpdatePreferences(ctx context.Context, userID string, req models.UpdateProfileRequest) (*models.Profile, error)
	// SetPlan persists plan (and customerID when non-empty) and invalidates the cache.
	SetPlan(ctx context.Context, userID string, plan models.Plan, customerID string) (*models.Profile, error)
	OnboardingStatus(ctx context.Context, userID string) (OnboardingStatus, error)
}

// TutorService defines the AI study tools.
type TutorService interface {
	Solve(ctx context.Context, userID string, req models.SolveRequest) (string, error)
	GenerateQuiz(ctx context.Context, userID string, req models.QuizRequest) ([]models.QuizQuestion, error)
	Synthesize(ctx context.Context, userID string, req models.SynthesizeRequest) (string, error)
}

// BillingService defines checkout and subscription lifecycle operations.
type BillingService interface {
	// CreateCheckoutSession returns the hosted checkout URL. identity may be nil.
	CreateCheckoutSession(ctx context.Context, identity *models.Identity, priceID string) (string, error)
	ConfirmCheckout(ctx context.Context, userID, checkoutID string) (*models.Profile, error)
	HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error
}

// HistoryService defines study history operations.
type HistoryService interface {
	List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error)
	Add(ctx context.Context, userID string, req models.CreateHistoryRequest) (*models.HistoryItem, error)
	Delete(ctx context.Context, userID, itemID string) error
}

// FeedbackService defines feedback operations.
type FeedbackService interface {
	Submit(ctx context.Context, identity models.Identity, req models.CreateFeedbackRequest) (*models.FeedbackItem, error)
	List(ctx context.Context, userID string) ([]models.FeedbackItem, error)
	Delete(ctx context.Context, userID, feedbackID string) error
	// Wait blocks until pending support notifications are delivered or given up.
	Wait()
}

// ProfileCache is the read side used by services; satisfied by *profile.Cache.
type ProfileCache interface {
	Get(ctx context.Context, userID string) (*models.Profile, error)
	Invalidate(ctx context.Context, userID string)
}

// Tutor produces the AI answers; satisfied by *ai.Tutor.
type Tutor interface {
	Solve(ctx context.Context, req models.SolveRequest) (string, error)
	GenerateQuiz(ctx context.Context, req models.QuizRequest) ([]models.QuizQuestion, error)
	Synthesize(ctx context.Context, req models.SynthesizeRequest) (string, error)
}

// CheckoutGateway is the payment provider; satisfied by *billing.StripeGateway.
type CheckoutGateway interface {
	CreateCheckout(ctx context.Context, req billing.CheckoutRequest) (*billing.Checkout, error)
	GetCheckout(ctx context.Context, id string) (*billing.Checkout, error)
	ParseWebhook(payload []byte, signature string) (*billing.Event, error)
}

// Notifier delivers a plain-text message to a mailbox; satisfied by *mailer.Mailer.
type Notifier interface {
	SendPlain(recipient, subject, body string) error
}

// Recorder receives service-level counters; satisfied by *metrics.Collector.
type Recorder interface {
	RecordProfileSync(outcome string)
	RecordTutorRequest(tool, outcome string)
}

type nopRecorder struct{}

func (nopRecorder) RecordProfileSync(string)          {}
func (nopRecorder) RecordTutorRequest(string, string) {}
