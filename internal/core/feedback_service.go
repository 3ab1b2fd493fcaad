package core

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/models"
)

type feedbackService struct {
	repo         db.FeedbackRepository
	notifier     Notifier
	supportEmail string
	logger       *zap.Logger
	now          func() time.Time
	wg           sync.WaitGroup
}

// NewFeedbackService creates a new FeedbackService. notifier may be nil, in
// which case submissions are stored but not mailed.
func NewFeedbackService(repo db.FeedbackRepository, notifier Notifier, supportEmail string, logger *zap.Logger) FeedbackService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &feedbackService{repo: repo, notifier: notifier, supportEmail: supportEmail, logger: logger, now: time.Now}
}

func (s *feedbackService) Submit(ctx context.Context, identity models.Identity, req models.CreateFeedbackRequest) (*models.FeedbackItem, error) {
	switch req.Type {
	case models.FeedbackGeneral, models.FeedbackBug, models.FeedbackFeature:
	default:
		return nil, invalid("type must be feedback, bug or feature")
	}
	if err := requireText("subject", req.Subject, maxSubjectLen); err != nil {
		return nil, err
	}
	if err := requireText("message", req.Message, maxMessageLen); err != nil {
		return nil, err
	}

	item := models.FeedbackItem{
		UserID:    identity.ID,
		Type:      req.Type,
		Subject:   req.Subject,
		Message:   req.Message,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("failed to store feedback: %w", err)
	}
	item.ID = id
	s.notify(identity, item)
	return &item, nil
}

func (s *feedbackService) List(ctx context.Context, userID string) ([]models.FeedbackItem, error) {
	items, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list feedback for user '%s': %w", userID, err)
	}
	return items, nil
}

func (s *feedbackService) Delete(ctx context.Context, userID, feedbackID string) error {
	item, err := s.repo.GetByID(ctx, feedbackID)
	if err != nil {
		return err
	}
	if item.UserID != userID {
		return fmt.Errorf("%w: feedback '%s' belongs to another user", ErrForbidden, feedbackID)
	}
	return s.repo.Delete(ctx, feedbackID)
}

func (s *feedbackService) Wait() {
	s.wg.Wait()
}

// notify mails the support inbox in the background; the notifier bounds the
// delivery time. Failures are logged only.
func (s *feedbackService) notify(identity models.Identity, item models.FeedbackItem) {
	if s.notifier == nil || s.supportEmail == "" {
		return
	}
	subject := fmt.Sprintf("[Sokrate %s] %s", item.Type, item.Subject)
	body := fmt.Sprintf("From: %s <%s>\nUser ID: %s\nFeedback ID: %s\n\n%s\n",
		identity.DisplayName, identity.Email, identity.ID, item.ID, item.Message)
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.notifier.SendPlain(s.supportEmail, subject, body); err != nil {
			s.logger.Warn("Failed to mail feedback", zap.String("feedback_id", item.ID), zap.Error(err))
		}
	}()
}
