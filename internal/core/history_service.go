package core

import (
	"context"
	"fmt"
	"time"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/models"
)

type historyService struct {
	repo db.HistoryRepository
	now  func() time.Time
}

// NewHistoryService creates a new HistoryService instance.
func NewHistoryService(repo db.HistoryRepository) HistoryService {
	return &historyService{repo: repo, now: time.Now}
}

// List returns the newest items first. limit <= 0 or above the page size is
// clamped to the page size.
func (s *historyService) List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error) {
	if limit <= 0 || limit > maxHistoryPage {
		limit = maxHistoryPage
	}
	items, err := s.repo.List(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list history for user '%s': %w", userID, err)
	}
	return items, nil
}

func (s *historyService) Add(ctx context.Context, userID string, req models.CreateHistoryRequest) (*models.HistoryItem, error) {
	switch req.Type {
	case models.HistorySolver, models.HistorySynthesizer, models.HistoryQuiz:
	default:
		return nil, invalid("type must be solver, synthesizer or quiz")
	}
	if err := requireText("title", req.Title, maxTitleLen); err != nil {
		return nil, err
	}
	if len([]rune(req.Summary)) > maxSummaryLen {
		return nil, invalid("summary must be at most %d characters", maxSummaryLen)
	}

	item := models.HistoryItem{
		Type:      req.Type,
		Title:     req.Title,
		Summary:   req.Summary,
		CreatedAt: s.now().UTC(),
	}
	id, err := s.repo.Add(ctx, userID, item)
	if err != nil {
		return nil, fmt.Errorf("failed to add history item: %w", err)
	}
	item.ID = id
	return &item, nil
}

func (s *historyService) Delete(ctx context.Context, userID, itemID string) error {
	return s.repo.Delete(ctx, userID, itemID)
}
