package db

import (
	"context"
	"errors"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"sokrate-backend-go/internal/models"
)

const feedbackCollection = "feedback"

type firestoreFeedbackRepository struct {
	client *firestore.Client
}

// NewFirestoreFeedbackRepository creates a FeedbackRepository over the feedback collection.
func NewFirestoreFeedbackRepository(client *firestore.Client) (FeedbackRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for FeedbackRepository")
	}
	return &firestoreFeedbackRepository{client: client}, nil
}

func (r *firestoreFeedbackRepository) Create(ctx context.Context, item models.FeedbackItem) (string, error) {
	ref, _, err := r.client.Collection(feedbackCollection).Add(ctx, item)
	if err != nil {
		return "", fmt.Errorf("failed to create feedback for user '%s': %w", item.UserID, err)
	}
	return ref.ID, nil
}

func (r *firestoreFeedbackRepository) GetByID(ctx context.Context, feedbackID string) (*models.FeedbackItem, error) {
	if feedbackID == "" {
		return nil, errors.New("feedbackID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(feedbackCollection).Doc(feedbackID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, fmt.Errorf("feedback '%s' not found: %w", feedbackID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get feedback '%s': %w", feedbackID, err)
	}
	var item models.FeedbackItem
	if err := docSnap.DataTo(&item); err != nil {
		return nil, fmt.Errorf("failed to decode feedback '%s': %w", feedbackID, err)
	}
	item.ID = docSnap.Ref.ID
	return &item, nil
}

func (r *firestoreFeedbackRepository) ListByUser(ctx context.Context, userID string) ([]models.FeedbackItem, error) {
	iter := r.client.Collection(feedbackCollection).
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Documents(ctx)
	defer iter.Stop()

	items := []models.FeedbackItem{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate feedback for user '%s': %w", userID, err)
		}
		var item models.FeedbackItem
		if err := docSnap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode feedback '%s': %w", docSnap.Ref.ID, err)
		}
		item.ID = docSnap.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

func (r *firestoreFeedbackRepository) Delete(ctx context.Context, feedbackID string) error {
	if _, err := r.client.Collection(feedbackCollection).Doc(feedbackID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete feedback '%s': %w", feedbackID, err)
	}
	return nil
}
