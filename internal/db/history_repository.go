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

const historySubcollection = "history"

type firestoreHistoryRepository struct {
	client *firestore.Client
}

// NewFirestoreHistoryRepository creates a HistoryRepository over users/{uid}/history.
func NewFirestoreHistoryRepository(client *firestore.Client) (HistoryRepository, error) {
	if client == nil {
		return nil, errors.New("firestore client is not initialized for HistoryRepository")
	}
	return &firestoreHistoryRepository{client: client}, nil
}

func (r *firestoreHistoryRepository) collection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(historySubcollection)
}

func (r *firestoreHistoryRepository) Add(ctx context.Context, userID string, item models.HistoryItem) (string, error) {
	if userID == "" {
		return "", errors.New("userID cannot be empty for history Add operation")
	}
	ref, _, err := r.collection(userID).Add(ctx, item)
	if err != nil {
		return "", fmt.Errorf("failed to add history item for user '%s': %w", userID, err)
	}
	return ref.ID, nil
}

func (r *firestoreHistoryRepository) List(ctx context.Context, userID string, limit int) ([]models.HistoryItem, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for history List operation")
	}
	query := r.collection(userID).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}
	iter := query.Documents(ctx)
	defer iter.Stop()

	items := []models.HistoryItem{}
	for {
		docSnap, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate history for user '%s': %w", userID, err)
		}
		var item models.HistoryItem
		if err := docSnap.DataTo(&item); err != nil {
			return nil, fmt.Errorf("failed to decode history item '%s': %w", docSnap.Ref.ID, err)
		}
		item.ID = docSnap.Ref.ID
		items = append(items, item)
	}
	return items, nil
}

func (r *firestoreHistoryRepository) Delete(ctx context.Context, userID, itemID string) error {
	if userID == "" || itemID == "" {
		return errors.New("userID and itemID are required for history Delete operation")
	}
	ref := r.collection(userID).Doc(itemID)
	if _, err := ref.Get(ctx); err != nil {
		if status.Code(err) == codes.NotFound {
			return fmt.Errorf("history item '%s' not found: %w", itemID, ErrNotFound)
		}
		return fmt.Errorf("failed to get history item '%s': %w", itemID, err)
	}
	if _, err := ref.Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete history item '%s': %w", itemID, err)
	}
	return nil
}
