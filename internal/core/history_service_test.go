package core

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/db/mocks"
	"sokrate-backend-go/internal/models"
)

func TestHistoryService_ListClampsLimit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHistoryRepository(ctrl)
	svc := NewHistoryService(repo)

	repo.EXPECT().List(gomock.Any(), "uid-1", 5).Return([]models.HistoryItem{{ID: "h-1"}}, nil)
	repo.EXPECT().List(gomock.Any(), "uid-1", maxHistoryPage).Return([]models.HistoryItem{}, nil).Times(2)

	items, err := svc.List(context.Background(), "uid-1", 5)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	_, err = svc.List(context.Background(), "uid-1", 0)
	require.NoError(t, err)
	_, err = svc.List(context.Background(), "uid-1", 10_000)
	require.NoError(t, err)
}

func TestHistoryService_Add(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHistoryRepository(ctrl)
	svc := NewHistoryService(repo)

	repo.EXPECT().Add(gomock.Any(), "uid-1", gomock.Any()).Return("h-9", nil)

	item, err := svc.Add(context.Background(), "uid-1", models.CreateHistoryRequest{Type: models.HistoryQuiz, Title: "Biology quiz"})

	require.NoError(t, err)
	assert.Equal(t, "h-9", item.ID)
	assert.Equal(t, models.HistoryQuiz, item.Type)
	assert.False(t, item.CreatedAt.IsZero())
}

func TestHistoryService_AddValidation(t *testing.T) {
	svc := NewHistoryService(mocks.NewMockHistoryRepository(gomock.NewController(t)))

	_, err := svc.Add(context.Background(), "uid-1", models.CreateHistoryRequest{Type: "essay", Title: "x"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Add(context.Background(), "uid-1", models.CreateHistoryRequest{Type: models.HistorySolver, Title: strings.Repeat("t", maxTitleLen+1)})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestHistoryService_DeleteMissing(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockHistoryRepository(ctrl)
	svc := NewHistoryService(repo)

	repo.EXPECT().Delete(gomock.Any(), "uid-1", "nope").Return(db.ErrNotFound)

	err := svc.Delete(context.Background(), "uid-1", "nope")
	assert.True(t, IsNotFound(err))
}
