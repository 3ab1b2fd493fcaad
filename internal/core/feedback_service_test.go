package core

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"sokrate-backend-go/internal/db/mocks"
	"sokrate-backend-go/internal/models"
)

func TestFeedbackService_SubmitNotifiesSupport(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFeedbackRepository(ctrl)
	notifier := &fakeNotifier{}
	svc := NewFeedbackService(repo, notifier, "support@sokrate.app", nil)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, item models.FeedbackItem) (string, error) {
			assert.Equal(t, "uid-ada", item.UserID)
			return "fb-1", nil
		})

	item, err := svc.Submit(context.Background(), ada, models.CreateFeedbackRequest{Type: models.FeedbackBug, Subject: "Crash", Message: "Solver froze"})

	require.NoError(t, err)
	assert.Equal(t, "fb-1", item.ID)
	svc.Wait()
	assert.Equal(t, []string{"support@sokrate.app|[Sokrate bug] Crash"}, notifier.messages())
}

func TestFeedbackService_SlowMailDoesNotBlockSubmit(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFeedbackRepository(ctrl)
	notifier := &fakeNotifier{release: make(chan struct{})}
	svc := NewFeedbackService(repo, notifier, "support@sokrate.app", nil)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return("fb-3", nil)

	done := make(chan error, 1)
	go func() {
		_, err := svc.Submit(context.Background(), ada, models.CreateFeedbackRequest{Type: models.FeedbackGeneral, Subject: "Hi", Message: "Thanks"})
		done <- err
	}()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("Submit waited for mail delivery")
	}
	assert.Empty(t, notifier.messages())

	close(notifier.release)
	svc.Wait()
	assert.Len(t, notifier.messages(), 1)
}

func TestFeedbackService_MailFailureIsNotFatal(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFeedbackRepository(ctrl)
	svc := NewFeedbackService(repo, &fakeNotifier{err: errors.New("smtp down")}, "support@sokrate.app", nil)

	repo.EXPECT().Create(gomock.Any(), gomock.Any()).Return("fb-2", nil)

	_, err := svc.Submit(context.Background(), ada, models.CreateFeedbackRequest{Type: models.FeedbackFeature, Subject: "Dark mode", Message: "Please"})
	assert.NoError(t, err)
	svc.Wait()
}

func TestFeedbackService_SubmitValidation(t *testing.T) {
	svc := NewFeedbackService(mocks.NewMockFeedbackRepository(gomock.NewController(t)), nil, "", nil)

	_, err := svc.Submit(context.Background(), ada, models.CreateFeedbackRequest{Type: "rant", Subject: "s", Message: "m"})
	assert.ErrorIs(t, err, ErrInvalidInput)
	_, err = svc.Submit(context.Background(), ada, models.CreateFeedbackRequest{Type: models.FeedbackGeneral, Subject: "", Message: "m"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestFeedbackService_DeleteOwnerOnly(t *testing.T) {
	ctrl := gomock.NewController(t)
	repo := mocks.NewMockFeedbackRepository(ctrl)
	svc := NewFeedbackService(repo, nil, "", nil)

	repo.EXPECT().GetByID(gomock.Any(), "fb-bob").Return(&models.FeedbackItem{ID: "fb-bob", UserID: "uid-bob"}, nil)
	repo.EXPECT().GetByID(gomock.Any(), "fb-ada").Return(&models.FeedbackItem{ID: "fb-ada", UserID: "uid-ada"}, nil)
	repo.EXPECT().Delete(gomock.Any(), "fb-ada").Return(nil)

	assert.ErrorIs(t, svc.Delete(context.Background(), "uid-ada", "fb-bob"), ErrForbidden)
	assert.NoError(t, svc.Delete(context.Background(), "uid-ada", "fb-ada"))
}
