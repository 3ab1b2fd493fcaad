package core

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/models"
)

const historyTitleLen = 80

// tutorService validates tool requests, calls the model and records history.
type tutorService struct {
	tutor    Tutor
	history  db.HistoryRepository
	recorder Recorder
	logger   *zap.Logger
	now      func() time.Time
}

// NewTutorService creates a new TutorService instance. history, recorder and
// logger may be nil.
func NewTutorService(tutor Tutor, history db.HistoryRepository, recorder Recorder, logger *zap.Logger) TutorService {
	if recorder == nil {
		recorder = nopRecorder{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &tutorService{tutor: tutor, history: history, recorder: recorder, logger: logger, now: time.Now}
}

func (s *tutorService) Solve(ctx context.Context, userID string, req models.SolveRequest) (string, error) {
	if err := validateSolve(req); err != nil {
		return "", err
	}
	solution, err := s.tutor.Solve(ctx, req)
	if err = s.done("solve", err); err != nil {
		return "", err
	}
	s.record(ctx, userID, models.HistoryItem{
		Type:    models.HistorySolver,
		Title:   headline(req.Problem, historyTitleLen),
		Summary: headline(solution, maxSummaryLen),
	})
	return solution, nil
}

func (s *tutorService) GenerateQuiz(ctx context.Context, userID string, req models.QuizRequest) ([]models.QuizQuestion, error) {
	if err := validateQuiz(req); err != nil {
		return nil, err
	}
	questions, err := s.tutor.GenerateQuiz(ctx, req)
	if err = s.done("quiz", err); err != nil {
		return nil, err
	}
	s.record(ctx, userID, models.HistoryItem{
		Type:    models.HistoryQuiz,
		Title:   fmt.Sprintf("Quiz (%s, %d questions)", req.Difficulty, len(questions)),
		Summary: headline(req.FileContent, historyTitleLen),
	})
	return questions, nil
}

func (s *tutorService) Synthesize(ctx context.Context, userID string, req models.SynthesizeRequest) (string, error) {
	if err := validateSynthesize(req); err != nil {
		return "", err
	}
	synthesis, err := s.tutor.Synthesize(ctx, req)
	if err = s.done("synthesize", err); err != nil {
		return "", err
	}
	title := headline(req.FileContent, historyTitleLen)
	if title == "" {
		title = "Image synthesis"
	}
	s.record(ctx, userID, models.HistoryItem{
		Type:    models.HistorySynthesizer,
		Title:   title,
		Summary: headline(synthesis, maxSummaryLen),
	})
	return synthesis, nil
}

func (s *tutorService) done(tool string, err error) error {
	if err != nil {
		s.recorder.RecordTutorRequest(tool, "error")
		s.logger.Error("AI request failed", zap.String("tool", tool), zap.Error(err))
		return fmt.Errorf("%s failed: %w", tool, err)
	}
	s.recorder.RecordTutorRequest(tool, "ok")
	return nil
}

// record saves a history entry. Failures are logged and never fail the request.
func (s *tutorService) record(ctx context.Context, userID string, item models.HistoryItem) {
	if s.history == nil || userID == "" {
		return
	}
	item.CreatedAt = s.now().UTC()
	if _, err := s.history.Add(ctx, userID, item); err != nil {
		s.logger.Warn("Failed to record history", zap.String("user_id", userID), zap.String("type", string(item.Type)), zap.Error(err))
	}
}
