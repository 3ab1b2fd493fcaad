package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/middleware"
	"sokrate-backend-go/internal/models"
)

// TutorHandler proxies the study tools to the AI model.
type TutorHandler struct {
	tutor  core.TutorService
	logger *zap.Logger
}

// NewTutorHandler creates a new TutorHandler.
func NewTutorHandler(ts core.TutorService, logger *zap.Logger) *TutorHandler {
	return &TutorHandler{tutor: ts, logger: logger}
}

// Solve handles POST /api/solve.
func (h *TutorHandler) Solve(c *gin.Context) {
	var req models.SolveRequest
	if !bindJSON(c, &req) {
		return
	}
	h.logger.Info("Solving problem", zap.Bool("image", req.Image != nil), zap.String("request_id", middleware.GetRequestID(c)))
	solution, err := h.tutor.Solve(c.Request.Context(), middleware.CurrentSession(c).UserID(), req)
	if err != nil {
		mapServiceError(c, h.logger, err, "AI processing failed")
		return
	}
	c.JSON(http.StatusOK, SolveResponse{Solution: solution})
}

// GenerateQuiz handles POST /api/quiz/generate.
func (h *TutorHandler) GenerateQuiz(c *gin.Context) {
	var req models.QuizRequest
	if !bindJSON(c, &req) {
		return
	}
	h.logger.Info("Generating quiz", zap.Bool("image", req.Image != nil), zap.Int("count", req.Count))
	questions, err := h.tutor.GenerateQuiz(c.Request.Context(), middleware.CurrentSession(c).UserID(), req)
	if err != nil {
		mapServiceError(c, h.logger, err, "Quiz generation failed")
		return
	}
	c.JSON(http.StatusOK, QuizResponse{Questions: questions})
}

// Synthesize handles POST /api/synthesize.
func (h *TutorHandler) Synthesize(c *gin.Context) {
	var req models.SynthesizeRequest
	if !bindJSON(c, &req) {
		return
	}
	h.logger.Info("Synthesizing", zap.Bool("image", req.Image != nil))
	synthesis, err := h.tutor.Synthesize(c.Request.Context(), middleware.CurrentSession(c).UserID(), req)
	if err != nil {
		mapServiceError(c, h.logger, err, "Synthesis failed")
		return
	}
	c.JSON(http.StatusOK, SynthesizeResponse{Synthesis: synthesis})
}

func bindJSON(c *gin.Context, v interface{}) bool {
	if err := c.ShouldBindJSON(v); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return false
	}
	return true
}
