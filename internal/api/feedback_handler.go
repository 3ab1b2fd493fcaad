package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/models"
)

// FeedbackHandler handles feedback submissions.
type FeedbackHandler struct {
	feedback core.FeedbackService
	logger   *zap.Logger
}

// NewFeedbackHandler creates a new FeedbackHandler.
func NewFeedbackHandler(fs core.FeedbackService, logger *zap.Logger) *FeedbackHandler {
	return &FeedbackHandler{feedback: fs, logger: logger}
}

// List handles GET /api/feedback.
func (h *FeedbackHandler) List(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	items, err := h.feedback.List(c.Request.Context(), id.ID)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to list feedback")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create handles POST /api/feedback.
func (h *FeedbackHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateFeedbackRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.feedback.Submit(c.Request.Context(), *id, req)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to submit feedback")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Delete handles DELETE /api/feedback/:id.
func (h *FeedbackHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.feedback.Delete(c.Request.Context(), id.ID, c.Param("id")); err != nil {
		mapServiceError(c, h.logger, err, "Failed to delete feedback")
		return
	}
	c.Status(http.StatusNoContent)
}
