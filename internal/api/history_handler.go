package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/models"
)

const recentHistoryDefault = 5

// HistoryHandler handles the study history endpoints.
type HistoryHandler struct {
	history core.HistoryService
	logger  *zap.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(hs core.HistoryService, logger *zap.Logger) *HistoryHandler {
	return &HistoryHandler{history: hs, logger: logger}
}

// List handles GET /api/history.
func (h *HistoryHandler) List(c *gin.Context) {
	h.list(c, 0)
}

// Recent handles GET /api/history/recent?limit=5.
func (h *HistoryHandler) Recent(c *gin.Context) {
	limit := recentHistoryDefault
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "limit must be a positive integer"})
			return
		}
		limit = n
	}
	h.list(c, limit)
}

func (h *HistoryHandler) list(c *gin.Context, limit int) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	items, err := h.history.List(c.Request.Context(), id.ID, limit)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to list history")
		return
	}
	c.JSON(http.StatusOK, items)
}

// Create handles POST /api/history.
func (h *HistoryHandler) Create(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.CreateHistoryRequest
	if !bindJSON(c, &req) {
		return
	}
	item, err := h.history.Add(c.Request.Context(), id.ID, req)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to save history item")
		return
	}
	c.JSON(http.StatusCreated, item)
}

// Delete handles DELETE /api/history/:id.
func (h *HistoryHandler) Delete(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	if err := h.history.Delete(c.Request.Context(), id.ID, c.Param("id")); err != nil {
		mapServiceError(c, h.logger, err, "Failed to delete history item")
		return
	}
	c.Status(http.StatusNoContent)
}
