package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"sokrate-backend-go/internal/gate"
)

// AccessHandler lets the SPA router ask the server for a route decision.
type AccessHandler struct {
	gate *gate.Gate
}

// NewAccessHandler creates a new AccessHandler.
func NewAccessHandler(g *gate.Gate) *AccessHandler {
	return &AccessHandler{gate: g}
}

// GetAccess handles GET /api/access?route=/solver.
func (h *AccessHandler) GetAccess(c *gin.Context) {
	route := c.Query("route")
	if !strings.HasPrefix(route, "/") {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "route must be an absolute path"})
		return
	}
	d, ok := h.gate.Decide(c, route)
	if !ok {
		c.Abort()
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, d)
}
