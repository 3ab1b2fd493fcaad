package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/identity"
	"sokrate-backend-go/internal/middleware"
	"sokrate-backend-go/internal/session"
)

// SessionHandler exposes the client's session store to the SPA.
type SessionHandler struct {
	sessions *middleware.SessionMiddleware
	logger   *zap.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions *middleware.SessionMiddleware, logger *zap.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// GetSession handles GET /api/session.
func (h *SessionHandler) GetSession(c *gin.Context) {
	c.JSON(http.StatusOK, middleware.CurrentSession(c))
}

// ReportSession handles POST /api/session. The SPA calls it from the identity
// provider's auth-state callback with the current ID token, or null.
func (h *SessionHandler) ReportSession(c *gin.Context) {
	store := middleware.Store(c)
	if store == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session store unavailable"})
		return
	}
	var req ReportSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}

	token := ""
	if req.IDToken != nil {
		token = *req.IDToken
		if token == "" {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "idToken must be a token or null"})
			return
		}
	}
	if err := h.sessions.Report(c.Request.Context(), store, token); err != nil {
		if errors.Is(err, identity.ErrInvalidToken) {
			c.JSON(http.StatusUnauthorized, store.Current())
			return
		}
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: "Identity provider unavailable"})
		return
	}
	c.JSON(http.StatusOK, store.Current())
}

// SignOut handles DELETE /api/session. On provider failure the session is
// unchanged and 502 is returned.
func (h *SessionHandler) SignOut(c *gin.Context) {
	store := middleware.Store(c)
	if store == nil {
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Session store unavailable"})
		return
	}
	err := store.SignOut(c.Request.Context())
	if err != nil && !errors.Is(err, session.ErrNotSignedIn) {
		mapServiceError(c, h.logger, err, "Failed to sign out")
		return
	}
	c.JSON(http.StatusOK, store.Current())
}
