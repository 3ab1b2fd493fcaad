package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/models"
)

// AccountHandler handles profile and onboarding endpoints.
type AccountHandler struct {
	profiles core.ProfileService
	logger   *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(ps core.ProfileService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{profiles: ps, logger: logger}
}

// GetProfile handles GET /api/account/profile.
func (h *AccountHandler) GetProfile(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, err := h.profiles.Get(c.Request.Context(), id.ID)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to retrieve profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdateProfile handles PATCH /api/account/profile.
func (h *AccountHandler) UpdateProfile(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	var req models.UpdateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	p, err := h.profiles.UpdatePreferences(c.Request.Context(), id.ID, req)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to update profile")
		return
	}
	c.JSON(http.StatusOK, p)
}

// OnboardingStatus handles GET /api/subscription/onboarding-status.
func (h *AccountHandler) OnboardingStatus(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	st, err := h.profiles.OnboardingStatus(c.Request.Context(), id.ID)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to retrieve onboarding status")
		return
	}
	c.JSON(http.StatusOK, st)
}
