package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/middleware"
	"sokrate-backend-go/internal/models"
	"sokrate-backend-go/internal/session"
)

// mapServiceError writes the HTTP reply for an error returned by a core service.
// fallback is the message used for unexpected errors.
func mapServiceError(c *gin.Context, logger *zap.Logger, err error, fallback string) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrInvalidInput):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Invalid request", Details: err.Error()}
	case core.IsNotFound(err):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: "Not found"}
	case errors.Is(err, core.ErrForbidden):
		statusCode = http.StatusForbidden
		errResponse = ErrorResponse{Error: "Forbidden"}
	case errors.Is(err, core.ErrCheckoutNotComplete):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: "Checkout is not complete"}
	case errors.Is(err, billing.ErrWebhookSignature):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Webhook signature verification failed"}
	case errors.Is(err, session.ErrSignOut):
		statusCode = http.StatusBadGateway
		errResponse = ErrorResponse{Error: "Sign-out failed", Details: "The identity provider did not confirm the sign-out."}
	default:
		logger.Error(fallback, zap.Error(err), zap.String("request_id", middleware.GetRequestID(c)))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: fallback}
	}
	c.JSON(statusCode, errResponse)
}

// currentIdentity returns the signed-in identity or writes a 401.
func currentIdentity(c *gin.Context) (*models.Identity, bool) {
	id := middleware.CurrentSession(c).Identity
	if id == nil {
		c.JSON(http.StatusUnauthorized, ErrorResponse{Error: "Authentication required"})
		return nil, false
	}
	return id, true
}
