package api

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"sokrate-backend-go/internal/core"
	"sokrate-backend-go/internal/middleware"
)

const maxWebhookBytes = 64 << 10

// BillingHandler handles checkout and Stripe webhook endpoints.
type BillingHandler struct {
	billingService core.BillingService
	logger         *zap.Logger
}

// NewBillingHandler creates a new BillingHandler.
func NewBillingHandler(bs core.BillingService, logger *zap.Logger) *BillingHandler {
	return &BillingHandler{billingService: bs, logger: logger}
}

// CreateCheckoutSession handles POST /api/create-checkout-session and answers
// with a 303 to the hosted checkout page.
func (h *BillingHandler) CreateCheckoutSession(c *gin.Context) {
	var req CreateCheckoutSessionRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request body", Details: err.Error()})
		return
	}
	url, err := h.billingService.CreateCheckoutSession(c.Request.Context(), middleware.CurrentSession(c).Identity, req.LookupKey)
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to create checkout session")
		return
	}
	c.Redirect(http.StatusSeeOther, url)
}

// ConfirmCheckout handles GET /api/checkout/confirm?session_id=.
func (h *BillingHandler) ConfirmCheckout(c *gin.Context) {
	id, ok := currentIdentity(c)
	if !ok {
		return
	}
	p, err := h.billingService.ConfirmCheckout(c.Request.Context(), id.ID, c.Query("session_id"))
	if err != nil {
		mapServiceError(c, h.logger, err, "Failed to confirm checkout")
		return
	}
	c.JSON(http.StatusOK, p)
}

// HandleStripeWebhook handles POST /api/billing/webhook. Stripe authenticates
// the call through the Stripe-Signature header.
func (h *BillingHandler) HandleStripeWebhook(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBytes))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Failed to read request body"})
		return
	}
	if err := h.billingService.HandleStripeWebhook(c.Request.Context(), c.GetHeader("Stripe-Signature"), payload); err != nil {
		mapServiceError(c, h.logger, err, "Webhook processing failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"received": true})
}
