package core

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/models"
)

// billingService implements BillingService on top of a CheckoutGateway.
type billingService struct {
	gateway  CheckoutGateway
	profiles ProfileService
	repo     db.ProfileRepository
	baseURL  string
	logger   *zap.Logger
}

// NewBillingService creates a new BillingService. baseURL is the public origin
// used for Stripe's success and cancel redirects.
func NewBillingService(gateway CheckoutGateway, profiles ProfileService, repo db.ProfileRepository, baseURL string, logger *zap.Logger) BillingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &billingService{gateway: gateway, profiles: profiles, repo: repo, baseURL: baseURL, logger: logger}
}

func (s *billingService) CreateCheckoutSession(ctx context.Context, identity *models.Identity, priceID string) (string, error) {
	priceID = strings.TrimSpace(priceID)
	if priceID == "" {
		return "", invalid("lookup_key is required")
	}
	req := billing.CheckoutRequest{PriceID: priceID, BaseURL: s.baseURL}
	if identity != nil {
		req.UserID = identity.ID
		req.Email = identity.Email
	}
	checkout, err := s.gateway.CreateCheckout(ctx, req)
	if err != nil {
		return "", fmt.Errorf("failed to create checkout session: %w", err)
	}
	return checkout.URL, nil
}

func (s *billingService) ConfirmCheckout(ctx context.Context, userID, checkoutID string) (*models.Profile, error) {
	if strings.TrimSpace(checkoutID) == "" {
		return nil, invalid("session_id is required")
	}
	checkout, err := s.gateway.GetCheckout(ctx, checkoutID)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve checkout session: %w", err)
	}
	if checkout.UserID != userID {
		s.logger.Warn("Checkout confirmation by non-owner",
			zap.String("checkout_id", checkoutID), zap.String("user_id", userID))
		return nil, ErrForbidden
	}
	if !checkout.Complete {
		return nil, ErrCheckoutNotComplete
	}
	return s.profiles.SetPlan(ctx, userID, models.PlanPro, checkout.CustomerID)
}

func (s *billingService) HandleStripeWebhook(ctx context.Context, signature string, payload []byte) error {
	ev, err := s.gateway.ParseWebhook(payload, signature)
	if err != nil {
		return err
	}
	logger := s.logger.With(zap.String("event_id", ev.ID), zap.String("event_type", ev.Type))

	switch ev.Type {
	case billing.EventCheckoutCompleted:
		if ev.Checkout == nil || ev.Checkout.UserID == "" {
			logger.Warn("Checkout completed without client reference; ignoring")
			return nil
		}
		if !ev.Checkout.Complete {
			return nil
		}
		if _, err := s.profiles.SetPlan(ctx, ev.Checkout.UserID, models.PlanPro, ev.Checkout.CustomerID); err != nil {
			return fmt.Errorf("upgrade user '%s': %w", ev.Checkout.UserID, err)
		}
		logger.Info("Subscription activated", zap.String("user_id", ev.Checkout.UserID))
	case billing.EventSubscriptionDeleted:
		p, err := s.repo.FindByStripeCustomer(ctx, ev.CustomerID)
		if errors.Is(err, db.ErrNotFound) {
			logger.Warn("Subscription deleted for unknown customer", zap.String("customer_id", ev.CustomerID))
			return nil
		}
		if err != nil {
			return err
		}
		if _, err := s.profiles.SetPlan(ctx, p.ID, models.PlanFree, ""); err != nil {
			return fmt.Errorf("downgrade user '%s': %w", p.ID, err)
		}
		logger.Info("Subscription cancelled", zap.String("user_id", p.ID))
	default:
		logger.Debug("Ignoring webhook event")
	}
	return nil
}
