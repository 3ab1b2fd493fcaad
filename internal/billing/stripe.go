// Package billing talks to Stripe Checkout and verifies Stripe webhooks.
package billing

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/client"
	"github.com/stripe/stripe-go/v82/webhook"
	"go.uber.org/zap"
)

// ErrWebhookSignature is returned when a webhook payload fails verification.
var ErrWebhookSignature = errors.New("stripe webhook signature verification failed")

// Webhook event types handled by the service.
const (
	EventCheckoutCompleted   = "checkout.session.completed"
	EventSubscriptionDeleted = "customer.subscription.deleted"
)

// CheckoutRequest describes a subscription checkout for one user.
type CheckoutRequest struct {
	PriceID string
	UserID  string
	Email   string
	BaseURL string // scheme://host used for the success and cancel URLs
}

// Checkout is the subset of a Stripe Checkout Session the service needs.
type Checkout struct {
	ID         string
	URL        string
	UserID     string // client_reference_id
	CustomerID string
	Complete   bool
}

// Event is a verified webhook event.
type Event struct {
	ID         string
	Type       string
	Checkout   *Checkout // set for checkout.session.* events
	CustomerID string
}

// StripeGateway wraps a Stripe API client.
type StripeGateway struct {
	api           *client.API
	webhookSecret string
	logger        *zap.Logger
}

// NewStripeGateway creates a gateway with its own API client.
func NewStripeGateway(secretKey, webhookSecret string, logger *zap.Logger) (*StripeGateway, error) {
	if secretKey == "" {
		return nil, errors.New("stripe secret key is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &StripeGateway{
		api:           client.New(secretKey, nil),
		webhookSecret: webhookSecret,
		logger:        logger,
	}, nil
}

// SuccessURL is where Stripe sends the browser after payment.
func SuccessURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout-pro?success=true&session_id={CHECKOUT_SESSION_ID}"
}

// CancelURL is where Stripe sends the browser when checkout is abandoned.
func CancelURL(baseURL string) string {
	return strings.TrimRight(baseURL, "/") + "/checkout-pro?canceled=true"
}

// CreateCheckout opens a hosted subscription checkout and returns it.
func (g *StripeGateway) CreateCheckout(ctx context.Context, req CheckoutRequest) (*Checkout, error) {
	params := &stripe.CheckoutSessionParams{
		BillingAddressCollection: stripe.String(string(stripe.CheckoutSessionBillingAddressCollectionAuto)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{Price: stripe.String(req.PriceID), Quantity: stripe.Int64(1)},
		},
		Mode:       stripe.String(string(stripe.CheckoutSessionModeSubscription)),
		SuccessURL: stripe.String(SuccessURL(req.BaseURL)),
		CancelURL:  stripe.String(CancelURL(req.BaseURL)),
	}
	if req.UserID != "" {
		params.ClientReferenceID = stripe.String(req.UserID)
	}
	if req.Email != "" {
		params.CustomerEmail = stripe.String(req.Email)
	}
	params.Context = ctx

	s, err := g.api.CheckoutSessions.New(params)
	if err != nil {
		return nil, fmt.Errorf("create checkout session: %w", err)
	}
	g.logger.Info("Checkout session created", zap.String("checkout_id", s.ID), zap.String("user_id", req.UserID))
	return fromStripe(s), nil
}

// GetCheckout retrieves a checkout session by ID.
func (g *StripeGateway) GetCheckout(ctx context.Context, id string) (*Checkout, error) {
	params := &stripe.CheckoutSessionParams{}
	params.Context = ctx
	s, err := g.api.CheckoutSessions.Get(id, params)
	if err != nil {
		return nil, fmt.Errorf("get checkout session '%s': %w", id, err)
	}
	return fromStripe(s), nil
}

// ParseWebhook verifies the Stripe-Signature header and decodes the event.
func (g *StripeGateway) ParseWebhook(payload []byte, signature string) (*Event, error) {
	ev, err := webhook.ConstructEventWithOptions(payload, signature, g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWebhookSignature, err)
	}
	return decodeEvent(ev)
}

func decodeEvent(ev stripe.Event) (*Event, error) {
	out := &Event{ID: ev.ID, Type: string(ev.Type)}
	switch ev.Type {
	case EventCheckoutCompleted:
		var s stripe.CheckoutSession
		if err := json.Unmarshal(ev.Data.Raw, &s); err != nil {
			return nil, fmt.Errorf("decode checkout session in event '%s': %w", ev.ID, err)
		}
		out.Checkout = fromStripe(&s)
		out.CustomerID = out.Checkout.CustomerID
	case EventSubscriptionDeleted:
		var sub stripe.Subscription
		if err := json.Unmarshal(ev.Data.Raw, &sub); err != nil {
			return nil, fmt.Errorf("decode subscription in event '%s': %w", ev.ID, err)
		}
		if sub.Customer != nil {
			out.CustomerID = sub.Customer.ID
		}
	}
	return out, nil
}

func fromStripe(s *stripe.CheckoutSession) *Checkout {
	c := &Checkout{
		ID:       s.ID,
		URL:      s.URL,
		UserID:   s.ClientReferenceID,
		Complete: s.Status == stripe.CheckoutSessionStatusComplete,
	}
	if s.Customer != nil {
		c.CustomerID = s.Customer.ID
	}
	return c
}
