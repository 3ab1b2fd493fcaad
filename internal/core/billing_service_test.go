package core

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"sokrate-backend-go/internal/billing"
	"sokrate-backend-go/internal/db"
	"sokrate-backend-go/internal/db/mocks"
	"sokrate-backend-go/internal/models"
)

type BillingServiceSuite struct {
	suite.Suite
	ctrl    *gomock.Controller
	repo    *mocks.MockProfileRepository
	cache   *fakeCache
	gateway *mockGateway
	service BillingService
}

func TestBillingServiceSuite(t *testing.T) {
	suite.Run(t, new(BillingServiceSuite))
}

func (s *BillingServiceSuite) SetupTest() {
	s.ctrl = gomock.NewController(s.T())
	s.repo = mocks.NewMockProfileRepository(s.ctrl)
	s.cache = newFakeCache()
	s.gateway = new(mockGateway)
	profiles := NewProfileService(s.repo, s.cache, nil)
	s.service = NewBillingService(s.gateway, profiles, s.repo, "https://sokrate.app", nil)
}

func (s *BillingServiceSuite) expectPlan(userID string, plan models.Plan, customerID string) {
	s.repo.EXPECT().SetProfile(gomock.Any(), userID, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ string, u models.ProfileUpdate) (*models.Profile, error) {
			s.Equal(plan, *u.Plan)
			if customerID == "" {
				s.Nil(u.StripeCustomerID)
			} else {
				s.Equal(customerID, *u.StripeCustomerID)
			}
			return &models.Profile{ID: userID, Plan: plan, StripeCustomerID: customerID}, nil
		})
}

func (s *BillingServiceSuite) TestCreateCheckoutSession() {
	ctx := context.Background()

	s.Run("requires a price", func() {
		_, err := s.service.CreateCheckoutSession(ctx, nil, " ")
		s.ErrorIs(err, ErrInvalidInput)
	})

	s.Run("attaches the signed-in user", func() {
		want := billing.CheckoutRequest{PriceID: "price_pro", UserID: "uid-1", Email: "a@example.com", BaseURL: "https://sokrate.app"}
		s.gateway.On("CreateCheckout", mock.Anything, want).Return(&billing.Checkout{ID: "cs_1", URL: "https://checkout.stripe.com/c/cs_1"}, nil).Once()

		url, err := s.service.CreateCheckoutSession(ctx, &models.Identity{ID: "uid-1", Email: "a@example.com"}, "price_pro")

		s.Require().NoError(err)
		s.Equal("https://checkout.stripe.com/c/cs_1", url)
	})
}

func (s *BillingServiceSuite) TestConfirmCheckout() {
	ctx := context.Background()

	s.Run("other user's checkout is forbidden", func() {
		s.gateway.On("GetCheckout", mock.Anything, "cs_other").Return(&billing.Checkout{ID: "cs_other", UserID: "uid-2", Complete: true}, nil).Once()
		_, err := s.service.ConfirmCheckout(ctx, "uid-1", "cs_other")
		s.ErrorIs(err, ErrForbidden)
	})

	s.Run("unpaid checkout is rejected", func() {
		s.gateway.On("GetCheckout", mock.Anything, "cs_open").Return(&billing.Checkout{ID: "cs_open", UserID: "uid-1"}, nil).Once()
		_, err := s.service.ConfirmCheckout(ctx, "uid-1", "cs_open")
		s.ErrorIs(err, ErrCheckoutNotComplete)
	})

	s.Run("completed checkout upgrades to pro", func() {
		s.gateway.On("GetCheckout", mock.Anything, "cs_ok").Return(&billing.Checkout{ID: "cs_ok", UserID: "uid-1", CustomerID: "cus_1", Complete: true}, nil).Once()
		s.expectPlan("uid-1", models.PlanPro, "cus_1")

		p, err := s.service.ConfirmCheckout(ctx, "uid-1", "cs_ok")

		s.Require().NoError(err)
		s.Equal(models.PlanPro, p.Plan)
		s.Contains(s.cache.invalidations(), "uid-1")
	})
}

func (s *BillingServiceSuite) TestWebhook() {
	ctx := context.Background()
	payload := []byte(`{}`)

	s.Run("bad signature is returned", func() {
		s.gateway.On("ParseWebhook", payload, "bad").Return(nil, billing.ErrWebhookSignature).Once()
		s.ErrorIs(s.service.HandleStripeWebhook(ctx, "bad", payload), billing.ErrWebhookSignature)
	})

	s.Run("checkout completed upgrades", func() {
		s.gateway.On("ParseWebhook", payload, "sig-1").Return(&billing.Event{
			ID: "evt_1", Type: billing.EventCheckoutCompleted, CustomerID: "cus_1",
			Checkout: &billing.Checkout{UserID: "uid-1", CustomerID: "cus_1", Complete: true},
		}, nil).Once()
		s.expectPlan("uid-1", models.PlanPro, "cus_1")

		s.NoError(s.service.HandleStripeWebhook(ctx, "sig-1", payload))
	})

	s.Run("subscription deleted downgrades", func() {
		s.gateway.On("ParseWebhook", payload, "sig-2").Return(&billing.Event{
			ID: "evt_2", Type: billing.EventSubscriptionDeleted, CustomerID: "cus_1",
		}, nil).Once()
		s.repo.EXPECT().FindByStripeCustomer(gomock.Any(), "cus_1").Return(&models.Profile{ID: "uid-1", Plan: models.PlanPro}, nil)
		s.expectPlan("uid-1", models.PlanFree, "")

		s.NoError(s.service.HandleStripeWebhook(ctx, "sig-2", payload))
	})

	s.Run("unknown customer is ignored", func() {
		s.gateway.On("ParseWebhook", payload, "sig-3").Return(&billing.Event{
			ID: "evt_3", Type: billing.EventSubscriptionDeleted, CustomerID: "cus_x",
		}, nil).Once()
		s.repo.EXPECT().FindByStripeCustomer(gomock.Any(), "cus_x").Return(nil, db.ErrNotFound)

		s.NoError(s.service.HandleStripeWebhook(ctx, "sig-3", payload))
	})

	s.Run("other events are ignored", func() {
		s.gateway.On("ParseWebhook", payload, "sig-4").Return(&billing.Event{ID: "evt_4", Type: "invoice.paid"}, nil).Once()
		s.NoError(s.service.HandleStripeWebhook(ctx, "sig-4", payload))
	})
}

func TestBillingService_GatewayFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	gw := new(mockGateway)
	repo := mocks.NewMockProfileRepository(ctrl)
	svc := NewBillingService(gw, NewProfileService(repo, newFakeCache(), nil), repo, "https://sokrate.app", nil)

	gw.On("GetCheckout", mock.Anything, "cs_1").Return(nil, errors.New("stripe down"))

	_, err := svc.ConfirmCheckout(context.Background(), "uid-1", "cs_1")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrForbidden)
}
