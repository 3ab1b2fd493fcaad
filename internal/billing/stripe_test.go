package billing

import (
	"testing"
	"time"

	"github.com/stripe/stripe-go/v82/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "whsec_test"

func signed(t *testing.T, payload string) (string, []byte) {
	t.Helper()
	sp := webhook.GenerateTestSignedPayload(&webhook.UnsignedPayload{
		Payload:   []byte(payload),
		Secret:    testSecret,
		Timestamp: time.Now(),
	})
	return sp.Header, sp.Payload
}

func newTestGateway(t *testing.T) *StripeGateway {
	t.Helper()
	g, err := NewStripeGateway("sk_test_123", testSecret, nil)
	require.NoError(t, err)
	return g
}

func TestParseWebhook_CheckoutCompleted(t *testing.T) {
	header, payload := signed(t, `{
		"id": "evt_1",
		"object": "event",
		"type": "checkout.session.completed",
		"data": {"object": {"id": "cs_1", "object": "checkout.session", "status": "complete",
			"client_reference_id": "uid-1", "customer": "cus_1"}}
	}`)

	ev, err := newTestGateway(t).ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, EventCheckoutCompleted, ev.Type)
	require.NotNil(t, ev.Checkout)
	assert.Equal(t, "uid-1", ev.Checkout.UserID)
	assert.Equal(t, "cus_1", ev.CustomerID)
	assert.True(t, ev.Checkout.Complete)
}

func TestParseWebhook_SubscriptionDeleted(t *testing.T) {
	header, payload := signed(t, `{
		"id": "evt_2",
		"object": "event",
		"type": "customer.subscription.deleted",
		"data": {"object": {"id": "sub_1", "object": "subscription", "customer": "cus_9"}}
	}`)

	ev, err := newTestGateway(t).ParseWebhook(payload, header)

	require.NoError(t, err)
	assert.Equal(t, EventSubscriptionDeleted, ev.Type)
	assert.Equal(t, "cus_9", ev.CustomerID)
	assert.Nil(t, ev.Checkout)
}

func TestParseWebhook_BadSignature(t *testing.T) {
	_, err := newTestGateway(t).ParseWebhook([]byte(`{"id":"evt_3"}`), "t=1,v1=deadbeef")
	assert.ErrorIs(t, err, ErrWebhookSignature)
}

func TestRedirectURLs(t *testing.T) {
	assert.Equal(t, "https://sokrate.app/checkout-pro?success=true&session_id={CHECKOUT_SESSION_ID}", SuccessURL("https://sokrate.app/"))
	assert.Equal(t, "https://sokrate.app/checkout-pro?canceled=true", CancelURL("https://sokrate.app"))
}

func TestNewStripeGateway_RequiresKey(t *testing.T) {
	_, err := NewStripeGateway("", testSecret, nil)
	assert.Error(t, err)
}
