package stripe

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"testing"
	"time"

	qt "github.com/frankban/quicktest"
	stripeapi "github.com/stripe/stripe-go/v82"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/reviewmaestro/payments-backend/errors"
)

const testWebhookSecret = "whsec_test_secret"

func newTestService(t *testing.T) *Service {
	t.Helper()
	service, err := NewService(&Config{
		APIKey:        "sk_test_123",
		WebhookSecret: testWebhookSecret,
		PriceIDs: map[string]string{
			"starter_monthly": "price_starter_monthly",
		},
	})
	qt.Assert(t, err, qt.IsNil)
	return service
}

// signPayload builds a Stripe-Signature header for the payload, the same way
// Stripe signs deliveries: HMAC-SHA256 over "<timestamp>.<payload>".
func signPayload(payload []byte, secret string, at time.Time) string {
	signature := stripewebhook.ComputeSignature(at, payload, secret)
	return fmt.Sprintf("t=%d,v1=%s", at.Unix(), hex.EncodeToString(signature))
}

// eventPayload builds a minimal webhook event body.
func eventPayload(id, eventType string, object map[string]any) []byte {
	payload, err := json.Marshal(map[string]any{
		"id":   id,
		"type": eventType,
		"data": map[string]any{"object": object},
	})
	if err != nil {
		panic(err)
	}
	return payload
}

func TestDecodeEvent(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	payload := eventPayload("evt_1", "invoice.payment_failed", map[string]any{
		"id":       "in_1",
		"customer": "cus_1",
	})

	t.Run("ValidSignature", func(t *testing.T) {
		c := qt.New(t)
		event, err := service.DecodeEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
		c.Assert(err, qt.IsNil)
		c.Assert(event.ID, qt.Equals, "evt_1")
		c.Assert(event.Type, qt.Equals, stripeapi.EventTypeInvoicePaymentFailed)
	})

	t.Run("WrongSecret", func(t *testing.T) {
		c := qt.New(t)
		event, err := service.DecodeEvent(payload, signPayload(payload, "whsec_other", time.Now()))
		c.Assert(event, qt.IsNil)
		apiErr, ok := err.(errors.Error)
		c.Assert(ok, qt.IsTrue)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrInvalidWebhookSignature.Code)
	})

	t.Run("MissingSignatureHeader", func(t *testing.T) {
		c := qt.New(t)
		event, err := service.DecodeEvent(payload, "")
		c.Assert(event, qt.IsNil)
		apiErr, ok := err.(errors.Error)
		c.Assert(ok, qt.IsTrue)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrInvalidWebhookSignature.Code)
	})

	t.Run("PinnedAPIVersion", func(t *testing.T) {
		// Endpoints pinned to another API version in the dashboard still
		// deliver correctly signed events; the version must not matter.
		c := qt.New(t)
		pinned, err := json.Marshal(map[string]any{
			"id":          "evt_pinned_1",
			"type":        "invoice.payment_failed",
			"api_version": "2023-10-16",
			"data":        map[string]any{"object": map[string]any{"id": "in_pinned_1"}},
		})
		c.Assert(err, qt.IsNil)
		event, err := service.DecodeEvent(pinned, signPayload(pinned, testWebhookSecret, time.Now()))
		c.Assert(err, qt.IsNil)
		c.Assert(event.ID, qt.Equals, "evt_pinned_1")
	})

	t.Run("StaleTimestamp", func(t *testing.T) {
		c := qt.New(t)
		stale := time.Now().Add(-time.Hour)
		event, err := service.DecodeEvent(payload, signPayload(payload, testWebhookSecret, stale))
		c.Assert(event, qt.IsNil)
		apiErr, ok := err.(errors.Error)
		c.Assert(ok, qt.IsTrue)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrInvalidWebhookSignature.Code)
	})

	t.Run("MalformedPayload", func(t *testing.T) {
		c := qt.New(t)
		garbage := []byte("not json at all")
		event, err := service.DecodeEvent(garbage, signPayload(garbage, testWebhookSecret, time.Now()))
		c.Assert(event, qt.IsNil)
		apiErr, ok := err.(errors.Error)
		c.Assert(ok, qt.IsTrue)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrInvalidWebhookPayload.Code)
	})

	t.Run("NoSecretConfigured", func(t *testing.T) {
		c := qt.New(t)
		unconfigured, err := NewService(&Config{APIKey: "sk_test_123"})
		c.Assert(err, qt.IsNil)
		event, err := unconfigured.DecodeEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
		c.Assert(event, qt.IsNil)
		apiErr, ok := err.(errors.Error)
		c.Assert(ok, qt.IsTrue)
		c.Assert(apiErr.Code, qt.Equals, errors.ErrWebhookSecretNotConfigured.Code)
	})

	// The same (body, signature, secret) triple classifies identically every
	// time.
	event1, err1 := service.DecodeEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	event2, err2 := service.DecodeEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	c.Assert(err1, qt.IsNil)
	c.Assert(err2, qt.IsNil)
	c.Assert(event1.Type, qt.Equals, event2.Type)
}

func TestDispatch(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	invocations := make(map[stripeapi.EventType]int)
	var lastObject map[string]any
	for _, eventType := range []stripeapi.EventType{
		stripeapi.EventTypeCustomerSubscriptionCreated,
		stripeapi.EventTypeCustomerSubscriptionUpdated,
		stripeapi.EventTypeCustomerSubscriptionDeleted,
		stripeapi.EventTypeInvoicePaymentSucceeded,
		stripeapi.EventTypeInvoicePaymentFailed,
		stripeapi.EventTypeCustomerSubscriptionTrialWillEnd,
	} {
		eventType := eventType
		service.RegisterHandler(eventType, func(event *stripeapi.Event) error {
			invocations[eventType]++
			return json.Unmarshal(event.Data.Raw, &lastObject)
		})
	}

	payload := eventPayload("evt_pf_1", "invoice.payment_failed", map[string]any{
		"id":       "in_1",
		"customer": "cus_1",
	})

	err := service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	c.Assert(err, qt.IsNil)

	// Exactly one matching handler, exactly once, with the event's data object
	c.Assert(invocations[stripeapi.EventTypeInvoicePaymentFailed], qt.Equals, 1)
	for eventType, count := range invocations {
		if eventType != stripeapi.EventTypeInvoicePaymentFailed {
			c.Assert(count, qt.Equals, 0, qt.Commentf("unexpected invocation of %s", eventType))
		}
	}
	c.Assert(lastObject["id"], qt.Equals, "in_1")
	c.Assert(lastObject["customer"], qt.Equals, "cus_1")

	// Redelivery of the same event ID is acknowledged without re-invoking
	err = service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	c.Assert(err, qt.IsNil)
	c.Assert(invocations[stripeapi.EventTypeInvoicePaymentFailed], qt.Equals, 1)
}

func TestDispatchUnknownType(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	invoked := 0
	service.RegisterHandler(stripeapi.EventTypeInvoicePaymentFailed, func(*stripeapi.Event) error {
		invoked++
		return nil
	})

	// charge.refunded is not in the handler table; it must be acknowledged
	// as a no-op so future event types never fail the request.
	payload := eventPayload("evt_unknown_1", "charge.refunded", map[string]any{"id": "ch_1"})
	err := service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	c.Assert(err, qt.IsNil)
	c.Assert(invoked, qt.Equals, 0)
}

func TestDispatchNoHandlerOnInvalidSignature(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	invoked := 0
	service.RegisterHandler(stripeapi.EventTypeInvoicePaymentFailed, func(*stripeapi.Event) error {
		invoked++
		return nil
	})

	payload := eventPayload("evt_pf_2", "invoice.payment_failed", map[string]any{"id": "in_2"})
	err := service.ProcessWebhookEvent(payload, signPayload(payload, "whsec_other", time.Now()))
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(invoked, qt.Equals, 0)
}

func TestDispatchHandlerFailure(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	invoked := 0
	service.RegisterHandler(stripeapi.EventTypeInvoicePaymentFailed, func(*stripeapi.Event) error {
		invoked++
		return fmt.Errorf("database down")
	})

	payload := eventPayload("evt_pf_3", "invoice.payment_failed", map[string]any{"id": "in_3"})
	header := signPayload(payload, testWebhookSecret, time.Now())

	err := service.ProcessWebhookEvent(payload, header)
	apiErr, ok := err.(errors.Error)
	c.Assert(ok, qt.IsTrue)
	c.Assert(apiErr.HTTPstatus, qt.Equals, 500)
	c.Assert(apiErr.Error(), qt.Contains, "invoice.payment_failed")

	// A failed event is not marked processed, so the redelivery reaches the
	// handler again.
	err = service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	c.Assert(err, qt.Not(qt.IsNil))
	c.Assert(invoked, qt.Equals, 2)
}

func TestDispatchHandlerPanic(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	service.RegisterHandler(stripeapi.EventTypeInvoicePaymentFailed, func(*stripeapi.Event) error {
		panic("boom")
	})

	payload := eventPayload("evt_pf_4", "invoice.payment_failed", map[string]any{"id": "in_4"})
	err := service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
	apiErr, ok := err.(errors.Error)
	c.Assert(ok, qt.IsTrue)
	c.Assert(apiErr.HTTPstatus, qt.Equals, 500)
}

func TestDefaultHandlersDecodePayloads(t *testing.T) {
	c := qt.New(t)
	service := newTestService(t)

	// The stock handlers only log, but they must decode every payload shape
	// without erroring.
	cases := []struct {
		eventType string
		object    map[string]any
	}{
		{"customer.subscription.created", map[string]any{"id": "sub_1", "status": "trialing"}},
		{"customer.subscription.updated", map[string]any{"id": "sub_1", "status": "active"}},
		{"customer.subscription.deleted", map[string]any{"id": "sub_1", "status": "canceled"}},
		{"invoice.payment_succeeded", map[string]any{"id": "in_1", "amount_paid": 1900}},
		{"invoice.payment_failed", map[string]any{"id": "in_2", "customer": "cus_1"}},
		{"customer.subscription.trial_will_end", map[string]any{"id": "sub_1", "status": "trialing"}},
	}
	for i, tc := range cases {
		payload := eventPayload(fmt.Sprintf("evt_stock_%d", i), tc.eventType, tc.object)
		err := service.ProcessWebhookEvent(payload, signPayload(payload, testWebhookSecret, time.Now()))
		c.Assert(err, qt.IsNil, qt.Commentf("event type %s", tc.eventType))
	}
}
