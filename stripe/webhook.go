package stripe

import (
	"encoding/json"
	"fmt"

	stripeapi "github.com/stripe/stripe-go/v82"

	"github.com/reviewmaestro/payments-backend/errors"
	"github.com/reviewmaestro/payments-backend/log"
)

// EventHandler processes a single authenticated webhook event. Handlers are
// registered for exactly one event type. They must tolerate duplicate
// delivery: Stripe redelivers on any non-2xx response, and the in-memory
// duplicate suppression does not survive restarts.
type EventHandler func(event *stripeapi.Event) error

// registerDefaultHandlers installs the fixed handler table. The set of types
// mirrors the events the webhook endpoint subscribes to in the Stripe
// dashboard.
func (s *Service) registerDefaultHandlers() {
	s.RegisterHandler(stripeapi.EventTypeCustomerSubscriptionCreated, s.handleSubscriptionCreated)
	s.RegisterHandler(stripeapi.EventTypeCustomerSubscriptionUpdated, s.handleSubscriptionUpdated)
	s.RegisterHandler(stripeapi.EventTypeCustomerSubscriptionDeleted, s.handleSubscriptionDeleted)
	s.RegisterHandler(stripeapi.EventTypeInvoicePaymentSucceeded, s.handlePaymentSucceeded)
	s.RegisterHandler(stripeapi.EventTypeInvoicePaymentFailed, s.handlePaymentFailed)
	s.RegisterHandler(stripeapi.EventTypeCustomerSubscriptionTrialWillEnd, s.handleTrialWillEnd)
}

// RegisterHandler sets the handler for an event type, replacing any previous
// one. Must be called before the service starts receiving deliveries.
func (s *Service) RegisterHandler(eventType stripeapi.EventType, handler EventHandler) {
	s.handlers[eventType] = handler
}

// DecodeEvent authenticates a webhook delivery and decodes it into an Event.
func (s *Service) DecodeEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	return s.client.ValidateWebhookEvent(payload, signatureHeader)
}

// ProcessWebhookEvent authenticates, decodes and dispatches a webhook
// delivery. Authentication failures come back as 400-class typed errors so
// Stripe stops redelivering a request that will never validate; handler
// failures come back as 500-class so Stripe retries later. Events already
// seen are acknowledged without re-invoking handlers.
func (s *Service) ProcessWebhookEvent(payload []byte, signatureHeader string) error {
	event, err := s.DecodeEvent(payload, signatureHeader)
	if err != nil {
		return err
	}

	log.Infof("stripe webhook: received event: %s", event.Type)

	if event.ID != "" && s.processedEvents.EventExists(event.ID) {
		log.Debugf("stripe webhook: event %s already processed, skipping", event.ID)
		return nil
	}

	if err := s.HandleEvent(event); err != nil {
		return errors.ErrWebhookHandlerFailed.Withf("%s: %v", event.Type, err)
	}

	if event.ID != "" {
		s.processedEvents.MarkProcessed(event.ID)
	}
	return nil
}

// HandleEvent dispatches an authenticated event to the handler registered
// for its type. Unknown types are logged and acknowledged as a no-op, so
// future event types never fail the request. A handler error or panic never
// propagates past the dispatcher.
func (s *Service) HandleEvent(event *stripeapi.Event) (err error) {
	handler, ok := s.handlers[event.Type]
	if !ok {
		log.Infof("stripe webhook: unhandled event type: %s (id %s)", event.Type, event.ID)
		return nil
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(event)
}

// The handlers below are side-effect stubs: they decode the payload scoped
// to their event type and log it. The TODOs mark the downstream integrations
// that belong here once the platform database and mailer exist.

func (s *Service) handleSubscriptionCreated(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return err
	}
	log.Infof("stripe webhook: subscription created: %s", subscription.ID)
	// TODO: send welcome email
	// TODO: grant platform access
	return nil
}

func (s *Service) handleSubscriptionUpdated(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return err
	}
	log.Infof("stripe webhook: subscription updated: %s - status: %s", subscription.ID, subscription.Status)
	// TODO: sync subscription status to the platform database
	return nil
}

func (s *Service) handleSubscriptionDeleted(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return err
	}
	log.Infof("stripe webhook: subscription canceled: %s", subscription.ID)
	// TODO: revoke platform access
	// TODO: send cancellation confirmation
	return nil
}

func (s *Service) handlePaymentSucceeded(event *stripeapi.Event) error {
	invoice, err := parseInvoiceFromEvent(event)
	if err != nil {
		return err
	}
	log.Infof("stripe webhook: payment succeeded: %s - amount: %d", invoice.ID, invoice.AmountPaid)
	// TODO: send payment confirmation
	return nil
}

func (s *Service) handlePaymentFailed(event *stripeapi.Event) error {
	invoice, err := parseInvoiceFromEvent(event)
	if err != nil {
		return err
	}
	customerID := ""
	if invoice.Customer != nil {
		customerID = invoice.Customer.ID
	}
	log.Infof("stripe webhook: payment failed: %s - customer: %s", invoice.ID, customerID)
	// TODO: send payment failure notification
	return nil
}

func (s *Service) handleTrialWillEnd(event *stripeapi.Event) error {
	subscription, err := parseSubscriptionFromEvent(event)
	if err != nil {
		return err
	}
	log.Infof("stripe webhook: trial ending soon for subscription: %s", subscription.ID)
	// TODO: send trial ending reminder
	return nil
}

// parseSubscriptionFromEvent extracts the subscription object from a webhook
// event payload.
func parseSubscriptionFromEvent(event *stripeapi.Event) (*stripeapi.Subscription, error) {
	var subscription stripeapi.Subscription
	if err := json.Unmarshal(event.Data.Raw, &subscription); err != nil {
		return nil, fmt.Errorf("failed to parse subscription from event: %v", err)
	}
	return &subscription, nil
}

// parseInvoiceFromEvent extracts the invoice object from a webhook event
// payload.
func parseInvoiceFromEvent(event *stripeapi.Event) (*stripeapi.Invoice, error) {
	var invoice stripeapi.Invoice
	if err := json.Unmarshal(event.Data.Raw, &invoice); err != nil {
		return nil, fmt.Errorf("failed to parse invoice from event: %v", err)
	}
	return &invoice, nil
}
