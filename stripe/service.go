// Package stripe provides integration with the Stripe payment service,
// handling subscription creation, billing portal sessions, status lookups
// and webhook events. Stripe owns all billing state; this package only maps
// requests onto API calls and relays the responses.
package stripe

import (
	"fmt"
	"time"

	stripeapi "github.com/stripe/stripe-go/v82"

	"github.com/reviewmaestro/payments-backend/errors"
	"github.com/reviewmaestro/payments-backend/log"
)

const (
	// metadataSource tags customers created through this service.
	metadataSource = "reviewmaestro_saas"

	// subscriptionListLimit caps the status lookup, newest first.
	subscriptionListLimit = 10

	// processedEventTTL bounds how long webhook event IDs are remembered
	// for duplicate-delivery suppression.
	processedEventTTL = 24 * time.Hour
)

// Service provides the main business logic for Stripe operations.
type Service struct {
	client          *Client
	config          *Config
	handlers        map[stripeapi.EventType]EventHandler
	processedEvents *MemoryEventStore
}

// NewService creates a new Stripe service with the default webhook handler
// table registered.
func NewService(config *Config) (*Service, error) {
	if config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if config.APIKey == "" {
		return nil, fmt.Errorf("stripe API key is required")
	}

	s := &Service{
		client:          NewClient(config),
		config:          config,
		handlers:        make(map[stripeapi.EventType]EventHandler),
		processedEvents: NewMemoryEventStore(processedEventTTL),
	}
	s.registerDefaultHandlers()
	return s, nil
}

// Ping checks connectivity and credentials against the Stripe API.
func (s *Service) Ping() (*stripeapi.Account, error) {
	return s.client.Ping()
}

// Configured reports whether an API key is set.
func (s *Service) Configured() bool {
	return s.config.APIKey != ""
}

// PublishableKey returns the public key the frontend uses to tokenize cards.
func (s *Service) PublishableKey() string {
	return s.config.PublishableKey
}

// CreateSubscriptionParams holds the validated input for a subscription
// creation request.
type CreateSubscriptionParams struct {
	Email           string
	Name            string
	Plan            string
	BillingCycle    string
	PaymentMethodID string
	Company         string
}

// SubscriptionResult is the caller-facing outcome of a subscription creation.
type SubscriptionResult struct {
	SubscriptionID string `json:"subscription_id"`
	CustomerID     string `json:"customer_id"`
	ClientSecret   string `json:"client_secret,omitempty"`
	TrialEnd       int64  `json:"trial_end"`
	Status         string `json:"status"`
}

// CreateSubscription resolves the plan and billing cycle against the
// configured price table, creates a customer with the given payment method
// and subscribes it to the resolved price with a free trial. It is two
// provider calls; if the second fails the customer is left behind in Stripe,
// which is harmless and visible in the dashboard.
func (s *Service) CreateSubscription(params *CreateSubscriptionParams) (*SubscriptionResult, error) {
	priceID, ok := s.config.PriceID(params.Plan, params.BillingCycle)
	if !ok {
		return nil, errors.ErrInvalidPlanOrBillingCycle.With(PlanKey(params.Plan, params.BillingCycle))
	}

	customer, err := s.client.CreateCustomer(&CustomerParams{
		Email:           params.Email,
		Name:            params.Name,
		PaymentMethodID: params.PaymentMethodID,
		Metadata: map[string]string{
			"plan":          params.Plan,
			"billing_cycle": params.BillingCycle,
			"source":        metadataSource,
			"company":       params.Company,
		},
	})
	if err != nil {
		return nil, err
	}
	log.Infof("customer created: %s for %s", customer.ID, params.Email)

	subscription, err := s.client.CreateSubscription(customer.ID, priceID, map[string]string{
		"plan":          params.Plan,
		"billing_cycle": params.BillingCycle,
	})
	if err != nil {
		return nil, err
	}
	log.Infof("subscription created: %s for customer %s", subscription.ID, customer.ID)

	result := &SubscriptionResult{
		SubscriptionID: subscription.ID,
		CustomerID:     customer.ID,
		TrialEnd:       subscription.TrialEnd,
		Status:         string(subscription.Status),
	}
	if subscription.LatestInvoice != nil && subscription.LatestInvoice.ConfirmationSecret != nil {
		result.ClientSecret = subscription.LatestInvoice.ConfirmationSecret.ClientSecret
	}
	return result, nil
}

// SubscriptionStatus describes the most recent subscription of a customer.
// StatusNoSubscription is reported when the customer has none at all.
type SubscriptionStatus struct {
	SubscriptionID     string `json:"subscription_id,omitempty"`
	Status             string `json:"status"`
	CurrentPeriodStart int64  `json:"current_period_start,omitempty"`
	CurrentPeriodEnd   int64  `json:"current_period_end,omitempty"`
	TrialEnd           int64  `json:"trial_end,omitempty"`
	CancelAtPeriodEnd  bool   `json:"cancel_at_period_end,omitempty"`
	Plan               string `json:"plan,omitempty"`
}

// StatusNoSubscription is the Status value reported for customers without
// any subscription.
const StatusNoSubscription = "no_subscription"

// GetSubscriptionStatus looks up the most recent subscription of a customer
// in any status and relays its fields.
func (s *Service) GetSubscriptionStatus(customerID string) (*SubscriptionStatus, error) {
	subscriptions, err := s.client.ListSubscriptions(customerID, subscriptionListLimit)
	if err != nil {
		return nil, err
	}
	if len(subscriptions) == 0 {
		return &SubscriptionStatus{Status: StatusNoSubscription}, nil
	}

	subscription := subscriptions[0]
	status := &SubscriptionStatus{
		SubscriptionID:    subscription.ID,
		Status:            string(subscription.Status),
		TrialEnd:          subscription.TrialEnd,
		CancelAtPeriodEnd: subscription.CancelAtPeriodEnd,
	}
	if subscription.Items != nil && len(subscription.Items.Data) > 0 {
		item := subscription.Items.Data[0]
		status.CurrentPeriodStart = item.CurrentPeriodStart
		status.CurrentPeriodEnd = item.CurrentPeriodEnd
		if item.Price != nil {
			status.Plan = item.Price.Nickname
		}
	}
	return status, nil
}

// CreatePortalSession creates a billing portal session for the customer and
// returns its URL.
func (s *Service) CreatePortalSession(customerID, returnURL string) (string, error) {
	session, err := s.client.CreatePortalSession(customerID, returnURL)
	if err != nil {
		return "", err
	}
	log.Infof("portal session created for customer: %s", customerID)
	return session.URL, nil
}
