package stripe

import (
	stderrors "errors"

	stripeapi "github.com/stripe/stripe-go/v82"
	stripeaccount "github.com/stripe/stripe-go/v82/account"
	stripeportalsession "github.com/stripe/stripe-go/v82/billingportal/session"
	stripecustomer "github.com/stripe/stripe-go/v82/customer"
	stripeprice "github.com/stripe/stripe-go/v82/price"
	stripeproduct "github.com/stripe/stripe-go/v82/product"
	stripesubscription "github.com/stripe/stripe-go/v82/subscription"
	stripewebhook "github.com/stripe/stripe-go/v82/webhook"

	"github.com/reviewmaestro/payments-backend/errors"
)

// Client wraps the Stripe API client. All provider errors returned by its
// methods are already mapped to the typed error catalog.
type Client struct {
	config *Config
}

// NewClient creates a new Stripe client with the given configuration.
func NewClient(config *Config) *Client {
	stripeapi.Key = config.APIKey

	return &Client{
		config: config,
	}
}

// Ping retrieves the Stripe account associated with the configured API key.
// It is used as a startup connectivity and credentials check.
func (*Client) Ping() (*stripeapi.Account, error) {
	acct, err := stripeaccount.Get()
	if err != nil {
		return nil, mapError(err)
	}
	return acct, nil
}

// CustomerParams holds the fields used to create a customer.
type CustomerParams struct {
	Email           string
	Name            string
	PaymentMethodID string
	Metadata        map[string]string
}

// CreateCustomer creates a Stripe customer with the given payment method
// attached as the default for invoices.
func (*Client) CreateCustomer(params *CustomerParams) (*stripeapi.Customer, error) {
	customerParams := &stripeapi.CustomerParams{
		Email:         stripeapi.String(params.Email),
		Name:          stripeapi.String(params.Name),
		PaymentMethod: stripeapi.String(params.PaymentMethodID),
		InvoiceSettings: &stripeapi.CustomerInvoiceSettingsParams{
			DefaultPaymentMethod: stripeapi.String(params.PaymentMethodID),
		},
		Metadata: params.Metadata,
	}

	customer, err := stripecustomer.New(customerParams)
	if err != nil {
		return nil, mapError(err)
	}
	return customer, nil
}

// CreateSubscription creates a subscription for the customer on the given
// price with the configured free trial. The latest invoice confirmation
// secret is expanded so the caller can hand its client secret to the
// frontend for payment confirmation.
func (c *Client) CreateSubscription(customerID, priceID string, metadata map[string]string) (*stripeapi.Subscription, error) {
	trialDays := c.config.TrialPeriodDays
	if trialDays == 0 {
		trialDays = DefaultTrialPeriodDays
	}

	subscriptionParams := &stripeapi.SubscriptionParams{
		Customer: stripeapi.String(customerID),
		Items: []*stripeapi.SubscriptionItemsParams{
			{Price: stripeapi.String(priceID)},
		},
		TrialPeriodDays: stripeapi.Int64(trialDays),
		Metadata:        metadata,
	}
	subscriptionParams.AddExpand("latest_invoice.confirmation_secret")

	subscription, err := stripesubscription.New(subscriptionParams)
	if err != nil {
		return nil, mapError(err)
	}
	return subscription, nil
}

// ListSubscriptions returns the customer's subscriptions in any status, most
// recent first, up to limit.
func (*Client) ListSubscriptions(customerID string, limit int64) ([]*stripeapi.Subscription, error) {
	params := &stripeapi.SubscriptionListParams{
		Customer: stripeapi.String(customerID),
		Status:   stripeapi.String("all"),
	}
	params.Limit = stripeapi.Int64(limit)

	var subscriptions []*stripeapi.Subscription
	i := stripesubscription.List(params)
	for i.Next() {
		subscriptions = append(subscriptions, i.Subscription())
	}
	if err := i.Err(); err != nil {
		return nil, mapError(err)
	}
	return subscriptions, nil
}

// CreatePortalSession creates a billing portal session for a customer.
func (c *Client) CreatePortalSession(customerID, returnURL string) (*stripeapi.BillingPortalSession, error) {
	if returnURL == "" {
		returnURL = c.config.PortalReturnURL
	}

	params := &stripeapi.BillingPortalSessionParams{
		Customer: stripeapi.String(customerID),
	}
	if returnURL != "" {
		params.ReturnURL = stripeapi.String(returnURL)
	}

	session, err := stripeportalsession.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return session, nil
}

// CreateProduct creates a catalog product.
func (*Client) CreateProduct(params *stripeapi.ProductParams) (*stripeapi.Product, error) {
	product, err := stripeproduct.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return product, nil
}

// CreatePrice creates a recurring price for a product.
func (*Client) CreatePrice(params *stripeapi.PriceParams) (*stripeapi.Price, error) {
	price, err := stripeprice.New(params)
	if err != nil {
		return nil, mapError(err)
	}
	return price, nil
}

// ValidateWebhookEvent authenticates a webhook delivery against the raw body
// bytes and the Stripe-Signature header, and decodes it into an Event. An
// Event is never constructed from input that fails verification.
func (c *Client) ValidateWebhookEvent(payload []byte, signatureHeader string) (*stripeapi.Event, error) {
	if c.config.WebhookSecret == "" {
		// Deployment error, not a per-request condition.
		return nil, errors.ErrWebhookSecretNotConfigured
	}

	// Webhook endpoints can be pinned to any API version in the Stripe
	// dashboard; a version mismatch must not reject a correctly signed
	// delivery.
	event, err := stripewebhook.ConstructEventWithOptions(payload, signatureHeader, c.config.WebhookSecret,
		stripewebhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		if isSignatureError(err) {
			return nil, errors.ErrInvalidWebhookSignature.WithErr(err)
		}
		return nil, errors.ErrInvalidWebhookPayload.WithErr(err)
	}
	return &event, nil
}

// isSignatureError reports whether a ConstructEvent failure was caused by the
// signature header rather than the payload itself.
func isSignatureError(err error) bool {
	return stderrors.Is(err, stripewebhook.ErrNotSigned) ||
		stderrors.Is(err, stripewebhook.ErrNoValidSignature) ||
		stderrors.Is(err, stripewebhook.ErrTooOld) ||
		stderrors.Is(err, stripewebhook.ErrInvalidHeader)
}
