package api

// CreateSubscriptionRequest is the payload of POST /api/create-subscription.
// All fields except company are required; presence is the only local rule,
// everything else is validated by Stripe.
type CreateSubscriptionRequest struct {
	Email           string `json:"email" validate:"required"`
	Name            string `json:"name" validate:"required"`
	Plan            string `json:"plan" validate:"required"`
	BillingCycle    string `json:"billing_cycle" validate:"required"`
	PaymentMethodID string `json:"payment_method_id" validate:"required"`
	Company         string `json:"company,omitempty"`
}

// CreatePortalSessionRequest is the payload of POST /api/create-portal-session.
type CreatePortalSessionRequest struct {
	CustomerID string `json:"customer_id" validate:"required"`
	ReturnURL  string `json:"return_url,omitempty"`
}

// PortalSessionResponse carries the URL the frontend redirects the customer to.
type PortalSessionResponse struct {
	URL string `json:"url"`
}

// HealthResponse is the GET /health payload.
type HealthResponse struct {
	Status           string `json:"status"`
	Service          string `json:"service"`
	Timestamp        string `json:"timestamp"`
	StripeConfigured bool   `json:"stripe_configured"`
}

// PublicConfigResponse is the GET /api/config payload consumed by the frontend.
type PublicConfigResponse struct {
	StripePublishableKey string `json:"stripe_publishable_key"`
	APIURL               string `json:"api_url"`
}

// WebhookAck is the acknowledgement returned to Stripe after all handler
// work has finished.
type WebhookAck struct {
	Status string `json:"status"`
}
