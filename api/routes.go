package api

const (
	// GET /health service health check
	healthEndpoint = "/health"
	// GET /api/config public configuration for the frontend
	configEndpoint = "/api/config"
	// POST /api/create-subscription to create a customer and subscription
	createSubscriptionEndpoint = "/api/create-subscription"
	// POST /api/create-portal-session to create a customer portal session
	createPortalSessionEndpoint = "/api/create-portal-session"
	// GET /api/subscription-status/{customerID} to look up a customer's subscription
	subscriptionStatusEndpoint = "/api/subscription-status/{customerID}"
	// POST /api/webhook to receive Stripe webhook deliveries
	webhookEndpoint = "/api/webhook"
)
