package api

import (
	"net/http"
	"time"
)

// healthHandler reports service liveness and whether Stripe credentials are
// configured.
func (a *API) healthHandler(w http.ResponseWriter, _ *http.Request) {
	httpWriteJSON(w, &HealthResponse{
		Status:           "healthy",
		Service:          ServiceName,
		Timestamp:        time.Now().UTC().Format(time.RFC3339),
		StripeConfigured: a.stripe != nil && a.stripe.Configured(),
	})
}

// configHandler serves the public configuration the frontend needs to
// tokenize cards and reach this API.
func (a *API) configHandler(w http.ResponseWriter, r *http.Request) {
	httpWriteJSON(w, &PublicConfigResponse{
		StripePublishableKey: a.stripe.PublishableKey(),
		APIURL:               apiBaseURL(r),
	})
}
