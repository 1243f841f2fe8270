package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/reviewmaestro/payments-backend/errors"
	"github.com/reviewmaestro/payments-backend/log"
	"github.com/reviewmaestro/payments-backend/stripe"
	"github.com/reviewmaestro/payments-backend/validator"
)

// createSubscriptionHandler creates a Stripe customer and subscribes it to
// the plan and billing cycle requested, with a free trial. Only field
// presence is validated locally; the plan and billing cycle must resolve
// against the configured price table.
func (a *API) createSubscriptionHandler(w http.ResponseWriter, r *http.Request) {
	req := &CreateSubscriptionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.validator.Validate(req); err != nil {
		if field, ok := validator.FirstMissingField(err); ok {
			errors.ErrMissingRequiredField.With(field).Write(w)
			return
		}
		errors.ErrMalformedBody.WithErr(err).Write(w)
		return
	}

	result, err := a.stripe.CreateSubscription(&stripe.CreateSubscriptionParams{
		Email:           req.Email,
		Name:            req.Name,
		Plan:            req.Plan,
		BillingCycle:    req.BillingCycle,
		PaymentMethodID: req.PaymentMethodID,
		Company:         req.Company,
	})
	if err != nil {
		writeStripeError(w, err)
		return
	}

	httpWriteJSON(w, result)
}

// createPortalSessionHandler creates a customer portal session so the
// customer can manage their subscription on Stripe's hosted pages.
func (a *API) createPortalSessionHandler(w http.ResponseWriter, r *http.Request) {
	req := &CreatePortalSessionRequest{}
	if err := json.NewDecoder(r.Body).Decode(req); err != nil {
		errors.ErrMalformedBody.Write(w)
		return
	}
	if err := a.validator.Validate(req); err != nil {
		if field, ok := validator.FirstMissingField(err); ok {
			errors.ErrMissingRequiredField.With(field).Write(w)
			return
		}
		errors.ErrMalformedBody.WithErr(err).Write(w)
		return
	}

	url, err := a.stripe.CreatePortalSession(req.CustomerID, req.ReturnURL)
	if err != nil {
		writeStripeError(w, err)
		return
	}

	httpWriteJSON(w, &PortalSessionResponse{URL: url})
}

// subscriptionStatusHandler relays the most recent subscription of a
// customer, in any status.
func (a *API) subscriptionStatusHandler(w http.ResponseWriter, r *http.Request) {
	customerID := chi.URLParam(r, "customerID")
	if customerID == "" {
		errors.ErrMalformedURLParam.Withf("customerID is required").Write(w)
		return
	}

	status, err := a.stripe.GetSubscriptionStatus(customerID)
	if err != nil {
		writeStripeError(w, err)
		return
	}

	httpWriteJSON(w, status)
}

// writeStripeError writes an error coming out of the stripe service. The
// service returns typed errors carrying the mapped HTTP status; anything
// else is a genuine server bug and is reported generically.
func writeStripeError(w http.ResponseWriter, err error) {
	if apiErr, ok := err.(errors.Error); ok {
		apiErr.Write(w)
		return
	}
	log.Errorf("unexpected error from stripe service: %v", err)
	errors.ErrGenericInternalServerError.Write(w)
}
