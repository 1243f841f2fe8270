// Package errors provides custom error types and definitions for the application.
//
//nolint:lll
package errors

import (
	"fmt"
	"net/http"
)

// The custom Error type satisfies the error interface.
// Error() returns a human-readable description of the error.
//
// Error codes in the 40001-49999 range are the caller's fault,
// and they return HTTP Status 400, 401, 404 or 429, whatever is most appropriate.
//
// Error codes 50001-59999 are the server's (or Stripe's) fault
// and they return HTTP Status 500 or 503.
//
// NEVER change any of the current error codes, only append new errors after the
// current last 4XXX or 5XXX. If you notice there's a gap, DON'T fill it in,
// that code was used in the past for some error and shouldn't be reused.
// There's no correlation between Code and HTTP Status.
var (
	// Client input errors (400)
	ErrMalformedBody             = Error{Code: 40001, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid JSON request body")}
	ErrMissingRequiredField      = Error{Code: 40002, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Missing required field")}
	ErrInvalidPlanOrBillingCycle = Error{Code: 40003, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid plan or billing cycle")}
	ErrMalformedURLParam         = Error{Code: 40004, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid URL parameter")}

	// Stripe-rejected requests, mapped from the Stripe error taxonomy
	ErrCardDeclined          = Error{Code: 40005, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Card error"), LogLevel: "info"}
	ErrStripeInvalidRequest  = Error{Code: 40006, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Invalid request")}
	ErrStripeError           = Error{Code: 40007, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("Payment processing error")}
	ErrStripeAuthentication  = Error{Code: 40101, HTTPstatus: http.StatusUnauthorized, Err: fmt.Errorf("Authentication failed. Please contact support."), LogLevel: "warn"}
	ErrStripeRateLimited     = Error{Code: 42901, HTTPstatus: http.StatusTooManyRequests, Err: fmt.Errorf("Too many requests. Please try again later."), LogLevel: "info"}
	ErrStripeUnreachable     = Error{Code: 50301, HTTPstatus: http.StatusServiceUnavailable, Err: fmt.Errorf("Network error. Please try again."), LogLevel: "error"}

	// Webhook authentication errors (400)
	ErrWebhookSecretNotConfigured = Error{Code: 40008, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("webhook secret not configured"), LogLevel: "warn"}
	ErrInvalidWebhookPayload      = Error{Code: 40009, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid payload")}
	ErrInvalidWebhookSignature    = Error{Code: 40010, HTTPstatus: http.StatusBadRequest, Err: fmt.Errorf("invalid signature")}

	// Not found errors (404)
	ErrEndpointNotFound = Error{Code: 40401, HTTPstatus: http.StatusNotFound, Err: fmt.Errorf("Endpoint not found")}

	// Server errors (500) - These should be used sparingly and only for true internal errors
	ErrMarshalingServerJSONFailed = Error{Code: 50001, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("server error: failed to process response"), LogLevel: "error"}
	ErrGenericInternalServerError = Error{Code: 50002, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("An unexpected error occurred. Please try again."), LogLevel: "error"}
	ErrWebhookHandlerFailed       = Error{Code: 50003, HTTPstatus: http.StatusInternalServerError, Err: fmt.Errorf("error handling webhook"), LogLevel: "error"}
)
