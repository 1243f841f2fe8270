package stripe

import (
	stderrors "errors"
	"net/http"

	stripeapi "github.com/stripe/stripe-go/v82"

	"github.com/reviewmaestro/payments-backend/errors"
)

// mapError translates a stripe-go API error into the typed error catalog.
// Stripe's taxonomy maps onto HTTP statuses as follows: card errors carry the
// user-safe message with a 400, rate limits become 429, invalid requests 400,
// authentication failures 401 and anything that never reached Stripe (network
// failures, timeouts) 503. Errors that are already typed pass through
// untouched.
func mapError(err error) errors.Error {
	var apiErr errors.Error
	if stderrors.As(err, &apiErr) {
		return apiErr
	}

	var stripeErr *stripeapi.Error
	if !stderrors.As(err, &stripeErr) {
		// Not a Stripe response at all, so the request never made it there.
		return errors.ErrStripeUnreachable.WithErr(err)
	}

	if stripeErr.HTTPStatusCode == http.StatusTooManyRequests || stripeErr.Code == stripeapi.ErrorCodeRateLimit {
		return errors.ErrStripeRateLimited
	}
	if stripeErr.HTTPStatusCode == http.StatusUnauthorized {
		return errors.ErrStripeAuthentication
	}

	switch stripeErr.Type {
	case stripeapi.ErrorTypeCard:
		return errors.ErrCardDeclined.With(stripeErr.Msg)
	case stripeapi.ErrorTypeInvalidRequest:
		return errors.ErrStripeInvalidRequest.With(stripeErr.Msg)
	default:
		return errors.ErrStripeError.With(stripeErr.Msg)
	}
}
