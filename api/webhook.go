package api

import (
	"io"
	"net/http"

	"github.com/reviewmaestro/payments-backend/errors"
	"github.com/reviewmaestro/payments-backend/log"
)

// maxWebhookBodyBytes caps webhook request bodies. Stripe events are small;
// anything larger is not a genuine delivery.
const maxWebhookBodyBytes = int64(65536)

// handleWebhook receives a webhook delivery from Stripe. The raw body bytes
// are passed unmodified to signature verification; Stripe treats any non-2xx
// response as "redeliver later", so the acknowledgement is only written
// after all handler work has finished. Authentication failures return 400 so
// Stripe stops retrying a delivery that will never validate.
func (a *API) handleWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookBodyBytes)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		log.Errorf("stripe webhook: error reading request body: %v", err)
		errors.ErrInvalidWebhookPayload.WithErr(err).Write(w)
		return
	}

	signatureHeader := r.Header.Get("Stripe-Signature")
	if err := a.stripe.ProcessWebhookEvent(payload, signatureHeader); err != nil {
		log.Errorf("stripe webhook: failed to process event: %v", err)
		if apiErr, ok := err.(errors.Error); ok {
			apiErr.Write(w)
			return
		}
		errors.ErrWebhookHandlerFailed.WithErr(err).Write(w)
		return
	}

	httpWriteJSON(w, &WebhookAck{Status: "success"})
}
