package handler

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	stripe "github.com/stripe/stripe-go/v82"

	"github.com/dukerupert/fitcoach/internal/billing"
	billingstripe "github.com/dukerupert/fitcoach/internal/billing/stripe"
)

const maxWebhookBody = 65536

// EventVerifier checks a webhook signature and parses the event.
type EventVerifier interface {
	ConstructWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error)
}

// EventApplier applies a classified event to local state.
type EventApplier interface {
	Apply(ctx context.Context, event billing.Event) (billing.Outcome, error)
}

type WebhookHandler struct {
	verifier EventVerifier
	syncer   EventApplier
	metrics  *billing.Metrics
	logger   *slog.Logger
}

func NewWebhookHandler(v EventVerifier, s EventApplier, m *billing.Metrics, logger *slog.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier: v,
		syncer:   s,
		metrics:  m,
		logger:   logger.With("component", "webhook"),
	}
}

func (h *WebhookHandler) HandleStripeWebhook(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		h.logger.Warn("webhook body too large", "limit", tooLarge.Limit)
		h.metrics.ObserveEvent("", billing.OutcomeRejected)
		http.Error(w, "Payload too large", http.StatusRequestEntityTooLarge)
		return
	}
	if err != nil {
		http.Error(w, "read body", http.StatusBadRequest)
		return
	}

	sig := r.Header.Get("Stripe-Signature")
	if sig == "" {
		h.metrics.ObserveEvent("", billing.OutcomeRejected)
		http.Error(w, "Webhook secret not found.", http.StatusBadRequest)
		return
	}

	event, err := h.verifier.ConstructWebhookEvent(body, sig)
	if errors.Is(err, billingstripe.ErrWebhookSecretMissing) {
		h.logger.Error("webhook received without a configured signing secret")
		h.metrics.ObserveEvent("", billing.OutcomeRejected)
		http.Error(w, "Webhook secret not found.", http.StatusBadRequest)
		return
	}
	if err != nil {
		h.logger.Warn("webhook signature rejected", "error", err)
		h.metrics.ObserveEvent("", billing.OutcomeRejected)
		http.Error(w, "Webhook Error: "+err.Error(), http.StatusBadRequest)
		return
	}

	eventType := string(event.Type)
	classified, err := billing.Classify(event)
	if err == nil {
		var outcome billing.Outcome
		outcome, err = h.syncer.Apply(r.Context(), classified)
		if err == nil {
			h.metrics.ObserveEvent(eventType, outcome)
			writeJSON(w, http.StatusOK, map[string]bool{"received": true})
			return
		}
	}

	h.logger.Error("webhook handler failed", "event_id", event.ID, "type", eventType, "error", err)
	h.metrics.ObserveEvent(eventType, billing.OutcomeFailed)
	http.Error(w, "Webhook handler failed.", http.StatusInternalServerError)
}
