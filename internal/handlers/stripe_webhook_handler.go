package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"

	"mindaudit/internal/models"
	"mindaudit/internal/services"
)

type purchaseConfirmer interface {
	Confirm(ctx context.Context, sessionID, paymentIntentID string) (models.HourPurchase, error)
}

type budgetPayer interface {
	MarkBudgetPaid(ctx context.Context, budgetID int64) error
}

type eventMarker interface {
	IsProcessed(ctx context.Context, provider, eventID string) (bool, error)
	MarkProcessed(ctx context.Context, provider, eventID string) (bool, error)
}

// StripeWebhookHandler receives checkout events. Contract: bad signatures are
// rejected, replays are acknowledged without side effects, unknown event
// types and routing values are acknowledged so Stripe stops retrying, and
// handler failures return 5xx so Stripe retries later.
//
// The processed marker is written only after dispatch succeeds. A crash
// before the marker lands means the retry runs the handler again, which is
// safe: every dispatched handler is idempotent on its own domain key.
type StripeWebhookHandler struct {
	Stripe      *services.StripeService
	Purchases   purchaseConfirmer
	Commissions budgetPayer
	Events      eventMarker
	ErrorLog    *log.Logger
}

func (h *StripeWebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if err := h.Stripe.VerifySignature(payload, r.Header.Get("Stripe-Signature"), time.Now()); err != nil {
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	event, err := services.ParseStripeEvent(payload)
	if err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	seen, err := h.Events.IsProcessed(r.Context(), "stripe", event.ID)
	if err != nil {
		h.ErrorLog.Printf("stripe webhook dedup: %v", err)
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	if seen {
		writeJSON(w, http.StatusOK, map[string]any{"received": true, "duplicate": true})
		return
	}

	if err := h.dispatch(r, event); err != nil {
		h.ErrorLog.Printf("stripe webhook %s (%s): %v", event.ID, event.Type, err)
		http.Error(w, "Webhook processing failed", http.StatusInternalServerError)
		return
	}

	// A marker write failure only costs a replayed no-op later.
	if _, err := h.Events.MarkProcessed(r.Context(), "stripe", event.ID); err != nil {
		h.ErrorLog.Printf("stripe webhook marker %s: %v", event.ID, err)
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}

func (h *StripeWebhookHandler) dispatch(r *http.Request, event services.StripeEvent) error {
	switch event.Type {
	case "checkout.session.completed":
		session := event.Data.Object
		switch session.Metadata["tipo"] {
		case "compra_horas":
			_, err := h.Purchases.Confirm(r.Context(), session.ID, session.PaymentIntent)
			return err
		default:
			if raw, ok := session.Metadata["auditoria_id"]; ok {
				budgetID, err := strconv.ParseInt(raw, 10, 64)
				if err != nil {
					h.ErrorLog.Printf("stripe webhook %s: bad auditoria_id %q", event.ID, raw)
					return nil
				}
				return h.Commissions.MarkBudgetPaid(r.Context(), budgetID)
			}
			// Sessions opened by other products share the endpoint; ack them.
			return nil
		}
	default:
		// Unknown event types are acknowledged, not failed.
		return nil
	}
}
