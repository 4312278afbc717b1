package handlers

import (
	"context"
	"io"
	"log"
	"net/http"
	"strconv"

	"mindaudit/internal/services"
)

type contractActivator interface {
	ActivateContract(ctx context.Context, userID int) error
}

// PandaDocWebhookHandler activates collaborator contracts when the signed
// document completes. Same contract as the Stripe endpoint: bad signature is
// rejected, replays and unknown events are acknowledged, failures return 5xx,
// and the processed marker is written only after activation commits.
type PandaDocWebhookHandler struct {
	PandaDoc      *services.PandaDocService
	Collaborators contractActivator
	Events        eventMarker
	ErrorLog      *log.Logger
}

func (h *PandaDocWebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<20))
	if err != nil {
		http.Error(w, "Failed to read body", http.StatusBadRequest)
		return
	}

	if !h.PandaDoc.VerifySignature(body, r.URL.Query().Get("signature")) {
		http.Error(w, "Invalid signature", http.StatusBadRequest)
		return
	}

	events, err := services.ParsePandaDocEvents(body)
	if err != nil {
		http.Error(w, "Invalid payload", http.StatusBadRequest)
		return
	}

	for _, event := range events {
		if event.Event != "document_state_changed" || event.Data.Status != services.PandaDocCompleted {
			continue
		}
		userID, err := strconv.Atoi(event.Data.Metadata.UserID)
		if err != nil {
			h.ErrorLog.Printf("pandadoc document %s carries bad userId %q", event.Data.ID, event.Data.Metadata.UserID)
			continue
		}

		seen, err := h.Events.IsProcessed(r.Context(), "pandadoc", event.Data.ID)
		if err != nil {
			h.ErrorLog.Printf("pandadoc webhook dedup: %v", err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}
		if seen {
			continue
		}

		if err := h.Collaborators.ActivateContract(r.Context(), userID); err != nil {
			h.ErrorLog.Printf("pandadoc contract activation for user %d: %v", userID, err)
			http.Error(w, "Webhook processing failed", http.StatusInternalServerError)
			return
		}
		if _, err := h.Events.MarkProcessed(r.Context(), "pandadoc", event.Data.ID); err != nil {
			h.ErrorLog.Printf("pandadoc webhook marker %s: %v", event.Data.ID, err)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"received": true})
}
