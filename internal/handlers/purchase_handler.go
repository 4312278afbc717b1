package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mindaudit/internal/services"
)

type PurchaseHandler struct {
	Service *services.PurchaseService
}

// CreateCheckout opens a Stripe checkout session for an hour package.
func (h *PurchaseHandler) CreateCheckout(w http.ResponseWriter, r *http.Request) {
	var input struct {
		PackageID int `json:"package_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result, err := h.Service.CreateCheckout(r.Context(), actorFromRequest(r), input.PackageID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *PurchaseHandler) History(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	collaboratorID := actor.CollaboratorID
	if idStr := r.URL.Query().Get(":collaborator_id"); idStr != "" {
		id, err := strconv.Atoi(idStr)
		if err != nil {
			http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
			return
		}
		collaboratorID = id
	}

	purchases, err := h.Service.History(r.Context(), actor, collaboratorID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}
