package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mindaudit/internal/services"
)

type CommissionHandler struct {
	Service *services.CommissionService
}

// AcceptBudget flips the budget into accepted_pending_invoice and accrues the
// commission. Idempotent at the service level.
func (h *CommissionHandler) AcceptBudget(w http.ResponseWriter, r *http.Request) {
	budgetID, err := strconv.ParseInt(r.URL.Query().Get(":id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}
	budget, err := h.Service.AcceptBudget(r.Context(), actorFromRequest(r), budgetID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (h *CommissionHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.URL.Query().Get(":id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid commission ID", http.StatusBadRequest)
		return
	}
	var input struct {
		PaymentReference string  `json:"payment_reference"`
		Notes            *string `json:"notes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	commission, err := h.Service.Pay(r.Context(), actorFromRequest(r), id, input.PaymentReference, input.Notes)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commission)
}

func (h *CommissionHandler) List(w http.ResponseWriter, r *http.Request) {
	commissions, err := h.Service.List(r.Context(), actorFromRequest(r), r.URL.Query().Get("status"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, commissions)
}

func (h *CommissionHandler) Totals(w http.ResponseWriter, r *http.Request) {
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

	totals, err := h.Service.Totals(r.Context(), actor, collaboratorID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, totals)
}
