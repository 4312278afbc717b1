package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mindaudit/internal/models"
	"mindaudit/internal/repositories"
)

// BudgetHandler manages audit budgets directly through the repository; budget
// editing has no domain rules beyond status, which lives in CommissionService.
type BudgetHandler struct {
	BudgetRepo *repositories.BudgetRepository
}

func (h *BudgetHandler) Create(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	if !actor.IsAdmin() {
		http.Error(w, models.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	var input struct {
		CompanyID      int     `json:"company_id"`
		CollaboratorID *int    `json:"collaborator_id"`
		Concept        string  `json:"concept"`
		Amount         float64 `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if input.CompanyID == 0 || input.Amount <= 0 {
		http.Error(w, models.ErrMissingFields.Error(), http.StatusBadRequest)
		return
	}

	budget, err := h.BudgetRepo.Create(r.Context(), models.Budget{
		CompanyID:      input.CompanyID,
		CollaboratorID: input.CollaboratorID,
		Concept:        input.Concept,
		AmountCents:    models.HoursFromDecimal(input.Amount),
		Status:         models.BudgetDraft,
	})
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, budget)
}

func (h *BudgetHandler) Get(w http.ResponseWriter, r *http.Request) {
	if !actorFromRequest(r).IsAdmin() {
		http.Error(w, models.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get(":id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}
	budget, err := h.BudgetRepo.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}

func (h *BudgetHandler) ListByCompany(w http.ResponseWriter, r *http.Request) {
	if !actorFromRequest(r).IsAdmin() {
		http.Error(w, models.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	companyID, err := strconv.Atoi(r.URL.Query().Get(":company_id"))
	if err != nil {
		http.Error(w, "Invalid company ID", http.StatusBadRequest)
		return
	}
	budgets, err := h.BudgetRepo.ListByCompany(r.Context(), companyID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budgets)
}

// UpdateStatus handles the plain status moves (sent, invoiced, paid,
// rejected). Acceptance goes through the commission flow instead.
func (h *BudgetHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	if !actorFromRequest(r).IsAdmin() {
		http.Error(w, models.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	id, err := strconv.ParseInt(r.URL.Query().Get(":id"), 10, 64)
	if err != nil {
		http.Error(w, "Invalid budget ID", http.StatusBadRequest)
		return
	}
	var input struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	switch input.Status {
	case models.BudgetSent, models.BudgetInvoiced, models.BudgetPaid, models.BudgetRejected:
	default:
		http.Error(w, "Unsupported status", http.StatusBadRequest)
		return
	}

	if err := h.BudgetRepo.UpdateStatus(r.Context(), id, input.Status); err != nil {
		serviceError(w, err)
		return
	}
	budget, err := h.BudgetRepo.GetByID(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, budget)
}
