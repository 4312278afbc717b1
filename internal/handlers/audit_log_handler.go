package handlers

import (
	"net/http"
	"strconv"

	"mindaudit/internal/models"
	"mindaudit/internal/repositories"
)

type AuditLogHandler struct {
	AuditRepo *repositories.AuditLogRepository
}

func (h *AuditLogHandler) List(w http.ResponseWriter, r *http.Request) {
	if !actorFromRequest(r).IsAdmin() {
		http.Error(w, models.ErrForbidden.Error(), http.StatusForbidden)
		return
	}
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("page_size"))

	entries, err := h.AuditRepo.List(r.Context(), r.URL.Query().Get("entity_type"), page, pageSize)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entries)
}
