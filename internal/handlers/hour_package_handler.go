package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"mindaudit/internal/models"
	"mindaudit/internal/services"
)

type HourPackageHandler struct {
	Service *services.HourPackageService
}

func (h *HourPackageHandler) List(w http.ResponseWriter, r *http.Request) {
	packages, err := h.Service.ListActive(r.Context())
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, packages)
}

func (h *HourPackageHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid package ID", http.StatusBadRequest)
		return
	}
	pkg, err := h.Service.Get(r.Context(), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, pkg)
}

func (h *HourPackageHandler) Create(w http.ResponseWriter, r *http.Request) {
	var pkg models.HourPackage
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	created, err := h.Service.Create(r.Context(), actorFromRequest(r), pkg)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *HourPackageHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid package ID", http.StatusBadRequest)
		return
	}
	var pkg models.HourPackage
	if err := json.NewDecoder(r.Body).Decode(&pkg); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	pkg.ID = id

	updated, err := h.Service.Update(r.Context(), actorFromRequest(r), pkg)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}
