package handlers

import (
	"net/http"
	"strconv"

	"mindaudit/internal/services"
)

type CollaboratorHandler struct {
	Service *services.CollaboratorService
}

func (h *CollaboratorHandler) List(w http.ResponseWriter, r *http.Request) {
	collaborators, err := h.Service.List(r.Context(), actorFromRequest(r), r.URL.Query().Get("status"))
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collaborators)
}

func (h *CollaboratorHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}
	collab, err := h.Service.Approve(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collab)
}

func (h *CollaboratorHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}
	collab, err := h.Service.Deactivate(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, collab)
}

func (h *CollaboratorHandler) Profile(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(r.URL.Query().Get(":id"))
	if err != nil {
		http.Error(w, "Invalid collaborator ID", http.StatusBadRequest)
		return
	}
	profile, err := h.Service.Profile(r.Context(), actorFromRequest(r), id)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}

// MyProfile resolves the collaborator id from the token.
func (h *CollaboratorHandler) MyProfile(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	profile, err := h.Service.Profile(r.Context(), actor, actor.CollaboratorID)
	if err != nil {
		serviceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile)
}
