package handlers

import (
	"encoding/json"
	"net/http"

	"mindaudit/internal/repositories"
)

// FCMHandler registers and removes device tokens for push delivery.
type FCMHandler struct {
	UserRepo *repositories.UserRepository
}

func (h *FCMHandler) CreateToken(w http.ResponseWriter, r *http.Request) {
	actor := actorFromRequest(r)
	var input struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil || input.Token == "" {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.UserRepo.InsertNotifyToken(r.Context(), actor.ID, input.Token); err != nil {
		http.Error(w, "Failed to insert token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusCreated)
}

func (h *FCMHandler) DeleteToken(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get(":token")
	if token == "" {
		http.Error(w, "Missing token", http.StatusBadRequest)
		return
	}
	if err := h.UserRepo.DeleteNotifyToken(r.Context(), token); err != nil {
		http.Error(w, "Failed to delete token", http.StatusInternalServerError)
		return
	}
	w.WriteHeader(http.StatusOK)
}
