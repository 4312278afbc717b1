package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"mindaudit/internal/models"
)

// actorFromRequest rebuilds the acting user from the context values the JWT
// middleware stored.
func actorFromRequest(r *http.Request) models.ActingUser {
	actor := models.ActingUser{}
	if v, ok := r.Context().Value("user_id").(int); ok {
		actor.ID = v
	}
	if v, ok := r.Context().Value("role").(string); ok {
		actor.Role = v
	}
	if v, ok := r.Context().Value("collaborator_id").(int); ok {
		actor.CollaboratorID = v
	}
	return actor
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// serviceError maps domain errors onto HTTP statuses. Insufficient balance is
// a conflict with a structured payload so clients can show both figures.
func serviceError(w http.ResponseWriter, err error) {
	var insufficient *models.InsufficientBalanceError
	if errors.As(err, &insufficient) {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error":           insufficient.Error(),
			"required_hours":  models.FormatHours(insufficient.RequiredHours),
			"available_hours": models.FormatHours(insufficient.AvailableHours),
		})
		return
	}

	switch {
	case errors.Is(err, models.ErrForbidden):
		http.Error(w, err.Error(), http.StatusForbidden)
	case errors.Is(err, models.ErrInvalidCredentials):
		http.Error(w, err.Error(), http.StatusUnauthorized)
	case errors.Is(err, models.ErrUserNotFound),
		errors.Is(err, models.ErrCollaboratorNotFound),
		errors.Is(err, models.ErrConsultationNotFound),
		errors.Is(err, models.ErrPurchaseNotFound),
		errors.Is(err, models.ErrPackageNotFound),
		errors.Is(err, models.ErrBudgetNotFound),
		errors.Is(err, models.ErrCommissionNotFound),
		errors.Is(err, models.ErrNoRecord):
		http.Error(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidTransition),
		errors.Is(err, models.ErrCommissionAlreadyPaid),
		errors.Is(err, models.ErrCollaboratorInactive):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, models.ErrDuplicateEmail),
		errors.Is(err, models.ErrReasonTooShort),
		errors.Is(err, models.ErrEmptyMessage),
		errors.Is(err, models.ErrPaymentRefRequired),
		errors.Is(err, models.ErrMissingFields),
		errors.Is(err, models.ErrInvalidPackage),
		errors.Is(err, models.ErrInvalidQuote),
		errors.Is(err, models.ErrMeetingInPast),
		errors.Is(err, models.ErrInvalidWebhookPayload):
		http.Error(w, err.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}
