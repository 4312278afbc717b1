package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"mindaudit/internal/models"
)

func TestServiceErrorStatus(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{models.ErrForbidden, http.StatusForbidden},
		{models.ErrInvalidCredentials, http.StatusUnauthorized},
		{models.ErrConsultationNotFound, http.StatusNotFound},
		{models.ErrPurchaseNotFound, http.StatusNotFound},
		{models.ErrInvalidTransition, http.StatusConflict},
		{models.ErrCommissionAlreadyPaid, http.StatusConflict},
		{models.ErrCollaboratorInactive, http.StatusConflict},
		{models.ErrReasonTooShort, http.StatusBadRequest},
		{models.ErrEmptyMessage, http.StatusBadRequest},
		{models.ErrPaymentRefRequired, http.StatusBadRequest},
		{errors.New("database exploded"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		rec := httptest.NewRecorder()
		serviceError(rec, tc.err)
		if rec.Code != tc.want {
			t.Errorf("%v: expected %d, got %d", tc.err, tc.want, rec.Code)
		}
	}
}

func TestServiceErrorInsufficientBalance(t *testing.T) {
	rec := httptest.NewRecorder()
	serviceError(rec, &models.InsufficientBalanceError{RequiredHours: 300, AvailableHours: 200})

	if rec.Code != http.StatusConflict {
		t.Fatalf("expected %d, got %d", http.StatusConflict, rec.Code)
	}
	var body struct {
		RequiredHours  string `json:"required_hours"`
		AvailableHours string `json:"available_hours"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.RequiredHours != "3.00" || body.AvailableHours != "2.00" {
		t.Fatalf("unexpected payload: %+v", body)
	}
}

func TestServiceErrorHidesInternals(t *testing.T) {
	rec := httptest.NewRecorder()
	serviceError(rec, errors.New("dial tcp 10.0.0.5:3306: connection refused"))
	if rec.Body.String() == "dial tcp 10.0.0.5:3306: connection refused\n" {
		t.Fatal("internal error details must not leak to clients")
	}
}
