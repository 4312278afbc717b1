package models

import (
	"errors"
	"fmt"
)

var (
	ErrNoRecord               = errors.New("models: no matching record found")
	ErrInvalidCredentials     = errors.New("models: invalid credentials")
	ErrDuplicateEmail         = errors.New("models: duplicate email")
	ErrUserNotFound           = errors.New("models: user not found")
	ErrForbidden              = errors.New("models: forbidden")
	ErrCollaboratorNotFound   = errors.New("collaborator not found")
	ErrConsultationNotFound   = errors.New("consultation not found")
	ErrPurchaseNotFound       = errors.New("hour purchase not found")
	ErrPackageNotFound        = errors.New("hour package not found")
	ErrBudgetNotFound         = errors.New("budget not found")
	ErrCommissionNotFound     = errors.New("commission not found")
	ErrInvalidTransition      = errors.New("invalid consultation status transition")
	ErrReasonTooShort         = errors.New("reopen reason must be at least 10 characters")
	ErrEmptyMessage           = errors.New("message requires content or an attached file")
	ErrCommissionAlreadyPaid  = errors.New("commission is already paid")
	ErrPaymentRefRequired     = errors.New("payment reference is required")
	ErrCollaboratorInactive   = errors.New("collaborator is not active")
	ErrInvalidWebhookPayload  = errors.New("invalid webhook payload")
	ErrMissingFields          = errors.New("required fields are missing")
	ErrInvalidPackage         = errors.New("package requires a name, positive hours and a positive price")
	ErrInvalidQuote           = errors.New("quoted hours must be positive")
	ErrMeetingInPast          = errors.New("meeting date must be in the future")
)

// InsufficientBalanceError carries both figures so the caller can render a
// precise message. Hours are hundredths of an hour.
type InsufficientBalanceError struct {
	RequiredHours  int64 `json:"required_hours"`
	AvailableHours int64 `json:"available_hours"`
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("insufficient hours balance: required %s, available %s",
		FormatHours(e.RequiredHours), FormatHours(e.AvailableHours))
}
