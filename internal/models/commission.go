package models

import "time"

// Commission statuses.
const (
	CommissionPending = "pending"
	CommissionPaid    = "paid"
)

// Commission derives from an accepted budget. BudgetID is unique: at most one
// commission per budget.
type Commission struct {
	ID               int64      `json:"id"`
	BudgetID         int64      `json:"budget_id"`
	CollaboratorID   int        `json:"collaborator_id"`
	BaseAmountCents  int64      `json:"base_amount_cents"`
	RateBP           int64      `json:"rate_bp"`
	CommissionCents  int64      `json:"commission_cents"`
	Status           string     `json:"status"`
	PaymentReference *string    `json:"payment_reference,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
	PaidAt           *time.Time `json:"paid_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}

// CommissionTotals are derived sums over commission rows.
type CommissionTotals struct {
	PendingCents int64 `json:"pending_cents"`
	PaidCents    int64 `json:"paid_cents"`
}
