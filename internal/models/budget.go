package models

import "time"

// Budget statuses. Transitioning into accepted_pending_invoice triggers
// commission accrual when a collaborator is attached.
const (
	BudgetDraft                  = "draft"
	BudgetSent                   = "sent"
	BudgetAcceptedPendingInvoice = "accepted_pending_invoice"
	BudgetInvoiced               = "invoiced"
	BudgetPaid                   = "paid"
	BudgetRejected               = "rejected"
)

type Budget struct {
	ID             int64      `json:"id"`
	CompanyID      int        `json:"company_id"`
	CollaboratorID *int       `json:"collaborator_id,omitempty"`
	Concept        string     `json:"concept"`
	AmountCents    int64      `json:"amount_cents"`
	Status         string     `json:"status"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}
