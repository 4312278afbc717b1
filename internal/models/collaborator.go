package models

import "time"

// Collaborator statuses. Collaborators are never hard-deleted, only moved to
// inactive.
const (
	CollaboratorPending  = "pending_approval"
	CollaboratorActive   = "active"
	CollaboratorInactive = "inactive"
)

type Collaborator struct {
	ID     int    `json:"id"`
	UserID int    `json:"user_id"`
	Status string `json:"status"`

	// AvailableHours is hundredths of an hour and never negative.
	AvailableHours int64 `json:"available_hours"`

	// CommissionRateBP is the commission percentage in basis points.
	CommissionRateBP int64 `json:"commission_rate_bp"`

	// Denormalized commission caches, maintained strictly inside the same
	// transaction as the originating commission mutation.
	PendingCommissionCents int64 `json:"pending_commission_cents"`
	PaidCommissionCents    int64 `json:"paid_commission_cents"`

	ContractSignedAt *time.Time `json:"contract_signed_at,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        *time.Time `json:"updated_at,omitempty"`
}

// CollaboratorProfile aggregates balance and commission figures for the
// profile endpoint. Totals are recomputed from commission rows, not read from
// the caches.
type CollaboratorProfile struct {
	Collaborator
	AvailableHoursDisplay string `json:"available_hours_display"`
	PendingCommission     int64  `json:"pending_commission_cents_derived"`
	PaidCommission        int64  `json:"paid_commission_cents_derived"`
}
