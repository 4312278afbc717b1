package models

import "time"

// Hour purchase statuses.
const (
	PurchasePending   = "pending"
	PurchaseCompleted = "completed"
	PurchaseFailed    = "failed"
)

// HourPurchase represents one checkout attempt. StripeSessionID is the
// idempotency key: a purchase transitions to completed at most once, and each
// completion credits the ledger exactly once.
type HourPurchase struct {
	ID                    int        `json:"id"`
	CollaboratorID        int        `json:"collaborator_id"`
	PackageID             int        `json:"package_id"`
	PackageHours          int64      `json:"package_hours"` // hundredths, snapshot at checkout
	PricePaidCents        int64      `json:"price_paid_cents"`
	Status                string     `json:"status"`
	StripeSessionID       string     `json:"stripe_session_id"`
	StripePaymentIntentID *string    `json:"stripe_payment_intent_id,omitempty"`
	CompletedAt           *time.Time `json:"completed_at,omitempty"`
	CreatedAt             time.Time  `json:"created_at"`
}
