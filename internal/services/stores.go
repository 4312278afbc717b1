package services

import (
	"context"
	"database/sql"
	"time"

	"mindaudit/internal/models"
)

// The services declare the slice of the persistence layer they consume. The
// repositories package satisfies these; tests substitute in-memory fakes.

type ConsultationStore interface {
	Create(ctx context.Context, c models.Consultation) (models.Consultation, error)
	GetByID(ctx context.Context, id int64) (models.Consultation, error)
	ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.Consultation, error)
	ListAll(ctx context.Context, status string) ([]models.Consultation, error)
	SetQuoteTx(ctx context.Context, tx *sql.Tx, id int64, requiredHours int64, auditorID *int) error
	AddChargedHoursTx(ctx context.Context, tx *sql.Tx, id int64, expectedCharged, hours int64) error
	UpdateMeetingTx(ctx context.Context, tx *sql.Tx, id int64, date time.Time, link, status, requestedBy string) error
	AppendReopenTx(ctx context.Context, tx *sql.Tx, id int64, reason string, actorID int, role string) error
	ListReopens(ctx context.Context, id int64) ([]models.ConsultationReopen, error)
	GetCategory(ctx context.Context, id int) (models.ConsultationCategory, error)
}

// CollaboratorLedger is the hours balance plus the collaborator lookup the
// mutating services need. Credit and debit run inside the caller's
// transaction.
type CollaboratorLedger interface {
	GetByID(ctx context.Context, id int) (models.Collaborator, error)
	CreditHoursTx(ctx context.Context, tx *sql.Tx, collaboratorID int, hours int64) error
	DebitHoursTx(ctx context.Context, tx *sql.Tx, collaboratorID int, hours int64) error
}

type PurchaseStore interface {
	CreatePending(ctx context.Context, collaboratorID, packageID int, hours, priceCents int64, sessionID string) (models.HourPurchase, error)
	GetBySessionID(ctx context.Context, sessionID string) (models.HourPurchase, error)
	MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int, paymentIntentID string) (bool, error)
	ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.HourPurchase, error)
}

type PackageStore interface {
	GetByID(ctx context.Context, id int) (models.HourPackage, error)
}

type CommissionStore interface {
	CreateForBudgetTx(ctx context.Context, tx *sql.Tx, budgetID int64, collaboratorID int, baseCents, rateBP, commissionCents int64) (bool, error)
	MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64, reference string, notes *string) (models.Commission, error)
	ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.Commission, error)
	ListByStatus(ctx context.Context, status string) ([]models.Commission, error)
	Totals(ctx context.Context, collaboratorID int) (models.CommissionTotals, error)
}

type BudgetStore interface {
	GetByID(ctx context.Context, id int64) (models.Budget, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, from, to string) error
	UpdateStatus(ctx context.Context, id int64, status string) error
}

type MessageStore interface {
	CreateMessage(ctx context.Context, m models.ConsultationMessage) (models.ConsultationMessage, error)
	ListByConsultation(ctx context.Context, consultationID int64, page, pageSize int) ([]models.ConsultationMessage, error)
}

type AuditTrail interface {
	Insert(ctx context.Context, e models.AuditLog) error
	InsertTx(ctx context.Context, tx *sql.Tx, e models.AuditLog) error
}
