package services

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"testing"
	"time"

	"mindaudit/internal/models"
)

// The stub driver backs the *sql.DB the services begin transactions on.
// Transactions always commit and statements report one affected row; the
// state under test lives in the fakes below.

type stubDriver struct{}
type stubConn struct{}
type stubTx struct{}
type stubStmt struct{}
type stubResult struct{}

func (stubDriver) Open(string) (driver.Conn, error) { return stubConn{}, nil }

func (stubConn) Prepare(string) (driver.Stmt, error) { return stubStmt{}, nil }
func (stubConn) Close() error                        { return nil }
func (stubConn) Begin() (driver.Tx, error)           { return stubTx{}, nil }

func (stubConn) ExecContext(context.Context, string, []driver.NamedValue) (driver.Result, error) {
	return stubResult{}, nil
}

func (stubTx) Commit() error   { return nil }
func (stubTx) Rollback() error { return nil }

func (stubStmt) Close() error  { return nil }
func (stubStmt) NumInput() int { return -1 }

func (stubStmt) Exec([]driver.Value) (driver.Result, error) { return stubResult{}, nil }

func (stubStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("queries go through the fakes")
}

func (stubResult) LastInsertId() (int64, error) { return 1, nil }
func (stubResult) RowsAffected() (int64, error) { return 1, nil }

func init() { sql.Register("stub", stubDriver{}) }

func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("stub", "")
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// fakeConsultations holds a single live consultation. Queueing snapshots on
// stale makes GetByID serve outdated reads, which is how the tests interleave
// two callers working from the same state.
type fakeConsultations struct {
	c       models.Consultation
	stale   []models.Consultation
	reopens []models.ConsultationReopen
}

func (f *fakeConsultations) Create(_ context.Context, c models.Consultation) (models.Consultation, error) {
	c.ID = 1
	f.c = c
	return f.c, nil
}

func (f *fakeConsultations) GetByID(_ context.Context, id int64) (models.Consultation, error) {
	if len(f.stale) > 0 {
		c := f.stale[0]
		f.stale = f.stale[1:]
		return c, nil
	}
	if f.c.ID != id {
		return models.Consultation{}, models.ErrConsultationNotFound
	}
	return f.c, nil
}

func (f *fakeConsultations) ListByCollaborator(context.Context, int) ([]models.Consultation, error) {
	return []models.Consultation{f.c}, nil
}

func (f *fakeConsultations) ListAll(context.Context, string) ([]models.Consultation, error) {
	return []models.Consultation{f.c}, nil
}

func (f *fakeConsultations) SetQuoteTx(_ context.Context, _ *sql.Tx, _ int64, requiredHours int64, auditorID *int) error {
	if f.c.Status != "requested" && f.c.Status != "quoted" {
		return sql.ErrNoRows
	}
	f.c.RequiredHours = requiredHours
	if auditorID != nil {
		f.c.AuditorID = auditorID
	}
	return nil
}

func (f *fakeConsultations) AddChargedHoursTx(_ context.Context, _ *sql.Tx, _ int64, expectedCharged, hours int64) error {
	if f.c.ChargedHours != expectedCharged {
		return sql.ErrNoRows
	}
	f.c.ChargedHours += hours
	return nil
}

func (f *fakeConsultations) UpdateMeetingTx(_ context.Context, _ *sql.Tx, _ int64, date time.Time, link, status, requestedBy string) error {
	f.c.MeetingDate = &date
	f.c.MeetingLink = &link
	f.c.MeetingStatus = &status
	f.c.MeetingRequestedBy = &requestedBy
	return nil
}

func (f *fakeConsultations) AppendReopenTx(_ context.Context, _ *sql.Tx, id int64, reason string, actorID int, role string) error {
	f.reopens = append(f.reopens, models.ConsultationReopen{ConsultationID: id, Reason: reason, ReopenedBy: actorID, Role: role})
	f.c.ReopenCount++
	return nil
}

func (f *fakeConsultations) ListReopens(context.Context, int64) ([]models.ConsultationReopen, error) {
	return f.reopens, nil
}

func (f *fakeConsultations) GetCategory(context.Context, int) (models.ConsultationCategory, error) {
	return models.ConsultationCategory{}, models.ErrNoRecord
}

// fakeLedger mirrors the conditional-debit contract of the real repository:
// an over-debit fails closed with the typed balance error.
type fakeLedger struct {
	collab models.Collaborator
}

func (f *fakeLedger) GetByID(context.Context, int) (models.Collaborator, error) {
	return f.collab, nil
}

func (f *fakeLedger) CreditHoursTx(_ context.Context, _ *sql.Tx, _ int, hours int64) error {
	f.collab.AvailableHours += hours
	return nil
}

func (f *fakeLedger) DebitHoursTx(_ context.Context, _ *sql.Tx, _ int, hours int64) error {
	if hours > f.collab.AvailableHours {
		return &models.InsufficientBalanceError{RequiredHours: hours, AvailableHours: f.collab.AvailableHours}
	}
	f.collab.AvailableHours -= hours
	return nil
}

type fakePurchases struct {
	p        models.HourPurchase
	loseRace bool
}

func (f *fakePurchases) CreatePending(_ context.Context, collaboratorID, packageID int, hours, priceCents int64, sessionID string) (models.HourPurchase, error) {
	f.p = models.HourPurchase{
		ID:              1,
		CollaboratorID:  collaboratorID,
		PackageID:       packageID,
		PackageHours:    hours,
		PricePaidCents:  priceCents,
		Status:          models.PurchasePending,
		StripeSessionID: sessionID,
	}
	return f.p, nil
}

func (f *fakePurchases) GetBySessionID(_ context.Context, sessionID string) (models.HourPurchase, error) {
	if f.p.StripeSessionID != sessionID {
		return models.HourPurchase{}, models.ErrPurchaseNotFound
	}
	return f.p, nil
}

func (f *fakePurchases) MarkCompletedTx(_ context.Context, _ *sql.Tx, _ int, paymentIntentID string) (bool, error) {
	if f.loseRace || f.p.Status != models.PurchasePending {
		return false, nil
	}
	f.p.Status = models.PurchaseCompleted
	f.p.StripePaymentIntentID = &paymentIntentID
	return true, nil
}

func (f *fakePurchases) ListByCollaborator(context.Context, int) ([]models.HourPurchase, error) {
	return []models.HourPurchase{f.p}, nil
}

type fakeCommissions struct {
	created    int
	exists     bool
	commission models.Commission
}

func (f *fakeCommissions) CreateForBudgetTx(_ context.Context, _ *sql.Tx, budgetID int64, collaboratorID int, baseCents, rateBP, commissionCents int64) (bool, error) {
	if f.exists {
		return false, nil
	}
	f.exists = true
	f.created++
	f.commission = models.Commission{
		ID:              1,
		BudgetID:        budgetID,
		CollaboratorID:  collaboratorID,
		BaseAmountCents: baseCents,
		RateBP:          rateBP,
		CommissionCents: commissionCents,
		Status:          models.CommissionPending,
	}
	return true, nil
}

func (f *fakeCommissions) MarkPaidTx(_ context.Context, _ *sql.Tx, id int64, reference string, notes *string) (models.Commission, error) {
	if !f.exists || f.commission.ID != id {
		return models.Commission{}, models.ErrCommissionNotFound
	}
	if f.commission.Status == models.CommissionPaid {
		return models.Commission{}, models.ErrCommissionAlreadyPaid
	}
	f.commission.Status = models.CommissionPaid
	f.commission.PaymentReference = &reference
	f.commission.Notes = notes
	return f.commission, nil
}

func (f *fakeCommissions) ListByCollaborator(context.Context, int) ([]models.Commission, error) {
	if !f.exists {
		return nil, nil
	}
	return []models.Commission{f.commission}, nil
}

func (f *fakeCommissions) ListByStatus(context.Context, string) ([]models.Commission, error) {
	if !f.exists {
		return nil, nil
	}
	return []models.Commission{f.commission}, nil
}

func (f *fakeCommissions) Totals(context.Context, int) (models.CommissionTotals, error) {
	var t models.CommissionTotals
	if f.exists {
		if f.commission.Status == models.CommissionPaid {
			t.PaidCents = f.commission.CommissionCents
		} else {
			t.PendingCents = f.commission.CommissionCents
		}
	}
	return t, nil
}

type fakeBudgets struct {
	b models.Budget
}

func (f *fakeBudgets) GetByID(_ context.Context, id int64) (models.Budget, error) {
	if f.b.ID != id {
		return models.Budget{}, models.ErrNoRecord
	}
	return f.b, nil
}

func (f *fakeBudgets) UpdateStatusTx(_ context.Context, _ *sql.Tx, _ int64, from, to string) error {
	if f.b.Status != from {
		return sql.ErrNoRows
	}
	f.b.Status = to
	return nil
}

func (f *fakeBudgets) UpdateStatus(_ context.Context, _ int64, status string) error {
	f.b.Status = status
	return nil
}

type fakeAudit struct {
	entries []models.AuditLog
}

func (f *fakeAudit) Insert(_ context.Context, e models.AuditLog) error {
	f.entries = append(f.entries, e)
	return nil
}

func (f *fakeAudit) InsertTx(_ context.Context, _ *sql.Tx, e models.AuditLog) error {
	f.entries = append(f.entries, e)
	return nil
}
