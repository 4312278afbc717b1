package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type CommissionRepository struct {
	DB *sql.DB
}

func scanCommission(scanner interface{ Scan(dest ...any) error }) (models.Commission, error) {
	var c models.Commission
	var base, amount float64
	var ref, notes sql.NullString
	var paidAt sql.NullTime
	err := scanner.Scan(&c.ID, &c.BudgetID, &c.CollaboratorID, &base, &c.RateBP, &amount, &c.Status, &ref, &notes, &paidAt, &c.CreatedAt)
	if err != nil {
		return models.Commission{}, err
	}
	c.BaseAmountCents = models.HoursFromDecimal(base)
	c.CommissionCents = models.HoursFromDecimal(amount)
	if ref.Valid {
		s := ref.String
		c.PaymentReference = &s
	}
	if notes.Valid {
		s := notes.String
		c.Notes = &s
	}
	if paidAt.Valid {
		t := paidAt.Time
		c.PaidAt = &t
	}
	return c, nil
}

const commissionColumns = `id, budget_id, collaborator_id, base_amount, rate_bp, commission_amount, status, payment_reference, notes, paid_at, created_at`

// CreateForBudgetTx inserts a commission unless one already exists for the
// budget, and bumps the collaborator's pending cache in the same transaction.
// budget_id carries a unique index, so a concurrent duplicate insert fails
// instead of accruing twice. Returns false when the commission already existed.
func (r *CommissionRepository) CreateForBudgetTx(ctx context.Context, tx *sql.Tx, budgetID int64, collaboratorID int, baseCents, rateBP, commissionCents int64) (bool, error) {
	res, err := tx.ExecContext(ctx, `
INSERT INTO commissions (budget_id, collaborator_id, base_amount, rate_bp, commission_amount, status)
SELECT ?, ?, ?, ?, ?, ?
FROM DUAL
WHERE NOT EXISTS (SELECT 1 FROM commissions WHERE budget_id = ?)`,
		budgetID, collaboratorID, models.HoursToDecimal(baseCents), rateBP, models.HoursToDecimal(commissionCents), models.CommissionPending, budgetID)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	if affected == 0 {
		return false, nil
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE collaborators SET pending_commission = pending_commission + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.HoursToDecimal(commissionCents), collaboratorID)
	return true, err
}

func (r *CommissionRepository) GetByID(ctx context.Context, id int64) (models.Commission, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE id = ?`, id)
	c, err := scanCommission(row)
	if err == sql.ErrNoRows {
		return models.Commission{}, models.ErrCommissionNotFound
	}
	return c, err
}

func (r *CommissionRepository) GetByBudgetID(ctx context.Context, budgetID int64) (models.Commission, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE budget_id = ?`, budgetID)
	c, err := scanCommission(row)
	if err == sql.ErrNoRows {
		return models.Commission{}, models.ErrCommissionNotFound
	}
	return c, err
}

// MarkPaidTx flips a pending commission to paid and moves the cached amount
// from pending to paid on the collaborator, all in one transaction. The
// status guard rejects a second payment.
func (r *CommissionRepository) MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64, reference string, notes *string) (models.Commission, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE id = ? FOR UPDATE`, id)
	c, err := scanCommission(row)
	if err == sql.ErrNoRows {
		return models.Commission{}, models.ErrCommissionNotFound
	}
	if err != nil {
		return models.Commission{}, err
	}
	if c.Status == models.CommissionPaid {
		return models.Commission{}, models.ErrCommissionAlreadyPaid
	}
	var notesArg any
	if notes != nil {
		notesArg = *notes
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE commissions SET status = ?, payment_reference = ?, notes = ?, paid_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		models.CommissionPaid, reference, notesArg, id, models.CommissionPending)
	if err != nil {
		return models.Commission{}, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return models.Commission{}, err
	}
	if affected == 0 {
		return models.Commission{}, models.ErrCommissionAlreadyPaid
	}
	dec := models.HoursToDecimal(c.CommissionCents)
	_, err = tx.ExecContext(ctx,
		`UPDATE collaborators SET pending_commission = pending_commission - ?, paid_commission = paid_commission + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		dec, dec, c.CollaboratorID)
	if err != nil {
		return models.Commission{}, err
	}
	return r.getTx(ctx, tx, id)
}

func (r *CommissionRepository) getTx(ctx context.Context, tx *sql.Tx, id int64) (models.Commission, error) {
	row := tx.QueryRowContext(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE id = ?`, id)
	return scanCommission(row)
}

func (r *CommissionRepository) ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.Commission, error) {
	return r.list(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE collaborator_id = ? ORDER BY created_at DESC`, collaboratorID)
}

func (r *CommissionRepository) ListByStatus(ctx context.Context, status string) ([]models.Commission, error) {
	if status == "" {
		return r.list(ctx, `SELECT `+commissionColumns+` FROM commissions ORDER BY created_at DESC`)
	}
	return r.list(ctx, `SELECT `+commissionColumns+` FROM commissions WHERE status = ? ORDER BY created_at DESC`, status)
}

func (r *CommissionRepository) list(ctx context.Context, query string, args ...any) ([]models.Commission, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Commission
	for rows.Next() {
		c, err := scanCommission(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Totals derives pending/paid sums from the commission rows themselves. The
// cached fields on the collaborator are never used to answer this.
func (r *CommissionRepository) Totals(ctx context.Context, collaboratorID int) (models.CommissionTotals, error) {
	query := `
SELECT
    COALESCE(SUM(CASE WHEN status = 'pending' THEN commission_amount ELSE 0 END), 0),
    COALESCE(SUM(CASE WHEN status = 'paid' THEN commission_amount ELSE 0 END), 0)
FROM commissions`
	args := []any{}
	if collaboratorID != 0 {
		query += ` WHERE collaborator_id = ?`
		args = append(args, collaboratorID)
	}
	var pending, paid float64
	if err := r.DB.QueryRowContext(ctx, query, args...).Scan(&pending, &paid); err != nil {
		return models.CommissionTotals{}, err
	}
	return models.CommissionTotals{
		PendingCents: models.HoursFromDecimal(pending),
		PaidCents:    models.HoursFromDecimal(paid),
	}, nil
}
