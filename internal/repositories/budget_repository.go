package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type BudgetRepository struct {
	DB *sql.DB
}

func scanBudget(scanner interface{ Scan(dest ...any) error }) (models.Budget, error) {
	var b models.Budget
	var collaborator sql.NullInt64
	var amount float64
	var updated sql.NullTime
	err := scanner.Scan(&b.ID, &b.CompanyID, &collaborator, &b.Concept, &amount, &b.Status, &b.CreatedAt, &updated)
	if err != nil {
		return models.Budget{}, err
	}
	if collaborator.Valid {
		v := int(collaborator.Int64)
		b.CollaboratorID = &v
	}
	b.AmountCents = models.HoursFromDecimal(amount)
	if updated.Valid {
		t := updated.Time
		b.UpdatedAt = &t
	}
	return b, nil
}

const budgetColumns = `id, company_id, collaborator_id, concept, amount, status, created_at, updated_at`

func (r *BudgetRepository) GetByID(ctx context.Context, id int64) (models.Budget, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE id = ?`, id)
	b, err := scanBudget(row)
	if err == sql.ErrNoRows {
		return models.Budget{}, models.ErrBudgetNotFound
	}
	return b, err
}

func (r *BudgetRepository) Create(ctx context.Context, b models.Budget) (models.Budget, error) {
	var collaborator any
	if b.CollaboratorID != nil {
		collaborator = *b.CollaboratorID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO budgets (company_id, collaborator_id, concept, amount, status) VALUES (?, ?, ?, ?, ?)`,
		b.CompanyID, collaborator, b.Concept, models.HoursToDecimal(b.AmountCents), b.Status)
	if err != nil {
		return models.Budget{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Budget{}, err
	}
	return r.GetByID(ctx, id)
}

// UpdateStatusTx moves the budget to the target status inside the caller's
// transaction, guarded by the current status.
func (r *BudgetRepository) UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, from, to string) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE budgets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`, to, id, from)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}

func (r *BudgetRepository) UpdateStatus(ctx context.Context, id int64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		`UPDATE budgets SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrBudgetNotFound
	}
	return nil
}

func (r *BudgetRepository) ListByCompany(ctx context.Context, companyID int) ([]models.Budget, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+budgetColumns+` FROM budgets WHERE company_id = ? ORDER BY created_at DESC`, companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Budget
	for rows.Next() {
		b, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
