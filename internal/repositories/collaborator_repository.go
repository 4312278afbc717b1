package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type CollaboratorRepository struct {
	DB *sql.DB
}

func scanCollaborator(scanner interface{ Scan(dest ...any) error }) (models.Collaborator, error) {
	var c models.Collaborator
	var hours, pending, paid float64
	var signed sql.NullTime
	var updated sql.NullTime
	err := scanner.Scan(&c.ID, &c.UserID, &c.Status, &hours, &c.CommissionRateBP, &pending, &paid, &signed, &c.CreatedAt, &updated)
	if err != nil {
		return models.Collaborator{}, err
	}
	c.AvailableHours = models.HoursFromDecimal(hours)
	c.PendingCommissionCents = models.HoursFromDecimal(pending)
	c.PaidCommissionCents = models.HoursFromDecimal(paid)
	if signed.Valid {
		t := signed.Time
		c.ContractSignedAt = &t
	}
	if updated.Valid {
		t := updated.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

const collaboratorColumns = `id, user_id, status, available_hours, commission_rate_bp, pending_commission, paid_commission, contract_signed_at, created_at, updated_at`

func (r *CollaboratorRepository) Create(ctx context.Context, userID int, rateBP int64) (models.Collaborator, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO collaborators (user_id, status, available_hours, commission_rate_bp, pending_commission, paid_commission) VALUES (?, ?, 0, ?, 0, 0)`,
		userID, models.CollaboratorPending, rateBP)
	if err != nil {
		return models.Collaborator{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Collaborator{}, err
	}
	return r.GetByID(ctx, int(id))
}

func (r *CollaboratorRepository) GetByID(ctx context.Context, id int) (models.Collaborator, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+collaboratorColumns+` FROM collaborators WHERE id = ?`, id)
	c, err := scanCollaborator(row)
	if err == sql.ErrNoRows {
		return models.Collaborator{}, models.ErrCollaboratorNotFound
	}
	return c, err
}

func (r *CollaboratorRepository) GetByUserID(ctx context.Context, userID int) (models.Collaborator, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+collaboratorColumns+` FROM collaborators WHERE user_id = ?`, userID)
	c, err := scanCollaborator(row)
	if err == sql.ErrNoRows {
		return models.Collaborator{}, models.ErrCollaboratorNotFound
	}
	return c, err
}

func (r *CollaboratorRepository) List(ctx context.Context, status string) ([]models.Collaborator, error) {
	query := `SELECT ` + collaboratorColumns + ` FROM collaborators`
	args := []any{}
	if status != "" {
		query += ` WHERE status = ?`
		args = append(args, status)
	}
	query += ` ORDER BY id`
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Collaborator
	for rows.Next() {
		c, err := scanCollaborator(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CollaboratorRepository) UpdateStatus(ctx context.Context, id int, status string) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE collaborators SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, status, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrCollaboratorNotFound
	}
	return nil
}

// CreditHoursTx increases the available balance. It must run inside the same
// transaction as the triggering purchase-completion write so the credit is
// applied at most once.
func (r *CollaboratorRepository) CreditHoursTx(ctx context.Context, tx *sql.Tx, collaboratorID int, hours int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE collaborators SET available_hours = available_hours + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		models.HoursToDecimal(hours), collaboratorID)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return models.ErrCollaboratorNotFound
	}
	return nil
}

// DebitHoursTx decrements the balance as a single conditional update. A zero
// affected-row count means the balance was insufficient; the caller reads the
// current balance for the error payload. Two concurrent debits can never both
// succeed when only one is covered.
func (r *CollaboratorRepository) DebitHoursTx(ctx context.Context, tx *sql.Tx, collaboratorID int, hours int64) error {
	dec := models.HoursToDecimal(hours)
	res, err := tx.ExecContext(ctx,
		`UPDATE collaborators SET available_hours = available_hours - ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND available_hours >= ?`,
		dec, collaboratorID, dec)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		available, balErr := r.balanceTx(ctx, tx, collaboratorID)
		if balErr != nil {
			return balErr
		}
		return &models.InsufficientBalanceError{RequiredHours: hours, AvailableHours: available}
	}
	return nil
}

func (r *CollaboratorRepository) balanceTx(ctx context.Context, tx *sql.Tx, collaboratorID int) (int64, error) {
	var hours float64
	err := tx.QueryRowContext(ctx, `SELECT available_hours FROM collaborators WHERE id = ?`, collaboratorID).Scan(&hours)
	if err == sql.ErrNoRows {
		return 0, models.ErrCollaboratorNotFound
	}
	if err != nil {
		return 0, err
	}
	return models.HoursFromDecimal(hours), nil
}

// AvailableHours returns the current balance in hundredths.
func (r *CollaboratorRepository) AvailableHours(ctx context.Context, collaboratorID int) (int64, error) {
	var hours float64
	err := r.DB.QueryRowContext(ctx, `SELECT available_hours FROM collaborators WHERE id = ?`, collaboratorID).Scan(&hours)
	if err == sql.ErrNoRows {
		return 0, models.ErrCollaboratorNotFound
	}
	if err != nil {
		return 0, err
	}
	return models.HoursFromDecimal(hours), nil
}

// ActivateContractTx sets the contract timestamp on the collaborator and the
// commissioning flag on the user. Absolute updates, safe under webhook
// redelivery.
func (r *CollaboratorRepository) ActivateContractTx(ctx context.Context, tx *sql.Tx, userID int) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE collaborators SET contract_signed_at = COALESCE(contract_signed_at, CURRENT_TIMESTAMP), updated_at = CURRENT_TIMESTAMP WHERE user_id = ?`, userID)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `UPDATE users SET is_commissioning = 1 WHERE id = ?`, userID)
	return err
}
