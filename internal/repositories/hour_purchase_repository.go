package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type HourPurchaseRepository struct {
	DB *sql.DB
}

func scanHourPurchase(scanner interface{ Scan(dest ...any) error }) (models.HourPurchase, error) {
	var p models.HourPurchase
	var hours, price float64
	var intent sql.NullString
	var completed sql.NullTime
	err := scanner.Scan(&p.ID, &p.CollaboratorID, &p.PackageID, &hours, &price, &p.Status, &p.StripeSessionID, &intent, &completed, &p.CreatedAt)
	if err != nil {
		return models.HourPurchase{}, err
	}
	p.PackageHours = models.HoursFromDecimal(hours)
	p.PricePaidCents = models.HoursFromDecimal(price)
	if intent.Valid {
		s := intent.String
		p.StripePaymentIntentID = &s
	}
	if completed.Valid {
		t := completed.Time
		p.CompletedAt = &t
	}
	return p, nil
}

const hourPurchaseColumns = `id, collaborator_id, package_id, package_hours, price_paid, status, stripe_session_id, stripe_payment_intent_id, completed_at, created_at`

// CreatePending records a checkout attempt keyed by the Stripe session id.
func (r *HourPurchaseRepository) CreatePending(ctx context.Context, collaboratorID, packageID int, hours, priceCents int64, sessionID string) (models.HourPurchase, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO hour_purchases (collaborator_id, package_id, package_hours, price_paid, status, stripe_session_id) VALUES (?, ?, ?, ?, ?, ?)`,
		collaboratorID, packageID, models.HoursToDecimal(hours), models.HoursToDecimal(priceCents), models.PurchasePending, sessionID)
	if err != nil {
		return models.HourPurchase{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.HourPurchase{}, err
	}
	row := r.DB.QueryRowContext(ctx, `SELECT `+hourPurchaseColumns+` FROM hour_purchases WHERE id = ?`, id)
	return scanHourPurchase(row)
}

func (r *HourPurchaseRepository) GetBySessionID(ctx context.Context, sessionID string) (models.HourPurchase, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+hourPurchaseColumns+` FROM hour_purchases WHERE stripe_session_id = ?`, sessionID)
	p, err := scanHourPurchase(row)
	if err == sql.ErrNoRows {
		return models.HourPurchase{}, models.ErrPurchaseNotFound
	}
	return p, err
}

// MarkCompletedTx flips a pending purchase to completed. The status guard in
// the WHERE clause makes replays a no-op at the row level: zero affected rows
// means another delivery already completed it.
func (r *HourPurchaseRepository) MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int, paymentIntentID string) (bool, error) {
	res, err := tx.ExecContext(ctx,
		`UPDATE hour_purchases SET status = ?, stripe_payment_intent_id = ?, completed_at = CURRENT_TIMESTAMP WHERE id = ? AND status = ?`,
		models.PurchaseCompleted, paymentIntentID, id, models.PurchasePending)
	if err != nil {
		return false, err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

func (r *HourPurchaseRepository) ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.HourPurchase, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+hourPurchaseColumns+` FROM hour_purchases WHERE collaborator_id = ? ORDER BY created_at DESC`, collaboratorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.HourPurchase
	for rows.Next() {
		p, err := scanHourPurchase(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
