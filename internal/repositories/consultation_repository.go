package repositories

import (
	"context"
	"database/sql"
	"time"

	"mindaudit/internal/models"
)

type ConsultationRepository struct {
	DB *sql.DB
}

func scanConsultation(scanner interface{ Scan(dest ...any) error }) (models.Consultation, error) {
	var c models.Consultation
	var auditor, category sql.NullInt64
	var required, charged float64
	var mDate sql.NullTime
	var mLink, mStatus, mBy sql.NullString
	var updated sql.NullTime
	err := scanner.Scan(&c.ID, &c.CollaboratorID, &auditor, &c.Title, &c.Description, &c.Urgent, &c.VideoRequired,
		&category, &required, &charged, &c.Status, &mDate, &mLink, &mStatus, &mBy, &c.ReopenCount, &c.CreatedAt, &updated)
	if err != nil {
		return models.Consultation{}, err
	}
	if auditor.Valid {
		v := int(auditor.Int64)
		c.AuditorID = &v
	}
	if category.Valid {
		v := int(category.Int64)
		c.CategoryID = &v
	}
	c.RequiredHours = models.HoursFromDecimal(required)
	c.ChargedHours = models.HoursFromDecimal(charged)
	if mDate.Valid {
		t := mDate.Time
		c.MeetingDate = &t
	}
	if mLink.Valid {
		s := mLink.String
		c.MeetingLink = &s
	}
	if mStatus.Valid {
		s := mStatus.String
		c.MeetingStatus = &s
	}
	if mBy.Valid {
		s := mBy.String
		c.MeetingRequestedBy = &s
	}
	if updated.Valid {
		t := updated.Time
		c.UpdatedAt = &t
	}
	return c, nil
}

const consultationColumns = `id, collaborator_id, auditor_id, title, description, urgent, video_required, category_id, required_hours, charged_hours, status, meeting_date, meeting_link, meeting_status, meeting_requested_by, reopen_count, created_at, updated_at`

func (r *ConsultationRepository) Create(ctx context.Context, c models.Consultation) (models.Consultation, error) {
	var category any
	if c.CategoryID != nil {
		category = *c.CategoryID
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO consultations (collaborator_id, title, description, urgent, video_required, category_id, required_hours, charged_hours, status) VALUES (?, ?, ?, ?, ?, ?, ?, 0, ?)`,
		c.CollaboratorID, c.Title, c.Description, c.Urgent, c.VideoRequired, category, models.HoursToDecimal(c.RequiredHours), c.Status)
	if err != nil {
		return models.Consultation{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Consultation{}, err
	}
	for _, f := range c.Files {
		if err := r.AddFile(ctx, id, f); err != nil {
			return models.Consultation{}, err
		}
	}
	return r.GetByID(ctx, id)
}

func (r *ConsultationRepository) AddFile(ctx context.Context, consultationID int64, f models.ConsultationFile) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO consultation_files (consultation_id, url, size, content_type) VALUES (?, ?, ?, ?)`,
		consultationID, f.URL, f.Size, f.ContentType)
	return err
}

func (r *ConsultationRepository) GetByID(ctx context.Context, id int64) (models.Consultation, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE id = ?`, id)
	c, err := scanConsultation(row)
	if err == sql.ErrNoRows {
		return models.Consultation{}, models.ErrConsultationNotFound
	}
	if err != nil {
		return models.Consultation{}, err
	}
	files, err := r.filesFor(ctx, id)
	if err != nil {
		return models.Consultation{}, err
	}
	c.Files = files
	return c, nil
}

func (r *ConsultationRepository) filesFor(ctx context.Context, id int64) ([]models.ConsultationFile, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT id, consultation_id, url, size, content_type FROM consultation_files WHERE consultation_id = ?`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConsultationFile
	for rows.Next() {
		var f models.ConsultationFile
		if err := rows.Scan(&f.ID, &f.ConsultationID, &f.URL, &f.Size, &f.ContentType); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *ConsultationRepository) ListByCollaborator(ctx context.Context, collaboratorID int) ([]models.Consultation, error) {
	return r.list(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE collaborator_id = ? ORDER BY created_at DESC`, collaboratorID)
}

func (r *ConsultationRepository) ListAll(ctx context.Context, status string) ([]models.Consultation, error) {
	if status != "" {
		return r.list(ctx, `SELECT `+consultationColumns+` FROM consultations WHERE status = ? ORDER BY created_at DESC`, status)
	}
	return r.list(ctx, `SELECT `+consultationColumns+` FROM consultations ORDER BY created_at DESC`)
}

func (r *ConsultationRepository) list(ctx context.Context, query string, args ...any) ([]models.Consultation, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Consultation
	for rows.Next() {
		c, err := scanConsultation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// SetQuoteTx writes the admin quote (required hours, optional auditor) while
// flipping requested -> quoted through the fsm guard in the same transaction.
// The status condition stops a quote landing on a consultation that was
// accepted concurrently; returns sql.ErrNoRows when the row slipped away.
func (r *ConsultationRepository) SetQuoteTx(ctx context.Context, tx *sql.Tx, id int64, requiredHours int64, auditorID *int) error {
	var auditor any
	if auditorID != nil {
		auditor = *auditorID
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE consultations SET required_hours = ?, auditor_id = COALESCE(?, auditor_id), updated_at = CURRENT_TIMESTAMP WHERE id = ? AND status IN ('requested', 'quoted')`,
		models.HoursToDecimal(requiredHours), auditor, id)
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

// AddChargedHoursTx records hours actually debited for the consultation. The
// increment is conditional on the charged total the caller read, so two
// transactions working from the same snapshot cannot both charge; the loser
// gets sql.ErrNoRows and must roll back.
func (r *ConsultationRepository) AddChargedHoursTx(ctx context.Context, tx *sql.Tx, id int64, expectedCharged, hours int64) error {
	res, err := tx.ExecContext(ctx,
		`UPDATE consultations SET charged_hours = charged_hours + ?, updated_at = CURRENT_TIMESTAMP WHERE id = ? AND charged_hours = ?`,
		models.HoursToDecimal(hours), id, models.HoursToDecimal(expectedCharged))
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

// UpdateMeetingTx writes the meeting fields.
func (r *ConsultationRepository) UpdateMeetingTx(ctx context.Context, tx *sql.Tx, id int64, date time.Time, link, status, requestedBy string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE consultations SET meeting_date = ?, meeting_link = ?, meeting_status = ?, meeting_requested_by = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		date, link, status, requestedBy, id)
	return err
}

// AppendReopenTx inserts a trail entry and bumps the counter inside the
// caller's transaction. The trail is append-only.
func (r *ConsultationRepository) AppendReopenTx(ctx context.Context, tx *sql.Tx, id int64, reason string, actorID int, role string) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO consultation_reopens (consultation_id, reason, reopened_by, role) VALUES (?, ?, ?, ?)`,
		id, reason, actorID, role)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx,
		`UPDATE consultations SET reopen_count = reopen_count + 1, updated_at = CURRENT_TIMESTAMP WHERE id = ?`, id)
	return err
}

func (r *ConsultationRepository) ListReopens(ctx context.Context, id int64) ([]models.ConsultationReopen, error) {
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, consultation_id, reason, reopened_by, role, created_at FROM consultation_reopens WHERE consultation_id = ? ORDER BY id`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConsultationReopen
	for rows.Next() {
		var e models.ConsultationReopen
		if err := rows.Scan(&e.ID, &e.ConsultationID, &e.Reason, &e.ReopenedBy, &e.Role, &e.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// GetCategory returns the category with its hours estimate.
func (r *ConsultationRepository) GetCategory(ctx context.Context, id int) (models.ConsultationCategory, error) {
	var c models.ConsultationCategory
	var hours float64
	err := r.DB.QueryRowContext(ctx, `SELECT id, name, hours FROM consultation_categories WHERE id = ?`, id).Scan(&c.ID, &c.Name, &hours)
	if err == sql.ErrNoRows {
		return models.ConsultationCategory{}, models.ErrNoRecord
	}
	if err != nil {
		return models.ConsultationCategory{}, err
	}
	c.Hours = models.HoursFromDecimal(hours)
	return c, nil
}
