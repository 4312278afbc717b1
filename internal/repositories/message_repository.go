package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type MessageRepository struct {
	DB *sql.DB
}

// CreateMessage appends a message to the consultation thread.
func (r *MessageRepository) CreateMessage(ctx context.Context, m models.ConsultationMessage) (models.ConsultationMessage, error) {
	var fileURL any
	if m.FileURL != nil {
		fileURL = *m.FileURL
	}
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO consultation_messages (consultation_id, sender_id, content, file_url) VALUES (?, ?, ?, ?)`,
		m.ConsultationID, m.SenderID, m.Content, fileURL)
	if err != nil {
		return models.ConsultationMessage{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.ConsultationMessage{}, err
	}
	row := r.DB.QueryRowContext(ctx,
		`SELECT id, consultation_id, sender_id, content, file_url, created_at FROM consultation_messages WHERE id = ?`, id)
	return scanMessage(row)
}

func scanMessage(scanner interface{ Scan(dest ...any) error }) (models.ConsultationMessage, error) {
	var m models.ConsultationMessage
	var fileURL sql.NullString
	err := scanner.Scan(&m.ID, &m.ConsultationID, &m.SenderID, &m.Content, &fileURL, &m.CreatedAt)
	if err != nil {
		return models.ConsultationMessage{}, err
	}
	if fileURL.Valid {
		s := fileURL.String
		m.FileURL = &s
	}
	return m, nil
}

func (r *MessageRepository) ListByConsultation(ctx context.Context, consultationID int64, page, pageSize int) ([]models.ConsultationMessage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 200 {
		pageSize = 50
	}
	offset := (page - 1) * pageSize
	rows, err := r.DB.QueryContext(ctx,
		`SELECT id, consultation_id, sender_id, content, file_url, created_at FROM consultation_messages WHERE consultation_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		consultationID, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ConsultationMessage
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
