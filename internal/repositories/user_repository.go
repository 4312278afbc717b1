package repositories

import (
	"context"
	"database/sql"

	"mindaudit/internal/models"
)

type UserRepository struct {
	DB *sql.DB
}

func scanUser(scanner interface{ Scan(dest ...any) error }) (models.User, error) {
	var u models.User
	var updated sql.NullTime
	err := scanner.Scan(&u.ID, &u.Role, &u.Name, &u.Email, &u.Phone, &u.Password, &u.IsCommissioning, &u.CreatedAt, &updated)
	if err != nil {
		return models.User{}, err
	}
	if updated.Valid {
		t := updated.Time
		u.UpdatedAt = &t
	}
	return u, nil
}

const userColumns = `id, role, name, email, phone, password, is_commissioning, created_at, updated_at`

func (r *UserRepository) Create(ctx context.Context, u models.User) (models.User, error) {
	res, err := r.DB.ExecContext(ctx,
		`INSERT INTO users (role, name, email, phone, password) VALUES (?, ?, ?, ?, ?)`,
		u.Role, u.Name, u.Email, u.Phone, u.Password)
	if err != nil {
		return models.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.User{}, err
	}
	return r.GetByID(ctx, int(id))
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (models.User, error) {
	row := r.DB.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return models.User{}, models.ErrUserNotFound
	}
	return u, err
}

func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE email = ?)`, email).Scan(&exists)
	return exists, err
}

func (r *UserRepository) CreateSession(ctx context.Context, s models.Session) error {
	_, err := r.DB.ExecContext(ctx,
		`INSERT INTO sessions (user_id, role, refresh_token, expires_at) VALUES (?, ?, ?, ?)
		 ON DUPLICATE KEY UPDATE refresh_token = VALUES(refresh_token), expires_at = VALUES(expires_at)`,
		s.UserID, s.Role, s.RefreshToken, s.ExpiresAt)
	return err
}

func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (models.Session, error) {
	var s models.Session
	err := r.DB.QueryRowContext(ctx,
		`SELECT id, user_id, role, refresh_token, expires_at FROM sessions WHERE refresh_token = ?`, token).
		Scan(&s.ID, &s.UserID, &s.Role, &s.RefreshToken, &s.ExpiresAt)
	if err == sql.ErrNoRows {
		return models.Session{}, nil
	}
	return s, err
}

func (r *UserRepository) DeleteSessions(ctx context.Context, userID int) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = ?`, userID)
	return err
}

// ListAdmins returns admin users for notification fan-out.
func (r *UserRepository) ListAdmins(ctx context.Context) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT `+userColumns+` FROM users WHERE role = ?`, models.RoleAdmin)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

// Notification token storage for FCM delivery.

func (r *UserRepository) InsertNotifyToken(ctx context.Context, userID int, token string) error {
	_, err := r.DB.ExecContext(ctx, `INSERT INTO notify_tokens (user_id, token) VALUES (?, ?)`, userID, token)
	return err
}

func (r *UserRepository) DeleteNotifyToken(ctx context.Context, token string) error {
	_, err := r.DB.ExecContext(ctx, `DELETE FROM notify_tokens WHERE token = ?`, token)
	return err
}

func (r *UserRepository) GetNotifyTokens(ctx context.Context, userID int) ([]string, error) {
	rows, err := r.DB.QueryContext(ctx, `SELECT token FROM notify_tokens WHERE user_id = ?`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tokens []string
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
