package repositories

import (
	"context"
	"database/sql"
	"time"

	"janmitra/internal/models"
)

type UserRepository interface {
	Create(ctx context.Context, u *models.User) error
	GetByID(ctx context.Context, id int) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context, officeID int64, limit, offset int) ([]*models.User, error)
	Update(ctx context.Context, u *models.User) error

	// AddPoints is the best-effort point award target.
	AddPoints(ctx context.Context, userID, points int) error
	Leaderboard(ctx context.Context, officeID int64, limit int) ([]*models.User, error)

	GetTelegramSettings(ctx context.Context, userID int) (chatID int64, allow bool, err error)

	UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error
	GetByRefreshToken(ctx context.Context, token string) (*models.User, error)
	RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error)
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, full_name, email, password_hash, role_id, office_id, points,
       telegram_chat_id, notify_telegram, refresh_token, refresh_expires_at, refresh_revoked`

func scanUser(row interface{ Scan(...interface{}) error }) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID, &u.FullName, &u.Email, &u.PasswordHash, &u.RoleID, &u.OfficeID, &u.Points,
		&u.TelegramChatID, &u.NotifyTelegram, &u.RefreshToken, &u.RefreshExpiresAt, &u.RefreshRevoked,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	return u, nil
}

func (r *userRepository) Create(ctx context.Context, u *models.User) error {
	return r.db.QueryRowContext(ctx, `
		INSERT INTO users (full_name, email, password_hash, role_id, office_id, points, telegram_chat_id, notify_telegram)
		VALUES ($1,$2,$3,$4,$5,0,$6,$7)
		RETURNING id`,
		u.FullName, u.Email, u.PasswordHash, u.RoleID, u.OfficeID, u.TelegramChatID, u.NotifyTelegram,
	).Scan(&u.ID)
}

func (r *userRepository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id))
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

func (r *userRepository) List(ctx context.Context, officeID int64, limit, offset int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if officeID != 0 {
		query += ` WHERE office_id = $1 ORDER BY full_name LIMIT $2 OFFSET $3`
		args = append(args, officeID, limit, offset)
	} else {
		query += ` ORDER BY full_name LIMIT $1 OFFSET $2`
		args = append(args, limit, offset)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) Update(ctx context.Context, u *models.User) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET full_name=$1, email=$2, role_id=$3, office_id=$4, telegram_chat_id=$5, notify_telegram=$6
		WHERE id=$7`,
		u.FullName, u.Email, u.RoleID, u.OfficeID, u.TelegramChatID, u.NotifyTelegram, u.ID)
	return err
}

func (r *userRepository) AddPoints(ctx context.Context, userID, points int) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET points = points + $1 WHERE id = $2`, points, userID)
	return err
}

func (r *userRepository) Leaderboard(ctx context.Context, officeID int64, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users`
	args := []interface{}{}
	if officeID != 0 {
		query += ` WHERE office_id = $1 ORDER BY points DESC LIMIT $2`
		args = append(args, officeID, limit)
	} else {
		query += ` ORDER BY points DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *userRepository) GetTelegramSettings(ctx context.Context, userID int) (int64, bool, error) {
	var chatID int64
	var allow bool
	err := r.db.QueryRowContext(ctx,
		`SELECT telegram_chat_id, notify_telegram FROM users WHERE id = $1`, userID,
	).Scan(&chatID, &allow)
	if err != nil {
		if err == sql.ErrNoRows {
			return 0, false, nil
		}
		return 0, false, err
	}
	return chatID, allow, nil
}

func (r *userRepository) UpdateRefresh(ctx context.Context, userID int, token string, expiresAt time.Time) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=false WHERE id=$3`,
		token, expiresAt, userID)
	return err
}

func (r *userRepository) GetByRefreshToken(ctx context.Context, token string) (*models.User, error) {
	return scanUser(r.db.QueryRowContext(ctx,
		`SELECT `+userColumns+` FROM users WHERE refresh_token = $1`, token))
}

func (r *userRepository) RotateRefresh(ctx context.Context, oldToken, newToken string, expiresAt time.Time) (*models.User, error) {
	_, err := r.db.ExecContext(ctx, `
		UPDATE users SET refresh_token=$1, refresh_expires_at=$2, refresh_revoked=false
		WHERE refresh_token=$3 AND NOT refresh_revoked`,
		newToken, expiresAt, oldToken)
	if err != nil {
		return nil, err
	}
	return r.GetByRefreshToken(ctx, newToken)
}
