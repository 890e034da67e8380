package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"getjobs/internal/database"
	"getjobs/internal/domain/user"
)

type PostgresUserRepository struct {
	db database.DB
}

func NewPostgresUserRepository(db database.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

func (r *PostgresUserRepository) GetByEmail(ctx context.Context, email string) (user.User, error) {
	row := r.db.QueryRow(ctx, `SELECT id, COALESCE(name, ''), email, created_at FROM jb_users WHERE email = $1`, email)
	return scanUser(row)
}

func (r *PostgresUserRepository) GetOrCreate(ctx context.Context, name, email string) (user.User, bool, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO jb_users (name, email) VALUES (NULLIF($1, ''), $2)
		 ON CONFLICT (email) DO NOTHING
		 RETURNING id, COALESCE(name, ''), email, created_at`,
		name, email,
	)
	u, err := scanUser(row)
	if err == nil {
		return u, true, nil
	}
	if !errors.Is(err, user.ErrNotFound) {
		return user.User{}, false, err
	}
	u, err = r.GetByEmail(ctx, email)
	if err != nil {
		return user.User{}, false, err
	}
	return u, false, nil
}

func (r *PostgresUserRepository) Create(ctx context.Context, name, email string) (user.User, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO jb_users (name, email) VALUES (NULLIF($1, ''), $2)
		 RETURNING id, COALESCE(name, ''), email, created_at`,
		name, email,
	)
	u, err := scanUser(row)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return user.User{}, user.ErrAlreadyExists
		}
		return user.User{}, err
	}
	return u, nil
}

func (r *PostgresUserRepository) SetOTP(ctx context.Context, userID int64, hash string, expiresAt time.Time) error {
	n, err := r.db.Exec(ctx, `UPDATE jb_users SET otp_hash = $1, otp_expires_at = $2 WHERE id = $3`, hash, expiresAt.UTC(), userID)
	if err != nil {
		return err
	}
	if n == 0 {
		return user.ErrNotFound
	}
	return nil
}

func (r *PostgresUserRepository) GetOTP(ctx context.Context, email string) (user.OTPState, error) {
	var st user.OTPState
	var hash sql.NullString
	var exp sql.NullTime
	err := r.db.QueryRow(ctx, `SELECT id, otp_hash, otp_expires_at FROM jb_users WHERE email = $1`, email).Scan(&st.UserID, &hash, &exp)
	if err != nil {
		if database.IsNoRows(err) {
			return user.OTPState{}, user.ErrNotFound
		}
		return user.OTPState{}, err
	}
	st.Hash = hash.String
	st.ExpiresAt = exp.Time
	return st, nil
}

func (r *PostgresUserRepository) ClearOTP(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `UPDATE jb_users SET otp_hash = NULL, otp_expires_at = NULL WHERE id = $1`, userID)
	return err
}

func scanUser(row database.Row) (user.User, error) {
	var u user.User
	if err := row.Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt); err != nil {
		if database.IsNoRows(err) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, err
	}
	return u, nil
}
