package repository

import (
	"context"
	"errors"
	"time"

	"getjobs/internal/database"
)

var ErrAlreadySubscribed = errors.New("email already subscribed")

type Subscriber struct {
	ID        int64
	Email     string
	CreatedAt time.Time
}

type MailRepository interface {
	Subscribe(ctx context.Context, email string) (Subscriber, error)
}

type PostgresMailRepository struct {
	db database.DB
}

func NewPostgresMailRepository(db database.DB) *PostgresMailRepository {
	return &PostgresMailRepository{db: db}
}

func (r *PostgresMailRepository) Subscribe(ctx context.Context, email string) (Subscriber, error) {
	var s Subscriber
	err := r.db.QueryRow(ctx,
		`INSERT INTO user_mail (email) VALUES ($1) RETURNING id, email, created_at`,
		email,
	).Scan(&s.ID, &s.Email, &s.CreatedAt)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Subscriber{}, ErrAlreadySubscribed
		}
		return Subscriber{}, err
	}
	return s, nil
}
