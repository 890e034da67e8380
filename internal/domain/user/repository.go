package user

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("user not found")

var ErrAlreadyExists = errors.New("user already exists")

type Repository interface {
	GetByEmail(ctx context.Context, email string) (User, error)
	// GetOrCreate returns the user owning email, creating it when absent.
	GetOrCreate(ctx context.Context, name, email string) (User, bool, error)
	Create(ctx context.Context, name, email string) (User, error)
	SetOTP(ctx context.Context, userID int64, hash string, expiresAt time.Time) error
	GetOTP(ctx context.Context, email string) (OTPState, error)
	ClearOTP(ctx context.Context, userID int64) error
}
