package user

import "time"

type User struct {
	ID        int64
	Name      string
	Email     string
	CreatedAt time.Time
}

// OTPState is the pending one-time passcode of a user, stored hashed.
type OTPState struct {
	UserID    int64
	Hash      string
	ExpiresAt time.Time
}
