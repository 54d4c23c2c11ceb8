package domain

import "time"

// User represents a registered account. Email is the login identity and is
// matched exactly.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}
