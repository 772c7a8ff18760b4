package model

import (
	"time"
)

// User is a registered account. It is created once on signup and never
// mutated afterwards.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
}

// Session is the result of a successful login.
type Session struct {
	Token     string
	ExpiresAt time.Time
	TTL       time.Duration
	UserID    string
	JTI       string
}
