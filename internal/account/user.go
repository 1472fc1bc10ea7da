package account

import (
	"errors"
	"time"
)

var (
	// ErrNotFound is returned when a user or session does not exist
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken is returned when registering an email that already has an account
	ErrEmailTaken = errors.New("email already registered")
	// ErrInvalidCredentials is returned for an unknown email or a wrong password
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrUnauthorized is returned for a missing, unknown or expired session token
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidInput is returned when registration fields fail validation
	ErrInvalidInput = errors.New("invalid input")
)

// User is the public view of an account
type User struct {
	ID         string    `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	JoinedDate time.Time `json:"joined_date"`
}

// StoredUser is a user as persisted, including the password hash
type StoredUser struct {
	User
	PasswordHash []byte `json:"password_hash"`
}

// Session is a login session identified by an opaque bearer token
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session is no longer valid at t
func (s *Session) Expired(t time.Time) bool {
	return !t.Before(s.ExpiresAt)
}

// Profile is a user with their transaction statistics
type Profile struct {
	User
	TransactionCount int `json:"transaction_count"`
	IncomeCount      int `json:"income_count"`
	ExpenseCount     int `json:"expense_count"`
	TransferCount    int `json:"transfer_count"`
}
