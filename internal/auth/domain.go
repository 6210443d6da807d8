package auth

import (
	"errors"
	"time"
)

// ErrEmailTaken is returned when registering with an email already in use.
var ErrEmailTaken = errors.New("email already registered")

// Account is the credential view of an owner row. The journal module
// owns the embedded collections; auth only reads identity columns.
type Account struct {
	ID           string
	Email        string
	PasswordHash string
	Role         string
	Deleted      bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
