package core

import (
	"errors"

	"sokrate-backend-go/internal/db"
)

var (
	// ErrProfileNotFound is returned when a user has no profile document yet.
	ErrProfileNotFound = errors.New("profile not found")
	// ErrInvalidInput wraps every request validation failure.
	ErrInvalidInput = errors.New("invalid input")
	// ErrCheckoutNotComplete is returned when a checkout session has not been paid.
	ErrCheckoutNotComplete = errors.New("checkout session is not complete")
	// ErrForbidden is returned when a user acts on a resource owned by someone else.
	ErrForbidden = errors.New("forbidden")
)

// IsNotFound reports whether err means the requested document does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, db.ErrNotFound) || errors.Is(err, ErrProfileNotFound)
}
