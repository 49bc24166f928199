package domain

import (
	"errors"
	"fmt"
)

// Domain errors
var (
	ErrPlayerNotFound     = errors.New("player not found")
	ErrScoreExists        = errors.New("score already exists for this player")
	ErrRivalExists        = errors.New("this rival already exists")
	ErrRivalNotFound      = errors.New("rival not found")
	ErrSelfRival          = errors.New("cannot add yourself as rival")
	ErrTournamentNotFound = errors.New("tournament not found")
	ErrInvalidRequest     = errors.New("invalid request")
	ErrUnauthorized       = errors.New("missing or invalid authorization")
	ErrForbidden          = errors.New("token subject does not own this resource")
	ErrInternalError      = errors.New("internal server error")
)

// NewValidationError returns an ErrInvalidRequest annotated with the failing detail.
func NewValidationError(detail string) error {
	return fmt.Errorf("%w: %s", ErrInvalidRequest, detail)
}

// IsNotFoundError checks if an error is a not-found type error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrPlayerNotFound) ||
		errors.Is(err, ErrRivalNotFound) ||
		errors.Is(err, ErrTournamentNotFound)
}

// IsConflictError checks if an error is a uniqueness-conflict type error
func IsConflictError(err error) bool {
	return errors.Is(err, ErrScoreExists) || errors.Is(err, ErrRivalExists)
}

// IsValidationError checks if an error is a request-validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidRequest)
}
