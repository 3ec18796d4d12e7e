// Package server provides the HTTP API of the coaching service.
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"github.com/jonathan/saju-coach/internal/celestial"
	"github.com/jonathan/saju-coach/internal/config"
)

// msgCalculationUnavailable is shown when the ephemeris cannot produce a position.
const msgCalculationUnavailable = "calculation unavailable, try again"

// ErrEmailAlreadyExists indicates email is already registered
type ErrEmailAlreadyExists struct {
	Email string
}

func (e *ErrEmailAlreadyExists) Error() string {
	return fmt.Sprintf("email already registered: %s", e.Email)
}

// ErrInvalidCredentials indicates invalid login credentials
type ErrInvalidCredentials struct{}

func (e *ErrInvalidCredentials) Error() string {
	return "invalid email or password"
}

// ErrUserNotFound indicates user was not found
type ErrUserNotFound struct {
	UserID uuid.UUID
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("user not found: %s", e.UserID)
}

// ErrPasswordMismatch indicates current password is incorrect
type ErrPasswordMismatch struct{}

func (e *ErrPasswordMismatch) Error() string {
	return "current password is incorrect"
}

// ErrBirthProfileNotFound indicates the user has not registered a birth moment yet
type ErrBirthProfileNotFound struct{}

func (e *ErrBirthProfileNotFound) Error() string {
	return "birth profile not set"
}

// ErrValidation indicates request validation failure
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var (
		emailExists  *ErrEmailAlreadyExists
		badCreds     *ErrInvalidCredentials
		mismatch     *ErrPasswordMismatch
		userMissing  *ErrUserNotFound
		birthMissing *ErrBirthProfileNotFound
		validation   *ErrValidation
		ephemeris    *celestial.EphemerisError
	)
	switch {
	case errors.As(err, &emailExists):
		return http.StatusConflict
	case errors.As(err, &badCreds), errors.As(err, &mismatch):
		return http.StatusUnauthorized
	case errors.As(err, &userMissing), errors.As(err, &birthMissing):
		return http.StatusNotFound
	case errors.As(err, &validation), errors.Is(err, config.ErrPasswordTooLong):
		return http.StatusBadRequest
	case errors.As(err, &ephemeris):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text a client may see. Server-side failures are
// not described beyond their class.
func publicMessage(err error) string {
	switch HTTPStatus(err) {
	case http.StatusServiceUnavailable:
		return msgCalculationUnavailable
	case http.StatusInternalServerError:
		return "internal server error"
	default:
		return err.Error()
	}
}
