package services

import (
	"errors"

	"github.com/dmitrijs2005/taskkeeper/internal/client/models"
)

var (
	ErrValidation         = errors.New("invalid input")
	ErrDuplicateAccount   = errors.New("user with this email already exists")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrLocalStorage       = errors.New("local storage failure")
)

// ValidationError describes rejected input. It matches ErrValidation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

func (e *ValidationError) Unwrap() error { return ErrValidation }

// AuthError is the failure result of an authentication call. Source tells
// which path produced it.
type AuthError struct {
	Source models.Source
	Err    error
}

func (e *AuthError) Error() string { return e.Err.Error() }

func (e *AuthError) Unwrap() error { return e.Err }
