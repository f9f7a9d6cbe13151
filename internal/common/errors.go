package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors, used as public classes of *Error.
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorConflict     = errors.New("conflict")

	// Credential errors.
	ErrDuplicateEmail     = errors.New("email already exists")
	ErrInvalidCredentials = errors.New("invalid credentials")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken     = errors.New("invalid token")
	ErrInvalidSignature = errors.New("invalid token signature")

	// Token lifecycle errors.
	ErrTokenExpired = errors.New("token expired")

	// Infrastructure errors.
	ErrSigning = errors.New("token signing failed")
	ErrHash    = errors.New("password hashing failed")
	ErrStore   = errors.New("store failure")
)
