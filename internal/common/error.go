package common

import (
	"errors"
	"fmt"
)

// Kind tags the failure carried by an *Error.
type Kind int

const (
	KindUnknown Kind = iota
	KindNotFound
	KindDuplicateEmail
	KindInvalidCredentials
	KindInvalidToken
	KindExpiredToken
	KindInvalidSignature
	KindSigningError
	KindHashError
	KindStoreError
)

var kindNames = map[Kind]string{
	KindUnknown:            "unknown",
	KindNotFound:           "not_found",
	KindDuplicateEmail:     "duplicate_email",
	KindInvalidCredentials: "invalid_credentials",
	KindInvalidToken:       "invalid_token",
	KindExpiredToken:       "expired_token",
	KindInvalidSignature:   "invalid_signature",
	KindSigningError:       "signing_error",
	KindHashError:          "hash_error",
	KindStoreError:         "store_error",
}

func (k Kind) String() string {
	if n, ok := kindNames[k]; ok {
		return n
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// sentinel is the errors.Is target matching a kind.
func (k Kind) sentinel() error {
	switch k {
	case KindNotFound:
		return ErrorNotFound
	case KindDuplicateEmail:
		return ErrDuplicateEmail
	case KindInvalidCredentials:
		return ErrInvalidCredentials
	case KindInvalidToken:
		return ErrInvalidToken
	case KindExpiredToken:
		return ErrTokenExpired
	case KindInvalidSignature:
		return ErrInvalidSignature
	case KindSigningError:
		return ErrSigning
	case KindHashError:
		return ErrHash
	case KindStoreError:
		return ErrStore
	}
	return nil
}

// class is the public category a kind collapses into.
func (k Kind) class() error {
	switch k {
	case KindInvalidCredentials, KindInvalidToken, KindExpiredToken, KindInvalidSignature:
		return ErrorUnauthorized
	case KindDuplicateEmail:
		return ErrorConflict
	case KindNotFound:
		return ErrorNotFound
	}
	return ErrorInternal
}

// Error is the typed failure returned by the credential and token core.
//
// Error() renders only the public message of the kind's class, so distinct
// internal causes (unknown email vs wrong password, missing vs expired token)
// look identical to a caller. The internal detail and cause are reachable
// only through Detail and Cause, for logging. Cause is deliberately not
// exposed through Unwrap.
type Error struct {
	Kind  Kind
	Field string

	detail string
	cause  error
}

// NewError builds an *Error of the given kind with an internal detail.
func NewError(kind Kind, detail string) *Error {
	return &Error{Kind: kind, detail: detail}
}

// WrapError builds an *Error of the given kind around an underlying cause.
func WrapError(kind Kind, cause error, detail string) *Error {
	return &Error{Kind: kind, detail: detail, cause: cause}
}

// WithField names the offending input field. Only DuplicateEmail renders it.
func (e *Error) WithField(field string) *Error {
	e.Field = field
	return e
}

func (e *Error) Error() string {
	switch class := e.Kind.class(); class {
	case ErrorConflict:
		if e.Field != "" {
			return e.Field + " already exists"
		}
		return class.Error()
	default:
		return class.Error()
	}
}

// Detail returns the internal description, safe for server logs only.
func (e *Error) Detail() string {
	s := e.Kind.String()
	if e.detail != "" {
		s += ": " + e.detail
	}
	if e.cause != nil {
		s += ": " + e.cause.Error()
	}
	return s
}

// Cause returns the wrapped low-level error, if any.
func (e *Error) Cause() error {
	return e.cause
}

// Is matches the kind sentinel and the public class. An expired token is
// also an invalid token.
func (e *Error) Is(target error) bool {
	if target == nil {
		return false
	}
	if target == e.Kind.sentinel() || target == e.Kind.class() {
		return true
	}
	return e.Kind == KindExpiredToken && target == ErrInvalidToken
}

// KindOf reports the kind of err, or KindUnknown when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// DetailOf returns the internal detail of err for logging.
func DetailOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Detail()
	}
	if err == nil {
		return ""
	}
	return err.Error()
}
