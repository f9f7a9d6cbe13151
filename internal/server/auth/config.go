// Package auth issues and verifies the token pair handed out at login: a
// signed HS256 access token and an opaque, persisted refresh token.
package auth

import (
	"errors"
	"fmt"
	"time"
)

// TokenKind selects the lifetime used for a token.
type TokenKind int

const (
	AccessTokenKind TokenKind = iota
	RefreshTokenKind
)

func (k TokenKind) String() string {
	switch k {
	case AccessTokenKind:
		return "access"
	case RefreshTokenKind:
		return "refresh"
	}
	return fmt.Sprintf("TokenKind(%d)", int(k))
}

// Config is the signing key and token lifetimes. It is built once at
// startup and cannot be changed afterwards.
type Config struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
}

// NewConfig validates and copies the settings.
func NewConfig(secret string, accessTTL, refreshTTL time.Duration) (Config, error) {
	if secret == "" {
		return Config{}, errors.New("auth: empty secret key")
	}
	if accessTTL <= 0 {
		return Config{}, fmt.Errorf("auth: access token ttl must be positive, got %s", accessTTL)
	}
	if refreshTTL <= 0 {
		return Config{}, fmt.Errorf("auth: refresh token ttl must be positive, got %s", refreshTTL)
	}
	return Config{
		secret:     []byte(secret),
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
	}, nil
}

// TTL returns the lifetime of tokens of the given kind.
func (c Config) TTL(kind TokenKind) time.Duration {
	if kind == RefreshTokenKind {
		return c.refreshTTL
	}
	return c.accessTTL
}
