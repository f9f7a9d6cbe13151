package models

import "time"

// RefreshToken is a persisted opaque refresh token.
type RefreshToken struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	Token     string    `db:"token"`
	ExpiresAt time.Time `db:"expired_at"`
}

// Expired reports whether the token is no longer usable at now.
// A token whose expiry equals now is already expired.
func (t *RefreshToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}

// RefreshRequest is the refresh input.
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}
