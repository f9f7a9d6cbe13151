// Package refreshtokens declares the repository contract for persisted
// refresh tokens, with SQL and Redis implementations.
package refreshtokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// Repository defines operations for issuing, retrieving and rotating refresh tokens.
type Repository interface {
	// Create stores a new refresh token for userID expiring at expiresAt and
	// returns its id. A token string that already exists is rejected.
	Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (int64, error)

	// Find looks up a refresh token by its opaque token string. Expired
	// tokens are returned as-is; the caller decides. Returns
	// common.ErrorNotFound when the token is absent.
	Find(ctx context.Context, token string) (*models.RefreshToken, error)

	// Rotate atomically removes old and stores token in its place. It returns
	// common.ErrorNotFound if old is already gone, so a token can be rotated
	// at most once.
	Rotate(ctx context.Context, old string, userID int64, token string, expiresAt time.Time) (int64, error)
}
