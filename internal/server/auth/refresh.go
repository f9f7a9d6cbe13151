package auth

import (
	"context"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// refreshTokenBytes of entropy, hex encoded into the token string.
const refreshTokenBytes = 32

// TokenStore persists refresh tokens. FetchRefreshToken reports a missing
// token as KindInvalidToken and an expired one as KindExpiredToken.
type TokenStore interface {
	InsertRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) (int64, error)
	FetchRefreshToken(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error)
	RotateRefreshToken(ctx context.Context, old string, userID int64, token string, expiresAt time.Time) (int64, error)
}

// RefreshManager mints opaque refresh tokens and resolves them back to
// their owner.
type RefreshManager struct {
	store    TokenStore
	ttl      time.Duration
	generate func() (string, error)
}

func NewRefreshManager(store TokenStore, cfg Config) *RefreshManager {
	return &RefreshManager{
		store: store,
		ttl:   cfg.TTL(RefreshTokenKind),
		generate: func() (string, error) {
			return common.MakeRandHexString(refreshTokenBytes)
		},
	}
}

// Issue creates and stores a refresh token for userID. The returned token
// string is the only copy handed out.
func (m *RefreshManager) Issue(ctx context.Context, userID int64, now time.Time) (*models.RefreshToken, error) {
	token, err := m.generate()
	if err != nil {
		return nil, common.WrapError(common.KindSigningError, err, "generate refresh token")
	}

	expiresAt := now.Add(m.ttl)
	id, err := m.store.InsertRefreshToken(ctx, userID, token, expiresAt)
	if err != nil {
		return nil, err
	}

	return &models.RefreshToken{ID: id, UserID: userID, Token: token, ExpiresAt: expiresAt}, nil
}

// Resolve returns the owner of token. The token stays valid: resolving does
// not consume it.
func (m *RefreshManager) Resolve(ctx context.Context, token string, now time.Time) (int64, error) {
	rec, err := m.store.FetchRefreshToken(ctx, token, now)
	if err != nil {
		return 0, err
	}
	if rec.Expired(now) {
		return 0, common.NewError(common.KindExpiredToken, "refresh token expired")
	}
	return rec.UserID, nil
}

// Rotate replaces token, which must belong to userID, with a fresh one.
// The old string stops working once this returns.
func (m *RefreshManager) Rotate(ctx context.Context, token string, userID int64, now time.Time) (*models.RefreshToken, error) {
	next, err := m.generate()
	if err != nil {
		return nil, common.WrapError(common.KindSigningError, err, "generate refresh token")
	}

	expiresAt := now.Add(m.ttl)
	id, err := m.store.RotateRefreshToken(ctx, token, userID, next, expiresAt)
	if err != nil {
		return nil, err
	}

	return &models.RefreshToken{ID: id, UserID: userID, Token: next, ExpiresAt: expiresAt}, nil
}
