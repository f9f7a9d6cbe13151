package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	"github.com/jmoiron/sqlx"
)

// PasswordHasher is satisfied by *cryptox.Hasher.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) bool
	VerifyDummy(password string)
}

// CredentialStore owns the users and refresh token rows. Every error it
// returns is a *common.Error; driver errors are kept as the cause.
type CredentialStore struct {
	db          *sqlx.DB
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
}

func NewCredentialStore(db *sqlx.DB, m repomanager.RepositoryManager, h PasswordHasher) *CredentialStore {
	return &CredentialStore{db: db, repomanager: m, hasher: h}
}

// CreateUser hashes the password and inserts the user. Email uniqueness is
// enforced by the database constraint.
func (s *CredentialStore) CreateUser(ctx context.Context, u models.NewUser) (int64, error) {
	hash, err := s.hasher.Hash(u.Password)
	if err != nil {
		if common.KindOf(err) != common.KindUnknown {
			return 0, err
		}
		return 0, common.WrapError(common.KindHashError, err, "hash password")
	}

	id, err := s.repomanager.Users(s.db).Create(ctx, u.Name, u.Email, hash, nil)
	if err != nil {
		if dbx.IsUniqueViolation(err) {
			return 0, common.WrapError(common.KindDuplicateEmail, err, "create user").WithField("email")
		}
		return 0, common.WrapError(common.KindStoreError, err, "create user")
	}

	return id, nil
}

func (s *CredentialStore) FetchUserByEmail(ctx context.Context, email string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.KindNotFound, "user by email")
		}
		return nil, common.WrapError(common.KindStoreError, err, "fetch user by email")
	}
	return &u.User, nil
}

func (s *CredentialStore) FetchUserByID(ctx context.Context, id int64) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.KindNotFound, "user by id")
		}
		return nil, common.WrapError(common.KindStoreError, err, "fetch user by id")
	}
	return u, nil
}

// FetchUserByEmailAndPassword returns KindInvalidCredentials both for an
// unknown email and for a wrong password. An unknown email still pays for
// one hash verification.
func (s *CredentialStore) FetchUserByEmailAndPassword(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repomanager.Users(s.db).GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.hasher.VerifyDummy(password)
			return nil, common.NewError(common.KindInvalidCredentials, "unknown email")
		}
		return nil, common.WrapError(common.KindStoreError, err, "fetch user by email")
	}

	if !s.hasher.Verify(password, u.PasswordHash) {
		return nil, common.NewError(common.KindInvalidCredentials, "password mismatch")
	}

	return &u.User, nil
}

func (s *CredentialStore) InsertRefreshToken(ctx context.Context, userID int64, token string, expiresAt time.Time) (int64, error) {
	id, err := s.repomanager.RefreshTokens(s.db).Create(ctx, userID, token, expiresAt)
	if err != nil {
		return 0, common.WrapError(common.KindStoreError, err, "insert refresh token")
	}
	return id, nil
}

// FetchRefreshToken looks up token and checks its expiry against now.
func (s *CredentialStore) FetchRefreshToken(ctx context.Context, token string, now time.Time) (*models.RefreshToken, error) {
	rec, err := s.repomanager.RefreshTokens(s.db).Find(ctx, token)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.NewError(common.KindInvalidToken, "unknown refresh token")
		}
		return nil, common.WrapError(common.KindStoreError, err, "fetch refresh token")
	}

	if rec.Expired(now) {
		return nil, common.NewError(common.KindExpiredToken, "refresh token expired at "+rec.ExpiresAt.UTC().Format(time.RFC3339))
	}

	return rec, nil
}

// RotateRefreshToken swaps old for token in one atomic step.
func (s *CredentialStore) RotateRefreshToken(ctx context.Context, old string, userID int64, token string, expiresAt time.Time) (int64, error) {
	id, err := s.repomanager.RefreshTokens(s.db).Rotate(ctx, old, userID, token, expiresAt)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return 0, common.NewError(common.KindInvalidToken, "refresh token already rotated")
		}
		return 0, common.WrapError(common.KindStoreError, err, "rotate refresh token")
	}
	return id, nil
}
