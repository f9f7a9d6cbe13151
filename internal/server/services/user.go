// Package services contains the server-side business logic. UserService
// handles registration, login, refresh and access token checks on top of a
// CredentialStore, an auth.Signer and an auth.RefreshManager.
package services

import (
	"context"
	"errors"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// UserService provides authentication-related operations:
//   - Register: create users
//   - Login: verify credentials and mint a token pair
//   - Refresh: mint a new access token from a refresh token
//   - Authenticate: verify an access token
type UserService struct {
	store   *CredentialStore
	signer  *auth.Signer
	refresh *auth.RefreshManager
	rotate  bool
	now     func() time.Time
	log     logging.Logger
}

// Option configures a UserService.
type Option func(*UserService)

// WithRotation makes Refresh replace the presented refresh token.
func WithRotation(enabled bool) Option {
	return func(s *UserService) { s.rotate = enabled }
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *UserService) { s.now = now }
}

func WithLogger(l logging.Logger) Option {
	return func(s *UserService) { s.log = l }
}

func NewUserService(store *CredentialStore, signer *auth.Signer, refresh *auth.RefreshManager, opts ...Option) *UserService {
	s := &UserService{
		store:   store,
		signer:  signer,
		refresh: refresh,
		now:     time.Now,
		log:     logging.NopLogger{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Register creates the user and returns it without tokens.
func (s *UserService) Register(ctx context.Context, u models.NewUser) (*models.User, error) {
	if _, err := s.store.CreateUser(ctx, u); err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	user, err := s.store.FetchUserByEmail(ctx, u.Email)
	if err != nil {
		return nil, s.fail(ctx, "register", err)
	}

	s.log.Info(ctx, "user registered", "user_id", user.ID)
	return user, nil
}

// Login verifies the credentials and returns the user with a fresh access
// and refresh token. Either both tokens are returned or none.
func (s *UserService) Login(ctx context.Context, u models.LoginUser) (*models.UserWithTokens, error) {
	user, err := s.store.FetchUserByEmailAndPassword(ctx, u.Email, u.Password)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	now := s.now()
	access, err := s.signer.Sign(user.ID, user.RoleOrEmpty(), auth.AccessTokenKind, now)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	refresh, err := s.refresh.Issue(ctx, user.ID, now)
	if err != nil {
		return nil, s.fail(ctx, "login", err)
	}

	s.log.Info(ctx, "user logged in", "user_id", user.ID)
	return &models.UserWithTokens{
		User:         *user,
		AccessToken:  access,
		RefreshToken: refresh.Token,
	}, nil
}

// Refresh mints a new access token for the owner of the refresh token. The
// refresh token stays usable until it expires, unless rotation is enabled;
// then it is replaced and the new one is returned alongside.
func (s *UserService) Refresh(ctx context.Context, r models.RefreshRequest) (*models.AccessToken, error) {
	now := s.now()

	userID, err := s.refresh.Resolve(ctx, r.RefreshToken, now)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}

	user, err := s.store.FetchUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			err = common.NewError(common.KindInvalidToken, "refresh token owner is gone")
		}
		return nil, s.fail(ctx, "refresh", err)
	}

	access, err := s.signer.Sign(user.ID, user.RoleOrEmpty(), auth.AccessTokenKind, now)
	if err != nil {
		return nil, s.fail(ctx, "refresh", err)
	}

	out := &models.AccessToken{AccessToken: access}
	if s.rotate {
		next, err := s.refresh.Rotate(ctx, r.RefreshToken, user.ID, now)
		if err != nil {
			return nil, s.fail(ctx, "refresh", err)
		}
		out.RefreshToken = next.Token
	}

	s.log.Debug(ctx, "access token refreshed", "user_id", user.ID, "rotated", s.rotate)
	return out, nil
}

// Authenticate verifies an access token and returns its claims.
func (s *UserService) Authenticate(ctx context.Context, accessToken string) (*models.Claims, error) {
	claims, err := s.signer.Verify(accessToken, s.now())
	if err != nil {
		return nil, s.fail(ctx, "authenticate", err)
	}
	return claims, nil
}

// fail logs the internal detail of err and returns err unchanged.
func (s *UserService) fail(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorInternal) || common.KindOf(err) == common.KindUnknown {
		s.log.Error(ctx, op+" failed", "error", common.DetailOf(err))
	} else {
		s.log.Warn(ctx, op+" rejected", "error", common.DetailOf(err))
	}
	return err
}
