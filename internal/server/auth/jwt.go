package auth

import (
	"errors"
	"strconv"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/golang-jwt/jwt/v5"
)

// Claims is the JWT payload of an access token.
type Claims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// Signer signs and verifies access tokens with HS256.
type Signer struct {
	key []byte
	cfg Config
}

// NewSigner binds a signer to an immutable Config.
func NewSigner(cfg Config) *Signer {
	key := make([]byte, len(cfg.secret))
	copy(key, cfg.secret)
	return &Signer{key: key, cfg: cfg}
}

// Sign returns a signed access token for userID valid from now for the
// kind's TTL. Only AccessTokenKind can be signed: refresh tokens are
// opaque strings, see RefreshManager.
func (s *Signer) Sign(userID int64, role string, kind TokenKind, now time.Time) (string, error) {
	if kind != AccessTokenKind {
		return "", common.NewError(common.KindSigningError, "cannot sign a "+kind.String()+" token")
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.TTL(kind))),
		},
		Role: role,
	})

	tokenString, err := token.SignedString(s.key)
	if err != nil {
		return "", common.WrapError(common.KindSigningError, err, "sign access token")
	}

	return tokenString, nil
}

// Verify checks the algorithm, signature and expiry of tokenString as of
// now. An expired token yields KindExpiredToken; anything else wrong with
// it yields KindInvalidSignature.
func (s *Signer) Verify(tokenString string, now time.Time) (*models.Claims, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(t *jwt.Token) (any, error) {
			return s.key, nil
		},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return now }),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.WrapError(common.KindExpiredToken, err, "access token")
		}
		return nil, common.WrapError(common.KindInvalidSignature, err, "access token")
	}
	if !token.Valid || claims.Subject == "" {
		return nil, common.NewError(common.KindInvalidSignature, "access token without subject")
	}

	return &models.Claims{
		Subject:   claims.Subject,
		Role:      claims.Role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
