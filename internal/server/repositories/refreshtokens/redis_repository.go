package refreshtokens

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/redis/go-redis/v9"
)

const (
	defaultKeyPrefix = "gophauth:refresh:"
	defaultRetention = 24 * time.Hour
)

// ErrTokenExists is returned by RedisRepository.Create when the token string
// is already stored.
var ErrTokenExists = errors.New("refresh token already exists")

type redisRecord struct {
	ID        int64     `json:"id"`
	UserID    int64     `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

// RedisRepository keeps refresh tokens as JSON values keyed by token. Keys
// outlive the token by a retention window so an expired token still
// resolves as expired for a while instead of as unknown.
type RedisRepository struct {
	client    redis.UniversalClient
	prefix    string
	retention time.Duration
	now       func() time.Time
}

// RedisOption configures a RedisRepository.
type RedisOption func(*RedisRepository)

// WithKeyPrefix overrides the key namespace.
func WithKeyPrefix(prefix string) RedisOption {
	return func(r *RedisRepository) { r.prefix = prefix }
}

// WithRetention sets how long a key is kept past the token's expiry.
func WithRetention(d time.Duration) RedisOption {
	return func(r *RedisRepository) { r.retention = d }
}

func NewRedisRepository(client redis.UniversalClient, opts ...RedisOption) *RedisRepository {
	r := &RedisRepository{
		client:    client,
		prefix:    defaultKeyPrefix,
		retention: defaultRetention,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *RedisRepository) key(token string) string {
	return r.prefix + token
}

func (r *RedisRepository) seqKey() string {
	return strings.TrimSuffix(r.prefix, ":") + ":seq"
}

func (r *RedisRepository) ttl(expiresAt time.Time) time.Duration {
	d := expiresAt.Sub(r.now())
	if d < 0 {
		d = 0
	}
	return d + r.retention
}

func (r *RedisRepository) encode(userID int64, expiresAt time.Time, id int64) (string, error) {
	b, err := json.Marshal(redisRecord{ID: id, UserID: userID, ExpiresAt: expiresAt.UTC()})
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Create stores the token with SET NX so an existing token is never
// overwritten.
func (r *RedisRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (int64, error) {
	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}

	value, err := r.encode(userID, expiresAt, id)
	if err != nil {
		return 0, err
	}

	ok, err := r.client.SetNX(ctx, r.key(token), value, r.ttl(expiresAt)).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	if !ok {
		return 0, ErrTokenExists
	}
	return id, nil
}

// Find returns the stored token or common.ErrorNotFound.
func (r *RedisRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	raw, err := r.client.Get(ctx, r.key(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("redis error: %w", err)
	}

	var rec redisRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, fmt.Errorf("corrupt refresh token record: %w", err)
	}

	return &models.RefreshToken{
		ID:        rec.ID,
		UserID:    rec.UserID,
		Token:     token,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

// Rotate watches both keys and swaps them in a MULTI/EXEC block. A
// concurrent rotation of the same token makes one side fail with
// common.ErrorNotFound.
func (r *RedisRepository) Rotate(ctx context.Context, old string, userID int64, token string, expiresAt time.Time) (int64, error) {
	oldKey, newKey := r.key(old), r.key(token)

	id, err := r.client.Incr(ctx, r.seqKey()).Result()
	if err != nil {
		return 0, fmt.Errorf("redis error: %w", err)
	}
	value, err := r.encode(userID, expiresAt, id)
	if err != nil {
		return 0, err
	}

	txf := func(tx *redis.Tx) error {
		present, err := tx.Exists(ctx, oldKey).Result()
		if err != nil {
			return err
		}
		if present == 0 {
			return common.ErrorNotFound
		}
		taken, err := tx.Exists(ctx, newKey).Result()
		if err != nil {
			return err
		}
		if taken > 0 {
			return ErrTokenExists
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, oldKey)
			pipe.Set(ctx, newKey, value, r.ttl(expiresAt))
			return nil
		})
		return err
	}

	err = r.client.Watch(ctx, txf, oldKey, newKey)
	switch {
	case err == nil:
		return id, nil
	case errors.Is(err, redis.TxFailedErr):
		return 0, common.ErrorNotFound
	case errors.Is(err, common.ErrorNotFound), errors.Is(err, ErrTokenExists):
		return 0, err
	default:
		return 0, fmt.Errorf("redis error: %w", err)
	}
}
