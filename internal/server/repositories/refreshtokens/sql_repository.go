package refreshtokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/jmoiron/sqlx"
)

// SQLRepository stores refresh tokens in the tokens table. It can be bound
// to the pool or to a running transaction.
type SQLRepository struct {
	db dbx.DBTX
}

// NewSQLRepository constructs a repository bound to the given DBTX.
func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

// Create inserts a new refresh token row.
func (r *SQLRepository) Create(ctx context.Context, userID int64, token string, expiresAt time.Time) (int64, error) {
	return insert(ctx, r.db, userID, token, expiresAt)
}

// Find returns the refresh token row for the given token string.
func (r *SQLRepository) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	query := r.db.Rebind(`
		SELECT id, user_id, token, expired_at
		FROM tokens
		WHERE token = ?
	`)
	refreshToken := &models.RefreshToken{}
	if err := r.db.GetContext(ctx, refreshToken, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return refreshToken, nil
}

// Rotate deletes old and inserts token in one transaction. When the
// repository is already bound to a transaction it runs inside it.
func (r *SQLRepository) Rotate(ctx context.Context, old string, userID int64, token string, expiresAt time.Time) (int64, error) {
	var id int64
	fn := func(ctx context.Context, tx dbx.DBTX) error {
		n, err := remove(ctx, tx, old)
		if err != nil {
			return err
		}
		if n == 0 {
			return common.ErrorNotFound
		}
		id, err = insert(ctx, tx, userID, token, expiresAt)
		return err
	}

	var err error
	if db, ok := r.db.(*sqlx.DB); ok {
		err = dbx.WithTx(ctx, db, nil, fn)
	} else {
		err = fn(ctx, r.db)
	}
	if err != nil {
		return 0, err
	}
	return id, nil
}

func insert(ctx context.Context, db dbx.DBTX, userID int64, token string, expiresAt time.Time) (int64, error) {
	query := db.Rebind(`
		INSERT INTO tokens (user_id, token, expired_at)
		VALUES (?, ?, ?)
		RETURNING id
	`)
	var id int64
	if err := db.QueryRowContext(ctx, query, userID, token, expiresAt.UTC()).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return id, nil
}

func remove(ctx context.Context, db dbx.DBTX, token string) (int64, error) {
	query := db.Rebind(`
		DELETE FROM tokens
		WHERE token = ?
	`)
	res, err := db.ExecContext(ctx, query, token)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
