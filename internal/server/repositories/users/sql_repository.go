package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

// SQLRepository is a Repository over postgres or sqlite. Queries are
// written with "?" placeholders and rebound for the driver in use.
type SQLRepository struct {
	db dbx.DBTX
}

func NewSQLRepository(db dbx.DBTX) *SQLRepository {
	return &SQLRepository{db: db}
}

func (r *SQLRepository) Create(ctx context.Context, name, email, passwordHash string, role *string) (int64, error) {
	query := r.db.Rebind(
		`INSERT INTO users (name, email, password_hash, role)
		 VALUES (?, ?, ?, ?)
		 RETURNING id`)

	var id int64
	if err := r.db.QueryRowContext(ctx, query, name, email, passwordHash, role).Scan(&id); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}

	return id, nil
}

func (r *SQLRepository) GetByEmail(ctx context.Context, email string) (*models.UserWithPassword, error) {
	query := r.db.Rebind(
		`SELECT id, name, email, password_hash, role FROM users
		 WHERE email = ?`)

	user := &models.UserWithPassword{}
	if err := r.db.GetContext(ctx, user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *SQLRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	query := r.db.Rebind(
		`SELECT id, name, email, role FROM users
		 WHERE id = ?`)

	user := &models.User{}
	if err := r.db.GetContext(ctx, user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
