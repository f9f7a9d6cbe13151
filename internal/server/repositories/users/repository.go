// Package users persists user rows together with their password hashes.
package users

import (
	"context"

	"github.com/dmitrijs2005/gophauth/internal/server/models"
)

type Repository interface {
	// Create inserts a user and returns the id assigned by the database.
	// A duplicate email surfaces as the driver's unique violation, wrapped.
	Create(ctx context.Context, name, email, passwordHash string, role *string) (int64, error)
	// GetByEmail returns common.ErrorNotFound when no row matches.
	GetByEmail(ctx context.Context, email string) (*models.UserWithPassword, error)
	// GetByID returns common.ErrorNotFound when no row matches.
	GetByID(ctx context.Context, id int64) (*models.User, error)
}
