package repomanager

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/server/migrations"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
)

// SQLRepositoryManager vends SQL-backed repositories for postgres or sqlite.
// Refresh tokens can be moved to Redis with WithRedisRefreshTokens.
type SQLRepositoryManager struct {
	driver string
	redis  redis.UniversalClient
}

// Option configures a SQLRepositoryManager.
type Option func(*SQLRepositoryManager)

// WithRedisRefreshTokens stores refresh tokens in Redis instead of the
// tokens table.
func WithRedisRefreshTokens(client redis.UniversalClient) Option {
	return func(m *SQLRepositoryManager) { m.redis = client }
}

// Users returns a users.Repository bound to the provided DBTX.
func (m *SQLRepositoryManager) Users(db dbx.DBTX) users.Repository {
	return users.NewSQLRepository(db)
}

// RefreshTokens returns a refreshtokens.Repository bound to the provided
// DBTX, or the Redis repository when configured. The Redis repository
// ignores db.
func (m *SQLRepositoryManager) RefreshTokens(db dbx.DBTX) refreshtokens.Repository {
	if m.redis != nil {
		return refreshtokens.NewRedisRepository(m.redis)
	}
	return refreshtokens.NewSQLRepository(db)
}

// gooseUpContext is a seam for testing goose.UpContext.
var gooseUpContext = func(ctx context.Context, db *sql.DB, dir string, opts ...goose.OptionsFunc) error {
	return goose.UpContext(ctx, db, dir, opts...)
}

// RunMigrations sets up goose with the embedded migrations for the
// manager's dialect and applies them.
func (m *SQLRepositoryManager) RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)
	if err := goose.SetDialect(dialect(m.driver)); err != nil {
		return err
	}
	if err := gooseUpContext(ctx, db, migrations.Dir(m.driver)); err != nil {
		return err
	}
	return nil
}

func dialect(driver string) string {
	if driver == dbx.DriverSQLite {
		return "sqlite3"
	}
	return "postgres"
}

// NewRepositoryManager constructs a RepositoryManager for a database driver
// name accepted by dbx.Open.
func NewRepositoryManager(driver string, opts ...Option) (RepositoryManager, error) {
	switch driver {
	case dbx.DriverPostgres, dbx.DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported database driver %q", driver)
	}

	m := &SQLRepositoryManager{driver: driver}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}
