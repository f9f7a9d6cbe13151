package users

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/dmitrijs2005/gophauth/internal/common"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	"github.com/google/go-cmp/cmp"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	insertQuery     = `(?s)^INSERT\s+INTO\s+users\s*\(name,\s*email,\s*password_hash,\s*role\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4\)\s*RETURNING\s+id$`
	selectByEmail   = `(?s)^SELECT\s+id,\s*name,\s*email,\s*password_hash,\s*role\s+FROM\s+users\s+WHERE\s+email\s*=\s*\$1$`
	selectByIDQuery = `(?s)^SELECT\s+id,\s*name,\s*email,\s*role\s+FROM\s+users\s+WHERE\s+id\s*=\s*\$1$`
)

func newRepoWithMock(t *testing.T) (*SQLRepository, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet())
		_ = db.Close()
	})
	return NewSQLRepository(sqlx.NewDb(db, "pgx")), mock
}

func TestCreate_Success(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "a@x.com", "$argon2id$hash", nil).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(42)))

	id, err := repo.Create(context.Background(), "alice", "a@x.com", "$argon2id$hash", nil)
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}

func TestCreate_WithRole(t *testing.T) {
	repo, mock := newRepoWithMock(t)
	role := "admin"

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "a@x.com", "h", "admin").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	id, err := repo.Create(context.Background(), "alice", "a@x.com", "h", &role)
	require.NoError(t, err)
	assert.Equal(t, int64(1), id)
}

func TestCreate_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(insertQuery).
		WithArgs("alice", "a@x.com", "h", nil).
		WillReturnError(errors.New("db down"))

	_, err := repo.Create(context.Background(), "alice", "a@x.com", "h", nil)
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db down`, err.Error())
}

func TestGetByEmail_Found(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	rows := sqlmock.NewRows([]string{"id", "name", "email", "password_hash", "role"}).
		AddRow(int64(7), "alice", "a@x.com", "h", nil)
	mock.ExpectQuery(selectByEmail).WithArgs("a@x.com").WillReturnRows(rows)

	got, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.NoError(t, err)

	want := &models.UserWithPassword{
		User:         models.User{ID: 7, Name: "alice", Email: "a@x.com"},
		PasswordHash: "h",
	}
	assert.Empty(t, cmp.Diff(want, got))
}

func TestGetByEmail_NotFound(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmail).WithArgs("ghost@x.com").WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByEmail(context.Background(), "ghost@x.com")
	assert.ErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByEmail_DBError(t *testing.T) {
	repo, mock := newRepoWithMock(t)

	mock.ExpectQuery(selectByEmail).WithArgs("a@x.com").WillReturnError(errors.New("db err"))

	_, err := repo.GetByEmail(context.Background(), "a@x.com")
	require.Error(t, err)
	assert.Regexp(t, `db error: .*db err`, err.Error())
	assert.NotErrorIs(t, err, common.ErrorNotFound)
}

func TestGetByID(t *testing.T) {
	t.Run("found with role", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		rows := sqlmock.NewRows([]string{"id", "name", "email", "role"}).
			AddRow(int64(3), "bob", "b@x.com", "admin")
		mock.ExpectQuery(selectByIDQuery).WithArgs(int64(3)).WillReturnRows(rows)

		got, err := repo.GetByID(context.Background(), 3)
		require.NoError(t, err)
		require.NotNil(t, got.Role)
		assert.Equal(t, "admin", *got.Role)
		assert.Equal(t, "bob", got.Name)
	})

	t.Run("not found", func(t *testing.T) {
		repo, mock := newRepoWithMock(t)

		mock.ExpectQuery(selectByIDQuery).WithArgs(int64(9)).WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByID(context.Background(), 9)
		assert.ErrorIs(t, err, common.ErrorNotFound)
	})
}
