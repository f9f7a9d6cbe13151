package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/gophauth/internal/cryptox"
	"github.com/dmitrijs2005/gophauth/internal/dbx"
	"github.com/dmitrijs2005/gophauth/internal/logging"
	"github.com/dmitrijs2005/gophauth/internal/server/auth"
	"github.com/dmitrijs2005/gophauth/internal/server/models"
	refreshtokensrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/gophauth/internal/server/repositories/repomanager"
	usersrepo "github.com/dmitrijs2005/gophauth/internal/server/repositories/users"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

const (
	accessTTL  = 15 * time.Minute
	refreshTTL = 24 * time.Hour
)

// --- clock ---

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// --- logger ---

type logEntry struct {
	level string
	msg   string
	args  []any
}

type recordingLogger struct {
	mu      sync.Mutex
	entries []logEntry
}

func (l *recordingLogger) add(level, msg string, args []any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, logEntry{level: level, msg: msg, args: args})
}

func (l *recordingLogger) Debug(_ context.Context, msg string, args ...any) { l.add("debug", msg, args) }
func (l *recordingLogger) Info(_ context.Context, msg string, args ...any)  { l.add("info", msg, args) }
func (l *recordingLogger) Warn(_ context.Context, msg string, args ...any)  { l.add("warn", msg, args) }
func (l *recordingLogger) Error(_ context.Context, msg string, args ...any) { l.add("error", msg, args) }
func (l *recordingLogger) With(...any) logging.Logger                       { return l }

func (l *recordingLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return fmt.Sprint(l.entries)
}

// --- environment ---

type testEnv struct {
	db     *sqlx.DB
	store  *CredentialStore
	signer *auth.Signer
	svc    *UserService
	clock  *fakeClock
	log    *recordingLogger
}

func testHasher(t *testing.T) *cryptox.Hasher {
	t.Helper()
	h, err := cryptox.NewHasher(cryptox.Params{MemoryKB: 8 * 1024, Time: 1, Parallelism: 1, SaltLength: 16, KeyLength: 16})
	require.NoError(t, err)
	return h
}

func openSQLite(t *testing.T) *sqlx.DB {
	t.Helper()
	ctx := context.Background()
	db, err := dbx.Open(ctx, dbx.DriverSQLite, "file:"+uuid.NewString()+"?mode=memory&cache=shared")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// newEnv wires the real stack over an in-memory sqlite database.
func newEnv(t *testing.T, managerOpts []repomanager.Option, opts ...Option) *testEnv {
	t.Helper()
	ctx := context.Background()

	db := openSQLite(t)
	m, err := repomanager.NewRepositoryManager(dbx.DriverSQLite, managerOpts...)
	require.NoError(t, err)
	goose.SetLogger(goose.NopLogger())
	require.NoError(t, m.RunMigrations(ctx, db.DB))

	cfg, err := auth.NewConfig("test-secret", accessTTL, refreshTTL)
	require.NoError(t, err)

	env := &testEnv{
		db:     db,
		store:  NewCredentialStore(db, m, testHasher(t)),
		signer: auth.NewSigner(cfg),
		clock:  &fakeClock{now: t0},
		log:    &recordingLogger{},
	}
	opts = append([]Option{WithClock(env.clock.Now), WithLogger(env.log)}, opts...)
	env.svc = NewUserService(env.store, env.signer, auth.NewRefreshManager(env.store, cfg), opts...)
	return env
}

func redisOption(t *testing.T) []repomanager.Option {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return []repomanager.Option{repomanager.WithRedisRefreshTokens(client)}
}

// --- fake repositories for error paths ---

type fakeUsersRepo struct {
	createID  int64
	createErr error

	getOut *models.UserWithPassword
	getErr error

	byIDOut *models.User
	byIDErr error

	createdHash string
}

func (f *fakeUsersRepo) Create(_ context.Context, _, _, passwordHash string, _ *string) (int64, error) {
	f.createdHash = passwordHash
	return f.createID, f.createErr
}

func (f *fakeUsersRepo) GetByEmail(context.Context, string) (*models.UserWithPassword, error) {
	return f.getOut, f.getErr
}

func (f *fakeUsersRepo) GetByID(context.Context, int64) (*models.User, error) {
	return f.byIDOut, f.byIDErr
}

type fakeRefreshRepo struct {
	createErr error

	findOut *models.RefreshToken
	findErr error

	rotateID  int64
	rotateErr error
}

func (f *fakeRefreshRepo) Create(context.Context, int64, string, time.Time) (int64, error) {
	return 1, f.createErr
}

func (f *fakeRefreshRepo) Find(context.Context, string) (*models.RefreshToken, error) {
	return f.findOut, f.findErr
}

func (f *fakeRefreshRepo) Rotate(context.Context, string, int64, string, time.Time) (int64, error) {
	return f.rotateID, f.rotateErr
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error        { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokensrepo.Repository { return m.r }

// fakeHasher records calls and returns canned results.
type fakeHasher struct {
	hashOut   string
	hashErr   error
	verifyOK  bool
	verified  int
	dummyRuns int
}

func (h *fakeHasher) Hash(string) (string, error) { return h.hashOut, h.hashErr }

func (h *fakeHasher) Verify(string, string) bool {
	h.verified++
	return h.verifyOK
}

func (h *fakeHasher) VerifyDummy(string) { h.dummyRuns++ }
