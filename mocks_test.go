package auth_test

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"

	auth "github.com/Veras-D/auth-lab"
)

// MockUsers implements auth.Users
type MockUsers struct {
	mock.Mock
}

func (m *MockUsers) Insert(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) InsertTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) GetByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*auth.User, error) {
	args := m.Called(ctx, tx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) GetByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*auth.User, error) {
	args := m.Called(ctx, tx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*auth.User)
	return records, args.Error(1)
}

func (m *MockUsers) Update(ctx context.Context, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, user)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) UpdateTx(ctx context.Context, tx bun.IDB, user *auth.User) (*auth.User, error) {
	args := m.Called(ctx, tx, user)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockUsers) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func userOrNil(v any) *auth.User {
	u, _ := v.(*auth.User)
	return u
}

// MockCredentials implements auth.Credentials
type MockCredentials struct {
	mock.Mock
}

func (m *MockCredentials) Create(ctx context.Context, username, email, password string) (*auth.User, error) {
	args := m.Called(ctx, username, email, password)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCredentials) FindByEmail(ctx context.Context, email string) (*auth.User, error) {
	args := m.Called(ctx, email)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCredentials) FindByID(ctx context.Context, id string) (*auth.User, error) {
	args := m.Called(ctx, id)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCredentials) VerifyPassword(user *auth.User, password string) bool {
	args := m.Called(user, password)
	return args.Bool(0)
}

func (m *MockCredentials) Update(ctx context.Context, id string, update auth.UserUpdate) (*auth.User, error) {
	args := m.Called(ctx, id, update)
	return userOrNil(args.Get(0)), args.Error(1)
}

func (m *MockCredentials) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCredentials) List(ctx context.Context) ([]*auth.User, error) {
	args := m.Called(ctx)
	records, _ := args.Get(0).([]*auth.User)
	return records, args.Error(1)
}

// recordingLogger keeps every line for assertions
type recordingLogger struct {
	mu    sync.Mutex
	lines []string
}

func (l *recordingLogger) record(level, msg string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf("%s %s %v", level, msg, args))
}

func (l *recordingLogger) Debug(msg string, args ...any) { l.record("DBG", msg, args...) }
func (l *recordingLogger) Info(msg string, args ...any)  { l.record("INF", msg, args...) }
func (l *recordingLogger) Warn(msg string, args ...any)  { l.record("WRN", msg, args...) }
func (l *recordingLogger) Error(msg string, args ...any) { l.record("ERR", msg, args...) }

func (l *recordingLogger) Lines() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]string(nil), l.lines...)
}

type capturingSink struct {
	mu     sync.Mutex
	events []auth.ActivityEvent
}

func (c *capturingSink) Record(ctx context.Context, evt auth.ActivityEvent) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.events = append(c.events, evt)
	return nil
}

func (c *capturingSink) Types() []auth.ActivityEventType {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]auth.ActivityEventType, 0, len(c.events))
	for _, e := range c.events {
		out = append(out, e.EventType)
	}
	return out
}

// newTestRepo opens a private in-memory sqlite database with the schema applied
func newTestRepo(t *testing.T) auth.RepositoryManager {
	t.Helper()

	ctx := context.Background()
	db, err := auth.OpenDB(ctx, "file::memory:", auth.DBOptions{})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	repo := auth.NewRepositoryManager(db, auth.WithRepositoryLogger(&recordingLogger{}))
	require.NoError(t, repo.Migrate(ctx))

	return repo
}

// recordingTxManager counts transactions and hands out a zero bun.Tx
type recordingTxManager struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (m *recordingTxManager) RunInTx(ctx context.Context, _ *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	m.mu.Lock()
	m.calls++
	err := m.err
	m.mu.Unlock()

	if err != nil {
		return err
	}
	return f(ctx, bun.Tx{})
}

func (m *recordingTxManager) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// countingHasher wraps a real hasher and counts calls
type countingHasher struct {
	inner    auth.PasswordHasher
	mu       sync.Mutex
	hashes   int
	compares int
}

func (h *countingHasher) HashPassword(password string) (string, error) {
	h.mu.Lock()
	h.hashes++
	h.mu.Unlock()
	return h.inner.HashPassword(password)
}

func (h *countingHasher) ComparePasswordAndHash(password, hash string) error {
	h.mu.Lock()
	h.compares++
	h.mu.Unlock()
	return h.inner.ComparePasswordAndHash(password, hash)
}

func (h *countingHasher) Counts() (int, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.hashes, h.compares
}

func testHasher() auth.BcryptHasher {
	return auth.NewBcryptHasher(auth.MinPasswordHashCost)
}
