package auth

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"github.com/goliatone/go-repository-bun"
	"github.com/pressly/goose/v3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect"
)

// RepositoryManager exposes all repositories
type RepositoryManager interface {
	repository.Validator
	repository.TransactionManager
	Migrate(ctx context.Context) error
	Users() Users
	DB() *bun.DB
}

type mngr struct {
	db     *bun.DB
	users  Users
	logger Logger
}

type RepositoryManagerOption func(*mngr)

func WithRepositoryLogger(logger Logger) RepositoryManagerOption {
	return func(m *mngr) {
		m.logger = normalizeLogger(logger)
	}
}

func WithUsersRepository(users Users) RepositoryManagerOption {
	return func(m *mngr) {
		if users != nil {
			m.users = users
		}
	}
}

func NewRepositoryManager(db *bun.DB, opts ...RepositoryManagerOption) RepositoryManager {
	m := &mngr{
		db:     db,
		users:  NewUsersRepository(db),
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(m)
		}
	}
	return m
}

func (m mngr) Validate() error {
	if m.db == nil {
		return errors.New("repository database should be initialized")
	}

	if m.users == nil {
		return errors.New("repository users should be initialized")
	}

	return nil
}

func (m mngr) MustValidate() {
	if err := m.Validate(); err != nil {
		log.Panic(err)
	}
}

func (m mngr) RunInTx(ctx context.Context, opts *sql.TxOptions, f func(ctx context.Context, tx bun.Tx) error) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
		return m.db.RunInTx(ctx, opts, f)
	}
}

// Migrate applies every pending embedded migration
func (m mngr) Migrate(ctx context.Context) error {
	gooseDialect, err := gooseDialectFor(m.db.Dialect().Name())
	if err != nil {
		return err
	}

	provider, err := goose.NewProvider(gooseDialect, m.db.DB, GetMigrationsFS())
	if err != nil {
		return fmt.Errorf("create migration provider: %w", err)
	}

	results, err := provider.Up(ctx)
	if errors.Is(err, goose.ErrNoNextVersion) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	for _, r := range results {
		m.logger.Info("migration applied", "version", r.Source.Version, "duration", r.Duration)
	}

	return nil
}

func (m mngr) Users() Users {
	return m.users
}

func (m mngr) DB() *bun.DB {
	return m.db
}

func gooseDialectFor(name dialect.Name) (goose.Dialect, error) {
	switch name {
	case dialect.PG:
		return goose.DialectPostgres, nil
	case dialect.SQLite:
		return goose.DialectSQLite3, nil
	default:
		return "", fmt.Errorf("unsupported database dialect %s", name)
	}
}
