package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/uptrace/bun"
)

// pgUniqueViolation is the postgres SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

type users struct {
	db  *bun.DB
	now func() time.Time
}

var _ Users = (*users)(nil)

type UsersOption func(*users)

// WithUsersClock sets the time source for created_at/updated_at
func WithUsersClock(now func() time.Time) UsersOption {
	return func(u *users) {
		if now != nil {
			u.now = now
		}
	}
}

func NewUsersRepository(db *bun.DB, opts ...UsersOption) Users {
	repo := &users{
		db:  db,
		now: time.Now,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(repo)
		}
	}
	return repo
}

func (a *users) Insert(ctx context.Context, user *User) (*User, error) {
	return a.InsertTx(ctx, a.db, user)
}

func (a *users) InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	prepareUserDefaults(user, a.now().UTC())

	if _, err := a.idb(tx).NewInsert().Model(user).Exec(ctx); err != nil {
		return nil, mapUniqueViolation(err)
	}

	return user, nil
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.GetByEmailTx(ctx, a.db, email)
}

func (a *users) GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error) {
	return a.getBy(ctx, a.idb(tx), "email", strings.TrimSpace(email))
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	return a.GetByIDTx(ctx, a.db, id)
}

func (a *users) GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error) {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		// ids that can never exist are simply not found
		return nil, ErrUserNotFound
	}
	return a.getBy(ctx, a.idb(tx), "id", uid)
}

// idb falls back to the repository db when no transaction is given
func (a *users) idb(tx bun.IDB) bun.IDB {
	if tx == nil {
		return a.db
	}
	return tx
}

func (a *users) getBy(ctx context.Context, tx bun.IDB, column string, value any) (*User, error) {
	record := &User{}
	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.? = ?", bun.Ident(column), value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	return record, nil
}

func (a *users) List(ctx context.Context) ([]*User, error) {
	records := make([]*User, 0)
	err := a.db.NewSelect().
		Model(&records).
		Order("usr.created_at ASC", "usr.username ASC").
		Scan(ctx)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	return records, nil
}

func (a *users) Update(ctx context.Context, user *User) (*User, error) {
	return a.UpdateTx(ctx, a.db, user)
}

func (a *users) UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error) {
	user.UpdatedAt = a.now().UTC()

	res, err := a.idb(tx).NewUpdate().
		Model(user).
		Column("username", "email", "password_hash", "updated_at").
		WherePK().
		Exec(ctx)
	if err != nil {
		return nil, mapUniqueViolation(err)
	}

	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, ErrUserNotFound
	}

	return user, nil
}

func (a *users) Delete(ctx context.Context, id string) error {
	uid, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return ErrUserNotFound
	}

	res, err := a.db.NewDelete().
		Model((*User)(nil)).
		Where("id = ?", uid).
		Exec(ctx)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrUserNotFound
	}

	return nil
}

// mapUniqueViolation turns store level unique constraint errors into
// ErrEmailTaken or ErrUsernameTaken.
func mapUniqueViolation(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return duplicateFor(pgErr.ConstraintName+" "+pgErr.Detail, err)
	}

	// sqlite: "UNIQUE constraint failed: users.email"
	msg := err.Error()
	if strings.Contains(msg, "UNIQUE constraint failed") {
		return duplicateFor(msg, err)
	}

	return err
}

func duplicateFor(detail string, err error) error {
	switch {
	case strings.Contains(detail, "email"):
		return ErrEmailTaken
	case strings.Contains(detail, "username"):
		return ErrUsernameTaken
	default:
		return goerrors.Wrap(err, goerrors.CategoryConflict, "record already exists").
			WithTextCode(TextCodeDuplicateRecord).
			WithCode(goerrors.CodeBadRequest)
	}
}
