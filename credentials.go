package auth

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// dummyPassword is hashed once and compared against when the email is
// unknown, so a miss costs the same bcrypt work as a wrong password.
const dummyPassword = "auth-lab-dummy-password"

// CredentialStore persists users and owns password hashing.
// Plaintext passwords never leave this type.
type CredentialStore struct {
	users  Users
	hasher PasswordHasher
	logger Logger
	txm    repository.TransactionManager

	dummyOnce sync.Once
	dummyHash string
}

var _ Credentials = (*CredentialStore)(nil)

type CredentialStoreOption func(*CredentialStore)

func WithPasswordHasher(hasher PasswordHasher) CredentialStoreOption {
	return func(s *CredentialStore) {
		if hasher != nil {
			s.hasher = hasher
		}
	}
}

func WithCredentialsLogger(logger Logger) CredentialStoreOption {
	return func(s *CredentialStore) {
		s.logger = normalizeLogger(logger)
	}
}

// WithTransactionManager runs Create and Update inside a transaction
func WithTransactionManager(txm repository.TransactionManager) CredentialStoreOption {
	return func(s *CredentialStore) {
		s.txm = txm
	}
}

func NewCredentialStore(users Users, opts ...CredentialStoreOption) *CredentialStore {
	s := &CredentialStore{
		users:  users,
		hasher: NewBcryptHasher(0),
		logger: defLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Create registers a new user. The email is checked up front; the unique
// constraints in the store settle concurrent registrations.
func (s *CredentialStore) Create(ctx context.Context, username, email, password string) (*User, error) {
	email = normalizeEmail(email)

	hash, err := s.hasher.HashPassword(password)
	if err != nil {
		return nil, err
	}

	var created *User
	err = s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		if _, err := s.users.GetByEmailTx(ctx, tx, email); err == nil {
			return ErrEmailTaken
		} else if !errors.Is(err, ErrUserNotFound) {
			return err
		}

		user, err := s.users.InsertTx(ctx, tx, &User{
			Username:     strings.TrimSpace(username),
			Email:        email,
			PasswordHash: hash,
		})
		if err != nil {
			return err
		}
		created = user
		return nil
	})
	if err != nil {
		return nil, err
	}

	return created, nil
}

func (s *CredentialStore) FindByEmail(ctx context.Context, email string) (*User, error) {
	return s.users.GetByEmail(ctx, normalizeEmail(email))
}

func (s *CredentialStore) FindByID(ctx context.Context, id string) (*User, error) {
	return s.users.GetByID(ctx, id)
}

// VerifyPassword compares password against the stored hash in constant time.
// A nil user still pays for one comparison against a dummy hash.
func (s *CredentialStore) VerifyPassword(user *User, password string) bool {
	if user == nil || user.PasswordHash == "" {
		s.compareDummy(password)
		return false
	}

	if password == "" {
		return false
	}

	if err := s.hasher.ComparePasswordAndHash(password, user.PasswordHash); err != nil {
		if !errors.Is(err, ErrMismatchedHashAndPassword) {
			s.logger.Warn("credential compare failed", "user_id", user.ID.String(), "error", err)
		}
		return false
	}

	return true
}

// Update merges the set fields of update into the user. The hash is only
// recomputed when a new password is given.
func (s *CredentialStore) Update(ctx context.Context, id string, update UserUpdate) (*User, error) {
	var hash string
	if update.Password != nil {
		var err error
		if hash, err = s.hasher.HashPassword(*update.Password); err != nil {
			return nil, err
		}
	}

	var updated *User
	err := s.runInTx(ctx, func(ctx context.Context, tx bun.IDB) error {
		user, err := s.users.GetByIDTx(ctx, tx, id)
		if err != nil {
			return err
		}

		if update.Username != nil {
			user.Username = strings.TrimSpace(*update.Username)
		}

		if update.Email != nil {
			email := normalizeEmail(*update.Email)
			if email != user.Email {
				if other, err := s.users.GetByEmailTx(ctx, tx, email); err == nil && other.ID != user.ID {
					return ErrEmailTaken
				} else if err != nil && !errors.Is(err, ErrUserNotFound) {
					return err
				}
			}
			user.Email = email
		}

		if hash != "" {
			user.PasswordHash = hash
		}

		if updated, err = s.users.UpdateTx(ctx, tx, user); err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (s *CredentialStore) Delete(ctx context.Context, id string) error {
	return s.users.Delete(ctx, id)
}

func (s *CredentialStore) List(ctx context.Context) ([]*User, error) {
	return s.users.List(ctx)
}

// runInTx hands f a transaction when a manager is set, otherwise a nil
// tx that the users repository resolves to its own db.
func (s *CredentialStore) runInTx(ctx context.Context, f func(ctx context.Context, tx bun.IDB) error) error {
	if s.txm == nil {
		return f(ctx, nil)
	}
	return s.txm.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		return f(ctx, tx)
	})
}

func (s *CredentialStore) compareDummy(password string) {
	s.dummyOnce.Do(func() {
		hash, err := s.hasher.HashPassword(dummyPassword)
		if err != nil {
			s.logger.Warn("dummy hash failed", "error", err)
			return
		}
		s.dummyHash = hash
	})
	if s.dummyHash == "" {
		return
	}
	_ = s.hasher.ComparePasswordAndHash(password, s.dummyHash)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
