package auth

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Logger is the logging contract used across the package.
// Args are key/value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// PasswordHasher hashes and compares passwords
type PasswordHasher interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Users is the persistence contract for user records
type Users interface {
	Insert(ctx context.Context, user *User) (*User, error)
	InsertTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByEmailTx(ctx context.Context, tx bun.IDB, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByIDTx(ctx context.Context, tx bun.IDB, id string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, user *User) (*User, error)
	UpdateTx(ctx context.Context, tx bun.IDB, user *User) (*User, error)
	Delete(ctx context.Context, id string) error
}

// TokenService issues and verifies access and refresh tokens
type TokenService interface {
	Issue(subjectID string, kind TokenKind) (string, error)
	IssuePair(subjectID string) (*TokenPair, error)
	Verify(raw string) (*Claims, error)
	VerifyKind(raw string, kind TokenKind) (*Claims, error)
	Refresh(refreshToken string) (string, error)
}

// Credentials is what controllers need from the credential store
type Credentials interface {
	Create(ctx context.Context, username, email, password string) (*User, error)
	FindByEmail(ctx context.Context, email string) (*User, error)
	FindByID(ctx context.Context, id string) (*User, error)
	VerifyPassword(user *User, password string) bool
	Update(ctx context.Context, id string, update UserUpdate) (*User, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context) ([]*User, error)
}

type defLogger struct{}

func (d defLogger) Error(msg string, args ...any) {
	fmt.Println(logLine("[ERR] AUTH ", msg, args))
}

func (d defLogger) Warn(msg string, args ...any) {
	fmt.Println(logLine("[WRN] AUTH ", msg, args))
}

func (d defLogger) Info(msg string, args ...any) {
	fmt.Println(logLine("[INF] AUTH ", msg, args))
}

// Debug is dropped, the fallback logger only reports info and up
func (d defLogger) Debug(msg string, args ...any) {}

func logLine(prefix, msg string, args []any) string {
	line := prefix + msg
	for i := 0; i < len(args); i += 2 {
		if i+1 < len(args) {
			line += fmt.Sprintf(" %v=%v", args[i], args[i+1])
		} else {
			line += fmt.Sprintf(" %v", args[i])
		}
	}
	return line
}
