package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// User is the user model
type User struct {
	bun.BaseModel `bun:"table:users,alias:usr"`
	ID            uuid.UUID `bun:"id,pk,type:uuid" json:"id"`
	Username      string    `bun:"username,notnull,unique" json:"username"`
	Email         string    `bun:"email,notnull,unique" json:"email"`
	PasswordHash  string    `bun:"password_hash,notnull" json:"-"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt     time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

// UserUpdate holds the fields of a partial update, nil means unchanged
type UserUpdate struct {
	Username *string
	Email    *string
	Password *string
}

// Empty reports whether no field is set
func (u UserUpdate) Empty() bool {
	return u.Username == nil && u.Email == nil && u.Password == nil
}

// Profile is the public view returned by the profile endpoint
type Profile struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// ProfileFromUser strips the record down to its public profile
func ProfileFromUser(u *User) Profile {
	return Profile{
		ID:       u.ID.String(),
		Username: u.Username,
		Email:    u.Email,
	}
}

func prepareUserDefaults(u *User, now time.Time) {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
}
