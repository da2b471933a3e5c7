package auth

import (
	"bytes"
	"encoding/json"
	"errors"
	"regexp"
	"sort"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const payloadLocalsKey = "payload"

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_.-]+$`)

// Validatable is implemented by request DTOs
type Validatable interface {
	Validate() error
}

type RegisterRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.Required, validation.Length(3, 30), validation.Match(usernamePattern)),
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(6, 128)),
	)
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.Email, validation.Required, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.Required, validation.Length(1, 128)),
	)
}

// UpdateUserRequest is a partial update, absent fields stay unchanged
type UpdateUserRequest struct {
	Username *string `json:"username"`
	Email    *string `json:"email"`
	Password *string `json:"password"`
}

var errEmptyUpdate = errors.New("at least one of username, email or password is required")

func (r UpdateUserRequest) Validate() error {
	if r.Username == nil && r.Email == nil && r.Password == nil {
		return errEmptyUpdate
	}
	return validation.ValidateStruct(&r,
		validation.Field(&r.Username, validation.NilOrNotEmpty, validation.Length(3, 30), validation.Match(usernamePattern)),
		validation.Field(&r.Email, validation.NilOrNotEmpty, validation.Length(3, 254), is.Email),
		validation.Field(&r.Password, validation.NilOrNotEmpty, validation.Length(6, 128)),
	)
}

// ToUserUpdate converts the request into the store's update type
func (r UpdateUserRequest) ToUserUpdate() UserUpdate {
	return UserUpdate{
		Username: r.Username,
		Email:    r.Email,
		Password: r.Password,
	}
}

// DecodeAndValidate turns a raw JSON body into a validated T or a
// validation error. Unknown fields are rejected.
func DecodeAndValidate[T Validatable](raw []byte) (T, error) {
	var payload T

	if len(bytes.TrimSpace(raw)) == 0 {
		return payload, NewValidationError("request body is required", nil)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&payload); err != nil {
		return payload, NewValidationError("invalid request body", err)
	}

	if err := payload.Validate(); err != nil {
		return payload, NewValidationError(validationMessage(err), err)
	}

	return payload, nil
}

// ValidateBody rejects requests whose body is not a valid T and stores
// the decoded payload for the next handler.
func ValidateBody[T Validatable]() fiber.Handler {
	return func(c *fiber.Ctx) error {
		payload, err := DecodeAndValidate[T](c.Body())
		if err != nil {
			return err
		}
		c.Locals(payloadLocalsKey, payload)
		return c.Next()
	}
}

// PayloadFrom returns the payload stored by ValidateBody
func PayloadFrom[T any](c *fiber.Ctx) (T, bool) {
	payload, ok := c.Locals(payloadLocalsKey).(T)
	return payload, ok
}

// ValidateIDParam requires the named route param to be a user id
func ValidateIDParam(name string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := ValidateID(c.Params(name)); err != nil {
			return err
		}
		return c.Next()
	}
}

// ValidateID checks id has the shape of a user id
func ValidateID(id string) error {
	if _, err := uuid.Parse(id); err != nil {
		return NewValidationError("id: must be a valid id", err)
	}
	return nil
}

// validationMessage picks the first field error in key order so the
// message is stable between requests.
func validationMessage(err error) string {
	var errs validation.Errors
	if !errors.As(err, &errs) || len(errs) == 0 {
		return err.Error()
	}

	keys := make([]string, 0, len(errs))
	for k := range errs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys[0] + ": " + errs[keys[0]].Error()
}
