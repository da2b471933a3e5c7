package auth

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-print"
)

// LogoutMessage is returned on logout, tokens are not revoked server side
const LogoutMessage = "Logged out successfully. Please discard token on client."

type Controller struct {
	Debug        bool
	Logger       Logger
	Auther       *Auther
	Credentials  Credentials
	Registrar    *RegisterUserHandler
	ActivitySink ActivitySink
	ContextKey   string
}

type ControllerOption func(*Controller) *Controller

func WithControllerLogger(logger Logger) ControllerOption {
	return func(c *Controller) *Controller {
		c.Logger = normalizeLogger(logger)
		return c
	}
}

func WithControllerDebug(debug bool) ControllerOption {
	return func(c *Controller) *Controller {
		c.Debug = debug
		return c
	}
}

func WithControllerActivitySink(sink ActivitySink) ControllerOption {
	return func(c *Controller) *Controller {
		c.ActivitySink = normalizeActivitySink(sink)
		return c
	}
}

func NewController(auther *Auther, credentials Credentials, opts ...ControllerOption) *Controller {
	c := &Controller{
		Logger:       defLogger{},
		Auther:       auther,
		Credentials:  credentials,
		ActivitySink: noopActivitySink{},
		ContextKey:   DefaultContextKey,
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Auther in auth controller...")
	}

	if c.Credentials == nil {
		panic("Missing Credentials in auth controller...")
	}

	if c.Registrar == nil {
		c.Registrar = NewRegisterUserHandler(c.Credentials, c.Logger, c.ActivitySink)
	}

	return c
}

// RegisterUser handles POST /users/register
func (a *Controller) RegisterUser(c *fiber.Ctx) error {
	payload, ok := PayloadFrom[RegisterRequest](c)
	if !ok {
		return NewValidationError("request body is required", nil)
	}

	user, err := a.Registrar.Execute(c.UserContext(), RegisterUserMessage(payload))
	if err != nil {
		return err
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(user))
		fmt.Println("============================")
	}

	return c.Status(http.StatusCreated).JSON(user)
}

// LoginUser handles POST /users/login
func (a *Controller) LoginUser(c *fiber.Ctx) error {
	payload, ok := PayloadFrom[LoginRequest](c)
	if !ok {
		return NewValidationError("request body is required", nil)
	}

	result, err := a.Auther.Login(c.UserContext(), payload.Email, payload.Password)
	if err != nil {
		return err
	}

	if a.Auther.Mode() == LoginModeLegacy {
		return c.JSON(fiber.Map{"token": result.AccessToken})
	}

	return c.JSON(TokenPair{
		AccessToken:  result.AccessToken,
		RefreshToken: result.RefreshToken,
	})
}

// ListUsers handles GET /users, an empty collection is a 404
func (a *Controller) ListUsers(c *fiber.Ctx) error {
	records, err := a.Credentials.List(c.UserContext())
	if err != nil {
		return err
	}

	if len(records) == 0 {
		return ErrNoUsersFound
	}

	return c.JSON(records)
}

// UpdateUser handles PUT /users/:id
func (a *Controller) UpdateUser(c *fiber.Ctx) error {
	payload, ok := PayloadFrom[UpdateUserRequest](c)
	if !ok {
		return NewValidationError("request body is required", nil)
	}

	id := c.Params("id")
	user, err := a.Credentials.Update(c.UserContext(), id, payload.ToUserUpdate())
	if err != nil {
		return err
	}

	emitActivity(c.UserContext(), a.ActivitySink, a.Logger, ActivityEventUserUpdated, id, map[string]any{
		"password_changed": payload.Password != nil,
	})

	return c.JSON(user)
}

// DeleteUser handles DELETE /users/:id
func (a *Controller) DeleteUser(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := a.Credentials.Delete(c.UserContext(), id); err != nil {
		return err
	}

	emitActivity(c.UserContext(), a.ActivitySink, a.Logger, ActivityEventUserDeleted, id, nil)

	return c.SendStatus(http.StatusNoContent)
}

// Profile handles GET /auth/profile
func (a *Controller) Profile(c *fiber.Ctx) error {
	claims, ok := GetFiberClaims(c, a.ContextKey)
	if !ok {
		return ErrTokenInvalid
	}

	profile, err := a.Auther.Profile(c.UserContext(), claims.UserID())
	if err != nil {
		return err
	}

	return c.JSON(profile)
}

// Logout handles POST /auth/logout
func (a *Controller) Logout(c *fiber.Ctx) error {
	if claims, ok := GetFiberClaims(c, a.ContextKey); ok {
		a.Auther.Logout(c.UserContext(), claims.UserID())
	}
	return c.JSON(fiber.Map{"message": LogoutMessage})
}

// RefreshToken handles POST /auth/token/refresh
func (a *Controller) RefreshToken(c *fiber.Ctx) error {
	token, err := refreshTokenFromBody(c.Body())
	if err != nil {
		return err
	}

	access, err := a.Auther.Refresh(c.UserContext(), token)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{"accessToken": access})
}

// refreshTokenFromBody reads refreshToken without failing validation:
// absent, null or empty is ErrRefreshTokenMissing, a non string value
// can never verify so it is ErrRefreshTokenInvalid.
func refreshTokenFromBody(body []byte) (string, error) {
	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return "", ErrRefreshTokenMissing
	}

	switch v := raw["refreshToken"].(type) {
	case nil:
		return "", ErrRefreshTokenMissing
	case string:
		if v == "" {
			return "", ErrRefreshTokenMissing
		}
		return v, nil
	case bool:
		if !v {
			return "", ErrRefreshTokenMissing
		}
	case float64:
		if v == 0 {
			return "", ErrRefreshTokenMissing
		}
	}

	return "", ErrRefreshTokenInvalid
}
