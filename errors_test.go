package auth_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/Veras-D/auth-lab"
)

func TestStatusForCategory(t *testing.T) {
	tests := []struct {
		category goerrors.Category
		expected int
	}{
		{goerrors.CategoryValidation, http.StatusBadRequest},
		{goerrors.CategoryBadInput, http.StatusBadRequest},
		{goerrors.CategoryConflict, http.StatusBadRequest},
		{goerrors.CategoryAuth, http.StatusUnauthorized},
		{goerrors.CategoryNotFound, http.StatusNotFound},
		{goerrors.CategoryInternal, http.StatusInternalServerError},
		{goerrors.CategoryOperation, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.category), func(t *testing.T) {
			assert.Equal(t, tt.expected, auth.StatusForCategory(tt.category))
		})
	}
}

func TestSentinels(t *testing.T) {
	tests := []struct {
		err      *goerrors.Error
		category goerrors.Category
		code     int
		textCode string
	}{
		{auth.ErrEmailTaken, goerrors.CategoryConflict, http.StatusBadRequest, auth.TextCodeEmailTaken},
		{auth.ErrUsernameTaken, goerrors.CategoryConflict, http.StatusBadRequest, auth.TextCodeUsernameTaken},
		{auth.ErrInvalidCredentials, goerrors.CategoryAuth, http.StatusUnauthorized, auth.TextCodeInvalidCreds},
		{auth.ErrTokenMissing, goerrors.CategoryAuth, http.StatusUnauthorized, auth.TextCodeTokenMissing},
		{auth.ErrTokenInvalid, goerrors.CategoryAuth, http.StatusForbidden, auth.TextCodeTokenInvalid},
		{auth.ErrRefreshTokenMissing, goerrors.CategoryAuth, http.StatusUnauthorized, auth.TextCodeRefreshMissing},
		{auth.ErrRefreshTokenInvalid, goerrors.CategoryAuth, http.StatusForbidden, auth.TextCodeRefreshInvalid},
		{auth.ErrUserNotFound, goerrors.CategoryNotFound, http.StatusNotFound, auth.TextCodeUserNotFound},
		{auth.ErrNoUsersFound, goerrors.CategoryNotFound, http.StatusNotFound, auth.TextCodeNoUsersFound},
		{auth.ErrServer, goerrors.CategoryInternal, http.StatusInternalServerError, auth.TextCodeServerError},
	}

	for _, tt := range tests {
		t.Run(tt.textCode, func(t *testing.T) {
			assert.Equal(t, tt.category, tt.err.Category)
			assert.Equal(t, tt.code, tt.err.Code)
			assert.Equal(t, tt.textCode, tt.err.TextCode)
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}

func TestNewValidationError(t *testing.T) {
	err := auth.NewValidationError("request body is required", nil)
	assert.Equal(t, goerrors.CategoryValidation, err.Category)
	assert.Equal(t, http.StatusBadRequest, err.Code)
	assert.Equal(t, auth.TextCodeValidation, err.TextCode)

	cause := errors.New("unexpected EOF")
	wrapped := auth.NewValidationError("invalid request body", cause)
	assert.Equal(t, "invalid request body", wrapped.Message)
	assert.True(t, errors.Is(wrapped, cause))
}

func TestResolveError(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		status  int
		message string
	}{
		{"conflict", auth.ErrEmailTaken, http.StatusBadRequest, "Email already registered"},
		{"username conflict", auth.ErrUsernameTaken, http.StatusBadRequest, "Username already taken"},
		{"invalid credentials", auth.ErrInvalidCredentials, http.StatusUnauthorized, "Invalid credentials"},
		{"token missing", auth.ErrTokenMissing, http.StatusUnauthorized, "Access denied. Token missing."},
		{"token invalid", auth.ErrTokenInvalid, http.StatusForbidden, "Invalid or expired token."},
		{"wrapped sentinel", fmt.Errorf("profile: %w", auth.ErrUserNotFound), http.StatusNotFound, "User not found"},
		{"not found", auth.ErrUserNotFound, http.StatusNotFound, "User not found"},
		{"category fallback", goerrors.New("bad page size", goerrors.CategoryBadInput), http.StatusBadRequest, "bad page size"},
		{"internal rich error hides detail", goerrors.Wrap(errors.New("disk full"), goerrors.CategoryInternal, "insert failed"), http.StatusInternalServerError, "Server error"},
		{"plain error", errors.New("connection refused"), http.StatusInternalServerError, "Server error"},
		{"fiber error", fiber.NewError(http.StatusNotFound, "Cannot GET /nope"), http.StatusNotFound, "Cannot GET /nope"},
		{"fiber 5xx", fiber.ErrServiceUnavailable, http.StatusInternalServerError, "Server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, message := auth.ResolveError(tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, tt.message, message)
		})
	}
}

func TestSentinelSurvivesWrapping(t *testing.T) {
	var richErr *goerrors.Error
	require.True(t, goerrors.As(fmt.Errorf("insert: %w", auth.ErrEmailTaken), &richErr))
	assert.Equal(t, auth.TextCodeEmailTaken, richErr.TextCode)
}
