package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

const (
	TextCodeEmailTaken          = "EMAIL_TAKEN"
	TextCodeUsernameTaken       = "USERNAME_TAKEN"
	TextCodeInvalidCreds        = "INVALID_CREDENTIALS"
	TextCodeTokenMissing        = "TOKEN_MISSING"
	TextCodeTokenInvalid        = "TOKEN_INVALID"
	TextCodeRefreshMissing      = "REFRESH_TOKEN_MISSING"
	TextCodeRefreshInvalid      = "REFRESH_TOKEN_INVALID"
	TextCodeUserNotFound        = "USER_NOT_FOUND"
	TextCodeNoUsersFound        = "NO_USERS_FOUND"
	TextCodeServerError         = "SERVER_ERROR"
	TextCodeEmptyPassword       = "EMPTY_PASSWORD"
	TextCodePasswordMismatch    = "PASSWORD_MISMATCH"
	TextCodeValidation          = "VALIDATION_ERROR"
	TextCodeDuplicateRecord     = "DUPLICATE_RECORD"
	TextCodeRegistrationFailure = "REGISTRATION_FAILED"
)

// ErrEmailTaken is returned when registering or updating to an email in use
var ErrEmailTaken = goerrors.New("Email already registered", goerrors.CategoryConflict).
	WithTextCode(TextCodeEmailTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrUsernameTaken is returned when the username is in use
var ErrUsernameTaken = goerrors.New("Username already taken", goerrors.CategoryConflict).
	WithTextCode(TextCodeUsernameTaken).
	WithCode(goerrors.CodeBadRequest)

// ErrInvalidCredentials covers both unknown email and wrong password
var ErrInvalidCredentials = goerrors.New("Invalid credentials", goerrors.CategoryAuth).
	WithTextCode(TextCodeInvalidCreds).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenMissing no bearer token in the request
var ErrTokenMissing = goerrors.New("Access denied. Token missing.", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenMissing).
	WithCode(goerrors.CodeUnauthorized)

// ErrTokenInvalid bad signature, malformed, wrong kind or expired
var ErrTokenInvalid = goerrors.New("Invalid or expired token.", goerrors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(goerrors.CodeForbidden)

var ErrRefreshTokenMissing = goerrors.New("Refresh token missing", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshMissing).
	WithCode(goerrors.CodeUnauthorized)

var ErrRefreshTokenInvalid = goerrors.New("Invalid refresh token", goerrors.CategoryAuth).
	WithTextCode(TextCodeRefreshInvalid).
	WithCode(goerrors.CodeForbidden)

var ErrUserNotFound = goerrors.New("User not found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeUserNotFound).
	WithCode(goerrors.CodeNotFound)

var ErrNoUsersFound = goerrors.New("No users found", goerrors.CategoryNotFound).
	WithTextCode(TextCodeNoUsersFound).
	WithCode(goerrors.CodeNotFound)

// ErrServer is the only thing clients see for unexpected failures
var ErrServer = goerrors.New("Server error", goerrors.CategoryInternal).
	WithTextCode(TextCodeServerError).
	WithCode(goerrors.CodeInternal)

// ErrNoEmptyString password hashing requires input
var ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
	WithTextCode(TextCodeEmptyPassword).
	WithCode(goerrors.CodeBadRequest)

// ErrMismatchedHashAndPassword password does not match the stored hash
var ErrMismatchedHashAndPassword = goerrors.New("password does not match", goerrors.CategoryAuth).
	WithTextCode(TextCodePasswordMismatch).
	WithCode(goerrors.CodeUnauthorized)

// NewValidationError builds a 400 error with a client facing message
func NewValidationError(message string, err error) *goerrors.Error {
	if err == nil {
		return goerrors.New(message, goerrors.CategoryValidation).
			WithTextCode(TextCodeValidation).
			WithCode(goerrors.CodeBadRequest)
	}
	return goerrors.Wrap(err, goerrors.CategoryValidation, message).
		WithTextCode(TextCodeValidation).
		WithCode(goerrors.CodeBadRequest)
}

// StatusForCategory is the fallback status for errors created without a code
func StatusForCategory(category goerrors.Category) int {
	switch category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput, goerrors.CategoryConflict:
		return goerrors.CodeBadRequest
	case goerrors.CategoryAuth:
		return goerrors.CodeUnauthorized
	case goerrors.CategoryNotFound:
		return goerrors.CodeNotFound
	default:
		return goerrors.CodeInternal
	}
}
