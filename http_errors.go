package auth

import (
	"errors"
	"net/http"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
)

// ErrorResponse is the body of every error response
type ErrorResponse struct {
	Error string `json:"error"`
}

// NewErrorHandler returns the fiber error handler shared by all routes.
// Rich errors keep their status and message, anything unexpected becomes
// a 500 with a generic message and is logged.
func NewErrorHandler(logger Logger) fiber.ErrorHandler {
	logger = normalizeLogger(logger)
	return func(c *fiber.Ctx, err error) error {
		status, message := ResolveError(err)
		if status >= http.StatusInternalServerError {
			logger.Error("request failed",
				"method", c.Method(),
				"path", c.Path(),
				"error", err,
			)
		}
		return c.Status(status).JSON(ErrorResponse{Error: message})
	}
}

// ResolveError maps err to the status code and client message to send
func ResolveError(err error) (int, string) {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		status := richErr.Code
		if status == 0 {
			status = StatusForCategory(richErr.Category)
		}
		if status >= http.StatusInternalServerError {
			return http.StatusInternalServerError, ErrServer.Message
		}
		return status, richErr.Message
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		if fiberErr.Code >= http.StatusInternalServerError {
			return http.StatusInternalServerError, ErrServer.Message
		}
		return fiberErr.Code, fiberErr.Message
	}

	return http.StatusInternalServerError, ErrServer.Message
}
