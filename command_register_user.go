package auth

import (
	"context"

	goerrors "github.com/goliatone/go-errors"
)

type RegisterUserMessage struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (e RegisterUserMessage) Type() string { return "user.register" }

// Validate runs the same rules as the register request
func (e RegisterUserMessage) Validate() error {
	return RegisterRequest(e).Validate()
}

// RegisterUserHandler creates users from RegisterUserMessage
type RegisterUserHandler struct {
	credentials  Credentials
	logger       Logger
	activitySink ActivitySink
}

func NewRegisterUserHandler(credentials Credentials, logger Logger, sink ActivitySink) *RegisterUserHandler {
	return &RegisterUserHandler{
		credentials:  credentials,
		logger:       normalizeLogger(logger),
		activitySink: normalizeActivitySink(sink),
	}
}

// Execute registers the user and returns the stored record
func (h *RegisterUserHandler) Execute(ctx context.Context, msg RegisterUserMessage) (*User, error) {
	select {
	case <-ctx.Done():
		return nil, goerrors.Wrap(ctx.Err(), goerrors.CategoryOperation, "context cancelled during user registration")
	default:
	}

	user, err := h.credentials.Create(ctx, msg.Username, msg.Email, msg.Password)
	if err != nil {
		var richErr *goerrors.Error
		if goerrors.As(err, &richErr) {
			return nil, err
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "user registration failed").
			WithTextCode(TextCodeRegistrationFailure)
	}

	emitActivity(ctx, h.activitySink, h.logger, ActivityEventRegistered, user.ID.String(), map[string]any{
		"username": user.Username,
	})

	return user, nil
}
