package auth_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	auth "github.com/Veras-D/auth-lab"
)

func TestClaimsContext(t *testing.T) {
	_, ok := auth.GetClaims(context.Background())
	assert.False(t, ok)

	claims := &auth.Claims{UID: "user-1", Kind: auth.TokenKindAccess}
	ctx := auth.WithClaimsContext(context.Background(), claims)

	got, ok := auth.GetClaims(ctx)
	require.True(t, ok)
	assert.Equal(t, "user-1", got.UserID())

	_, ok = auth.GetClaims(auth.WithClaimsContext(context.Background(), nil))
	assert.False(t, ok)
}

func TestLoggingActivitySink(t *testing.T) {
	logger := &recordingLogger{}
	sink := auth.NewLoggingActivitySink(logger)

	err := sink.Record(context.Background(), auth.ActivityEvent{
		EventType: auth.ActivityEventRegistered,
		UserID:    "user-1",
		Metadata:  map[string]any{"username": "testuser"},
	})
	require.NoError(t, err)

	lines := logger.Lines()
	require.Len(t, lines, 1)
	assert.Contains(t, lines[0], "user.registered")
	assert.Contains(t, lines[0], "user-1")
	assert.Contains(t, lines[0], "testuser")
}

func TestActivitySinkFunc_Nil(t *testing.T) {
	var fn auth.ActivitySinkFunc
	assert.NoError(t, fn.Record(context.Background(), auth.ActivityEvent{}))
}

func TestLogMailer(t *testing.T) {
	logger := &recordingLogger{}
	mailer := auth.NewLogMailer("noreply@example.com", logger)

	require.NoError(t, mailer.SendEmail(context.Background(), "test@example.com", "Hello", "<p>hi</p>"))
	require.Len(t, logger.Lines(), 1)
	assert.Contains(t, logger.Lines()[0], "test@example.com")

	err := mailer.SendEmail(context.Background(), "", "Hello", "<p>hi</p>")
	status, _ := auth.ResolveError(err)
	assert.Equal(t, 400, status)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, mailer.SendEmail(ctx, "test@example.com", "Hello", ""), context.Canceled)
}

func TestSlogLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := auth.NewSlogLogger(&buf, "json", "warn")

	logger.Info("hidden")
	logger.With("component", "auth").Warn("shown", "user_id", "user-1")

	out := strings.TrimSpace(buf.String())
	require.NotEmpty(t, out)
	assert.NotContains(t, out, "hidden")

	var line map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &line))
	assert.Equal(t, "shown", line["msg"])
	assert.Equal(t, "auth", line["component"])
	assert.Equal(t, "user-1", line["user_id"])
}

func TestRegisterUserHandler_Execute(t *testing.T) {
	creds := new(MockCredentials)
	sink := &capturingSink{}

	user := &auth.User{ID: uuid.New(), Username: "testuser", Email: "test@example.com"}
	creds.On("Create", mock.Anything, "testuser", "test@example.com", "Test1234!").Return(user, nil)

	handler := auth.NewRegisterUserHandler(creds, &recordingLogger{}, sink)

	got, err := handler.Execute(context.Background(), auth.RegisterUserMessage{
		Username: "testuser",
		Email:    "test@example.com",
		Password: "Test1234!",
	})
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, []auth.ActivityEventType{auth.ActivityEventRegistered}, sink.Types())
}

func TestRegisterUserHandler_Errors(t *testing.T) {
	creds := new(MockCredentials)
	handler := auth.NewRegisterUserHandler(creds, &recordingLogger{}, nil)

	creds.On("Create", mock.Anything, "taken", mock.Anything, mock.Anything).Return(nil, auth.ErrEmailTaken).Once()
	_, err := handler.Execute(context.Background(), auth.RegisterUserMessage{Username: "taken"})
	assert.True(t, errors.Is(err, auth.ErrEmailTaken))

	boom := errors.New("disk full")
	creds.On("Create", mock.Anything, "boom", mock.Anything, mock.Anything).Return(nil, boom).Once()
	_, err = handler.Execute(context.Background(), auth.RegisterUserMessage{Username: "boom"})
	assert.True(t, errors.Is(err, boom))
	status, message := auth.ResolveError(err)
	assert.Equal(t, 500, status)
	assert.Equal(t, "Server error", message)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = handler.Execute(ctx, auth.RegisterUserMessage{Username: "late"})
	assert.ErrorIs(t, err, context.Canceled)
}
