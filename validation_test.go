package auth_test

import (
	"testing"

	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	auth "github.com/Veras-D/auth-lab"
)

func TestDecodeAndValidate_Register(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{"valid", `{"username":"testuser","email":"test@example.com","password":"Test1234!"}`, ""},
		{"empty body", ``, "request body is required"},
		{"whitespace body", "  \n", "request body is required"},
		{"not json", `username=testuser`, "invalid request body"},
		{"unknown field", `{"username":"testuser","email":"test@example.com","password":"Test1234!","role":"admin"}`, "invalid request body"},
		{"wrong type", `{"username":42,"email":"test@example.com","password":"Test1234!"}`, "invalid request body"},
		{"missing username", `{"email":"test@example.com","password":"Test1234!"}`, "username: cannot be blank"},
		{"short username", `{"username":"ab","email":"test@example.com","password":"Test1234!"}`, "username: the length must be between 3 and 30"},
		{"bad username chars", `{"username":"bad name","email":"test@example.com","password":"Test1234!"}`, "username: must be in a valid format"},
		{"bad email", `{"username":"testuser","email":"not-an-email","password":"Test1234!"}`, "email: must be a valid email address"},
		{"short password", `{"username":"testuser","email":"test@example.com","password":"12345"}`, "password: the length must be between 6 and 128"},
		{"first field in key order wins", `{"username":"","email":"","password":""}`, "email: cannot be blank"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			payload, err := auth.DecodeAndValidate[auth.RegisterRequest]([]byte(tt.body))
			if tt.wantErr == "" {
				require.NoError(t, err)
				assert.Equal(t, "testuser", payload.Username)
				return
			}

			require.Error(t, err)
			status, message := auth.ResolveError(err)
			assert.Equal(t, 400, status)
			assert.Equal(t, tt.wantErr, message)
		})
	}
}

func TestDecodeAndValidate_Login(t *testing.T) {
	_, err := auth.DecodeAndValidate[auth.LoginRequest]([]byte(`{"email":"test@example.com","password":"x"}`))
	assert.NoError(t, err)

	_, err = auth.DecodeAndValidate[auth.LoginRequest]([]byte(`{"email":"test@example.com"}`))
	require.Error(t, err)
	_, message := auth.ResolveError(err)
	assert.Equal(t, "password: cannot be blank", message)
}

func TestDecodeAndValidate_Update(t *testing.T) {
	payload, err := auth.DecodeAndValidate[auth.UpdateUserRequest]([]byte(`{"username":"renamed"}`))
	require.NoError(t, err)

	update := payload.ToUserUpdate()
	require.NotNil(t, update.Username)
	assert.Equal(t, "renamed", *update.Username)
	assert.Nil(t, update.Email)
	assert.Nil(t, update.Password)
	assert.False(t, update.Empty())

	_, err = auth.DecodeAndValidate[auth.UpdateUserRequest]([]byte(`{}`))
	require.Error(t, err)
	status, _ := auth.ResolveError(err)
	assert.Equal(t, 400, status)

	_, err = auth.DecodeAndValidate[auth.UpdateUserRequest]([]byte(`{"email":"nope"}`))
	require.Error(t, err)
	_, message := auth.ResolveError(err)
	assert.Equal(t, "email: must be a valid email address", message)

	_, err = auth.DecodeAndValidate[auth.UpdateUserRequest]([]byte(`{"password":""}`))
	assert.Error(t, err)
}

func TestValidateID(t *testing.T) {
	assert.NoError(t, auth.ValidateID(uuid.NewString()))

	err := auth.ValidateID("123")
	require.Error(t, err)

	var rich *goerrors.Error
	require.True(t, goerrors.As(err, &rich))
	assert.Equal(t, goerrors.CategoryValidation, rich.Category)
	assert.Equal(t, auth.TextCodeValidation, rich.TextCode)
	assert.Equal(t, "id: must be a valid id", rich.Message)
}

func TestRegisterUserMessage_Validate(t *testing.T) {
	msg := auth.RegisterUserMessage{Username: "testuser", Email: "test@example.com", Password: "Test1234!"}
	assert.NoError(t, msg.Validate())
	assert.Equal(t, "user.register", msg.Type())

	msg.Email = ""
	assert.Error(t, msg.Validate())
}
