// Package auth implements the Auth Lab API: user registration, password
// login, access and refresh tokens, profile lookup and user CRUD.
//
// Credentials:
//   - CredentialStore owns password hashing (bcrypt, cost >= 10). Plaintext
//     passwords are never stored or compared directly, and User.PasswordHash
//     is excluded from every JSON rendering of a record.
//   - Username and email uniqueness is enforced by the store's unique
//     constraints; violations surface as ErrUsernameTaken or ErrEmailTaken.
//
// Tokens:
//   - TokenServiceImpl signs HS256 JWTs carrying {id, kind, iat, exp}. Access
//     tokens live one hour, refresh tokens seven days by default.
//   - Verification failures are uniform: expired, tampered and malformed
//     tokens all yield ErrTokenInvalid.
//   - Refresh mints a new access token and leaves the refresh token valid
//     until it expires. Logout does not revoke anything server side.
//
// HTTP:
//   - NewApp mounts /users and /auth under a prefix ("/api" by default).
//     ProtectedRoute answers 401 when no bearer token is sent and 403 when
//     the token is rejected.
//   - Handlers return errors; NewErrorHandler turns them into
//     {"error": message} with the status of their category. Unexpected
//     failures are logged and sent as 500 "Server error".
package auth
