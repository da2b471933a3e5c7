package auth

import (
	"github.com/Veras-D/auth-lab/middleware/jwtware"
)

// TokenValidatorFunc adapts a function into a jwtware.TokenValidator.
type TokenValidatorFunc func(tokenString string) (jwtware.AuthClaims, error)

// Validate satisfies the jwtware.TokenValidator interface.
func (f TokenValidatorFunc) Validate(tokenString string) (jwtware.AuthClaims, error) {
	if f == nil {
		return nil, ErrTokenInvalid
	}
	return f(tokenString)
}

// AccessTokenValidator accepts only access tokens issued by ts
func AccessTokenValidator(ts TokenService) jwtware.TokenValidator {
	return TokenValidatorFunc(func(tokenString string) (jwtware.AuthClaims, error) {
		claims, err := ts.VerifyKind(tokenString, TokenKindAccess)
		if err != nil {
			return nil, err
		}
		return claims, nil
	})
}
