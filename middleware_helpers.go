package auth

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"github.com/Veras-D/auth-lab/middleware/jwtware"
)

// ValidationListener aliases the jwtware listener so consumers can use auth helpers directly.
type ValidationListener = jwtware.ValidationListener

// ContextEnricherAdapter stores *Claims in the standard context
func ContextEnricherAdapter(c context.Context, claims jwtware.AuthClaims) context.Context {
	authClaims, ok := claims.(*Claims)
	if !ok {
		return c
	}
	return WithClaimsContext(c, authClaims)
}

// RegisterValidationListeners appends listeners to a jwtware.Config in a safe, reusable way.
func RegisterValidationListeners(cfg *jwtware.Config, listeners ...ValidationListener) {
	if cfg == nil || len(listeners) == 0 {
		return
	}
	cfg.ValidationListeners = append(cfg.ValidationListeners, listeners...)
}

// ProtectedRoute builds the bearer token middleware for access tokens.
// Missing tokens fail with ErrTokenMissing (401), rejected ones with
// ErrTokenInvalid (403).
func ProtectedRoute(ts TokenService, listeners ...ValidationListener) fiber.Handler {
	cfg := jwtware.Config{
		ContextKey:      DefaultContextKey,
		AuthScheme:      "Bearer",
		TokenValidator:  AccessTokenValidator(ts),
		ContextEnricher: ContextEnricherAdapter,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				return ErrTokenMissing
			}
			return ErrTokenInvalid
		},
	}
	RegisterValidationListeners(&cfg, listeners...)
	return jwtware.New(cfg)
}
