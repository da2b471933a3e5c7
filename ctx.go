package auth

import (
	"context"

	"github.com/gofiber/fiber/v2"
)

// DefaultContextKey is the fiber locals key the auth middleware stores claims under
const DefaultContextKey = "user"

var claimsCtxKey = &contextKey{"claims"}

type contextKey struct {
	name string
}

// WithClaimsContext sets the Claims in the given context
func WithClaimsContext(r context.Context, claims *Claims) context.Context {
	return context.WithValue(r, claimsCtxKey, claims)
}

// GetClaims extracts the Claims from the standard context
func GetClaims(ctx context.Context) (*Claims, bool) {
	raw, ok := ctx.Value(claimsCtxKey).(*Claims)
	return raw, ok && raw != nil
}

// GetFiberClaims extracts the Claims stored by the auth middleware,
// falling back to the request user context.
func GetFiberClaims(c *fiber.Ctx, key string) (*Claims, bool) {
	if key == "" {
		key = DefaultContextKey
	}
	if claims, ok := c.Locals(key).(*Claims); ok && claims != nil {
		return claims, true
	}
	return GetClaims(c.UserContext())
}
