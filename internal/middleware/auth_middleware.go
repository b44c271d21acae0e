package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/hiremind/hiremind-api/internal/auth"
	"github.com/hiremind/hiremind-api/internal/config"
	"github.com/hiremind/hiremind-api/internal/util"
)

const identityKey = "identity"

// Authenticate resolves the bearer token into an auth.Identity stored on the
// request context. Requests without a valid token are rejected with 401.
func Authenticate(cfg *config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		header := c.Get(fiber.HeaderAuthorization)
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "Missing bearer token",
			})
		}

		identity, err := auth.Parse(cfg.JWTSecret, cfg.Issuer, strings.TrimSpace(token))
		if err != nil {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "Invalid or expired token",
			}, err)
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RequireRole lets through only identities with the given role.
func RequireRole(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := IdentityFrom(c)
		if !ok {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusUnauthorized,
				Message: "Authentication required",
			})
		}
		if identity.Role != role {
			return util.ErrorResponse(c, util.ErrorResponseFormat{
				Code:    fiber.StatusForbidden,
				Message: "You are not allowed to perform this action",
			})
		}
		return c.Next()
	}
}

func IdentityFrom(c *fiber.Ctx) (auth.Identity, bool) {
	identity, ok := c.Locals(identityKey).(auth.Identity)
	return identity, ok
}
