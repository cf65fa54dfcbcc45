package middleware

import (
	"context"
	"strings"

	"coursehub/backend/models"
	"coursehub/backend/services"
	"coursehub/backend/utils"

	"github.com/gofiber/fiber/v2"
)

const (
	identityKey = "identity"
	TokenCookie = "token"
)

type TokenVerifier interface {
	Verify(ctx context.Context, token string) (*utils.Claims, error)
}

type IdentityResolver interface {
	ResolveIdentity(ctx context.Context, claims *utils.Claims) (*services.Identity, error)
}

// AuthMiddleware requires a valid, unrevoked session token from the
// Authorization header or the token cookie, then loads the caller.
func AuthMiddleware(tokens TokenVerifier, users IdentityResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := extractToken(c)
		if token == "" {
			return utils.Unauthenticated("Not authorized, no token")
		}

		claims, err := tokens.Verify(c.UserContext(), token)
		if err != nil {
			return err
		}

		identity, err := users.ResolveIdentity(c.UserContext(), claims)
		if err != nil {
			return err
		}

		c.Locals(identityKey, identity)
		return c.Next()
	}
}

// RoleMiddleware must run after AuthMiddleware.
func RoleMiddleware(role string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		identity, ok := CurrentIdentity(c)
		if !ok {
			return utils.Unauthenticated("Not authorized, no token")
		}
		if identity.Role != role {
			return utils.ForbiddenError(forbiddenMessage(role))
		}
		return c.Next()
	}
}

func AdminMiddleware() fiber.Handler {
	return RoleMiddleware(models.RoleAdmin)
}

func StudentMiddleware() fiber.Handler {
	return RoleMiddleware(models.RoleStudent)
}

// CurrentIdentity returns the caller attached by AuthMiddleware.
func CurrentIdentity(c *fiber.Ctx) (*services.Identity, bool) {
	identity, ok := c.Locals(identityKey).(*services.Identity)
	return identity, ok && identity != nil
}

func extractToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	return c.Cookies(TokenCookie)
}

func forbiddenMessage(role string) string {
	switch role {
	case models.RoleAdmin:
		return "Forbidden - Admin access required"
	case models.RoleStudent:
		return "Access forbidden: Only students can enroll and view the courses."
	default:
		return "Access forbidden"
	}
}
