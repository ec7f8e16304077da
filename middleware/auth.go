package middleware

import (
	"context"
	"strings"

	"competition-system/models"

	"github.com/gofiber/fiber/v2"
)

const userKey = "user"

// CredentialResolver turns a bearer token into the user it was issued to.
type CredentialResolver interface {
	ResolveCredential(ctx context.Context, token string) (*models.User, error)
}

// RequireUser rejects requests without a valid bearer token and stores the resolved
// user for handlers.
func RequireUser(resolver CredentialResolver) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token, ok := bearerToken(c.Get(fiber.HeaderAuthorization))
		if !ok {
			c.Set(fiber.HeaderWWWAuthenticate, "Bearer")
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authenticated"})
		}

		user, err := resolver.ResolveCredential(c.UserContext(), token)
		if err != nil {
			return err
		}

		c.Locals(userKey, user)
		return c.Next()
	}
}

// CurrentUser returns the user stored by RequireUser, or nil on public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userKey).(*models.User)
	return user
}

func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(strings.TrimSpace(header), " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
