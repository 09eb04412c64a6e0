package middleware

import (
	"strings"

	"subcanvas/internal/models"
	"subcanvas/internal/services"

	"github.com/gofiber/fiber/v2"
)

const userLocalKey = "user"

// CurrentUser returns the authenticated user stored by AuthRequired or
// AuthOptional, nil when the request is anonymous.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(userLocalKey).(*models.User)
	return user
}

// AuthRequired is a Fiber middleware that checks for a valid bearer token.
// The user named by the claims is re-fetched and must still exist and be
// ACTIVE, so bans and deletions take effect immediately.
func AuthRequired(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, errMsg := resolveUser(c, authService)
		if user == nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"message": errMsg,
			})
		}
		c.Locals(userLocalKey, user)
		return c.Next()
	}
}

// AuthOptional attaches the authenticated user when a valid token is
// present but lets anonymous requests through. Used by the report endpoint.
func AuthOptional(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if user, _ := resolveUser(c, authService); user != nil {
			c.Locals(userLocalKey, user)
		}
		return c.Next()
	}
}

// RoleRequired denies access unless the authenticated user's role is one of
// roles. With no roles declared everything passes.
func RoleRequired(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if len(roles) == 0 {
			return c.Next()
		}
		user := CurrentUser(c)
		if user == nil {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
				"message": "Access denied",
			})
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"message": "Access denied",
		})
	}
}

// resolveUser extracts and validates the bearer token, then re-fetches the
// user by the (id, email) claim pair. Returns nil plus a reason on failure.
func resolveUser(c *fiber.Ctx, authService *services.AuthService) (*models.User, string) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, "Authorization header is required"
	}

	parts := strings.SplitN(authHeader, " ", 2)
	if !(len(parts) == 2 && parts[0] == "Bearer") {
		return nil, "Authorization header format must be 'Bearer <token>'"
	}

	claims, err := authService.ValidateToken(parts[1])
	if err != nil {
		return nil, "Invalid or expired token"
	}

	sub, _ := claims["sub"].(string)
	email, _ := claims["email"].(string)
	if sub == "" || email == "" {
		return nil, "Invalid token claims"
	}

	user, err := authService.GetActiveUser(sub, email)
	if err != nil {
		return nil, "Account no longer active"
	}
	return user, ""
}
