package middleware

import (
	"strings"

	"tourly/internal/apperrors"
	"tourly/internal/models"
	"tourly/internal/services"

	"github.com/gofiber/fiber/v2"
)

// UserKey is the locals key under which the authenticated user is stored.
const UserKey = "user"

// tokenFromRequest extracts the bearer token from the Authorization header
// or the jwt cookie.
func tokenFromRequest(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		// Expected format: "Bearer <token>"
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return parts[1]
		}
	}
	return c.Cookies("jwt")
}

// Protect is a Fiber middleware that only lets verified users through. On
// success the resolved user is stored in the request locals.
func Protect(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString == "" {
			return apperrors.Unauthorized("You are not logged in! Please log in to get access")
		}

		user, err := authService.UserFromToken(tokenString)
		if err != nil {
			return err
		}

		c.Locals(UserKey, user)
		return c.Next()
	}
}

// IsLoggedIn runs the same verification as Protect but never rejects the
// request; any failure just proceeds as anonymous. Used on view routes.
func IsLoggedIn(authService *services.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		tokenString := tokenFromRequest(c)
		if tokenString != "" {
			if user, err := authService.UserFromToken(tokenString); err == nil {
				c.Locals(UserKey, user)
			}
		}
		return c.Next()
	}
}

// RestrictTo allows only the listed roles through. Must run after Protect.
func RestrictTo(roles ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := CurrentUser(c)
		if user == nil {
			return apperrors.Unauthorized("You are not logged in! Please log in to get access")
		}
		for _, role := range roles {
			if user.Role == role {
				return c.Next()
			}
		}
		return apperrors.Forbidden("You do not have permission to perform this action")
	}
}

// CurrentUser returns the authenticated user from the request locals, or nil.
func CurrentUser(c *fiber.Ctx) *models.User {
	user, _ := c.Locals(UserKey).(*models.User)
	return user
}
