package api

import (
	"strings"

	domain "github.com/example/task-manager/domain/user"
	"github.com/example/task-manager/modules/auth"
	"github.com/gofiber/fiber/v2"
)

const (
	// UserContextKey is the key used to store user claims in the Fiber context.
	UserContextKey = "user"
)

// AuthMiddleware creates a middleware that validates JWT tokens.
func AuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
				Error:   "unauthorized",
				Message: "Authorization header is required",
			})
		}

		claims, res := validateBearer(c, authAdapter, authHeader)
		if claims == nil {
			return res
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// OptionalAuthMiddleware validates a bearer token when one is present but
// lets unauthenticated requests through. Task routes use this so the
// service can fall back to the shared local store for anonymous callers.
// A token that is present but invalid is still rejected.
func OptionalAuthMiddleware(authAdapter auth.AuthPort) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Next()
		}

		claims, res := validateBearer(c, authAdapter, authHeader)
		if claims == nil {
			return res
		}

		c.Locals(UserContextKey, claims)
		return c.Next()
	}
}

// validateBearer checks the Authorization header against the auth module.
// On failure the 401 response has already been written; claims is nil and
// the second return value is the handler result to propagate.
func validateBearer(c *fiber.Ctx, authAdapter auth.AuthPort, authHeader string) (*domain.Claims, error) {
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid authorization header format. Use: Bearer <token>",
		})
	}

	token := strings.TrimPrefix(authHeader, "Bearer ")
	if token == "" {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Token is required",
		})
	}

	claims, err := authAdapter.ValidateToken(c.UserContext(), token)
	if err != nil {
		return nil, c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired token",
		})
	}

	return claims, nil
}

// userID extracts the authenticated user id from the request context.
// Empty means the caller is anonymous and task operations target the
// shared local store.
func userID(c *fiber.Ctx) string {
	claims, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		return ""
	}
	return claims.UserID
}
