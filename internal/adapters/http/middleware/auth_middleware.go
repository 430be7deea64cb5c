package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"

	"conveyease/internal/config"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/workflow"
	"conveyease/internal/pkg/jwt"
	"conveyease/internal/pkg/response"
)

// Locals keys set by AuthMiddleware
const (
	LocalUserID = "userID"
	LocalName   = "name"
	LocalRole   = "role"
)

// AuthMiddleware creates authentication middleware
func AuthMiddleware(cfg *config.Config) fiber.Handler {
	return func(c *fiber.Ctx) error {
		accessToken := tokenFrom(c)
		if accessToken == "" {
			return response.Unauthorized(c, "Access token required")
		}

		claims, err := jwt.ValidateAccessToken(accessToken, cfg.JWT.Secret)
		if err != nil {
			if errors.Is(err, jwt.ErrTokenExpired) {
				return response.Unauthorized(c, "Access token expired")
			}
			return response.Unauthorized(c, "Invalid access token")
		}

		role := domain.Role(claims.Role)
		if !role.IsValid() {
			return response.Unauthorized(c, "Invalid access token")
		}

		c.Locals(LocalUserID, claims.UserID)
		c.Locals(LocalName, claims.Name)
		c.Locals(LocalRole, role)

		return c.Next()
	}
}

// tokenFrom reads the access token from the cookie, then the
// Authorization header
func tokenFrom(c *fiber.Ctx) string {
	if token := c.Cookies("access_token"); token != "" {
		return token
	}
	authHeader := c.Get("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimPrefix(authHeader, "Bearer ")
	}
	return ""
}

// RoleMiddleware creates role-based authorization middleware
func RoleMiddleware(allowedRoles ...domain.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, ok := c.Locals(LocalRole).(domain.Role)
		if !ok {
			return response.Unauthorized(c, "Unauthorized")
		}

		for _, allowedRole := range allowedRoles {
			if role == allowedRole {
				return c.Next()
			}
		}

		return response.Forbidden(c, "You don't have permission to access this resource")
	}
}

// ManagementOnly allows only the management role
func ManagementOnly() fiber.Handler {
	return RoleMiddleware(domain.RoleManagement)
}

// Actor returns the authenticated caller. ok is false outside AuthMiddleware.
func Actor(c *fiber.Ctx) (workflow.Actor, bool) {
	id, _ := c.Locals(LocalUserID).(string)
	role, _ := c.Locals(LocalRole).(domain.Role)
	if id == "" || role == "" {
		return workflow.Actor{}, false
	}
	return workflow.Actor{ID: id, Role: role}, true
}
