package handlers

import (
	"github.com/gofiber/fiber/v2"

	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/core/domain"
	"conveyease/internal/core/services"
	"conveyease/internal/pkg/response"
)

// UserHandler handles user directory endpoints
type UserHandler struct {
	userService *services.UserService
}

// NewUserHandler creates a new user handler
func NewUserHandler(userService *services.UserService) *UserHandler {
	return &UserHandler{userService: userService}
}

func toUserResponses(users []*domain.User) []*services.UserResponse {
	out := make([]*services.UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, services.ToUserResponse(u))
	}
	return out
}

// ListUsers handles listing all users
// @Summary List all users
// @Description Accounts and management only
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role"
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users [get]
func (h *UserHandler) ListUsers(c *fiber.Ctx) error {
	users, err := h.userService.List(c.Context())
	if err != nil {
		return response.FromError(c, err)
	}

	if raw := c.Query("role"); raw != "" {
		role := domain.Role(raw)
		if !role.IsValid() {
			return response.BadRequest(c, "Invalid role")
		}
		filtered := make([]*domain.User, 0, len(users))
		for _, u := range users {
			if u.Role == role {
				filtered = append(filtered, u)
			}
		}
		users = filtered
	}

	return response.Success(c, "Users retrieved successfully", toUserResponses(users))
}

// GetTeam handles listing the caller's direct reports
// @Summary My team
// @Description Employees reporting to the calling supervisor
// @Tags Users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Failure 403 {object} response.Response
// @Router /users/team [get]
func (h *UserHandler) GetTeam(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	team, err := h.userService.Team(c.Context(), actor.ID)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Team retrieved successfully", toUserResponses(team))
}
