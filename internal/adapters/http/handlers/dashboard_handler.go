package handlers

import (
	"github.com/gofiber/fiber/v2"

	"conveyease/internal/adapters/http/middleware"
	"conveyease/internal/core/services"
	"conveyease/internal/pkg/response"
)

// DashboardHandler handles dashboard endpoints
type DashboardHandler struct {
	dashboardService *services.DashboardService
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(dashboardService *services.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// GetDashboard returns the caller's summary
// @Summary Dashboard
// @Description Counts and amounts over visible bills plus the caller's action queue
// @Tags Dashboard
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Response
// @Failure 401 {object} response.Response
// @Router /dashboard [get]
func (h *DashboardHandler) GetDashboard(c *fiber.Ctx) error {
	actor, ok := middleware.Actor(c)
	if !ok {
		return response.Unauthorized(c, "Unauthorized")
	}

	summary, err := h.dashboardService.Summary(c.Context(), actor)
	if err != nil {
		return response.FromError(c, err)
	}

	return response.Success(c, "Dashboard retrieved successfully", summary)
}
