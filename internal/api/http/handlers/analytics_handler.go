package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/Elmamis69/ticket-master-api/internal/api/dto"
	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/service"
	apperrors "github.com/Elmamis69/ticket-master-api/pkg/util"
)

// AnalyticsHandler exposes dashboard and agent statistics.
type AnalyticsHandler struct {
	analytics *service.AnalyticsService
}

// NewAnalyticsHandler builds handler.
func NewAnalyticsHandler(analyticsService *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analyticsService}
}

// Dashboard handles GET /api/v1/analytics/dashboard?days=N.
func (h *AnalyticsHandler) Dashboard(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	days := service.DefaultDashboardDays
	if raw := c.Query("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return apperrors.NewValidationError("validation failed", map[string]any{"days": "must be an integer"})
		}
		days = parsed
	}

	dashboard, err := h.analytics.Dashboard(c.UserContext(), actor, days)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewDashboardResponse(dashboard)})
}

// AgentStats handles GET /api/v1/analytics/agent/:id.
func (h *AnalyticsHandler) AgentStats(c *fiber.Ctx) error {
	actor, err := auth.ActorFromContext(c)
	if err != nil {
		return err
	}
	stats, err := h.analytics.AgentStats(c.UserContext(), actor, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.NewAgentStatsResponse(stats)})
}
