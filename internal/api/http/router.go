package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Elmamis69/ticket-master-api/internal/api/http/handlers"
	"github.com/Elmamis69/ticket-master-api/internal/auth"
	"github.com/Elmamis69/ticket-master-api/internal/domain"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Tickets        *handlers.TicketsHandler
	Comments       *handlers.CommentsHandler
	Analytics      *handlers.AnalyticsHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/", cfg.Health.Root)
	app.Get("/health", cfg.Health.Health)
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/health/metrics", cfg.Health.Metrics)

	api := app.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Get("/me", cfg.AuthMiddleware.Handle, cfg.Auth.Me)

	tickets := api.Group("/tickets", cfg.AuthMiddleware.Handle)
	tickets.Post("/", cfg.Tickets.Create)
	tickets.Get("/", cfg.Tickets.List)
	tickets.Get("/:id", cfg.Tickets.Get)
	tickets.Put("/:id", cfg.Tickets.Update)
	tickets.Patch("/:id/assign", cfg.Tickets.Assign)
	tickets.Post("/:id/assign", cfg.Tickets.Assign)
	tickets.Delete("/:id", cfg.Tickets.Delete)

	tickets.Post("/:id/comments", cfg.Comments.Create)
	tickets.Get("/:id/comments", cfg.Comments.List)
	tickets.Put("/:id/comments/:commentID", cfg.Comments.Update)
	tickets.Delete("/:id/comments/:commentID", cfg.Comments.Delete)

	analytics := api.Group("/analytics", cfg.AuthMiddleware.Handle, auth.RequireRole(domain.RoleAdmin, domain.RoleAgent))
	analytics.Get("/dashboard", cfg.Analytics.Dashboard)
	analytics.Get("/agent/:id", cfg.Analytics.AgentStats)
}
