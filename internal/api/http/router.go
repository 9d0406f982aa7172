package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/amats-service/internal/api/http/handlers"
	"github.com/spec-kit/amats-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Users          *handlers.UsersHandler
	Countdown      *handlers.CountdownHandler
	Admin          *handlers.AdminHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)
	app.Get("/metrics", cfg.Health.Metrics)

	authGroup := app.Group("/auth")
	authGroup.Post("/users/register", cfg.Users.Register)
	authGroup.Post("/users/login", cfg.Users.Login)
	// countdown routes are scoped by the X-Countdown-Token issued with a blocked login
	authGroup.Get("/countdown/:email", cfg.Countdown.Get)
	authGroup.Delete("/countdown/:email", cfg.Countdown.Dismiss)

	admin := app.Group("/admin", cfg.AuthMiddleware.Handle, auth.RequireAdmin())
	admin.Get("/accounts", cfg.Admin.ListAccounts)
	admin.Post("/accounts/:email/suspend", cfg.Admin.Suspend)
	admin.Post("/accounts/:email/activate", cfg.Admin.Activate)
	admin.Delete("/accounts/:email", cfg.Admin.Delete)
	admin.Get("/audit", cfg.Admin.Audit)
}
