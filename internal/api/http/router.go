package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/parking-service/internal/api/http/handlers"
	"github.com/spec-kit/parking-service/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Health         *handlers.HealthHandler
	Auth           *handlers.AuthHandler
	Admin          *handlers.AdminHandler
	Vehicles       *handlers.VehicleHandler
	AuthMiddleware *auth.AuthMiddleware
}

// RegisterRoutes wires HTTP routes.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	api := app.Group("/api")

	api.Post("/auth/login", cfg.Auth.Login)
	// No session yet when requesting access: the login was just refused.
	api.Post("/staff/request-access", cfg.Admin.RequestAccess)

	authed := api.Group("", cfg.AuthMiddleware.Handle)
	authed.Post("/auth/logout", auth.RequireAnyRole(), cfg.Auth.Logout)
	authed.Post("/auth/change-password", auth.RequireAnyRole(), cfg.Auth.ChangePassword)

	admin := authed.Group("/admin", auth.RequireAdmin())
	admin.Get("/staff", cfg.Admin.ListStaff)
	admin.Post("/create-staff", cfg.Admin.CreateStaff)
	admin.Put("/toggle-access", cfg.Admin.ToggleAccess)

	staff := authed.Group("/staff", auth.RequireStaff())
	staff.Get("/vehicles", cfg.Vehicles.List)
	staff.Post("/vehicle/entry", cfg.Vehicles.Entry)
	staff.Post("/vehicle/exit", cfg.Vehicles.Exit)
}
