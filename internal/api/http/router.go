package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/task-manager/internal/api/http/handlers"
	"github.com/spec-kit/task-manager/internal/auth"
)

// RouteConfig bundles dependencies for route registration.
type RouteConfig struct {
	Gate   *auth.Gate
	Health *handlers.HealthHandler
	Auth   *handlers.AuthHandler
	Tasks  *handlers.TasksHandler
	Pages  *handlers.PagesHandler
}

// RegisterRoutes wires the gate and the HTTP routes. The gate runs before
// every route so downstream handlers can consume the attached identity
// without re-verifying anything.
func RegisterRoutes(app *fiber.App, cfg RouteConfig) {
	app.Use(cfg.Gate.Handle)

	app.Get("/health/live", cfg.Health.Live)
	app.Get("/health/ready", cfg.Health.Ready)

	app.Get("/", cfg.Pages.Root)
	app.Get(auth.LoginPath, cfg.Pages.Login)
	app.Get(auth.RegisterPath, cfg.Pages.Register)
	app.Get(auth.DashboardPath, cfg.Pages.Dashboard)

	api := app.Group("/api")

	authGroup := api.Group("/auth")
	authGroup.Post("/register", cfg.Auth.Register)
	authGroup.Post("/login", cfg.Auth.Login)
	authGroup.Post("/logout", cfg.Auth.Logout)
	authGroup.Get("/me", cfg.Auth.Me)

	api.Get("/tasks", cfg.Tasks.List)
	api.Post("/tasks", cfg.Tasks.Create)
	api.Get("/tasks/:id", cfg.Tasks.Get)
	api.Put("/tasks/:id", cfg.Tasks.Update)
	api.Delete("/tasks/:id", cfg.Tasks.Delete)
}
