package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/fastygo/volunteer/api/handler"
)

type Handlers struct {
	Task         *apiHandler.TaskHandler
	Registration *apiHandler.RegistrationHandler
	Search       *apiHandler.SearchHandler
	Health       *apiHandler.HealthHandler
}

func New(handlers Handlers, identity func(fasthttp.RequestHandler) fasthttp.RequestHandler) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	api := r.Group("/api/v1")

	// Public discovery routes
	api.GET("/tasks", handlers.Search.Browse)
	api.GET("/tasks/featured", handlers.Search.Featured)
	api.GET("/tasks/nearby", handlers.Search.Nearby)
	api.GET("/tasks/{id}", handlers.Task.GetTask)
	api.GET("/categories/{category}/tasks", handlers.Search.ByCategory)
	api.GET("/organizations/{id}/tasks", handlers.Search.ByOrganization)

	// Task management
	api.POST("/tasks", identity(handlers.Task.CreateTask))
	api.PUT("/tasks/{id}", identity(handlers.Task.UpdateTask))
	api.DELETE("/tasks/{id}", identity(handlers.Task.DeleteTask))
	api.POST("/tasks/{id}/publish", identity(handlers.Task.Publish))
	api.POST("/tasks/{id}/pause", identity(handlers.Task.Pause))
	api.POST("/tasks/{id}/resume", identity(handlers.Task.Resume))
	api.POST("/tasks/{id}/complete", identity(handlers.Task.Complete))
	api.POST("/tasks/{id}/cancel", identity(handlers.Task.Cancel))

	// Registrations
	api.POST("/tasks/{id}/registrations", identity(handlers.Registration.Register))
	api.DELETE("/tasks/{id}/registrations", identity(handlers.Registration.Unregister))
	api.GET("/tasks/{id}/registrations", identity(handlers.Registration.ListByTask))
	api.GET("/registrations/{id}", identity(handlers.Registration.GetRegistration))
	api.POST("/registrations/{id}/approve", identity(handlers.Registration.Approve))
	api.POST("/registrations/{id}/reject", identity(handlers.Registration.Reject))
	api.POST("/registrations/{id}/complete", identity(handlers.Registration.Complete))
	api.GET("/organizations/{id}/registrations/pending", identity(handlers.Registration.ListPending))

	api.GET("/me/tasks", identity(handlers.Search.Mine))
	api.GET("/me/registrations", identity(handlers.Registration.ListMine))

	return r
}
