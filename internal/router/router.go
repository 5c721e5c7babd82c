package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"go-todo-api/internal/config"
	"go-todo-api/internal/handler"
	"go-todo-api/internal/middleware"
)

type Handlers struct {
	Auth   *handler.AuthHandler
	Todo   *handler.TodoHandler
	Health *handler.HealthHandler
}

func New(cfg *config.Config, authMiddleware *middleware.AuthMiddleware, h Handlers) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.Logging)
	r.Use(middleware.CORS(cfg.CORSOrigins, cfg.AuthHeader))
	r.Use(middleware.SecurityHeaders)
	r.Use(rateLimitMiddleware.Handler)
	r.Use(middleware.Timeout(cfg.RequestTimeout))

	r.Get("/health", h.Health.Check)

	r.Route("/users", func(users chi.Router) {
		users.Post("/", h.Auth.Register)
		users.Post("/login", h.Auth.Login)
		users.With(authMiddleware.RequireAuth).Delete("/login", h.Auth.Logout)
		users.With(authMiddleware.RequireAuth).Delete("/sessions", h.Auth.LogoutAll)
		users.With(authMiddleware.RequireAuth).Get("/me", h.Auth.Me)
	})

	r.Route("/todos", func(todos chi.Router) {
		todos.Use(authMiddleware.RequireAuth)
		todos.Get("/", h.Todo.List)
		todos.Post("/", h.Todo.Create)
		todos.Get("/{todo_id}", h.Todo.Get)
		todos.Put("/{todo_id}", h.Todo.Update)
		todos.Delete("/{todo_id}", h.Todo.Delete)
	})

	return r
}
