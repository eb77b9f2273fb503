package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// Router builds the HTTP routes. allowedOrigins feeds the CORS policy.
func (h *Handlers) Router(allowedOrigins []string) http.Handler {
	mux := chi.NewRouter()
	mux.Use(middleware.RealIP)
	mux.Use(RequestLogger(h.log))
	mux.Use(Recovery(h.log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Authorization", "Content-Type", RequestIDHeader},
		ExposedHeaders: []string{RequestIDHeader},
		MaxAge:         3600,
	}))

	mux.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "Not found")
	})
	mux.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
	})

	mux.Get("/health", h.Health)
	mux.Post("/auth/register", h.Register)
	mux.Post("/auth/login", h.Login)
	mux.Post("/bot/webhook", h.BotWebhook)

	mux.Group(func(api chi.Router) {
		api.Use(h.AuthMiddleware)

		api.Get("/auth/me", h.Me)

		api.Get("/expenses", h.ListExpenses)
		api.Post("/expenses", h.CreateExpense)
		api.Put("/expenses/{id}", h.UpdateExpense)
		api.Delete("/expenses/{id}", h.DeleteExpense)

		api.Get("/categories", h.ListCategories)
		api.Post("/categories", h.CreateCategory)

		api.Get("/stats", h.Statistics)
		api.Post("/ai/analysis", h.Analysis)
	})

	return mux
}
