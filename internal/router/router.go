// Package router sets up the HTTP routes and middleware chains for the
// contractd API. Routes are organized into public catalog endpoints and
// token-authenticated account, template, and contract groups.
package router

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"contractd/internal/handlers"
	"contractd/internal/middleware"
	"contractd/internal/session"
)

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, auth *handlers.Auth, templates *handlers.Templates, contracts *handlers.Contracts) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Login and registration get a tighter rate limit than the rest
		// of the API to slow down credential stuffing.
		loginLimiter := middleware.NewRateLimiter(10, time.Minute)

		r.Group(func(r chi.Router) {
			r.Use(loginLimiter.Middleware)
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
		})

		// Public catalog — anonymous browsing of public templates.
		r.Get("/templates", templates.List)
		r.Get("/templates/categories", templates.Categories)
		r.Get("/templates/popular", templates.Popular)
		r.Get("/templates/highly-rated", templates.HighlyRated)
		r.Get("/templates/{id}", templates.Get)

		// 2FA — requires a token but NOT completed verification.
		r.Post("/2fa/setup", auth.TwoFASetup)
		r.Post("/2fa/verify", auth.TwoFAVerify)

		// Authenticated area.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			// Account
			r.Get("/user", auth.Me)
			r.Post("/logout", auth.Logout)
			r.Put("/profile", auth.UpdateProfile)
			r.Put("/change-password", auth.ChangePassword)

			// Templates (authoring)
			r.Post("/templates", templates.Create)
			r.Put("/templates/{id}", templates.Update)
			r.Delete("/templates/{id}", templates.Delete)
			r.Post("/templates/{id}/clone", templates.Clone)

			// Contracts
			r.Route("/contracts", func(r chi.Router) {
				r.Get("/", contracts.List)
				r.Post("/", contracts.Create)
				r.Get("/statistics", contracts.Statistics)
				r.Get("/{id}", contracts.Get)
				r.Put("/{id}", contracts.Update)
				r.Delete("/{id}", contracts.Delete)
				r.Post("/{id}/sign", contracts.Sign)
				r.Post("/{id}/export", contracts.Export)
			})
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
