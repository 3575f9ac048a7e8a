// Package server assembles the HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"

	"github.com/ayush/portfolio-site/internal/admin"
	"github.com/ayush/portfolio-site/internal/auth"
	"github.com/ayush/portfolio-site/internal/httpx"
	"github.com/ayush/portfolio-site/internal/middleware"
	"github.com/ayush/portfolio-site/internal/models"
	"github.com/ayush/portfolio-site/internal/projects"
	"github.com/ayush/portfolio-site/internal/skills"
)

// Deps are the services the router dispatches to.
type Deps struct {
	Auth        *auth.Service
	Skills      *skills.Service
	Projects    *projects.Service
	Logger      zerolog.Logger
	CORSOrigins []string
}

// NewRouter builds the chi router with every API route mounted under /api.
func NewRouter(d Deps) http.Handler {
	authHandler := auth.NewHandler(d.Auth)
	skillHandler := skills.NewHandler(d.Skills)
	projectHandler := projects.NewHandler(d.Projects)
	adminHandler := admin.NewHandler(d.Auth)

	signedIn := middleware.RequireAuth(d.Auth, "")
	adminOnly := middleware.RequireAuth(d.Auth, models.RoleAdmin)

	r := chi.NewRouter()
	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(middleware.RequestLogger(d.Logger))
	r.Use(chimw.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   d.CORSOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httpx.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/api", func(r chi.Router) {
		// Auth routes (public)
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", authHandler.Register)
			r.Post("/login", authHandler.Login)
			r.Get("/validate", authHandler.Validate)
			r.With(signedIn).Post("/logout", authHandler.Logout)
		})

		// Skill routes: reads for any user, writes for admins
		r.Route("/skills", func(r chi.Router) {
			r.With(signedIn).Get("/", skillHandler.List)
			r.With(signedIn).Get("/{id}", skillHandler.Get)
			r.With(adminOnly).Post("/", skillHandler.Create)
			r.With(adminOnly).Put("/{id}", skillHandler.Update)
			r.With(adminOnly).Delete("/{id}", skillHandler.Delete)
		})

		r.Route("/projects", func(r chi.Router) {
			r.With(signedIn).Get("/", projectHandler.List)
			r.With(signedIn).Get("/{id}", projectHandler.Get)
			r.With(adminOnly).Post("/", projectHandler.Create)
			r.With(adminOnly).Put("/{id}", projectHandler.Update)
			r.With(adminOnly).Delete("/{id}", projectHandler.Delete)
			r.With(adminOnly).Patch("/{id}/toggle-featured", projectHandler.ToggleFeatured)
			r.With(adminOnly).Put("/{id}/image", projectHandler.UploadImage)

			// public so the site can count and show them before sign-in
			r.Post("/{id}/views", projectHandler.RecordView)
			r.Get("/{id}/image", projectHandler.Image)
		})

		r.With(adminOnly).Get("/admin/dashboard", adminHandler.Dashboard)
		r.With(adminOnly).Get("/users", adminHandler.Users)
	})

	return r
}
