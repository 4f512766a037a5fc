package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/phrazzld/bazaar-api/internal/api"
	apiMiddleware "github.com/phrazzld/bazaar-api/internal/api/middleware"
	"github.com/phrazzld/bazaar-api/internal/domain"
	"github.com/phrazzld/bazaar-api/internal/service/authz"
)

// routePolicy is the access table for every route the server exposes.
// Requests matching no rule require authentication.
func routePolicy() *authz.Policy {
	return authz.MustPolicy(
		authz.PublicRoute(http.MethodGet, "/health"),

		authz.PublicRoute(http.MethodPost, "/api/auth/register"),
		authz.PublicRoute(http.MethodPost, "/api/auth/login"),
		authz.Authenticated(http.MethodGet, "/api/auth/me"),

		authz.PublicRoute(http.MethodGet, "/api/listings"),
		authz.PublicRoute(http.MethodGet, "/api/listings/{id}"),
		authz.Authenticated("", "/api/listings/*"),

		authz.RequireRole("", "/api/admin/*", domain.RoleAdmin),
	)
}

// setupRouter creates the application router with all routes and middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.tokenService, app.identityResolver)
	r.Use(authMiddleware.Authenticate)
	r.Use(apiMiddleware.Authorize(routePolicy()))

	authHandler := api.NewAuthHandler(app.userService, app.credentialVerifier, app.tokenService, app.logger)
	listingHandler := api.NewListingHandler(app.listingService)
	adminHandler := api.NewAdminHandler(app.userService)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Get("/auth/me", authHandler.Me)

		r.Get("/listings", listingHandler.List)
		r.Post("/listings", listingHandler.Create)
		r.Get("/listings/{id}", listingHandler.Get)
		r.Put("/listings/{id}", listingHandler.Update)
		r.Delete("/listings/{id}", listingHandler.Delete)

		r.Route("/admin", func(r chi.Router) {
			r.Get("/users", adminHandler.ListUsers)
			r.Put("/users/{id}/active", adminHandler.SetActive)
			r.Put("/users/{id}/roles", adminHandler.SetRoles)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
