// YaMDb - Title Reviews and Ratings API
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/yamdb

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/yamdb/internal/authz"
	"github.com/tomtom215/yamdb/internal/middleware"
)

// NewRouter builds the chi router.
//
// Global stack, outermost first: request ID, real IP, recoverer,
// performance log, Prometheus, security headers, trailing-slash strip,
// compression, CORS. Under /api/v1 every request is rate limited, tagged
// with its audit source and authenticated; anonymous requests pass with no
// account in the context and the route policies decide.
func NewRouter(h *Handler) http.Handler {
	cm := NewChiMiddleware(ChiMiddlewareFromConfig(&h.cfg.Security))

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(h.perf.Middleware)
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.StripSlashes)
	r.Use(chimiddleware.Compress(5, "application/json"))
	r.Use(cm.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, CodeNotFound, "Not found", nil, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, CodeMethodNotAllowed, "Method not allowed", nil, nil)
	})

	admin := h.authz.Require(authz.PolicyAdminWriteOnly)
	adminOrRead := h.authz.Require(authz.PolicyAdminOrReadOnly)
	self := h.authz.Require(authz.PolicySelfProfile)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(cm.RateLimit())
		r.Use(AuditSource)
		r.Use(h.authn.Middleware)

		r.Get("/health", h.Health)
		r.Method(http.MethodGet, "/metrics", promhttp.Handler())

		r.Route("/auth", func(r chi.Router) {
			r.Use(cm.RateLimitCustom(RateLimitAuth))
			r.Post("/signup", h.Signup)
			r.Post("/token", h.Token)
			r.Post("/token/refresh", h.RefreshToken)
		})

		r.Route("/users", func(r chi.Router) {
			r.With(self).Get("/me", h.GetMe)
			r.With(self).Patch("/me", h.UpdateMe)

			r.Group(func(r chi.Router) {
				r.Use(admin)
				r.Get("/", h.ListUsers)
				r.Post("/", h.CreateUser)
				r.Get("/{username}", h.GetUser)
				r.Patch("/{username}", h.UpdateUser)
				r.Delete("/{username}", h.DeleteUser)
			})
		})

		r.Route("/categories", func(r chi.Router) {
			r.Use(adminOrRead)
			r.Get("/", h.ListCategories)
			r.Post("/", h.CreateCategory)
			r.Delete("/{slug}", h.DeleteCategory)
		})

		r.Route("/genres", func(r chi.Router) {
			r.Use(adminOrRead)
			r.Get("/", h.ListGenres)
			r.Post("/", h.CreateGenre)
			r.Delete("/{slug}", h.DeleteGenre)
		})

		r.Route("/titles", func(r chi.Router) {
			r.With(adminOrRead).Get("/", h.ListTitles)
			r.With(adminOrRead).Post("/", h.CreateTitle)

			r.Route("/{title_id}", func(r chi.Router) {
				r.With(adminOrRead).Get("/", h.GetTitle)
				r.With(adminOrRead).Patch("/", h.UpdateTitle)
				r.With(adminOrRead).Delete("/", h.DeleteTitle)

				r.Route("/reviews", func(r chi.Router) {
					r.Get("/", h.ListReviews)
					r.Post("/", h.CreateReview)

					r.Route("/{review_id}", func(r chi.Router) {
						r.Get("/", h.GetReview)
						r.Patch("/", h.UpdateReview)
						r.Delete("/", h.DeleteReview)

						r.Route("/comments", func(r chi.Router) {
							r.Get("/", h.ListComments)
							r.Post("/", h.CreateComment)
							r.Get("/{comment_id}", h.GetComment)
							r.Patch("/{comment_id}", h.UpdateComment)
							r.Delete("/{comment_id}", h.DeleteComment)
						})
					})
				})
			})
		})

		r.With(admin).Get("/audit/events", h.ListAuditEvents)
	})

	return r
}
