package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/skillhub/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// DefaultCORSOptions is the development CORS policy for browser clients.
func DefaultCORSOptions() cors.Options {
	return CORSOptions([]string{"http://localhost:5173", "http://127.0.0.1:5173"})
}

// CORSOptions is the CORS policy restricted to origins.
func CORSOptions(origins []string) cors.Options {
	return cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPatch, http.MethodOptions},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           300,
	}
}

// NewRouter mounts the session endpoints behind the shared middleware stack.
func NewRouter(h *Handler, corsOpts *cors.Options) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger(h.logger))
	r.Use(middleware.Recoverer)

	corsCfg := DefaultCORSOptions()
	if corsOpts != nil {
		corsCfg = *corsOpts
	}
	r.Use(cors.Handler(corsCfg))

	r.Get("/health", health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", h.login)
		r.Post("/auth/token/regenerate", h.regenerate)
		r.Post("/auth/token/invalidate", h.invalidate)
		r.Post("/auth/token/verify", h.verify)

		r.Group(func(r chi.Router) {
			r.Use(h.requireCaller)
			r.Get("/me", h.me)

			r.With(requireKind(models.KindPrimary)).Post("/workers", h.createWorker)
			r.With(requireKind(models.KindPrimary)).Patch("/workers/{id}/active", h.setWorkerActive)
		})
	})

	return r
}
