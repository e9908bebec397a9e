package api

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// NewRouter builds the Chi router. Health and metrics are unauthenticated;
// every tourism route requires bearer auth. Rate limiting is applied
// globally: 60 requests per minute per IP. redis may be nil when Redis is not
// configured, and metrics may be nil to omit /metrics.
func NewRouter(handlers *Handlers, token string, db, redis Pinger, metrics http.Handler, log *slog.Logger) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(httprate.LimitByIP(60, time.Minute))

	r.Get("/api/v1/health", HealthHandlerFunc(db, redis, log))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}

	r.Group(func(r chi.Router) {
		r.Use(BearerAuth(token))
		r.Get("/api/v1/tourism", handlers.ListTourism)
		r.Get("/api/v1/tourism/favorites", handlers.ListFavorites)
		r.Put("/api/v1/tourism/{id}/favorite", handlers.SetFavorite)
	})

	return r
}

// Ensure chi.Mux implements http.Handler.
var _ http.Handler = (*chi.Mux)(nil)
