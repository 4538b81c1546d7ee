// Package httpapi assembles the HTTP surface: middleware chain, health and
// metrics endpoints, and the enrollment routes.
package httpapi

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"academy/internal/enrollment/handler"
	"academy/internal/platform/middleware"
	"academy/pkg/platform/httputil"
)

// HealthChecker reports whether a backing dependency is reachable.
type HealthChecker func() error

// NewRouter wires the middleware chain and all routes.
func NewRouter(
	enrollment *handler.Handler,
	validator middleware.JWTValidator,
	logger *slog.Logger,
	health map[string]HealthChecker,
) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Device)
	r.Use(chimiddleware.Compress(5))

	r.Get("/healthz", healthz(health))
	r.Handle("/metrics", promhttp.Handler())

	enrollment.Register(r, middleware.RequireAdmin(validator, logger))

	return r
}

func healthz(checks map[string]HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(); err != nil {
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body[name] = err.Error()
			} else {
				body[name] = "ok"
			}
		}
		httputil.WriteJSON(w, status, body)
	}
}
