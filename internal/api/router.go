package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// ReadyCheck reports whether a dependency can serve traffic.
type ReadyCheck func(ctx context.Context) error

type RouterOptions struct {
	Logger   *slog.Logger
	Gatherer prometheus.Gatherer
	Ready    []ReadyCheck
}

// NewRouter mounts health, metrics and the /api routes.
func NewRouter(h *Handler, opts RouterOptions) chi.Router {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(middleware.RealIP)
	r.Use(RequestLogger(logger))
	r.Use(middleware.Recoverer)

	r.Get("/health/live", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Get("/health/ready", func(w http.ResponseWriter, req *http.Request) {
		for _, check := range opts.Ready {
			if err := check(req.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if opts.Gatherer != nil {
		r.Handle("/metrics", promhttp.HandlerFor(opts.Gatherer, promhttp.HandlerOpts{}))
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/plans", h.CreatePlan)
		r.Post("/goals", h.CreateGoal)
		r.Route("/users/{userID}", func(r chi.Router) {
			r.Get("/charts/{kind}", h.Chart)
			r.Get("/events", h.Events)
			r.Get("/graphs", h.Graphs)
		})
	})
	return r
}
