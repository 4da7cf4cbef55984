package api

import (
	"log/slog"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/af-corp/atlas-planner/internal/auth"
	"github.com/af-corp/atlas-planner/internal/planner"
	"github.com/af-corp/atlas-planner/internal/ratelimit"
	"github.com/af-corp/atlas-planner/internal/telemetry"
)

// RouterDeps bundles the cross-cutting collaborators for route construction.
type RouterDeps struct {
	KeyStore auth.KeyStore
	Limiter  ratelimit.Limiter
	Quota    int64
	Window   time.Duration
	Metrics  *telemetry.Metrics
	Registry *prometheus.Registry
	Logger   *slog.Logger
}

// NewRouter builds the full route tree. The rate limiter guards only the
// planning endpoints; observation endpoints stay unthrottled.
func NewRouter(h *Handler, deps RouterDeps) *chi.Mux {
	r := chi.NewRouter()
	r.Use(RequestID)
	r.Use(RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/v1/health", h.HandleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))

	r.Group(func(r chi.Router) {
		r.Use(auth.Middleware(deps.KeyStore, deps.Logger))

		r.Group(func(r chi.Router) {
			r.Use(ratelimit.Middleware(deps.Limiter, deps.Quota, deps.Window, deps.Metrics, deps.Logger))
			r.Post("/v1/plan", h.HandlePlan(planner.StrategySequential))
			r.Post("/v1/plan/parallel", h.HandlePlan(planner.StrategyParallel))
			r.Post("/v1/plan/graph", h.HandlePlan(planner.StrategyStaged))
			r.Post("/v1/plan/clarify", h.HandleClarify)
		})

		r.Get("/v1/plan/{session_id}", h.HandlePendingSession)
		r.Post("/v1/debug/intent", h.HandleDebugIntent)
		r.Get("/v1/errors", h.HandleErrors)
		r.Get("/v1/audit", h.HandleAudit)
	})

	return r
}
