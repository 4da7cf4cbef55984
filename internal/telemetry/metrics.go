package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the planner. Instances are built
// against an explicit registerer and passed into components, so tests can
// run several isolated instances in one process.
type Metrics struct {
	PlanRequests       prometheus.Counter
	ClarifySessions    prometheus.Counter
	ClarifyRounds      prometheus.Counter
	ClarifyQuestions   prometheus.Counter
	WorkflowsCompleted *prometheus.CounterVec
	WorkflowLatencyMs  prometheus.Histogram
	ModelCalls         prometheus.Counter
	ModelErrors        prometheus.Counter
	ModelRepairs       prometheus.Counter
	ModelFallbacks     prometheus.Counter
	CacheHits          prometheus.Counter
	CacheMisses        prometheus.Counter
	StagedFallbacks    prometheus.Counter
	RateLimitDenials   prometheus.Counter
}

// NewMetrics creates and registers all planner metrics on the given
// registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		PlanRequests: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_plan_requests_total",
			Help: "Total plan requests received.",
		}),
		ClarifySessions: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_clarify_sessions_total",
			Help: "Clarification sessions started.",
		}),
		ClarifyRounds: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_clarify_rounds_total",
			Help: "Additional clarification rounds beyond the first.",
		}),
		ClarifyQuestions: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_clarify_questions_total",
			Help: "Total clarification questions issued.",
		}),
		WorkflowsCompleted: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "atlas_workflows_completed_total",
			Help: "Completed planning workflows.",
		}, []string{"strategy"}),
		WorkflowLatencyMs: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "atlas_workflow_latency_ms",
			Help:    "End-to-end planning workflow latency in milliseconds.",
			Buckets: []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		}),
		ModelCalls: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_model_calls_total",
			Help: "Model completions attempted.",
		}),
		ModelErrors: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_model_errors_total",
			Help: "Model transport, auth, or HTTP failures.",
		}),
		ModelRepairs: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_model_repairs_total",
			Help: "JSON repair retries issued after invalid model output.",
		}),
		ModelFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_model_fallbacks_total",
			Help: "Placeholder itineraries substituted for failed model calls.",
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_result_cache_hits_total",
			Help: "Result cache hits.",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_result_cache_misses_total",
			Help: "Result cache misses.",
		}),
		StagedFallbacks: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_staged_fallbacks_total",
			Help: "Staged-strategy requests served by the parallel fallback.",
		}),
		RateLimitDenials: factory.NewCounter(prometheus.CounterOpts{
			Name: "atlas_rate_limit_denials_total",
			Help: "Plan requests denied by the per-session rate limiter.",
		}),
	}
}
