// Package api exposes the planning workflow over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/af-corp/atlas-planner/internal/clarify"
	"github.com/af-corp/atlas-planner/internal/httputil"
	"github.com/af-corp/atlas-planner/internal/intent"
	"github.com/af-corp/atlas-planner/internal/llm"
	"github.com/af-corp/atlas-planner/internal/planner"
	"github.com/af-corp/atlas-planner/internal/telemetry"
	"github.com/af-corp/atlas-planner/internal/types"
)

// Handler serves the planning endpoints. One instance is shared by all
// requests; every collaborator is internally synchronized.
type Handler struct {
	machine         *clarify.Machine
	orch            *planner.Orchestrator
	audit           *llm.Audit
	errors          *telemetry.ErrorTracker
	metrics         *telemetry.Metrics
	logger          *slog.Logger
	currency        string
	defaultStrategy planner.Strategy
	snapshotLimit   int
}

func NewHandler(machine *clarify.Machine, orch *planner.Orchestrator, audit *llm.Audit, errors *telemetry.ErrorTracker, metrics *telemetry.Metrics, logger *slog.Logger, currency string, defaultStrategy planner.Strategy, snapshotLimit int) *Handler {
	if snapshotLimit <= 0 {
		snapshotLimit = 50
	}
	return &Handler{
		machine:         machine,
		orch:            orch,
		audit:           audit,
		errors:          errors,
		metrics:         metrics,
		logger:          logger,
		currency:        currency,
		defaultStrategy: defaultStrategy,
		snapshotLimit:   snapshotLimit,
	}
}

type planRequest struct {
	SessionID string `json:"session_id"`
	Text      string `json:"text"`
}

type clarifyRequest struct {
	SessionID string         `json:"session_id"`
	Answers   []types.Answer `json:"answers"`
}

type intentDebug struct {
	Intent types.TripIntent `json:"intent"`
	Gaps   []string         `json:"gaps"`
}

// HandlePlan returns the plan handler for one scheduling strategy. The flow
// is: parse the text, clarify when required fields are missing, otherwise
// run the full pipeline.
func (h *Handler) HandlePlan(strategy planner.Strategy) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		reqID := w.Header().Get("X-Request-ID")

		var req planRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
			httputil.WriteBadRequestError(w, reqID, "Body must be JSON with a non-empty 'text' field")
			return
		}
		if req.SessionID == "" {
			req.SessionID = uuid.NewString()
		}

		h.metrics.PlanRequests.Inc()
		ti := intent.Parse(req.Text, req.SessionID, h.currency)
		h.logger.Info("intent parsed",
			"stage", "intent",
			"session_id", ti.SessionID,
			"destination", ti.Destination,
			"days", ti.Days,
		)

		gaps := intent.FindGaps(ti)
		if len(gaps) > 0 {
			outcome, err := h.machine.Begin(r.Context(), ti, gaps)
			if err != nil {
				h.fail(w, reqID, "clarify", ti.SessionID, err)
				return
			}
			httputil.WriteClarify(w, reqID, ti.SessionID, outcome.Questions, outcome.Round, outcome.MaxRounds)
			return
		}

		h.runPlan(w, r, reqID, ti, strategy)
	}
}

// HandleClarify merges an answer batch and either reissues questions or, on
// finalization, runs the pipeline with the default strategy.
func (h *Handler) HandleClarify(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	var req clarifyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.SessionID == "" {
		httputil.WriteBadRequestError(w, reqID, "Body must be JSON with 'session_id' and 'answers'")
		return
	}

	outcome, err := h.machine.Advance(r.Context(), req.SessionID, req.Answers)
	if err != nil {
		h.fail(w, reqID, "clarify", req.SessionID, err)
		return
	}
	if outcome.State == clarify.StateAwaitingAnswers {
		httputil.WriteClarify(w, reqID, req.SessionID, outcome.Questions, outcome.Round, outcome.MaxRounds)
		return
	}

	h.runPlan(w, r, reqID, outcome.Intent, h.defaultStrategy)
}

// HandlePendingSession returns the open questions for a stored session.
func (h *Handler) HandlePendingSession(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")
	sessionID := chi.URLParam(r, "session_id")

	outcome, err := h.machine.Pending(r.Context(), sessionID)
	if err != nil {
		h.fail(w, reqID, "clarify", sessionID, err)
		return
	}
	httputil.WriteClarify(w, reqID, sessionID, outcome.Questions, outcome.Round, outcome.MaxRounds)
}

// HandleDebugIntent parses text without starting a session. Diagnostic only.
func (h *Handler) HandleDebugIntent(w http.ResponseWriter, r *http.Request) {
	reqID := w.Header().Get("X-Request-ID")

	var req planRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Text == "" {
		httputil.WriteBadRequestError(w, reqID, "Body must be JSON with a non-empty 'text' field")
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	ti := intent.Parse(req.Text, req.SessionID, h.currency)
	httputil.WriteData(w, reqID, intentDebug{Intent: ti, Gaps: intent.FindGaps(ti)})
}

func (h *Handler) HandleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteData(w, w.Header().Get("X-Request-ID"), map[string]string{"status": "ok"})
}

// HandleErrors serves the recent-failure ring buffer.
func (h *Handler) HandleErrors(w http.ResponseWriter, r *http.Request) {
	limit, since := h.snapshotParams(r)
	httputil.WriteData(w, w.Header().Get("X-Request-ID"), h.errors.Snapshot(limit, since))
}

// HandleAudit serves the recent model-attempt ring buffer.
func (h *Handler) HandleAudit(w http.ResponseWriter, r *http.Request) {
	limit, since := h.snapshotParams(r)
	httputil.WriteData(w, w.Header().Get("X-Request-ID"), h.audit.Snapshot(limit, since))
}

func (h *Handler) snapshotParams(r *http.Request) (limit, since int) {
	limit = h.snapshotLimit
	if v, err := strconv.Atoi(r.URL.Query().Get("limit")); err == nil && v > 0 {
		limit = v
	}
	if v, err := strconv.Atoi(r.URL.Query().Get("since_seconds")); err == nil && v > 0 {
		since = v
	}
	return limit, since
}

func (h *Handler) runPlan(w http.ResponseWriter, r *http.Request, reqID string, ti types.TripIntent, strategy planner.Strategy) {
	result, err := h.orch.Run(r.Context(), ti, strategy)
	if err != nil {
		h.fail(w, reqID, "workflow", ti.SessionID, err)
		return
	}
	httputil.WriteData(w, reqID, result)
}

// fail records the error for /v1/errors and writes the failure envelope.
func (h *Handler) fail(w http.ResponseWriter, reqID, stage, sessionID string, err error) {
	code := ""
	var de *types.DomainError
	if errors.As(err, &de) {
		code = de.Code
	}
	h.errors.Record(code, stage, sessionID, err.Error())
	h.logger.Error("request failed",
		"stage", stage,
		"request_id", reqID,
		"session_id", sessionID,
		"code", code,
		"error", err,
	)
	httputil.WriteDomainError(w, reqID, err)
}
