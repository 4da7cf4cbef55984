// Package clarify implements the multi-round question/answer state machine
// that converges an intent toward required-field completeness.
//
// States: NEW -> AWAITING_ANSWERS -> (AWAITING_ANSWERS | FINALIZED | FAILED).
// The machine is not designed for concurrent answer submissions on one
// session; callers must serialize per session id.
package clarify

import (
	"context"
	"log/slog"

	"github.com/af-corp/atlas-planner/internal/intent"
	"github.com/af-corp/atlas-planner/internal/session"
	"github.com/af-corp/atlas-planner/internal/telemetry"
	"github.com/af-corp/atlas-planner/internal/types"
)

// DefaultMaxRounds bounds the clarification loop when config does not say
// otherwise.
const DefaultMaxRounds = 2

// State names the terminal or intermediate position of a clarify exchange.
type State string

const (
	StateAwaitingAnswers State = "AWAITING_ANSWERS"
	StateFinalized       State = "FINALIZED"
	StateFailed          State = "FAILED"
)

// Outcome is the result of one machine step. Exactly one of Questions or
// Intent is meaningful: Questions when State is AWAITING_ANSWERS, Intent when
// FINALIZED.
type Outcome struct {
	State     State
	Questions []types.Question
	Round     int
	MaxRounds int
	Intent    types.TripIntent
}

// Machine drives clarification sessions against the session store.
type Machine struct {
	store     session.Store
	maxRounds int
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

func NewMachine(store session.Store, maxRounds int, metrics *telemetry.Metrics, logger *slog.Logger) *Machine {
	if maxRounds <= 0 {
		maxRounds = DefaultMaxRounds
	}
	return &Machine{store: store, maxRounds: maxRounds, metrics: metrics, logger: logger}
}

// Begin opens a round-1 session for an intent with gaps and returns the
// questions to ask. The caller has already verified gaps is non-empty.
func (m *Machine) Begin(ctx context.Context, ti types.TripIntent, gaps []string) (Outcome, error) {
	rec := session.Record{
		Intent:    ti,
		Gaps:      gaps,
		Round:     1,
		MaxRounds: m.maxRounds,
	}
	if err := m.store.Create(ctx, ti.SessionID, rec); err != nil {
		return Outcome{}, err
	}
	questions := intent.QuestionsFor(gaps)
	m.metrics.ClarifySessions.Inc()
	m.metrics.ClarifyQuestions.Add(float64(len(questions)))
	m.logger.Info("clarify questions issued",
		"stage", "clarify",
		"session_id", ti.SessionID,
		"round", 1,
		"count", len(questions),
	)
	return Outcome{
		State:     StateAwaitingAnswers,
		Questions: questions,
		Round:     1,
		MaxRounds: m.maxRounds,
	}, nil
}

// Pending returns the current questions for a stored session without
// advancing it.
func (m *Machine) Pending(ctx context.Context, sessionID string) (Outcome, error) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	if rec == nil {
		return Outcome{}, types.NewDomainError(types.CodeSessionNotFound, "Session missing")
	}
	return Outcome{
		State:     StateAwaitingAnswers,
		Questions: intent.QuestionsFor(rec.Gaps),
		Round:     rec.Round,
		MaxRounds: rec.MaxRounds,
	}, nil
}

// Advance merges an answer batch into the session's intent and steps the
// machine. While gaps remain under the round ceiling it reissues questions;
// at the ceiling it finalizes with best-effort defaults unless the
// destination is still unknown, which is unrecoverable. On finalization the
// session record is removed from the store.
func (m *Machine) Advance(ctx context.Context, sessionID string, answers []types.Answer) (Outcome, error) {
	rec, err := m.store.Get(ctx, sessionID)
	if err != nil {
		return Outcome{}, err
	}
	if rec == nil {
		return Outcome{}, types.NewDomainError(types.CodeSessionNotFound, "Session missing")
	}

	rec.Intent = intent.ApplyAnswers(rec.Intent, answers)
	gaps := intent.FindGaps(rec.Intent)

	if len(gaps) > 0 && rec.Round < rec.MaxRounds {
		rec.Round++
		rec.Gaps = gaps
		if err := m.store.Update(ctx, sessionID, *rec); err != nil {
			return Outcome{}, err
		}
		questions := intent.QuestionsFor(gaps)
		m.metrics.ClarifyRounds.Inc()
		m.metrics.ClarifyQuestions.Add(float64(len(questions)))
		m.logger.Info("clarify questions reissued",
			"stage", "clarify",
			"session_id", sessionID,
			"round", rec.Round,
			"count", len(questions),
		)
		return Outcome{
			State:     StateAwaitingAnswers,
			Questions: questions,
			Round:     rec.Round,
			MaxRounds: rec.MaxRounds,
		}, nil
	}

	for _, g := range gaps {
		if g == "destination" {
			// Destination cannot default downstream; the session is spent.
			m.logger.Error("destination unresolved after clarification",
				"stage", "clarify",
				"session_id", sessionID,
				"code", types.CodeDestinationUnresolved,
			)
			return Outcome{State: StateFailed}, types.NewDomainError(
				types.CodeDestinationUnresolved,
				"Destination still missing after clarification")
		}
	}

	if err := m.store.Remove(ctx, sessionID); err != nil {
		return Outcome{}, err
	}
	m.logger.Info("intent finalized",
		"stage", "clarify",
		"session_id", sessionID,
		"remaining_gaps", len(gaps),
	)
	return Outcome{State: StateFinalized, Intent: rec.Intent}, nil
}
