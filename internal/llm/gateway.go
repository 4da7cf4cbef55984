package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/af-corp/atlas-planner/internal/telemetry"
	"github.com/af-corp/atlas-planner/internal/types"
)

// DefaultMaxRepair is the number of retries allowed beyond the first attempt
// when a model response is not valid JSON.
const DefaultMaxRepair = 1

const repairDirective = "\nRespond with valid JSON only."

// promptTagItinerary identifies synthesis prompts in audit records and
// selects the degraded-mode payload.
const promptTagItinerary = "itinerary"

// Gateway walks a configured candidate-model chain, repairing invalid JSON
// responses by retrying the next candidate with a corrective directive.
// Transport-level failures (missing credential, HTTP error, network fault)
// are recovered locally by substituting deterministic placeholder content,
// counted separately from JSON repairs.
type Gateway struct {
	transport Transport
	chain     []string
	maxRepair int
	audit     *Audit
	metrics   *telemetry.Metrics
	logger    *slog.Logger
}

func NewGateway(transport Transport, chain []string, maxRepair int, audit *Audit, metrics *telemetry.Metrics, logger *slog.Logger) *Gateway {
	if maxRepair < 0 {
		maxRepair = DefaultMaxRepair
	}
	return &Gateway{
		transport: transport,
		chain:     chain,
		maxRepair: maxRepair,
		audit:     audit,
		metrics:   metrics,
		logger:    logger,
	}
}

// modelAt selects the candidate model for an attempt index.
func (g *Gateway) modelAt(index int) (string, error) {
	if index < len(g.chain) {
		return g.chain[index], nil
	}
	return "", types.NewDomainError(types.CodeModelChainExhausted, "All candidate models exhausted")
}

// completeJSON runs the attempt loop. decode must reject responses that do
// not match the required JSON shape. Every attempt is audited.
func (g *Gateway) completeJSON(ctx context.Context, tag, prompt string, decode func([]byte) error) error {
	for attempt := 0; attempt <= g.maxRepair; attempt++ {
		model, err := g.modelAt(attempt)
		if err != nil {
			return err
		}

		g.metrics.ModelCalls.Inc()
		raw, callErr := g.transport.Complete(ctx, model, prompt)
		fallbackUsed := false
		if callErr != nil {
			var de *types.DomainError
			if !errors.As(callErr, &de) {
				return callErr
			}
			// Transport and auth faults degrade to placeholder content
			// rather than failing the request.
			g.metrics.ModelErrors.Inc()
			g.metrics.ModelFallbacks.Inc()
			g.logger.Error("model call failed, substituting placeholder",
				"stage", "model",
				"model", model,
				"code", de.Code,
				"error", de.Message,
			)
			raw = placeholderPayload(tag)
			fallbackUsed = true
		}

		decodeErr := decode([]byte(raw))
		g.audit.Record(AuditRecord{
			Model:          model,
			PromptTag:      tag,
			PromptLen:      len(prompt),
			ResponseLen:    len(raw),
			JSONValid:      decodeErr == nil,
			RepairAttempts: attempt,
			FallbackUsed:   fallbackUsed || attempt > 0,
			ErrorCode:      errorCodeFor(decodeErr, attempt, g.maxRepair),
		})
		if decodeErr == nil {
			return nil
		}
		if attempt == g.maxRepair {
			return types.NewDomainError(types.CodeModelJSONInvalid, "JSON repair failed")
		}
		g.metrics.ModelRepairs.Inc()
		prompt += repairDirective
	}
	return types.NewDomainError(types.CodeModelJSONInvalid, "JSON repair failed")
}

func errorCodeFor(decodeErr error, attempt, maxRepair int) string {
	if decodeErr != nil && attempt == maxRepair {
		return types.CodeModelJSONInvalid
	}
	return ""
}

// itineraryPayload is the required JSON shape of a synthesis response.
type itineraryPayload struct {
	Days []struct {
		DayIndex  int      `json:"day_index"`
		MainSpots []string `json:"main_spots"`
		Meals     []string `json:"meals"`
		Notes     string   `json:"notes"`
	} `json:"days"`
	Summary string `json:"summary"`
}

// placeholderPayload is the deterministic degraded-mode content substituted
// for a failed model call: one free-time day, three meal slots, a marker
// noting generation was degraded.
func placeholderPayload(tag string) string {
	if tag == promptTagItinerary {
		return `{"days":[{"day_index":1,"main_spots":["Free time"],"meals":["breakfast","lunch","dinner"],"notes":"placeholder (degraded generation)"}],"summary":"Placeholder itinerary (model unavailable)"}`
	}
	return `{"fallback":true}`
}

// GenerateItinerary synthesizes a day-by-day itinerary from the intent and
// the fetched spots. The same inputs may yield different itineraries across
// invocations when the model is non-deterministic; the result cache masks
// repeat calls for identical intents.
func (g *Gateway) GenerateItinerary(ctx context.Context, ti types.TripIntent, spots []string) (types.Itinerary, error) {
	if ti.Destination == "" || ti.Days == 0 {
		return types.Itinerary{}, types.NewDomainError(types.CodeItineraryGenFail, "Missing destination/days")
	}

	prompt := buildItineraryPrompt(ti, spots)
	var payload itineraryPayload
	decode := func(raw []byte) error {
		var p itineraryPayload
		if err := json.Unmarshal(raw, &p); err != nil {
			return err
		}
		if len(p.Days) == 0 || p.Summary == "" {
			return fmt.Errorf("response missing days or summary")
		}
		payload = p
		return nil
	}
	if err := g.completeJSON(ctx, promptTagItinerary, prompt, decode); err != nil {
		return types.Itinerary{}, err
	}

	days := make([]types.DayPlan, 0, len(payload.Days))
	for _, d := range payload.Days {
		plan := types.DayPlan{
			DayIndex:  d.DayIndex,
			MainSpots: d.MainSpots,
			Meals:     d.Meals,
			Notes:     d.Notes,
		}
		if ti.DepartDate != nil && d.DayIndex >= 1 {
			plan.Date = ti.DepartDate.AddDate(0, 0, d.DayIndex-1).Format(types.DateOnly)
		}
		days = append(days, plan)
	}
	return types.Itinerary{Days: days, Summary: payload.Summary}, nil
}

func buildItineraryPrompt(ti types.TripIntent, spots []string) string {
	var b strings.Builder
	b.WriteString("Plan a ")
	fmt.Fprintf(&b, "%d-day trip to %s", ti.Days, ti.Destination)
	if ti.DepartDate != nil {
		fmt.Fprintf(&b, " departing %s", ti.DepartDate.Format(types.DateOnly))
	}
	fmt.Fprintf(&b, " for %d traveler(s).", ti.Travelers)
	if len(spots) > 0 {
		b.WriteString(" Candidate spots: ")
		b.WriteString(strings.Join(spots, ", "))
		b.WriteString(".")
	}
	b.WriteString(` Reply as JSON: {"days":[{"day_index":1,"main_spots":[],"meals":[],"notes":""}],"summary":""}.`)
	return b.String()
}
