// Package planner sequences provider fan-out, itinerary synthesis, and
// budget allocation into a cached, versioned planning result.
package planner

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/af-corp/atlas-planner/internal/budget"
	"github.com/af-corp/atlas-planner/internal/cache"
	"github.com/af-corp/atlas-planner/internal/telemetry"
	"github.com/af-corp/atlas-planner/internal/types"
)

// Strategy selects how the downstream steps are scheduled. All strategies
// produce a structurally identical PlanningResult and write through the
// result cache on success.
type Strategy string

const (
	StrategySequential Strategy = "sequential"
	StrategyParallel   Strategy = "parallel"
	StrategyStaged     Strategy = "staged"
)

// FlightSearcher looks up flight options for a finalized intent.
type FlightSearcher interface {
	Search(ctx context.Context, ti types.TripIntent) ([]types.FlightOption, error)
}

// HotelSearcher looks up hotel options for a finalized intent.
type HotelSearcher interface {
	Search(ctx context.Context, ti types.TripIntent) ([]types.HotelOption, error)
}

// SpotFetcher returns points of interest for a destination.
type SpotFetcher interface {
	Fetch(ctx context.Context, destination string, preferences []string) ([]string, error)
}

// ItineraryGenerator synthesizes a day-by-day itinerary.
type ItineraryGenerator interface {
	GenerateItinerary(ctx context.Context, ti types.TripIntent, spots []string) (types.Itinerary, error)
}

// Orchestrator owns the downstream pipeline. The staged scheduler is bound
// once at construction; when it is unavailable every staged request silently
// runs the parallel strategy and only a log marker and counter record the
// substitution.
type Orchestrator struct {
	flights FlightSearcher
	hotels  HotelSearcher
	spots   SpotFetcher
	synth   ItineraryGenerator
	cache   cache.ResultCache
	metrics *telemetry.Metrics
	logger  *slog.Logger
	staged  *stageGraph
}

// NewOrchestrator wires the pipeline. enableStaged toggles construction of
// the staged scheduler; a graph that fails validation also leaves it unbound.
func NewOrchestrator(flights FlightSearcher, hotels HotelSearcher, spots SpotFetcher, synth ItineraryGenerator, resultCache cache.ResultCache, metrics *telemetry.Metrics, logger *slog.Logger, enableStaged bool) *Orchestrator {
	o := &Orchestrator{
		flights: flights,
		hotels:  hotels,
		spots:   spots,
		synth:   synth,
		cache:   resultCache,
		metrics: metrics,
		logger:  logger,
	}
	if enableStaged {
		graph, err := newStageGraph(o.defaultStages())
		if err != nil {
			logger.Warn("staged scheduler unavailable, parallel fallback bound",
				"stage", "orchestrator",
				"error", err,
			)
		} else {
			o.staged = graph
		}
	} else {
		logger.Info("staged scheduler disabled by configuration, parallel fallback bound",
			"stage", "orchestrator",
		)
	}
	return o
}

// StagedAvailable reports whether staged requests run on the real scheduler.
func (o *Orchestrator) StagedAvailable() bool {
	return o.staged != nil
}

// Run executes the pipeline for a finalized intent under the given strategy.
// The result cache is consulted before any work and written through on
// success.
func (o *Orchestrator) Run(ctx context.Context, ti types.TripIntent, strategy Strategy) (*types.PlanningResult, error) {
	if cached := o.cache.Get(ti); cached != nil {
		o.metrics.CacheHits.Inc()
		o.logger.Info("result cache hit",
			"stage", "cache",
			"session_id", ti.SessionID,
		)
		return cached, nil
	}
	o.metrics.CacheMisses.Inc()

	effective := strategy
	if strategy == StrategyStaged && o.staged == nil {
		o.metrics.StagedFallbacks.Inc()
		o.logger.Info("staged scheduler unavailable, running parallel fallback",
			"stage", "orchestrator",
			"session_id", ti.SessionID,
			"fallback", true,
		)
		effective = StrategyParallel
	}

	start := time.Now()
	st := &pipelineState{intent: ti}
	var err error
	switch effective {
	case StrategySequential:
		err = o.runSequential(ctx, st)
	case StrategyParallel:
		err = o.runParallel(ctx, st)
	case StrategyStaged:
		err = o.staged.execute(ctx, st)
	default:
		err = o.runSequential(ctx, st)
	}
	if err != nil {
		return nil, err
	}

	latencyMs := float64(time.Since(start).Milliseconds())
	o.metrics.WorkflowLatencyMs.Observe(latencyMs)
	o.metrics.WorkflowsCompleted.WithLabelValues(string(strategy)).Inc()
	o.logger.Info("workflow completed",
		"stage", "workflow",
		"session_id", ti.SessionID,
		"strategy", string(strategy),
		"latency_ms", int64(latencyMs),
	)

	result := &types.PlanningResult{
		SessionID:     st.intent.SessionID,
		SchemaVersion: types.SchemaVersion,
		Intent:        st.intent,
		Flights:       st.flights,
		Hotels:        st.hotels,
		Itinerary:     st.itinerary,
		Budget:        st.budget,
		GeneratedAt:   time.Now().UTC(),
		Warnings:      st.budget.Warnings,
	}
	o.cache.Put(st.intent, result)
	return result, nil
}

func (o *Orchestrator) runSequential(ctx context.Context, st *pipelineState) error {
	if err := o.stepFlights(ctx, st); err != nil {
		return err
	}
	if err := o.stepHotels(ctx, st); err != nil {
		return err
	}
	return o.runTail(ctx, st)
}

// runParallel launches the flight and hotel lookups concurrently and awaits
// both before the remaining sequential steps. Budget allocation therefore
// always observes the completed lists.
func (o *Orchestrator) runParallel(ctx context.Context, st *pipelineState) error {
	var wg sync.WaitGroup
	var flightErr, hotelErr error
	wg.Add(2)
	go func() {
		defer wg.Done()
		flightErr = o.stepFlights(ctx, st)
	}()
	go func() {
		defer wg.Done()
		hotelErr = o.stepHotels(ctx, st)
	}()
	wg.Wait()
	if flightErr != nil {
		return flightErr
	}
	if hotelErr != nil {
		return hotelErr
	}
	return o.runTail(ctx, st)
}

// runTail covers the strictly ordered steps after the fan-out join.
func (o *Orchestrator) runTail(ctx context.Context, st *pipelineState) error {
	if err := o.stepSpots(ctx, st); err != nil {
		return err
	}
	if err := o.stepItinerary(ctx, st); err != nil {
		return err
	}
	return o.stepBudget(ctx, st)
}

// defaultStages declares the dependency graph: flights and hotels are
// independent entry nodes feeding attractions; attractions feeds synthesis;
// synthesis feeds budget.
func (o *Orchestrator) defaultStages() []stage {
	return []stage{
		{name: "flights", run: o.stepFlights},
		{name: "hotels", run: o.stepHotels},
		{name: "spots", deps: []string{"flights", "hotels"}, run: o.stepSpots},
		{name: "itinerary", deps: []string{"spots"}, run: o.stepItinerary},
		{name: "budget", deps: []string{"itinerary"}, run: o.stepBudget},
	}
}

func (o *Orchestrator) stepFlights(ctx context.Context, st *pipelineState) error {
	flights, err := o.flights.Search(ctx, st.intent)
	if err != nil {
		return err
	}
	st.flights = flights
	o.logger.Info("flights retrieved",
		"stage", "flights",
		"session_id", st.intent.SessionID,
		"count", len(flights),
	)
	return nil
}

func (o *Orchestrator) stepHotels(ctx context.Context, st *pipelineState) error {
	hotels, err := o.hotels.Search(ctx, st.intent)
	if err != nil {
		return err
	}
	st.hotels = hotels
	o.logger.Info("hotels retrieved",
		"stage", "hotels",
		"session_id", st.intent.SessionID,
		"count", len(hotels),
	)
	return nil
}

func (o *Orchestrator) stepSpots(ctx context.Context, st *pipelineState) error {
	spots, err := o.spots.Fetch(ctx, st.intent.Destination, st.intent.Preferences)
	if err != nil {
		return err
	}
	st.spots = spots
	o.logger.Info("spots retrieved",
		"stage", "spots",
		"session_id", st.intent.SessionID,
		"count", len(spots),
	)
	return nil
}

func (o *Orchestrator) stepItinerary(ctx context.Context, st *pipelineState) error {
	itinerary, err := o.synth.GenerateItinerary(ctx, st.intent, st.spots)
	if err != nil {
		return err
	}
	st.itinerary = itinerary
	o.logger.Info("itinerary generated",
		"stage", "itinerary",
		"session_id", st.intent.SessionID,
		"days", len(itinerary.Days),
	)
	return nil
}

func (o *Orchestrator) stepBudget(ctx context.Context, st *pipelineState) error {
	alloc, err := budget.Allocate(&st.intent, st.flights, st.hotels)
	if err != nil {
		return err
	}
	st.budget = alloc
	o.logger.Info("budget allocated",
		"stage", "budget",
		"session_id", st.intent.SessionID,
		"total", alloc.Total,
		"warnings", len(alloc.Warnings),
	)
	return nil
}
