package planner

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/af-corp/atlas-planner/internal/cache"
	"github.com/af-corp/atlas-planner/internal/telemetry"
	"github.com/af-corp/atlas-planner/internal/types"
)

type countingProviders struct {
	flightCalls atomic.Int64
	hotelCalls  atomic.Int64
	spotCalls   atomic.Int64
	synthCalls  atomic.Int64
	flightErr   error
	synthErr    error
}

func (p *countingProviders) Search(ctx context.Context, ti types.TripIntent) ([]types.FlightOption, error) {
	p.flightCalls.Add(1)
	if p.flightErr != nil {
		return nil, p.flightErr
	}
	return []types.FlightOption{{ID: "FL0", Price: 2500}}, nil
}

type countingHotels struct{ parent *countingProviders }

func (h countingHotels) Search(ctx context.Context, ti types.TripIntent) ([]types.HotelOption, error) {
	h.parent.hotelCalls.Add(1)
	return []types.HotelOption{{ID: "HT0", PricePerNight: 400, Nights: 2, TotalPrice: 800}}, nil
}

type countingSpots struct{ parent *countingProviders }

func (s countingSpots) Fetch(ctx context.Context, destination string, preferences []string) ([]string, error) {
	s.parent.spotCalls.Add(1)
	return []string{"City Museum"}, nil
}

type countingSynth struct{ parent *countingProviders }

func (g countingSynth) GenerateItinerary(ctx context.Context, ti types.TripIntent, spots []string) (types.Itinerary, error) {
	g.parent.synthCalls.Add(1)
	if g.parent.synthErr != nil {
		return types.Itinerary{}, g.parent.synthErr
	}
	return types.Itinerary{
		Days:    []types.DayPlan{{DayIndex: 1, MainSpots: spots, Meals: []string{"breakfast", "lunch", "dinner"}}},
		Summary: "ok",
	}, nil
}

func newTestOrchestrator(p *countingProviders, enableStaged bool) (*Orchestrator, *telemetry.Metrics) {
	metrics := telemetry.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	o := NewOrchestrator(p, countingHotels{p}, countingSpots{p}, countingSynth{p},
		cache.NewMemoryCache(), metrics, logger, enableStaged)
	return o, metrics
}

func planIntent() types.TripIntent {
	ti := types.NewTripIntent("s1", "raw", "CNY")
	ti.Origin = "Beijing"
	ti.Destination = "Tokyo"
	d := time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)
	ti.DepartDate = &d
	ti.Days = 3
	budget := 10000.0
	ti.BudgetTotal = &budget
	ti.FinalizeDates()
	return ti
}

func counterValue(c prometheus.Counter) float64 {
	var metric dto.Metric
	c.Write(&metric)
	return *metric.Counter.Value
}

func TestRun_AllStrategiesSameShape(t *testing.T) {
	for _, strategy := range []Strategy{StrategySequential, StrategyParallel, StrategyStaged} {
		p := &countingProviders{}
		o, _ := newTestOrchestrator(p, true)

		result, err := o.Run(context.Background(), planIntent(), strategy)
		if err != nil {
			t.Fatalf("%s: Run failed: %v", strategy, err)
		}
		if result.SchemaVersion != types.SchemaVersion {
			t.Errorf("%s: schema version = %q", strategy, result.SchemaVersion)
		}
		if len(result.Flights) != 1 || len(result.Hotels) != 1 {
			t.Errorf("%s: missing provider results", strategy)
		}
		if len(result.Itinerary.Days) != 1 {
			t.Errorf("%s: missing itinerary", strategy)
		}
		if result.Budget.Total != 10000 {
			t.Errorf("%s: budget total = %f", strategy, result.Budget.Total)
		}
		if result.GeneratedAt.IsZero() {
			t.Errorf("%s: generated_at unset", strategy)
		}
		if p.flightCalls.Load() != 1 || p.hotelCalls.Load() != 1 || p.spotCalls.Load() != 1 || p.synthCalls.Load() != 1 {
			t.Errorf("%s: each step must run exactly once", strategy)
		}
	}
}

func TestRun_CacheHitSkipsProviders(t *testing.T) {
	p := &countingProviders{}
	o, metrics := newTestOrchestrator(p, true)
	ti := planIntent()

	first, err := o.Run(context.Background(), ti, StrategySequential)
	if err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Second identical call, even under another strategy, must not touch any
	// provider.
	second, err := o.Run(context.Background(), ti, StrategyParallel)
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second != first {
		t.Error("expected the cached result")
	}
	if p.flightCalls.Load() != 1 {
		t.Errorf("cache hit must skip providers, got %d flight calls", p.flightCalls.Load())
	}
	if counterValue(metrics.CacheHits) != 1 || counterValue(metrics.CacheMisses) != 1 {
		t.Errorf("expected 1 hit and 1 miss, got %v/%v",
			counterValue(metrics.CacheHits), counterValue(metrics.CacheMisses))
	}
}

func TestRun_ProviderErrorPropagates(t *testing.T) {
	p := &countingProviders{flightErr: types.NewDomainError(types.CodeFlightAPIFail, "down")}
	o, _ := newTestOrchestrator(p, true)

	_, err := o.Run(context.Background(), planIntent(), StrategySequential)
	var de *types.DomainError
	if !errors.As(err, &de) || de.Code != types.CodeFlightAPIFail {
		t.Fatalf("expected FLIGHT_API_FAIL, got %v", err)
	}

	// A failed run must not poison the cache.
	p.flightErr = nil
	result, err := o.Run(context.Background(), planIntent(), StrategySequential)
	if err != nil || result == nil {
		t.Fatalf("retry after failure should succeed, got %v", err)
	}
}

func TestRun_StagedFallsBackToParallel(t *testing.T) {
	p := &countingProviders{}
	o, metrics := newTestOrchestrator(p, false)

	if o.StagedAvailable() {
		t.Fatal("staged scheduler should be unbound")
	}

	result, err := o.Run(context.Background(), planIntent(), StrategyStaged)
	if err != nil {
		t.Fatalf("staged fallback must not error: %v", err)
	}
	if result == nil || len(result.Flights) != 1 {
		t.Fatal("fallback run should produce a full result")
	}
	if counterValue(metrics.StagedFallbacks) != 1 {
		t.Errorf("expected 1 staged fallback, got %v", counterValue(metrics.StagedFallbacks))
	}
}

func TestRun_WorkflowMetrics(t *testing.T) {
	p := &countingProviders{}
	o, metrics := newTestOrchestrator(p, true)

	o.Run(context.Background(), planIntent(), StrategyStaged)

	counter, err := metrics.WorkflowsCompleted.GetMetricWithLabelValues("staged")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	counter.Write(&metric)
	if *metric.Counter.Value != 1 {
		t.Errorf("expected 1 staged workflow completion, got %v", *metric.Counter.Value)
	}
}

func TestRun_BudgetWarningsSurface(t *testing.T) {
	p := &countingProviders{}
	o, _ := newTestOrchestrator(p, true)
	ti := planIntent()
	ti.BudgetTotal = nil

	result, err := o.Run(context.Background(), ti, StrategySequential)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	found := false
	for _, w := range result.Warnings {
		if w == types.WarnBudgetEstimated {
			found = true
		}
	}
	if !found {
		t.Errorf("budget warnings must surface on the result, got %v", result.Warnings)
	}
}
