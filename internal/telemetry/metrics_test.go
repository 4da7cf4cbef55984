package telemetry

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func TestNewMetrics_RegistersAll(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	if m.PlanRequests == nil {
		t.Error("PlanRequests should not be nil")
	}
	if m.WorkflowsCompleted == nil {
		t.Error("WorkflowsCompleted should not be nil")
	}
	if m.WorkflowLatencyMs == nil {
		t.Error("WorkflowLatencyMs should not be nil")
	}
	if m.ModelRepairs == nil {
		t.Error("ModelRepairs should not be nil")
	}
	if m.StagedFallbacks == nil {
		t.Error("StagedFallbacks should not be nil")
	}

	// A second instance on a fresh registry must not panic on duplicate
	// registration.
	NewMetrics(prometheus.NewRegistry())
}

func TestMetrics_CounterIncrements(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.PlanRequests.Inc()
	m.PlanRequests.Inc()
	m.CacheHits.Inc()

	var metric dto.Metric
	m.PlanRequests.Write(&metric)
	if *metric.Counter.Value != 2 {
		t.Errorf("expected 2 plan requests, got %v", *metric.Counter.Value)
	}
	m.CacheHits.Write(&metric)
	if *metric.Counter.Value != 1 {
		t.Errorf("expected 1 cache hit, got %v", *metric.Counter.Value)
	}
}

func TestMetrics_WorkflowsByStrategy(t *testing.T) {
	m := NewMetrics(prometheus.NewRegistry())

	m.WorkflowsCompleted.WithLabelValues("sequential").Inc()
	m.WorkflowsCompleted.WithLabelValues("staged").Inc()
	m.WorkflowsCompleted.WithLabelValues("staged").Inc()

	counter, err := m.WorkflowsCompleted.GetMetricWithLabelValues("staged")
	if err != nil {
		t.Fatalf("failed to get metric: %v", err)
	}
	var metric dto.Metric
	counter.Write(&metric)
	if *metric.Counter.Value != 2 {
		t.Errorf("expected 2 staged workflows, got %v", *metric.Counter.Value)
	}
}

func TestErrorTracker_RingAndSnapshot(t *testing.T) {
	tr := NewErrorTracker(3)

	tr.Record("FLIGHT_API_FAIL", "flights", "s1", "boom")
	tr.Record("HOTEL_API_FAIL", "hotels", "s1", "boom")
	tr.Record("SPOT_FETCH_FAIL", "spots", "s2", "boom")
	tr.Record("BUDGET_ALLOC_FAIL", "budget", "s2", "boom")

	items := tr.Snapshot(0, 0)
	if len(items) != 3 {
		t.Fatalf("expected capacity-bounded 3 records, got %d", len(items))
	}
	if items[0].Code != "HOTEL_API_FAIL" {
		t.Errorf("oldest record should have been dropped, got %s first", items[0].Code)
	}

	limited := tr.Snapshot(2, 0)
	if len(limited) != 2 {
		t.Fatalf("expected limit=2 to return 2 records, got %d", len(limited))
	}
	if limited[1].Code != "BUDGET_ALLOC_FAIL" {
		t.Errorf("snapshot should keep the most recent records, got %s last", limited[1].Code)
	}
}
