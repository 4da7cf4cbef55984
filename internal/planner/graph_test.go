package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
)

func TestNewStageGraph_Validation(t *testing.T) {
	noop := func(ctx context.Context, st *pipelineState) error { return nil }

	tests := []struct {
		name   string
		stages []stage
		valid  bool
	}{
		{"empty name", []stage{{name: "", run: noop}}, false},
		{"duplicate", []stage{{name: "a", run: noop}, {name: "a", run: noop}}, false},
		{"unknown dep", []stage{{name: "a", deps: []string{"ghost"}, run: noop}}, false},
		{"cycle", []stage{
			{name: "a", deps: []string{"b"}, run: noop},
			{name: "b", deps: []string{"a"}, run: noop},
		}, false},
		{"valid chain", []stage{
			{name: "a", run: noop},
			{name: "b", deps: []string{"a"}, run: noop},
		}, true},
	}

	for _, tt := range tests {
		_, err := newStageGraph(tt.stages)
		if tt.valid && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("%s: expected validation error", tt.name)
		}
	}
}

func TestStageGraph_ExecutionOrder(t *testing.T) {
	var mu sync.Mutex
	var order []string
	record := func(name string) stageFn {
		return func(ctx context.Context, st *pipelineState) error {
			mu.Lock()
			order = append(order, name)
			mu.Unlock()
			return nil
		}
	}
	// Two independent roots feed a join stage. Root stages run in the same
	// wave, so only the join's position is deterministic.
	g, err := newStageGraph([]stage{
		{name: "left", run: record("left")},
		{name: "right", run: record("right")},
		{name: "join", deps: []string{"left", "right"}, run: record("join")},
	})
	if err != nil {
		t.Fatalf("graph construction failed: %v", err)
	}
	if err := g.execute(context.Background(), &pipelineState{}); err != nil {
		t.Fatalf("execute failed: %v", err)
	}
	if len(order) != 3 || order[2] != "join" {
		t.Errorf("join must run after both roots, got %v", order)
	}
}

func TestStageGraph_FailFast(t *testing.T) {
	boom := errors.New("boom")
	var ranAfter bool
	g, _ := newStageGraph([]stage{
		{name: "first", run: func(ctx context.Context, st *pipelineState) error { return boom }},
		{name: "second", deps: []string{"first"}, run: func(ctx context.Context, st *pipelineState) error {
			ranAfter = true
			return nil
		}},
	})

	err := g.execute(context.Background(), &pipelineState{})
	if !errors.Is(err, boom) {
		t.Fatalf("expected stage error, got %v", err)
	}
	if ranAfter {
		t.Error("stages after a failed wave must not run")
	}
}
