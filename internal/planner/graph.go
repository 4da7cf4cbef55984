package planner

import (
	"context"
	"fmt"
	"sync"

	"github.com/af-corp/atlas-planner/internal/types"
)

// pipelineState carries intermediate results between stages. Stages running
// in the same wave write disjoint fields; the scheduler's join provides the
// happens-before edge for readers in later waves.
type pipelineState struct {
	intent    types.TripIntent
	flights   []types.FlightOption
	hotels    []types.HotelOption
	spots     []string
	itinerary types.Itinerary
	budget    types.BudgetAllocation
}

type stageFn func(ctx context.Context, st *pipelineState) error

// stage is one node of the staged execution graph.
type stage struct {
	name string
	deps []string
	run  stageFn
}

// stageGraph executes stages in dependency order, running every ready stage
// of a wave concurrently. Construction validates the graph; a graph that
// fails validation is unavailable and the orchestrator binds its fallback
// strategy instead.
type stageGraph struct {
	stages []stage
}

func newStageGraph(stages []stage) (*stageGraph, error) {
	seen := make(map[string]bool, len(stages))
	for _, s := range stages {
		if s.name == "" {
			return nil, fmt.Errorf("stage with empty name")
		}
		if seen[s.name] {
			return nil, fmt.Errorf("duplicate stage %q", s.name)
		}
		seen[s.name] = true
	}
	for _, s := range stages {
		for _, d := range s.deps {
			if !seen[d] {
				return nil, fmt.Errorf("stage %q depends on unknown stage %q", s.name, d)
			}
		}
	}
	// Cycle check: repeatedly peel stages whose deps are all peeled.
	done := make(map[string]bool, len(stages))
	for len(done) < len(stages) {
		progressed := false
		for _, s := range stages {
			if done[s.name] {
				continue
			}
			if allDone(done, s.deps) {
				done[s.name] = true
				progressed = true
			}
		}
		if !progressed {
			return nil, fmt.Errorf("stage graph has a cycle")
		}
	}
	return &stageGraph{stages: stages}, nil
}

func allDone(done map[string]bool, deps []string) bool {
	for _, d := range deps {
		if !done[d] {
			return false
		}
	}
	return true
}

// execute runs the graph to completion, failing fast on the first stage
// error. Stages with satisfied dependencies run concurrently within a wave.
func (g *stageGraph) execute(ctx context.Context, st *pipelineState) error {
	done := make(map[string]bool, len(g.stages))
	for len(done) < len(g.stages) {
		var wave []stage
		for _, s := range g.stages {
			if !done[s.name] && allDone(done, s.deps) {
				wave = append(wave, s)
			}
		}

		var wg sync.WaitGroup
		errs := make([]error, len(wave))
		for i, s := range wave {
			wg.Add(1)
			go func(i int, s stage) {
				defer wg.Done()
				errs[i] = s.run(ctx, st)
			}(i, s)
		}
		wg.Wait()

		for _, err := range errs {
			if err != nil {
				return err
			}
		}
		for _, s := range wave {
			done[s.name] = true
		}
	}
	return nil
}
