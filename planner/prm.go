package planner

import (
	"math/rand"
	"time"

	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
)

// RoadmapOptions configure PRM and Lazy PRM
type RoadmapOptions struct {
	NumSamples int   `json:"num_samples"`
	KNeighbors int   `json:"k_neighbors"`
	Seed       int64 `json:"seed"`
}

func DefaultRoadmapOptions() RoadmapOptions {
	return RoadmapOptions{NumSamples: 500, KNeighbors: 10, Seed: 42}
}

func (o RoadmapOptions) validate(name string) error {
	v := &validator{}
	v.check(o.NumSamples > 0, "num_samples must be positive, got %d", o.NumSamples)
	v.check(o.KNeighbors > 0, "k_neighbors must be positive, got %d", o.KNeighbors)
	return v.result(name)
}

// PRM builds a collision-checked roadmap on every Solve and queries it with A*
type PRM struct {
	opts   RoadmapOptions
	rng    *rand.Rand
	logger *zap.SugaredLogger

	expanded int
}

// NewPRM creates a probabilistic roadmap planner
func NewPRM(opts RoadmapOptions, logger *zap.SugaredLogger) (*PRM, error) {
	if err := opts.validate(NamePRM); err != nil {
		return nil, err
	}
	return &PRM{opts: opts, rng: rand.New(rand.NewSource(opts.Seed)), logger: nopIfNil(logger)}, nil
}

func (p *PRM) Name() string       { return NamePRM }
func (p *PRM) NodesExpanded() int { return p.expanded }

func (p *PRM) Solve(env environment.Environment, start, goal geometry.State) (Path, error) {
	p.expanded = 0
	checker := environment.NewChecker(env)
	if !checker.IsValid(start) || !checker.IsValid(goal) {
		p.logger.Debugw("infeasible query", "planner", NamePRM, "start", start, "goal", goal)
		return Failure(), nil
	}
	if start == goal {
		return NewPath([]geometry.State{start}), nil
	}

	buildStart := time.Now()
	samples := sampleFree(p.rng, checker, p.opts.NumSamples)
	rm, index := buildRoadmap(samples, p.opts.KNeighbors, checker.IsValidEdge)
	p.logger.Debugw("roadmap built", "planner", NamePRM, "nodes", len(samples), "edges", rm.edgeCount(),
		"elapsed", time.Since(buildStart))

	startID := rm.attach(start, index, p.opts.KNeighbors, checker.IsValidEdge)
	goalID := rm.attach(goal, index, p.opts.KNeighbors, checker.IsValidEdge)

	ids, expanded, err := rm.search(startID, goalID, nil)
	p.expanded = expanded
	if err != nil {
		return Failure(), err
	}
	if ids == nil {
		p.logger.Debugw("roadmap exhausted", "planner", NamePRM, "expanded", expanded)
		return Failure(), nil
	}
	return NewPath(rm.states(ids)), nil
}
