package planner

import (
	"math/rand"

	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
)

// LazyPRM builds its roadmap without edge checks. Edges are validated only when a
// search returns a path through them; invalid ones are removed and the search
// repeated.
type LazyPRM struct {
	opts   RoadmapOptions
	rng    *rand.Rand
	logger *zap.SugaredLogger

	expanded int
}

// NewLazyPRM creates a lazy probabilistic roadmap planner
func NewLazyPRM(opts RoadmapOptions, logger *zap.SugaredLogger) (*LazyPRM, error) {
	if err := opts.validate(NameLazyPRM); err != nil {
		return nil, err
	}
	return &LazyPRM{opts: opts, rng: rand.New(rand.NewSource(opts.Seed)), logger: nopIfNil(logger)}, nil
}

func (p *LazyPRM) Name() string       { return NameLazyPRM }
func (p *LazyPRM) NodesExpanded() int { return p.expanded }

func unchecked(_, _ geometry.State) bool { return true }

func (p *LazyPRM) Solve(env environment.Environment, start, goal geometry.State) (Path, error) {
	p.expanded = 0
	checker := environment.NewChecker(env)
	if !checker.IsValid(start) || !checker.IsValid(goal) {
		p.logger.Debugw("infeasible query", "planner", NameLazyPRM, "start", start, "goal", goal)
		return Failure(), nil
	}
	if start == goal {
		return NewPath([]geometry.State{start}), nil
	}

	samples := sampleFree(p.rng, checker, p.opts.NumSamples)
	rm, index := buildRoadmap(samples, p.opts.KNeighbors, unchecked)
	startID := rm.attach(start, index, p.opts.KNeighbors, unchecked)
	goalID := rm.attach(goal, index, p.opts.KNeighbors, unchecked)

	removed := make(map[edgeKey]bool)
	validated := make(map[edgeKey]bool)
	isRemoved := func(k edgeKey) bool { return removed[k] }

	for round := 1; ; round++ {
		ids, expanded, err := rm.search(startID, goalID, isRemoved)
		p.expanded += expanded
		if err != nil {
			return Failure(), err
		}
		if ids == nil {
			p.logger.Debugw("roadmap exhausted", "planner", NameLazyPRM, "rounds", round,
				"removed_edges", len(removed), "expanded", p.expanded)
			return Failure(), nil
		}

		valid := true
		for i := 1; i < len(ids); i++ {
			k := keyOf(ids[i-1], ids[i])
			if validated[k] {
				continue
			}
			if checker.IsValidEdge(rm.Nodes[ids[i-1]], rm.Nodes[ids[i]]) {
				validated[k] = true
				continue
			}
			removed[k] = true
			valid = false
		}
		if valid {
			p.logger.Debugw("path found", "planner", NameLazyPRM, "rounds", round,
				"edge_checks", checker.EdgeChecks(), "roadmap_edges", rm.edgeCount())
			return NewPath(rm.states(ids)), nil
		}
	}
}
