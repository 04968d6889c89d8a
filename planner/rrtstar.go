package planner

import (
	"math"
	"math/rand"

	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
)

// RRTStarOptions configure RRT* and Informed RRT*
type RRTStarOptions struct {
	StepSize float64 `json:"step_size"`
	GoalBias float64 `json:"goal_bias"`
	MaxIter  int     `json:"max_iter"`
	// RewiringRadiusFactor is gamma in gamma*sqrt(log(n)/n)
	RewiringRadiusFactor float64 `json:"rewiring_radius_factor"`
	// GoalTolerance is the connection range of the goal, 1.5*StepSize when zero
	GoalTolerance float64 `json:"goal_tolerance"`
	// OptimalCost, when positive, is used to report the gap to the optimum
	OptimalCost float64 `json:"optimal_cost"`
	Seed        int64   `json:"seed"`
}

func DefaultRRTStarOptions() RRTStarOptions {
	return RRTStarOptions{StepSize: 1.0, GoalBias: 0.1, MaxIter: 5000, RewiringRadiusFactor: 10.0, Seed: 42}
}

// RRTStar is RRT with parent selection and rewiring inside a shrinking radius. It
// runs for all iterations and keeps the best goal connection found. In informed
// mode sampling is restricted to the ellipse of states that can still improve the
// best solution once one exists.
type RRTStar struct {
	name     string
	informed bool
	opts     RRTStarOptions
	rng      *rand.Rand
	logger   *zap.SugaredLogger

	expanded    int
	convergence ConvergenceData
}

var _ Anytime = (*RRTStar)(nil)

func newRRTStar(name string, informed bool, opts RRTStarOptions, logger *zap.SugaredLogger) (*RRTStar, error) {
	v := &validator{}
	checkTreeOptions(v, opts.StepSize, opts.GoalBias, opts.GoalTolerance, opts.MaxIter)
	v.check(opts.RewiringRadiusFactor > 0, "rewiring_radius_factor must be positive, got %g", opts.RewiringRadiusFactor)
	v.check(opts.OptimalCost >= 0, "optimal_cost must not be negative, got %g", opts.OptimalCost)
	if err := v.result(name); err != nil {
		return nil, err
	}
	opts.GoalTolerance = goalTolerance(opts.GoalTolerance, opts.StepSize)
	return &RRTStar{
		name:        name,
		informed:    informed,
		opts:        opts,
		rng:         rand.New(rand.NewSource(opts.Seed)),
		logger:      nopIfNil(logger),
		convergence: ConvergenceData{Samples: []ConvergencePoint{}},
	}, nil
}

// NewRRTStar creates an asymptotically optimal RRT*
func NewRRTStar(opts RRTStarOptions, logger *zap.SugaredLogger) (*RRTStar, error) {
	return newRRTStar(NameRRTStar, false, opts, logger)
}

// NewInformedRRTStar creates an RRT* that samples the informed ellipse after the
// first solution
func NewInformedRRTStar(opts RRTStarOptions, logger *zap.SugaredLogger) (*RRTStar, error) {
	return newRRTStar(NameInformedRRTStar, true, opts, logger)
}

func (p *RRTStar) Name() string                     { return p.name }
func (p *RRTStar) NodesExpanded() int               { return p.expanded }
func (p *RRTStar) ConvergenceData() ConvergenceData { return p.convergence }

// radius is min(gamma*sqrt(log(n)/n), 2*step) for a tree of n vertices
func (p *RRTStar) radius(n int) float64 {
	if n < 2 {
		return 2 * p.opts.StepSize
	}
	fn := float64(n)
	r := p.opts.RewiringRadiusFactor * math.Sqrt(math.Log(fn)/fn)
	return math.Min(r, 2*p.opts.StepSize)
}

func (p *RRTStar) Solve(env environment.Environment, start, goal geometry.State) (Path, error) {
	p.expanded = 0
	recorder := newConvergenceRecorder(p.opts.OptimalCost)
	defer func() { p.convergence = recorder.result() }()

	checker := environment.NewChecker(env)
	if !checker.IsValid(start) || !checker.IsValid(goal) {
		p.logger.Debugw("infeasible query", "planner", p.name, "start", start, "goal", goal)
		return Failure(), nil
	}

	t := newTree(start)
	defer func() { p.expanded = t.size() }()

	var goalNodes []int
	bestNode, bestCost := -1, math.Inf(1)
	updateBest := func(iter int) {
		for _, id := range goalNodes {
			if c := t.nodes[id].cost + t.nodes[id].state.Distance(goal); c < bestCost {
				bestNode, bestCost = id, c
			}
		}
		recorder.record(iter, bestCost)
	}

	// Iteration 0 is the bare root, loop iterations count from 1
	if reachesGoal(checker, start, goal, p.opts.GoalTolerance) {
		goalNodes = append(goalNodes, 0)
		updateBest(0)
	}

	var ellipse *informedSampler
	if p.informed {
		ellipse = newInformedSampler(start, goal)
	}
	bounds := env.Bounds()
	progressStep := max(p.opts.MaxIter/10, 1)

	for iter := 0; iter < p.opts.MaxIter; iter++ {
		var sample geometry.State
		switch {
		case p.rng.Float64() < p.opts.GoalBias:
			sample = goal
		case ellipse != nil && bestNode >= 0:
			sample = ellipse.sample(p.rng, bestCost)
		default:
			sample = sampleUniform(p.rng, bounds)
		}

		nearest := t.nearest(sample)
		from := t.nodes[nearest].state
		next := from.Steer(sample, p.opts.StepSize)
		if next == from || !checker.IsValidEdge(from, next) {
			continue
		}

		// Choose the cheapest valid parent in the neighbourhood
		neighbors := t.near(next, p.radius(t.size()+1))
		parent, cost := nearest, t.nodes[nearest].cost+from.Distance(next)
		for _, n := range neighbors {
			if n == nearest {
				continue
			}
			c := t.nodes[n].cost + t.nodes[n].state.Distance(next)
			if c < cost && checker.IsValidEdge(t.nodes[n].state, next) {
				parent, cost = n, c
			}
		}
		id := t.add(next, parent, cost)

		// Rewire neighbours that get cheaper through the new vertex
		for _, n := range neighbors {
			if n == parent {
				continue
			}
			c := cost + next.Distance(t.nodes[n].state)
			if c < t.nodes[n].cost && !t.isAncestor(n, id) && checker.IsValidEdge(next, t.nodes[n].state) {
				t.reparent(n, id, c)
			}
		}

		if reachesGoal(checker, next, goal, p.opts.GoalTolerance) {
			goalNodes = append(goalNodes, id)
		}
		updateBest(iter + 1)

		if (iter+1)%progressStep == 0 {
			p.logger.Debugf("%s progress: %d%%\tpath cost: %.3f", p.name, 100*(iter+1)/p.opts.MaxIter, bestCost)
		}
	}

	if bestNode < 0 {
		p.logger.Debugw("max iterations reached without solution", "planner", p.name, "tree_size", t.size())
		return Failure(), nil
	}
	return goalPath(t, bestNode, goal)
}
