package planner

import (
	"math/rand"

	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
)

// RRTOptions configure RRT
type RRTOptions struct {
	StepSize float64 `json:"step_size"`
	GoalBias float64 `json:"goal_bias"`
	MaxIter  int     `json:"max_iter"`
	// GoalTolerance is the connection range of the goal, 1.5*StepSize when zero
	GoalTolerance float64 `json:"goal_tolerance"`
	Seed          int64   `json:"seed"`
}

func DefaultRRTOptions() RRTOptions {
	return RRTOptions{StepSize: 1.0, GoalBias: 0.1, MaxIter: 5000, Seed: 42}
}

func checkTreeOptions(v *validator, step, bias, tolerance float64, maxIter int) {
	v.check(step > 0, "step_size must be positive, got %g", step)
	v.check(bias >= 0 && bias <= 1, "goal_bias must be in [0,1], got %g", bias)
	v.check(maxIter > 0, "max_iter must be positive, got %d", maxIter)
	v.check(tolerance >= 0, "goal_tolerance must not be negative, got %g", tolerance)
}

func goalTolerance(tolerance, step float64) float64 {
	if tolerance == 0 {
		return 1.5 * step
	}
	return tolerance
}

// RRT grows a tree from the start until a vertex can be connected to the goal
type RRT struct {
	opts   RRTOptions
	rng    *rand.Rand
	logger *zap.SugaredLogger

	expanded int
}

// NewRRT creates a rapidly-exploring random tree planner
func NewRRT(opts RRTOptions, logger *zap.SugaredLogger) (*RRT, error) {
	v := &validator{}
	checkTreeOptions(v, opts.StepSize, opts.GoalBias, opts.GoalTolerance, opts.MaxIter)
	if err := v.result(NameRRT); err != nil {
		return nil, err
	}
	opts.GoalTolerance = goalTolerance(opts.GoalTolerance, opts.StepSize)
	return &RRT{opts: opts, rng: rand.New(rand.NewSource(opts.Seed)), logger: nopIfNil(logger)}, nil
}

func (p *RRT) Name() string       { return NameRRT }
func (p *RRT) NodesExpanded() int { return p.expanded }

func (p *RRT) Solve(env environment.Environment, start, goal geometry.State) (Path, error) {
	p.expanded = 0
	checker := environment.NewChecker(env)
	if !checker.IsValid(start) || !checker.IsValid(goal) {
		p.logger.Debugw("infeasible query", "planner", NameRRT, "start", start, "goal", goal)
		return Failure(), nil
	}

	t := newTree(start)
	defer func() { p.expanded = t.size() }()

	if reachesGoal(checker, start, goal, p.opts.GoalTolerance) {
		return goalPath(t, 0, goal)
	}

	bounds := env.Bounds()
	for iter := 0; iter < p.opts.MaxIter; iter++ {
		sample := sampleWithBias(p.rng, bounds, goal, p.opts.GoalBias)
		nearest := t.nearest(sample)
		from := t.nodes[nearest].state
		next := from.Steer(sample, p.opts.StepSize)
		if next == from || !checker.IsValidEdge(from, next) {
			continue
		}
		id := t.add(next, nearest, t.nodes[nearest].cost+from.Distance(next))

		if reachesGoal(checker, next, goal, p.opts.GoalTolerance) {
			p.logger.Debugw("goal reached", "planner", NameRRT, "iteration", iter, "tree_size", t.size())
			return goalPath(t, id, goal)
		}
	}

	p.logger.Debugw("max iterations reached", "planner", NameRRT, "max_iter", p.opts.MaxIter, "tree_size", t.size())
	return Failure(), nil
}

// sampleWithBias returns the goal with probability bias, else a uniform state of b
func sampleWithBias(rng *rand.Rand, b environment.Bounds, goal geometry.State, bias float64) geometry.State {
	if rng.Float64() < bias {
		return goal
	}
	return sampleUniform(rng, b)
}

func sampleUniform(rng *rand.Rand, b environment.Bounds) geometry.State {
	return geometry.NewState(b.MinX+rng.Float64()*b.Width(), b.MinY+rng.Float64()*b.Height())
}

// reachesGoal reports whether s is within tolerance of goal with a valid final edge
func reachesGoal(checker *environment.Checker, s, goal geometry.State, tolerance float64) bool {
	return s.Distance(goal) <= tolerance && checker.IsValidEdge(s, goal)
}

// goalPath is the tree path to id, extended by the exact goal state
func goalPath(t *tree, id int, goal geometry.State) (Path, error) {
	states, err := t.pathTo(id)
	if err != nil {
		return Failure(), err
	}
	if states[len(states)-1] != goal {
		states = append(states, goal)
	}
	return NewPath(states), nil
}
