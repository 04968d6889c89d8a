package planner

import (
	"container/heap"
	"encoding/json"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"planbench/environment"
	"planbench/geometry"
	"planbench/mapgen"
)

func testLogger(t *testing.T) *zap.SugaredLogger {
	return zaptest.NewLogger(t).Sugar()
}

func emptyGrid(t *testing.T, w, h int) *environment.Grid {
	t.Helper()
	g, err := environment.NewEmptyGrid(w, h)
	require.NoError(t, err)
	return g
}

func randomGrid(t *testing.T, size int, density float64, seed int64) *environment.Grid {
	t.Helper()
	g, err := mapgen.Generate(mapgen.Params{
		Width: size, Height: size, ObstacleDensity: density, Seed: seed, Kind: mapgen.RandomUniform,
	})
	require.NoError(t, err)
	return g
}

func emptyContinuous(t *testing.T) *environment.Continuous {
	t.Helper()
	env, err := environment.NewContinuous(environment.Bounds{MaxX: 10, MaxY: 10}, nil)
	require.NoError(t, err)
	return env
}

// wallContinuous is a 10x10 room with a block in the middle leaving gaps above
// and below
func wallContinuous(t *testing.T) *environment.Continuous {
	t.Helper()
	block, err := geometry.NewPolygon([]geometry.State{{X: 4, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 8}, {X: 4, Y: 8}})
	require.NoError(t, err)
	env, err := environment.NewContinuous(environment.Bounds{MaxX: 10, MaxY: 10}, []geometry.Shape{block})
	require.NoError(t, err)
	return env
}

func requireValidPath(t *testing.T, env environment.Environment, path Path, start, goal geometry.State) {
	t.Helper()
	require.True(t, path.Success)
	require.NotEmpty(t, path.States)
	assert.Equal(t, start, path.States[0])
	assert.Equal(t, goal, path.States[len(path.States)-1])
	for i := 1; i < len(path.States); i++ {
		assert.True(t, env.IsValidEdge(path.States[i-1], path.States[i]),
			"edge %v -> %v collides", path.States[i-1], path.States[i])
	}
	assert.InDelta(t, geometry.PathLength(path.States), path.Length, 1e-9)
	assert.GreaterOrEqual(t, path.Length, start.Distance(goal)-1e-9)
}

func TestDijkstraEmptyGrid(t *testing.T) {
	env := emptyGrid(t, 20, 20)
	p, err := NewDijkstra(DefaultDijkstraOptions(), testLogger(t))
	require.NoError(t, err)

	start, goal := geometry.NewState(0, 0), geometry.NewState(19, 19)
	path, err := p.Solve(env, start, goal)
	require.NoError(t, err)
	requireValidPath(t, env, path, start, goal)
	assert.InDelta(t, 19*math.Sqrt2, path.Length, 1e-9)
	assert.Len(t, path.States, 20)
	assert.Positive(t, p.NodesExpanded())
	assert.LessOrEqual(t, p.NodesExpanded(), 400)
}

func TestAStarMatchesDijkstra(t *testing.T) {
	cases := []struct {
		name         string
		heuristic    Heuristic
		connectivity int
	}{
		{"diagonal", Diagonal, 8},
		{"euclidean", Euclidean, 8},
		{"manhattan-4", Manhattan, 4},
		{"euclidean-4", Euclidean, 4},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			dijkstra, err := NewDijkstra(DijkstraOptions{Connectivity: tc.connectivity}, nil)
			require.NoError(t, err)
			astar, err := NewAStar(AStarOptions{Heuristic: tc.heuristic, Connectivity: tc.connectivity}, nil)
			require.NoError(t, err)

			for seed := int64(1); seed <= 6; seed++ {
				env := randomGrid(t, 30, 0.3, seed)
				start, goal := geometry.NewState(0, 0), geometry.NewState(29, 29)

				want, err := dijkstra.Solve(env, start, goal)
				require.NoError(t, err)
				got, err := astar.Solve(env, start, goal)
				require.NoError(t, err)

				require.Equal(t, want.Success, got.Success, "seed %d", seed)
				if !want.Success {
					continue
				}
				requireValidPath(t, env, got, start, goal)
				assert.InDelta(t, want.Length, got.Length, 1e-9, "seed %d", seed)
			}
		})
	}
}

func TestWeightedAStar(t *testing.T) {
	astar, err := NewAStar(DefaultAStarOptions(), nil)
	require.NoError(t, err)
	unit, err := NewWeightedAStar(WeightedAStarOptions{Heuristic: Diagonal, Connectivity: 8, Weight: 1}, nil)
	require.NoError(t, err)
	inflated, err := NewWeightedAStar(DefaultWeightedAStarOptions(), nil)
	require.NoError(t, err)

	for seed := int64(10); seed < 15; seed++ {
		env := randomGrid(t, 25, 0.25, seed)
		start, goal := geometry.NewState(0, 0), geometry.NewState(24, 24)

		optimal, err := astar.Solve(env, start, goal)
		require.NoError(t, err)
		same, err := unit.Solve(env, start, goal)
		require.NoError(t, err)
		assert.Equal(t, optimal, same)
		assert.Equal(t, astar.NodesExpanded(), unit.NodesExpanded())

		fast, err := inflated.Solve(env, start, goal)
		require.NoError(t, err)
		require.Equal(t, optimal.Success, fast.Success)
		if optimal.Success {
			requireValidPath(t, env, fast, start, goal)
			assert.GreaterOrEqual(t, fast.Length, optimal.Length-1e-9)
			assert.LessOrEqual(t, fast.Length, 1.5*optimal.Length+1e-9)
		}
	}
}

func TestThetaStarStraightLine(t *testing.T) {
	env := emptyGrid(t, 20, 20)
	p, err := NewThetaStar(DefaultThetaStarOptions(), testLogger(t))
	require.NoError(t, err)

	start, goal := geometry.NewState(0, 0), geometry.NewState(19, 5)
	path, err := p.Solve(env, start, goal)
	require.NoError(t, err)
	requireValidPath(t, env, path, start, goal)
	assert.Equal(t, []geometry.State{start, goal}, path.States)
	assert.InDelta(t, math.Hypot(19, 5), path.Length, 1e-9)
}

func TestThetaStarAroundObstacles(t *testing.T) {
	theta, err := NewThetaStar(DefaultThetaStarOptions(), nil)
	require.NoError(t, err)
	astar, err := NewAStar(AStarOptions{Heuristic: Euclidean, Connectivity: 8}, nil)
	require.NoError(t, err)

	for seed := int64(1); seed <= 4; seed++ {
		env := randomGrid(t, 30, 0.2, seed)
		start, goal := geometry.NewState(0, 0), geometry.NewState(29, 29)
		grid, err := astar.Solve(env, start, goal)
		require.NoError(t, err)
		anyAngle, err := theta.Solve(env, start, goal)
		require.NoError(t, err)
		require.Equal(t, grid.Success, anyAngle.Success)
		if grid.Success {
			requireValidPath(t, env, anyAngle, start, goal)
			assert.LessOrEqual(t, len(anyAngle.States), len(grid.States))
		}
	}
}

func TestGridSearchKeepsExactEndpoints(t *testing.T) {
	logger := testLogger(t)
	var planners []Planner
	add := func(p Planner, err error) {
		require.NoError(t, err)
		planners = append(planners, p)
	}
	add(NewDijkstra(DefaultDijkstraOptions(), logger))
	add(NewAStar(DefaultAStarOptions(), logger))
	add(NewWeightedAStar(DefaultWeightedAStarOptions(), logger))
	add(NewThetaStar(DefaultThetaStarOptions(), logger))

	start, goal := geometry.NewState(0.5, 0.5), geometry.NewState(7.5, 3.5)
	for _, p := range planners {
		path, err := p.Solve(emptyGrid(t, 10, 10), start, goal)
		require.NoError(t, err)
		requireValidPath(t, emptyGrid(t, 10, 10), path, start, goal)
		assert.Equal(t, geometry.NewState(0, 0), path.States[1], p.Name())
		assert.Equal(t, geometry.NewState(7, 3), path.States[len(path.States)-2], p.Name())

		for seed := int64(1); seed <= 4; seed++ {
			env := randomGrid(t, 20, 0.2, seed)
			far := geometry.NewState(19.25, 19.75)
			path, err := p.Solve(env, start, far)
			require.NoError(t, err)
			if path.Success {
				requireValidPath(t, env, path, start, far)
			}
		}
	}

	// Integer queries come back unchanged
	path, err := planners[0].Solve(emptyGrid(t, 5, 5), geometry.NewState(0, 0), geometry.NewState(4, 0))
	require.NoError(t, err)
	assert.Len(t, path.States, 5)
}

func TestPriorityQueueOrder(t *testing.T) {
	nodes := []*searchNode{
		{id: 0, f: 5, g: 1, seq: 0},
		{id: 1, f: 4, g: 1, seq: 1},
		{id: 2, f: 4, g: 3, seq: 2},
		{id: 3, f: 4, g: 3, seq: 3},
		{id: 4, f: 4, g: 2, seq: 4},
		{id: 5, f: 3.5, g: 0, seq: 5},
	}
	pq := &priorityQueue{}
	heap.Init(pq)
	// Push in reverse so the heap cannot rely on insertion order
	for i := len(nodes) - 1; i >= 0; i-- {
		heap.Push(pq, nodes[i])
	}

	var order []int
	for pq.Len() > 0 {
		order = append(order, heap.Pop(pq).(*searchNode).id)
	}
	// lower f first, then larger g, then earlier discovery
	assert.Equal(t, []int{5, 2, 3, 4, 1, 0}, order)
}

func TestRoadmapQueueOrder(t *testing.T) {
	pq := &roadmapQueue{}
	heap.Init(pq)
	for _, n := range []*roadmapNode{
		{id: 9, f: 2, g: 1},
		{id: 3, f: 2, g: 1},
		{id: 7, f: 2, g: 1.5},
		{id: 1, f: 1},
	} {
		heap.Push(pq, n)
	}
	var order []int
	for pq.Len() > 0 {
		order = append(order, heap.Pop(pq).(*roadmapNode).id)
	}
	assert.Equal(t, []int{1, 7, 3, 9}, order)
}

func TestGridSearchNeedsLattice(t *testing.T) {
	p, err := NewAStar(DefaultAStarOptions(), testLogger(t))
	require.NoError(t, err)
	path, err := p.Solve(emptyContinuous(t), geometry.NewState(1, 1), geometry.NewState(2, 2))
	require.NoError(t, err)
	assert.False(t, path.Success)
	assert.Empty(t, path.States)
}

func TestGridSearchUnreachable(t *testing.T) {
	occ := make([][]bool, 5)
	for r := range occ {
		occ[r] = make([]bool, 5)
		occ[r][2] = true
	}
	env, err := environment.NewGrid(5, 5, occ)
	require.NoError(t, err)
	p, err := NewDijkstra(DefaultDijkstraOptions(), testLogger(t))
	require.NoError(t, err)

	path, err := p.Solve(env, geometry.NewState(0, 0), geometry.NewState(4, 4))
	require.NoError(t, err)
	assert.False(t, path.Success)
	assert.Equal(t, 10, p.NodesExpanded())
}

func allPlanners(t *testing.T) []Planner {
	t.Helper()
	logger := testLogger(t)
	var out []Planner
	add := func(p Planner, err error) {
		require.NoError(t, err)
		out = append(out, p)
	}
	add(NewDijkstra(DefaultDijkstraOptions(), logger))
	add(NewAStar(DefaultAStarOptions(), logger))
	add(NewWeightedAStar(DefaultWeightedAStarOptions(), logger))
	add(NewThetaStar(DefaultThetaStarOptions(), logger))
	add(NewPRM(DefaultRoadmapOptions(), logger))
	add(NewLazyPRM(DefaultRoadmapOptions(), logger))
	add(NewRRT(DefaultRRTOptions(), logger))
	add(NewRRTStar(DefaultRRTStarOptions(), logger))
	add(NewInformedRRTStar(DefaultRRTStarOptions(), logger))
	return out
}

func TestStartInObstacle(t *testing.T) {
	occ := make([][]bool, 10)
	for r := range occ {
		occ[r] = make([]bool, 10)
	}
	occ[2][3] = true
	env, err := environment.NewGrid(10, 10, occ)
	require.NoError(t, err)

	planners := allPlanners(t)
	require.Len(t, planners, 9)
	for _, p := range planners {
		t.Run(p.Name(), func(t *testing.T) {
			path, err := p.Solve(env, geometry.NewState(3, 2), geometry.NewState(8, 8))
			require.NoError(t, err)
			assert.False(t, path.Success)
			assert.NotNil(t, path.States)
			assert.Empty(t, path.States)
			assert.Zero(t, path.Length)

			path, err = p.Solve(env, geometry.NewState(1, 1), geometry.NewState(-1, 5))
			require.NoError(t, err)
			assert.False(t, path.Success)
		})
	}
}

func TestSamplingPlannersAroundBlock(t *testing.T) {
	env := wallContinuous(t)
	start, goal := geometry.NewState(1, 5), geometry.NewState(9, 5)

	prm, err := NewPRM(DefaultRoadmapOptions(), testLogger(t))
	require.NoError(t, err)
	lazy, err := NewLazyPRM(DefaultRoadmapOptions(), testLogger(t))
	require.NoError(t, err)
	rrt, err := NewRRT(DefaultRRTOptions(), testLogger(t))
	require.NoError(t, err)
	starOpts := DefaultRRTStarOptions()
	starOpts.MaxIter = 1500
	star, err := NewRRTStar(starOpts, testLogger(t))
	require.NoError(t, err)
	informed, err := NewInformedRRTStar(starOpts, testLogger(t))
	require.NoError(t, err)

	for _, p := range []Planner{prm, lazy, rrt, star, informed} {
		t.Run(p.Name(), func(t *testing.T) {
			path, err := p.Solve(env, start, goal)
			require.NoError(t, err)
			requireValidPath(t, env, path, start, goal)
			// The block forces a detour through one of the gaps
			assert.Greater(t, path.Length, 9.0)
			assert.Positive(t, p.NodesExpanded())
		})
	}
}

func TestRoadmapPlannersOnGrid(t *testing.T) {
	env, err := mapgen.Generate(mapgen.Params{Width: 20, Height: 20, ObstacleDensity: 0.1, Seed: 3, Kind: mapgen.RandomUniform})
	require.NoError(t, err)
	start, goal := geometry.NewState(0.5, 0.5), geometry.NewState(19.5, 19.5)

	for _, newPlanner := range []func(RoadmapOptions, *zap.SugaredLogger) (Planner, error){
		func(o RoadmapOptions, l *zap.SugaredLogger) (Planner, error) { return NewPRM(o, l) },
		func(o RoadmapOptions, l *zap.SugaredLogger) (Planner, error) { return NewLazyPRM(o, l) },
	} {
		p, err := newPlanner(RoadmapOptions{NumSamples: 800, KNeighbors: 12, Seed: 7}, testLogger(t))
		require.NoError(t, err)
		path, err := p.Solve(env, start, goal)
		require.NoError(t, err)
		if path.Success {
			requireValidPath(t, env, path, start, goal)
			requireDenselyFree(t, env, path)
		}
	}
}

// requireDenselyFree samples every path segment and checks each sample point
func requireDenselyFree(t *testing.T, env environment.Environment, path Path) {
	t.Helper()
	for i := 1; i < len(path.States); i++ {
		a, b := path.States[i-1], path.States[i]
		for k := 0; k <= 100; k++ {
			f := float64(k) / 100
			p := geometry.NewState(a.X+(b.X-a.X)*f, a.Y+(b.Y-a.Y)*f)
			require.True(t, env.IsValid(p), "segment %v -> %v collides at %v", a, b, p)
		}
	}
}

func TestRoadmapStartEqualsGoal(t *testing.T) {
	p, err := NewPRM(DefaultRoadmapOptions(), nil)
	require.NoError(t, err)
	s := geometry.NewState(3, 3)
	path, err := p.Solve(emptyContinuous(t), s, s)
	require.NoError(t, err)
	assert.True(t, path.Success)
	assert.Equal(t, []geometry.State{s}, path.States)
	assert.Zero(t, path.Length)
}

func TestRRTEmptyScenario(t *testing.T) {
	env := emptyContinuous(t)
	p, err := NewRRT(RRTOptions{StepSize: 1.0, GoalBias: 0.2, MaxIter: 2000, Seed: 42}, testLogger(t))
	require.NoError(t, err)

	start, goal := geometry.NewState(2, 2), geometry.NewState(8, 8)
	path, err := p.Solve(env, start, goal)
	require.NoError(t, err)
	requireValidPath(t, env, path, start, goal)
	assert.GreaterOrEqual(t, path.Length, 6*math.Sqrt2-1e-9)
	assert.Positive(t, p.NodesExpanded())
	for i := 1; i < len(path.States)-1; i++ {
		assert.LessOrEqual(t, path.States[i-1].Distance(path.States[i]), 1.0+1e-9)
	}
}

func TestRRTStarConverges(t *testing.T) {
	env := emptyContinuous(t)
	start, goal := geometry.NewState(2, 2), geometry.NewState(8, 8)
	straight := start.Distance(goal)

	for _, informed := range []bool{false, true} {
		opts := RRTStarOptions{StepSize: 1.0, GoalBias: 0.2, MaxIter: 2000, RewiringRadiusFactor: 10, OptimalCost: straight, Seed: 42}
		var (
			p   *RRTStar
			err error
		)
		if informed {
			p, err = NewInformedRRTStar(opts, testLogger(t))
		} else {
			p, err = NewRRTStar(opts, testLogger(t))
		}
		require.NoError(t, err)

		path, err := p.Solve(env, start, goal)
		require.NoError(t, err)
		requireValidPath(t, env, path, start, goal)
		assert.LessOrEqual(t, path.Length, 1.5*straight)

		conv := p.ConvergenceData()
		require.False(t, conv.Empty())
		for i := 1; i < len(conv.Samples); i++ {
			assert.Greater(t, conv.Samples[i].Iteration, conv.Samples[i-1].Iteration)
			assert.Less(t, conv.Samples[i].Cost, conv.Samples[i-1].Cost)
		}
		last := conv.Samples[len(conv.Samples)-1]
		assert.Equal(t, last.Cost, conv.FinalCost)
		assert.InDelta(t, path.Length, conv.FinalCost, 1e-6)
		assert.InDelta(t, conv.FinalCost-straight, conv.GapToOptimal, 1e-12)
		assert.GreaterOrEqual(t, conv.GapToOptimal, -1e-9)
		assert.LessOrEqual(t, p.NodesExpanded(), 2001)
	}
}

func TestRRTStarNoSolutionHasEmptyConvergence(t *testing.T) {
	env := wallContinuous(t)
	p, err := NewInformedRRTStar(RRTStarOptions{StepSize: 0.5, GoalBias: 0, MaxIter: 3, RewiringRadiusFactor: 10, Seed: 1}, nil)
	require.NoError(t, err)
	path, err := p.Solve(env, geometry.NewState(1, 5), geometry.NewState(9, 5))
	require.NoError(t, err)
	assert.False(t, path.Success)
	assert.True(t, p.ConvergenceData().Empty())
	assert.NotNil(t, p.ConvergenceData().Samples)
}

func TestSameSeedSameResult(t *testing.T) {
	env := wallContinuous(t)
	start, goal := geometry.NewState(1, 5), geometry.NewState(9, 5)

	build := []func() (Planner, error){
		func() (Planner, error) { return NewPRM(DefaultRoadmapOptions(), nil) },
		func() (Planner, error) { return NewLazyPRM(DefaultRoadmapOptions(), nil) },
		func() (Planner, error) { return NewRRT(DefaultRRTOptions(), nil) },
		func() (Planner, error) {
			o := DefaultRRTStarOptions()
			o.MaxIter = 500
			return NewInformedRRTStar(o, nil)
		},
	}
	for _, b := range build {
		first, err := b()
		require.NoError(t, err)
		second, err := b()
		require.NoError(t, err)

		a, err := first.Solve(env, start, goal)
		require.NoError(t, err)
		c, err := second.Solve(env, start, goal)
		require.NoError(t, err)
		assert.Equal(t, a, c, first.Name())
		assert.Equal(t, first.NodesExpanded(), second.NodesExpanded(), first.Name())
	}
}

func TestInvalidConfig(t *testing.T) {
	cases := []struct {
		name  string
		build func() error
	}{
		{"connectivity", func() error { _, err := NewDijkstra(DijkstraOptions{Connectivity: 6}, nil); return err }},
		{"heuristic", func() error {
			_, err := NewAStar(AStarOptions{Heuristic: "chebyshev", Connectivity: 8}, nil)
			return err
		}},
		{"weight", func() error {
			_, err := NewWeightedAStar(WeightedAStarOptions{Heuristic: Diagonal, Connectivity: 8, Weight: 0.5}, nil)
			return err
		}},
		{"manhattan on 8-connected", func() error {
			_, err := NewAStar(AStarOptions{Heuristic: Manhattan, Connectivity: 8}, nil)
			return err
		}},
		{"theta diagonal", func() error {
			_, err := NewThetaStar(ThetaStarOptions{Heuristic: Diagonal, Connectivity: 8}, nil)
			return err
		}},
		{"theta manhattan", func() error {
			_, err := NewThetaStar(ThetaStarOptions{Heuristic: Manhattan, Connectivity: 4}, nil)
			return err
		}},
		{"theta connectivity", func() error {
			_, err := NewThetaStar(ThetaStarOptions{Heuristic: Euclidean}, nil)
			return err
		}},
		{"samples", func() error { _, err := NewPRM(RoadmapOptions{NumSamples: -1, KNeighbors: 10}, nil); return err }},
		{"neighbours", func() error { _, err := NewLazyPRM(RoadmapOptions{NumSamples: 10}, nil); return err }},
		{"step", func() error { _, err := NewRRT(RRTOptions{GoalBias: 0.1, MaxIter: 10}, nil); return err }},
		{"bias", func() error {
			_, err := NewRRT(RRTOptions{StepSize: 1, GoalBias: 1.5, MaxIter: 10}, nil)
			return err
		}},
		{"gamma", func() error {
			o := DefaultRRTStarOptions()
			o.RewiringRadiusFactor = 0
			_, err := NewRRTStar(o, nil)
			return err
		}},
		{"optimal cost", func() error {
			o := DefaultRRTStarOptions()
			o.OptimalCost = -1
			_, err := NewInformedRRTStar(o, nil)
			return err
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.ErrorIs(t, tc.build(), ErrInvalidConfig)
		})
	}
}

func TestInvalidConfigReportsEveryField(t *testing.T) {
	_, err := NewRRT(RRTOptions{StepSize: -1, GoalBias: 2, MaxIter: 0}, nil)
	require.ErrorIs(t, err, ErrInvalidConfig)
	assert.Contains(t, err.Error(), "step_size")
	assert.Contains(t, err.Error(), "goal_bias")
	assert.Contains(t, err.Error(), "max_iter")
}

func TestHeuristicEstimate(t *testing.T) {
	assert.Equal(t, 7.0, Manhattan.Estimate(3, -4))
	assert.Equal(t, 5.0, Euclidean.Estimate(-3, 4))
	assert.InDelta(t, 4+3*(math.Sqrt2-1), Diagonal.Estimate(3, 4), 1e-12)
}

func TestConvergencePointJSON(t *testing.T) {
	data, err := json.Marshal([]ConvergencePoint{{Iteration: 3, Cost: 2.5}, {Iteration: 10, Cost: 2}})
	require.NoError(t, err)
	assert.JSONEq(t, `[[3,2.5],[10,2]]`, string(data))

	var back []ConvergencePoint
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, []ConvergencePoint{{Iteration: 3, Cost: 2.5}, {Iteration: 10, Cost: 2}}, back)

	var bad ConvergencePoint
	assert.Error(t, json.Unmarshal([]byte(`{"iteration":1}`), &bad))
}

func TestConvergenceRecorder(t *testing.T) {
	r := newConvergenceRecorder(4)
	assert.False(t, r.record(0, math.Inf(1)))
	assert.True(t, r.record(1, 6))
	assert.False(t, r.record(2, 6))
	assert.True(t, r.record(5, 5))
	assert.False(t, r.record(6, 5.5))

	data := r.result()
	assert.Equal(t, []ConvergencePoint{{1, 6}, {5, 5}}, data.Samples)
	assert.Equal(t, 5.0, data.FinalCost)
	assert.Equal(t, 1.0, data.GapToOptimal)

	data.Samples[0].Cost = 100
	assert.Equal(t, 6.0, r.result().Samples[0].Cost)
}

func TestTreeRewiring(t *testing.T) {
	tr := newTree(geometry.NewState(0, 0))
	a := tr.add(geometry.NewState(1, 0), 0, 1)
	b := tr.add(geometry.NewState(2, 0), a, 2)
	c := tr.add(geometry.NewState(3, 0), b, 3)
	d := tr.add(geometry.NewState(0, 1), 0, 1)

	assert.True(t, tr.isAncestor(a, c))
	assert.True(t, tr.isAncestor(c, c))
	assert.False(t, tr.isAncestor(c, a))
	assert.False(t, tr.isAncestor(d, c))

	// Moving b under d with a lower cost shifts c as well
	tr.reparent(b, d, 1.5)
	assert.Equal(t, d, tr.nodes[b].parent)
	assert.Equal(t, 1.5, tr.nodes[b].cost)
	assert.Equal(t, 2.5, tr.nodes[c].cost)
	assert.Empty(t, tr.nodes[a].children)
	assert.Equal(t, []int{b}, tr.nodes[d].children)

	states, err := tr.pathTo(c)
	require.NoError(t, err)
	assert.Equal(t, []geometry.State{{X: 0, Y: 0}, {X: 0, Y: 1}, {X: 2, Y: 0}, {X: 3, Y: 0}}, states)

	assert.Equal(t, a, tr.nearest(geometry.NewState(1.2, 0.1)))
	assert.Equal(t, []int{0, a, d}, tr.near(geometry.NewState(0, 0), 1.0))
}

func TestTreePathCycle(t *testing.T) {
	tr := newTree(geometry.NewState(0, 0))
	a := tr.add(geometry.NewState(1, 0), 0, 1)
	tr.nodes[0].parent = a
	_, err := tr.pathTo(a)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestInformedSamplerStaysInEllipse(t *testing.T) {
	start, goal := geometry.NewState(1, 2), geometry.NewState(7, 5)
	s := newInformedSampler(start, goal)
	cBest := 1.3 * start.Distance(goal)
	rng := rand.New(rand.NewSource(5))

	for i := 0; i < 2000; i++ {
		x := s.sample(rng, cBest)
		assert.LessOrEqual(t, start.Distance(x)+x.Distance(goal), cBest+1e-9)
	}

	// A bound equal to the straight line collapses the ellipse onto the segment
	for i := 0; i < 100; i++ {
		x := s.sample(rng, start.Distance(goal))
		assert.InDelta(t, start.Distance(goal), start.Distance(x)+x.Distance(goal), 1e-9)
	}
}

func TestRoadmapSearchInvariants(t *testing.T) {
	rm := newRoadmap(3)
	a := rm.addNode(geometry.NewState(0, 0))
	b := rm.addNode(geometry.NewState(1, 0))
	rm.Edges[a] = append(rm.Edges[a], roadmapEdge{To: b, Cost: -1})
	_, _, err := rm.search(a, b, nil)
	assert.ErrorIs(t, err, ErrInvariantViolation)

	rm = newRoadmap(2)
	a = rm.addNode(geometry.NewState(0, 0))
	b = rm.addNode(geometry.NewState(1, 0))
	rm.Edges[a] = append(rm.Edges[a], roadmapEdge{To: 7, Cost: 1})
	_, _, err = rm.search(a, b, nil)
	assert.ErrorIs(t, err, ErrInvariantViolation)
}

func TestRoadmapSearchSkipsRemovedEdges(t *testing.T) {
	rm := newRoadmap(4)
	s := rm.addNode(geometry.NewState(0, 0))
	m1 := rm.addNode(geometry.NewState(1, 0))
	m2 := rm.addNode(geometry.NewState(1, 2))
	g := rm.addNode(geometry.NewState(2, 0))
	rm.addEdge(s, m1)
	rm.addEdge(m1, g)
	rm.addEdge(s, m2)
	rm.addEdge(m2, g)
	rm.addEdge(s, m1)
	assert.Equal(t, 4, rm.edgeCount())

	ids, expanded, err := rm.search(s, g, nil)
	require.NoError(t, err)
	assert.Equal(t, []int{s, m1, g}, ids)
	assert.Positive(t, expanded)

	blocked := keyOf(g, m1)
	ids, _, err = rm.search(s, g, func(k edgeKey) bool { return k == blocked })
	require.NoError(t, err)
	assert.Equal(t, []int{s, m2, g}, ids)

	ids, _, err = rm.search(s, g, func(edgeKey) bool { return true })
	require.NoError(t, err)
	assert.Nil(t, ids)
}

func TestNearestIndex(t *testing.T) {
	states := []geometry.State{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: 5, Y: 5}, {X: -1.5, Y: 0}}
	idx := newNearestIndex(states)
	// 1 and 2 are both at distance 1 from the origin, ties go to the lower id
	assert.Equal(t, []int{1, 2}, idx.nearest(states[0], 2, 0))
	assert.Equal(t, []int{0, 1, 2}, idx.nearest(states[0], 3, -1))
	assert.Len(t, idx.nearest(geometry.NewState(2, 2), 10, -1), 5)
	assert.Nil(t, newNearestIndex(nil).nearest(states[0], 3, -1))
}
