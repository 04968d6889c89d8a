package planner

import (
	"go.uber.org/zap"
)

// Planner names
const (
	NameDijkstra        = "dijkstra"
	NameAStar           = "astar"
	NameWeightedAStar   = "weighted_astar"
	NameThetaStar       = "thetastar"
	NamePRM             = "prm"
	NameLazyPRM         = "lazy_prm"
	NameRRT             = "rrt"
	NameRRTStar         = "rrt_star"
	NameInformedRRTStar = "informed_rrt_star"
)

// DijkstraOptions configure Dijkstra
type DijkstraOptions struct {
	// Connectivity is 4 or 8
	Connectivity int `json:"connectivity"`
}

func DefaultDijkstraOptions() DijkstraOptions {
	return DijkstraOptions{Connectivity: 8}
}

// AStarOptions configure A*
type AStarOptions struct {
	Heuristic    Heuristic `json:"heuristic"`
	Connectivity int       `json:"connectivity"`
}

func DefaultAStarOptions() AStarOptions {
	return AStarOptions{Heuristic: Diagonal, Connectivity: 8}
}

// WeightedAStarOptions configure Weighted A*
type WeightedAStarOptions struct {
	Heuristic    Heuristic `json:"heuristic"`
	Connectivity int       `json:"connectivity"`
	// Weight inflates the heuristic, must be >= 1
	Weight float64 `json:"weight"`
}

func DefaultWeightedAStarOptions() WeightedAStarOptions {
	return WeightedAStarOptions{Heuristic: Diagonal, Connectivity: 8, Weight: 1.5}
}

func checkConnectivity(v *validator, c int) {
	v.check(c == 4 || c == 8, "connectivity must be 4 or 8, got %d", c)
}

func checkHeuristic(v *validator, h Heuristic) {
	v.check(h.valid(), "unknown heuristic %q", h)
}

func nopIfNil(logger *zap.SugaredLogger) *zap.SugaredLogger {
	if logger == nil {
		return zap.NewNop().Sugar()
	}
	return logger
}

// NewDijkstra creates a uniform-cost search over grid cells
func NewDijkstra(opts DijkstraOptions, logger *zap.SugaredLogger) (*GridSearch, error) {
	v := &validator{}
	checkConnectivity(v, opts.Connectivity)
	if err := v.result(NameDijkstra); err != nil {
		return nil, err
	}
	return &GridSearch{
		name:   NameDijkstra,
		moves:  movesFor(opts.Connectivity),
		logger: nopIfNil(logger),
	}, nil
}

// NewAStar creates an A* search over grid cells. The heuristic must be admissible
// for the connectivity, so Manhattan needs a 4-connected grid.
func NewAStar(opts AStarOptions, logger *zap.SugaredLogger) (*GridSearch, error) {
	v := &validator{}
	checkConnectivity(v, opts.Connectivity)
	checkHeuristic(v, opts.Heuristic)
	v.check(opts.Heuristic != Manhattan || opts.Connectivity == 4,
		"manhattan heuristic overestimates with connectivity %d, use 4", opts.Connectivity)
	if err := v.result(NameAStar); err != nil {
		return nil, err
	}
	return &GridSearch{
		name:      NameAStar,
		heuristic: opts.Heuristic,
		weight:    1,
		moves:     movesFor(opts.Connectivity),
		logger:    nopIfNil(logger),
	}, nil
}

// NewWeightedAStar creates an A* search with an inflated heuristic. With an
// admissible heuristic paths cost at most Weight times the optimum; any heuristic is
// accepted since the search gives up optimality anyway.
func NewWeightedAStar(opts WeightedAStarOptions, logger *zap.SugaredLogger) (*GridSearch, error) {
	v := &validator{}
	checkConnectivity(v, opts.Connectivity)
	checkHeuristic(v, opts.Heuristic)
	v.check(opts.Weight >= 1, "weight must be >= 1, got %g", opts.Weight)
	if err := v.result(NameWeightedAStar); err != nil {
		return nil, err
	}
	return &GridSearch{
		name:      NameWeightedAStar,
		heuristic: opts.Heuristic,
		weight:    opts.Weight,
		moves:     movesFor(opts.Connectivity),
		logger:    nopIfNil(logger),
	}, nil
}
