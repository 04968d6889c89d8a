package planner

import "math"

// Heuristic selects the cost-to-go estimate of the A* family
type Heuristic string

const (
	// Manhattan is admissible on 4-connected grids only
	Manhattan Heuristic = "manhattan"
	Euclidean Heuristic = "euclidean"
	// Diagonal is the octile distance, exact on empty 8-connected grids
	Diagonal Heuristic = "diagonal"
)

func (h Heuristic) valid() bool {
	switch h {
	case Manhattan, Euclidean, Diagonal:
		return true
	}
	return false
}

// Estimate returns the heuristic for absolute offsets dx, dy
func (h Heuristic) Estimate(dx, dy float64) float64 {
	dx, dy = math.Abs(dx), math.Abs(dy)
	switch h {
	case Manhattan:
		return dx + dy
	case Diagonal:
		return math.Max(dx, dy) + (math.Sqrt2-1)*math.Min(dx, dy)
	default:
		return math.Hypot(dx, dy)
	}
}
