// Package metrics measures planner runs and summarizes repeated measurements.
package metrics

import (
	"math"
	"time"

	"planbench/environment"
	"planbench/geometry"
	"planbench/planner"
)

// Metrics of one Solve
type Metrics struct {
	PathLength    float64 `json:"path_length"`
	TimeMs        float64 `json:"time_ms"`
	NodesExpanded int     `json:"nodes_expanded"`
	Success       bool    `json:"success"`
	// Smoothness is the sum of absolute heading changes along the path, radians
	Smoothness float64 `json:"smoothness"`
	// Clearance is the minimum obstacle distance over the path states
	Clearance float64 `json:"clearance"`
	// Energy integrates squared discrete curvature along the path
	Energy float64 `json:"energy"`

	Convergence  []planner.ConvergencePoint `json:"cost_vs_iteration,omitempty"`
	GapToOptimal float64                    `json:"gap_to_optimal,omitempty"`
}

// Collect derives the metrics of path, which p returned for env after elapsed
func Collect(p planner.Planner, env environment.Environment, path planner.Path, elapsed time.Duration) Metrics {
	m := Metrics{
		TimeMs:        float64(elapsed) / float64(time.Millisecond),
		NodesExpanded: p.NodesExpanded(),
		Success:       path.Success,
	}
	if anytime, ok := p.(planner.Anytime); ok {
		conv := anytime.ConvergenceData()
		m.Convergence = conv.Samples
		m.GapToOptimal = conv.GapToOptimal
	}
	if !path.Success {
		return m
	}

	m.PathLength = path.Length
	m.Smoothness = Smoothness(path.States)
	m.Energy = Energy(path.States)
	m.Clearance = Clearance(env, path.States)
	return m
}

// Measure runs one Solve and collects its metrics
func Measure(p planner.Planner, env environment.Environment, start, goal geometry.State) (planner.Path, Metrics, error) {
	began := time.Now()
	path, err := p.Solve(env, start, goal)
	elapsed := time.Since(began)
	if err != nil {
		return path, Metrics{}, err
	}
	return path, Collect(p, env, path, elapsed), nil
}

// Smoothness sums the turning angle at every interior vertex
func Smoothness(states []geometry.State) float64 {
	total := 0.0
	for i := 2; i < len(states); i++ {
		total += geometry.TurningAngle(states[i-2], states[i-1], states[i])
	}
	return total
}

// Energy approximates the bending energy: each interior vertex contributes
// kappa^2 * ds with kappa = angle/ds and ds the mean of the adjacent segment lengths
func Energy(states []geometry.State) float64 {
	total := 0.0
	for i := 1; i+1 < len(states); i++ {
		d1 := states[i-1].Distance(states[i])
		d2 := states[i].Distance(states[i+1])
		if d1 < 1e-9 || d2 < 1e-9 {
			continue
		}
		ds := 0.5 * (d1 + d2)
		kappa := geometry.TurningAngle(states[i-1], states[i], states[i+1]) / ds
		total += kappa * kappa * ds
	}
	return total
}

// Clearance is the smallest obstacle distance over states, 0 when nothing bounds it
func Clearance(env environment.Environment, states []geometry.State) float64 {
	best := math.Inf(1)
	for _, s := range states {
		best = math.Min(best, env.Clearance(s))
	}
	if math.IsInf(best, 1) {
		return 0
	}
	return best
}
