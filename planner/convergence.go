package planner

import (
	"encoding/json"
	"math"

	"github.com/pkg/errors"
)

// ConvergencePoint is the best cost known after an iteration. It encodes as the
// JSON pair [iteration, cost].
type ConvergencePoint struct {
	Iteration int
	Cost      float64
}

func (p ConvergencePoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]float64{float64(p.Iteration), p.Cost})
}

func (p *ConvergencePoint) UnmarshalJSON(data []byte) error {
	var pair [2]float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return errors.Wrap(err, "convergence point must be [iteration, cost]")
	}
	p.Iteration, p.Cost = int(pair[0]), pair[1]
	return nil
}

// ConvergenceData lists every strict improvement of the best solution cost.
// Samples is empty while no solution has been found.
type ConvergenceData struct {
	Samples []ConvergencePoint `json:"samples"`
	// FinalCost is the last sample's cost, 0 without samples
	FinalCost float64 `json:"final_cost"`
	// OptimalCost and GapToOptimal are set when a reference optimum was configured
	OptimalCost  float64 `json:"optimal_cost,omitempty"`
	GapToOptimal float64 `json:"gap_to_optimal,omitempty"`
}

// Empty reports whether no solution was recorded
func (c ConvergenceData) Empty() bool {
	return len(c.Samples) == 0
}

// convergenceRecorder keeps the strictly improving subsequence of best costs
type convergenceRecorder struct {
	data ConvergenceData
	best float64
}

func newConvergenceRecorder(optimal float64) *convergenceRecorder {
	return &convergenceRecorder{
		data: ConvergenceData{Samples: []ConvergencePoint{}, OptimalCost: optimal},
		best: math.Inf(1),
	}
}

// record stores cost when it beats the best so far
func (r *convergenceRecorder) record(iteration int, cost float64) bool {
	if !(cost < r.best) {
		return false
	}
	r.best = cost
	r.data.Samples = append(r.data.Samples, ConvergencePoint{Iteration: iteration, Cost: cost})
	r.data.FinalCost = cost
	if r.data.OptimalCost > 0 {
		r.data.GapToOptimal = cost - r.data.OptimalCost
	}
	return true
}

func (r *convergenceRecorder) result() ConvergenceData {
	out := r.data
	out.Samples = append([]ConvergencePoint{}, r.data.Samples...)
	return out
}
