package metrics

import (
	"math"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"
)

// Summary of a sample
type Summary struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	// CI is the 95% confidence interval of the mean
	CI [2]float64 `json:"ci"`
}

// Summarize computes the mean, the sample standard deviation and a Student-t 95%
// confidence interval with n-1 degrees of freedom. With fewer than two values the
// deviation is 0 and the interval collapses onto the mean.
func Summarize(values []float64) Summary {
	if len(values) == 0 {
		return Summary{}
	}
	mean, err := stats.Mean(values)
	if err != nil {
		return Summary{}
	}
	if len(values) < 2 {
		return Summary{Mean: mean, CI: [2]float64{mean, mean}}
	}
	std, err := stats.StandardDeviationSample(values)
	if err != nil {
		std = 0
	}
	n := float64(len(values))
	t := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: n - 1}.Quantile(0.975)
	margin := t * std / math.Sqrt(n)
	return Summary{Mean: mean, Std: std, CI: [2]float64{mean - margin, mean + margin}}
}

// Aggregate summarizes repeated runs of one experiment
type Aggregate struct {
	Runs        int     `json:"repeats"`
	SuccessRate float64 `json:"success_rate"`

	PathLength    Summary `json:"path_length"`
	TimeMs        Summary `json:"time_ms"`
	NodesExpanded Summary `json:"nodes_expanded"`
	Smoothness    Summary `json:"smoothness"`
	Clearance     Summary `json:"clearance"`
	Energy        Summary `json:"energy"`
}

// AggregateRuns summarizes runs. Path quality figures (length, smoothness,
// clearance, energy) only include successful runs; time and effort include all.
func AggregateRuns(runs []Metrics) Aggregate {
	agg := Aggregate{Runs: len(runs)}
	if len(runs) == 0 {
		return agg
	}
	var length, times, nodes, smooth, clearance, energy []float64
	successes := 0
	for _, m := range runs {
		times = append(times, m.TimeMs)
		nodes = append(nodes, float64(m.NodesExpanded))
		if !m.Success {
			continue
		}
		successes++
		length = append(length, m.PathLength)
		smooth = append(smooth, m.Smoothness)
		clearance = append(clearance, m.Clearance)
		energy = append(energy, m.Energy)
	}
	agg.SuccessRate = float64(successes) / float64(len(runs))
	agg.PathLength = Summarize(length)
	agg.TimeMs = Summarize(times)
	agg.NodesExpanded = Summarize(nodes)
	agg.Smoothness = Summarize(smooth)
	agg.Clearance = Summarize(clearance)
	agg.Energy = Summarize(energy)
	return agg
}
