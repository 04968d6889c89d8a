// Package planner implements the benchmarked path planners.
//
// Graph-search planners (Dijkstra, A*, Weighted A*, Theta*) need an
// environment.Lattice. Roadmap planners (PRM, Lazy PRM) and tree planners (RRT,
// RRT*, Informed RRT*) sample from the environment bounds and work on any
// environment.
//
// A planner instance owns its parameters and a seeded random generator. Search
// structures are rebuilt on every Solve, the generator state carries over. An
// instance must not be used from several goroutines at once; distinct instances can
// share one environment freely.
package planner

import (
	"planbench/environment"
	"planbench/geometry"
)

// Planner answers start-to-goal queries.
//
// Solve returns an unsuccessful Path, not an error, when the query is infeasible or
// the search is exhausted. A non-nil error means an internal invariant was broken.
type Planner interface {
	Name() string
	Solve(env environment.Environment, start, goal geometry.State) (Path, error)
	// NodesExpanded is the search effort of the last Solve
	NodesExpanded() int
}

// Anytime planners additionally report how the best cost improved during Solve
type Anytime interface {
	Planner
	ConvergenceData() ConvergenceData
}

// Path is a planner result. States run from start to goal; Length is the sum of
// Euclidean segment lengths.
type Path struct {
	States  []geometry.State `json:"states"`
	Success bool             `json:"success"`
	Length  float64          `json:"length"`
}

// NewPath wraps a successful state sequence
func NewPath(states []geometry.State) Path {
	return Path{States: states, Success: true, Length: geometry.PathLength(states)}
}

// Failure is the unsuccessful path
func Failure() Path {
	return Path{States: []geometry.State{}}
}
