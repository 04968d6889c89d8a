// Package environment models the obstacle maps planners search over.
//
// Two variants exist. Grid is a bounded occupancy map; a state maps to the cell
// (row = floor(Y), col = floor(X)) and grid planners work on that lattice.
// Continuous is an axis-aligned rectangle with polygon and circle obstacles.
// Environments are immutable once constructed and safe for concurrent readers.
package environment

import (
	"math"

	"planbench/geometry"
)

// Kind names an environment variant
type Kind string

const (
	KindGrid       Kind = "grid"
	KindContinuous Kind = "continuous"
)

// Bounds is an axis-aligned rectangle
type Bounds struct {
	MinX float64 `json:"x_min" yaml:"x_min"`
	MaxX float64 `json:"x_max" yaml:"x_max"`
	MinY float64 `json:"y_min" yaml:"y_min"`
	MaxY float64 `json:"y_max" yaml:"y_max"`
}

// Contains reports whether s lies inside the closed rectangle
func (b Bounds) Contains(s geometry.State) bool {
	return s.X >= b.MinX && s.X <= b.MaxX && s.Y >= b.MinY && s.Y <= b.MaxY
}

func (b Bounds) Width() float64  { return b.MaxX - b.MinX }
func (b Bounds) Height() float64 { return b.MaxY - b.MinY }

func (b Bounds) valid() bool {
	return b.MinX < b.MaxX && b.MinY < b.MaxY &&
		!math.IsInf(b.Width(), 0) && !math.IsInf(b.Height(), 0)
}

// Environment is the capability set every planner relies on
type Environment interface {
	Kind() Kind
	// Bounds is the sampling region for sampling-based planners
	Bounds() Bounds
	IsValid(s geometry.State) bool
	IsValidEdge(a, b geometry.State) bool
	// Clearance is the distance from s to the closest obstacle, +Inf without obstacles
	Clearance(s geometry.State) float64
	// Describe produces the serializable description of the layout
	Describe() Description
}

// Lattice is implemented by environments that expose a cell adjacency graph
type Lattice interface {
	Environment
	Width() int
	Height() int
	Occupied(c Cell) bool
	InBounds(c Cell) bool
	CellOf(s geometry.State) Cell
}

// Cell is a grid coordinate
type Cell struct {
	Row, Col int
}

// State returns the state at the cell's integer coordinates
func (c Cell) State() geometry.State {
	return geometry.State{X: float64(c.Col), Y: float64(c.Row)}
}
