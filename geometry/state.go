// Package geometry holds the planar value types shared by environments and planners.
package geometry

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// State is a position in the plane. On grids X is the column and Y the row.
type State struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// NewState creates a state from x and y
func NewState(x, y float64) State {
	return State{X: x, Y: y}
}

// FromXY maps an external [x, y] array onto a state
func FromXY(xy [2]float64) State {
	return State{X: xy[0], Y: xy[1]}
}

// XY returns the state as an [x, y] array
func (s State) XY() [2]float64 {
	return [2]float64{s.X, s.Y}
}

// Point converts the state to an orb point
func (s State) Point() orb.Point {
	return orb.Point{s.X, s.Y}
}

// FromPoint converts an orb point to a state
func FromPoint(p orb.Point) State {
	return State{X: p[0], Y: p[1]}
}

// Distance calculates Euclidean distance between two states
func (s State) Distance(other State) float64 {
	dx := s.X - other.X
	dy := s.Y - other.Y
	return math.Sqrt(dx*dx + dy*dy)
}

// Sub returns s - other
func (s State) Sub(other State) State {
	return State{X: s.X - other.X, Y: s.Y - other.Y}
}

// Add returns s + other
func (s State) Add(other State) State {
	return State{X: s.X + other.X, Y: s.Y + other.Y}
}

// Scale multiplies both coordinates by f
func (s State) Scale(f float64) State {
	return State{X: s.X * f, Y: s.Y * f}
}

// Norm is the length of s seen as a vector
func (s State) Norm() float64 {
	return math.Hypot(s.X, s.Y)
}

// Steer moves from s toward target by at most step. The target itself is
// returned when it is closer than step.
func (s State) Steer(target State, step float64) State {
	d := s.Distance(target)
	if d <= step {
		return target
	}
	t := step / d
	return State{X: s.X + (target.X-s.X)*t, Y: s.Y + (target.Y-s.Y)*t}
}

// Midpoint returns the point halfway between s and other
func (s State) Midpoint(other State) State {
	return State{X: (s.X + other.X) / 2, Y: (s.Y + other.Y) / 2}
}

func (s State) String() string {
	return fmt.Sprintf("(%g, %g)", s.X, s.Y)
}

// PathLength sums the Euclidean lengths of consecutive segments
func PathLength(states []State) float64 {
	length := 0.0
	for i := 1; i < len(states); i++ {
		length += states[i-1].Distance(states[i])
	}
	return length
}
