package environment

import (
	"math"

	"github.com/pkg/errors"

	"planbench/geometry"
)

// Continuous is a rectangular workspace with polygon and circle obstacles
type Continuous struct {
	bounds    Bounds
	obstacles []geometry.Shape
	index     *obstacleIndex
}

var _ Environment = (*Continuous)(nil)

// NewContinuous creates a continuous environment. Obstacles lying entirely inside
// another polygon are left out of collision queries but kept in the description.
func NewContinuous(bounds Bounds, obstacles []geometry.Shape) (*Continuous, error) {
	if !bounds.valid() {
		return nil, errors.Wrapf(ErrInvalidEnvironment, "bounds must satisfy min < max, got %+v", bounds)
	}
	for i, o := range obstacles {
		if o == nil {
			return nil, errors.Wrapf(ErrInvalidEnvironment, "obstacle %d is nil", i)
		}
	}
	obs := append([]geometry.Shape(nil), obstacles...)
	return &Continuous{
		bounds:    bounds,
		obstacles: obs,
		index:     newObstacleIndex(geometry.PruneContained(obs)),
	}, nil
}

func (e *Continuous) Kind() Kind     { return KindContinuous }
func (e *Continuous) Bounds() Bounds { return e.bounds }

// Obstacles returns a copy of the obstacle list
func (e *Continuous) Obstacles() []geometry.Shape {
	return append([]geometry.Shape(nil), e.obstacles...)
}

func (e *Continuous) IsValid(s geometry.State) bool {
	if !e.bounds.Contains(s) {
		return false
	}
	for _, shape := range e.index.queryPoint(s) {
		if shape.Contains(s) {
			return false
		}
	}
	return true
}

// IsValidEdge tests the segment exactly against every shape near it
func (e *Continuous) IsValidEdge(a, b geometry.State) bool {
	if !e.IsValid(a) || !e.IsValid(b) {
		return false
	}
	seg := geometry.Segment{A: a, B: b}
	for _, shape := range e.index.querySegment(a, b) {
		if shape.IntersectsSegment(seg) {
			return false
		}
	}
	return true
}

func (e *Continuous) Clearance(s geometry.State) float64 {
	best := math.Inf(1)
	for _, shape := range e.obstacles {
		best = math.Min(best, shape.Distance(s))
	}
	return best
}

func (e *Continuous) Describe() Description {
	b := e.bounds
	d := Description{Type: KindContinuous, Bounds: &b, Obstacles: make([]ObstacleDescription, 0, len(e.obstacles))}
	for _, o := range e.obstacles {
		d.Obstacles = append(d.Obstacles, describeShape(o))
	}
	return d
}
