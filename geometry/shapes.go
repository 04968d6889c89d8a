package geometry

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
	"github.com/pkg/errors"
)

// ErrDegenerateShape is returned when a shape cannot enclose any area
var ErrDegenerateShape = errors.New("degenerate shape")

// Shape is an obstacle that segments and points are tested against
type Shape interface {
	// Contains reports whether p is inside or on the boundary
	Contains(p State) bool
	// IntersectsSegment reports whether any point of seg touches the shape
	IntersectsSegment(seg Segment) bool
	// Distance from p to the shape, 0 when p is inside
	Distance(p State) float64
	Bound() orb.Bound
}

// Polygon is a simple polygon obstacle stored as a closed ring
type Polygon struct {
	Ring orb.Ring
}

// NewPolygon builds a polygon from its vertices. A trailing vertex equal to the
// first one is accepted and dropped before the ring is closed.
func NewPolygon(vertices []State) (Polygon, error) {
	if n := len(vertices); n > 1 && vertices[0] == vertices[n-1] {
		vertices = vertices[:n-1]
	}
	if len(vertices) < 3 {
		return Polygon{}, errors.Wrapf(ErrDegenerateShape, "polygon needs at least 3 vertices, got %d", len(vertices))
	}
	ring := make(orb.Ring, 0, len(vertices)+1)
	for _, v := range vertices {
		ring = append(ring, v.Point())
	}
	ring = append(ring, ring[0])
	if planar.Area(ring) == 0 {
		return Polygon{}, errors.Wrap(ErrDegenerateShape, "polygon has zero area")
	}
	return Polygon{Ring: ring}, nil
}

// Vertices returns the polygon corners without the closing vertex
func (p Polygon) Vertices() []State {
	n := len(p.Ring)
	if n > 1 && p.Ring[0] == p.Ring[n-1] {
		n--
	}
	out := make([]State, 0, n)
	for _, pt := range p.Ring[:n] {
		out = append(out, FromPoint(pt))
	}
	return out
}

// Edges returns the boundary segments
func (p Polygon) Edges() []Segment {
	edges := make([]Segment, 0, len(p.Ring))
	for i := 0; i+1 < len(p.Ring); i++ {
		edges = append(edges, Segment{A: FromPoint(p.Ring[i]), B: FromPoint(p.Ring[i+1])})
	}
	return edges
}

// Contains checks if a point is inside the polygon, boundary included
func (p Polygon) Contains(pt State) bool {
	return planar.RingContains(p.Ring, pt.Point())
}

// IntersectsSegment checks if a segment crosses the boundary or lies inside the polygon
func (p Polygon) IntersectsSegment(seg Segment) bool {
	if !p.Bound().Intersects(segmentBound(seg)) {
		return false
	}
	for _, edge := range p.Edges() {
		if SegmentsIntersect(seg, edge) {
			return true
		}
	}
	// No boundary crossing, so the segment is either fully inside or fully outside
	return p.Contains(seg.A) || p.Contains(seg.B)
}

// Distance from pt to the polygon boundary, 0 inside
func (p Polygon) Distance(pt State) float64 {
	if p.Contains(pt) {
		return 0
	}
	best := math.Inf(1)
	for _, edge := range p.Edges() {
		best = math.Min(best, PointSegmentDistance(pt, edge))
	}
	return best
}

func (p Polygon) Bound() orb.Bound {
	return p.Ring.Bound()
}

// Circle is a disc obstacle
type Circle struct {
	Center State
	Radius float64
}

// NewCircle validates the radius
func NewCircle(center State, radius float64) (Circle, error) {
	if !(radius > 0) {
		return Circle{}, errors.Wrapf(ErrDegenerateShape, "circle radius must be positive, got %g", radius)
	}
	return Circle{Center: center, Radius: radius}, nil
}

func (c Circle) Contains(p State) bool {
	return c.Center.Distance(p) <= c.Radius
}

func (c Circle) IntersectsSegment(seg Segment) bool {
	return PointSegmentDistance(c.Center, seg) <= c.Radius
}

func (c Circle) Distance(p State) float64 {
	return math.Max(0, c.Center.Distance(p)-c.Radius)
}

func (c Circle) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{c.Center.X - c.Radius, c.Center.Y - c.Radius},
		Max: orb.Point{c.Center.X + c.Radius, c.Center.Y + c.Radius},
	}
}

func segmentBound(seg Segment) orb.Bound {
	return orb.MultiPoint{seg.A.Point(), seg.B.Point()}.Bound()
}
