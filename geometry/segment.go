package geometry

import "math"

// epsilon used for orientation and on-segment tests
const epsilon = 1e-9

// Segment is a line segment between two states
type Segment struct {
	A, B State
}

// Length of the segment
func (s Segment) Length() float64 {
	return s.A.Distance(s.B)
}

// SegmentsIntersect checks if two segments touch or cross. Shared endpoints and
// collinear overlaps count as intersections.
func SegmentsIntersect(s1, s2 Segment) bool {
	p1, p2 := s1.A, s1.B
	p3, p4 := s2.A, s2.B

	d1 := direction(p3, p4, p1)
	d2 := direction(p3, p4, p2)
	d3 := direction(p1, p2, p3)
	d4 := direction(p1, p2, p4)

	if ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon)) {
		return true
	}

	// Collinear and touching cases
	if math.Abs(d1) <= epsilon && onSegment(p3, p4, p1) {
		return true
	}
	if math.Abs(d2) <= epsilon && onSegment(p3, p4, p2) {
		return true
	}
	if math.Abs(d3) <= epsilon && onSegment(p1, p2, p3) {
		return true
	}
	if math.Abs(d4) <= epsilon && onSegment(p1, p2, p4) {
		return true
	}

	return false
}

// direction calculates the cross product to determine orientation
func direction(p1, p2, p3 State) float64 {
	return (p3.X-p1.X)*(p2.Y-p1.Y) - (p2.X-p1.X)*(p3.Y-p1.Y)
}

// onSegment checks if point q lies within the bounding box of segment pr
func onSegment(p, r, q State) bool {
	return q.X <= math.Max(p.X, r.X)+epsilon && q.X >= math.Min(p.X, r.X)-epsilon &&
		q.Y <= math.Max(p.Y, r.Y)+epsilon && q.Y >= math.Min(p.Y, r.Y)-epsilon
}

// PointSegmentDistance is the shortest distance from p to any point of seg
func PointSegmentDistance(p State, seg Segment) float64 {
	d := seg.B.Sub(seg.A)
	lenSq := d.X*d.X + d.Y*d.Y
	if lenSq == 0 {
		return p.Distance(seg.A)
	}
	t := ((p.X-seg.A.X)*d.X + (p.Y-seg.A.Y)*d.Y) / lenSq
	t = math.Max(0, math.Min(1, t))
	return p.Distance(seg.A.Add(d.Scale(t)))
}

// TurningAngle returns the absolute change in heading at b when moving a -> b -> c.
// Zero-length segments have no heading and yield 0.
func TurningAngle(a, b, c State) float64 {
	v1 := b.Sub(a)
	v2 := c.Sub(b)
	n1, n2 := v1.Norm(), v2.Norm()
	if n1 == 0 || n2 == 0 {
		return 0
	}
	cos := (v1.X*v2.X + v1.Y*v2.Y) / (n1 * n2)
	return math.Acos(math.Max(-1, math.Min(1, cos)))
}
