package geometry

import (
	"math"
	"sort"
)

// ConvexHull computes the convex hull of points using a Graham scan. The hull is
// returned counter-clockwise starting at the lowest point; collinear points are dropped.
// The input slice is not modified.
func ConvexHull(points []State) []State {
	if len(points) < 3 {
		return append([]State(nil), points...)
	}

	pts := append([]State(nil), points...)

	// Find the point with lowest Y (and lowest X if tied)
	start := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Y < pts[start].Y || (pts[i].Y == pts[start].Y && pts[i].X < pts[start].X) {
			start = i
		}
	}
	pts[0], pts[start] = pts[start], pts[0]
	pivot := pts[0]

	rest := pts[1:]
	sort.SliceStable(rest, func(i, j int) bool {
		ai, aj := polarAngle(pivot, rest[i]), polarAngle(pivot, rest[j])
		if ai != aj {
			return ai < aj
		}
		return pivot.Distance(rest[i]) < pivot.Distance(rest[j])
	})

	hull := []State{pivot}
	for _, p := range rest {
		if p == pivot {
			continue
		}
		// Remove points that create a right turn or are collinear
		for len(hull) > 1 && crossProduct(hull[len(hull)-2], hull[len(hull)-1], p) <= 0 {
			hull = hull[:len(hull)-1]
		}
		hull = append(hull, p)
	}

	return hull
}

// polarAngle calculates the polar angle from pivot to point
func polarAngle(pivot, point State) float64 {
	return math.Atan2(point.Y-pivot.Y, point.X-pivot.X)
}

// crossProduct calculates the cross product of vectors (b-a) and (c-a)
func crossProduct(a, b, c State) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

// PruneContained drops shapes that lie entirely inside another polygon. Order of
// the survivors is preserved. Of two identical polygons the first one is kept.
func PruneContained(shapes []Shape) []Shape {
	if len(shapes) <= 1 {
		return shapes
	}

	contained := make([]bool, len(shapes))
	for i := range shapes {
		if contained[i] {
			continue
		}
		for j := range shapes {
			if i == j || contained[j] {
				continue
			}
			if isContainedIn(shapes[i], shapes[j]) && !(j > i && isContainedIn(shapes[j], shapes[i])) {
				contained[i] = true
				break
			}
		}
	}

	result := make([]Shape, 0, len(shapes))
	for i, s := range shapes {
		if !contained[i] {
			result = append(result, s)
		}
	}
	return result
}

// isContainedIn checks if shape a is fully inside polygon b. Only polygons can
// contain other shapes here.
func isContainedIn(a, b Shape) bool {
	outer, ok := b.(Polygon)
	if !ok {
		return false
	}

	// Quick bounding box check first
	ab, bb := a.Bound(), outer.Bound()
	if ab.Min[0] < bb.Min[0] || ab.Max[0] > bb.Max[0] || ab.Min[1] < bb.Min[1] || ab.Max[1] > bb.Max[1] {
		return false
	}

	switch inner := a.(type) {
	case Polygon:
		for _, v := range inner.Vertices() {
			if !outer.Contains(v) {
				return false
			}
		}
		// A convex test is not enough for concave outers, check no edge leaves b
		for _, e := range inner.Edges() {
			for _, oe := range outer.Edges() {
				if segmentsCross(e, oe) {
					return false
				}
			}
		}
		return true
	case Circle:
		if !outer.Contains(inner.Center) {
			return false
		}
		for _, oe := range outer.Edges() {
			if PointSegmentDistance(inner.Center, oe) < inner.Radius {
				return false
			}
		}
		return true
	}
	return false
}

// segmentsCross reports a proper crossing, ignoring touching endpoints
func segmentsCross(s1, s2 Segment) bool {
	d1 := direction(s2.A, s2.B, s1.A)
	d2 := direction(s2.A, s2.B, s1.B)
	d3 := direction(s1.A, s1.B, s2.A)
	d4 := direction(s1.A, s1.B, s2.B)
	return ((d1 > epsilon && d2 < -epsilon) || (d1 < -epsilon && d2 > epsilon)) &&
		((d3 > epsilon && d4 < -epsilon) || (d3 < -epsilon && d4 > epsilon))
}
