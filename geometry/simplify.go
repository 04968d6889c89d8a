package geometry

// Simplify reduces the polygon with the Douglas-Peucker algorithm, treating the
// ring as closed. The polygon is returned unchanged when epsilon <= 0 or when the
// result would be degenerate.
func (p Polygon) Simplify(epsilon float64) Polygon {
	vertices := p.Vertices()
	if epsilon <= 0 || len(vertices) <= 3 {
		return p
	}

	closed := append(append([]State{}, vertices...), vertices[0])
	simplified := douglasPeucker(closed, epsilon)
	simplified = simplified[:len(simplified)-1]
	if len(simplified) < 3 {
		return p
	}
	out, err := NewPolygon(simplified)
	if err != nil {
		return p
	}
	return out
}

// SimplifyShapes simplifies every polygon of shapes and keeps other shapes as they are
func SimplifyShapes(shapes []Shape, epsilon float64) []Shape {
	out := make([]Shape, len(shapes))
	for i, s := range shapes {
		if poly, ok := s.(Polygon); ok {
			out[i] = poly.Simplify(epsilon)
			continue
		}
		out[i] = s
	}
	return out
}

func douglasPeucker(points []State, epsilon float64) []State {
	if len(points) <= 2 {
		return points
	}

	// Find the point farthest from the chord between first and last
	dmax, index := 0.0, 0
	end := len(points) - 1
	chord := Segment{A: points[0], B: points[end]}
	for i := 1; i < end; i++ {
		if d := PointSegmentDistance(points[i], chord); d > dmax {
			index, dmax = i, d
		}
	}

	if dmax > epsilon {
		left := douglasPeucker(points[:index+1], epsilon)
		right := douglasPeucker(points[index:], epsilon)
		result := make([]State, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		return append(result, right...)
	}
	return []State{points[0], points[end]}
}
