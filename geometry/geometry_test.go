package geometry

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func square(minX, minY, size float64) Polygon {
	p, err := NewPolygon([]State{
		{minX, minY}, {minX + size, minY}, {minX + size, minY + size}, {minX, minY + size},
	})
	if err != nil {
		panic(err)
	}
	return p
}

func TestSteer(t *testing.T) {
	s := NewState(0, 0)
	assert.Equal(t, NewState(1, 0), s.Steer(NewState(5, 0), 1))
	assert.Equal(t, NewState(0.5, 0), s.Steer(NewState(0.5, 0), 1))

	got := s.Steer(NewState(3, 4), 2.5)
	assert.InDelta(t, 2.5, s.Distance(got), 1e-12)
}

func TestPathLength(t *testing.T) {
	assert.Equal(t, 0.0, PathLength(nil))
	assert.InDelta(t, 7.0, PathLength([]State{{0, 0}, {3, 0}, {3, 4}}), 1e-12)
}

func TestSegmentsIntersect(t *testing.T) {
	tests := []struct {
		name string
		a, b Segment
		want bool
	}{
		{"crossing", Segment{State{0, 0}, State{2, 2}}, Segment{State{0, 2}, State{2, 0}}, true},
		{"parallel", Segment{State{0, 0}, State{2, 0}}, Segment{State{0, 1}, State{2, 1}}, false},
		{"shared endpoint", Segment{State{0, 0}, State{1, 1}}, Segment{State{1, 1}, State{2, 0}}, true},
		{"collinear overlap", Segment{State{0, 0}, State{2, 0}}, Segment{State{1, 0}, State{3, 0}}, true},
		{"collinear apart", Segment{State{0, 0}, State{1, 0}}, Segment{State{2, 0}, State{3, 0}}, false},
		{"t-junction", Segment{State{0, 0}, State{2, 0}}, Segment{State{1, 0}, State{1, 3}}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, SegmentsIntersect(tt.a, tt.b))
			assert.Equal(t, tt.want, SegmentsIntersect(tt.b, tt.a))
		})
	}
}

func TestPointSegmentDistance(t *testing.T) {
	seg := Segment{State{0, 0}, State{4, 0}}
	assert.InDelta(t, 3.0, PointSegmentDistance(State{2, 3}, seg), 1e-12)
	assert.InDelta(t, 5.0, PointSegmentDistance(State{7, 4}, seg), 1e-12)
	assert.InDelta(t, math.Sqrt2, PointSegmentDistance(State{1, 1}, Segment{State{0, 0}, State{0, 0}}), 1e-12)
}

func TestTurningAngle(t *testing.T) {
	assert.InDelta(t, 0, TurningAngle(State{0, 0}, State{1, 0}, State{2, 0}), 1e-12)
	assert.InDelta(t, math.Pi/2, TurningAngle(State{0, 0}, State{1, 0}, State{1, 1}), 1e-12)
	assert.Equal(t, 0.0, TurningAngle(State{0, 0}, State{0, 0}, State{1, 1}))
}

func TestPolygon(t *testing.T) {
	_, err := NewPolygon([]State{{0, 0}, {1, 1}})
	require.ErrorIs(t, err, ErrDegenerateShape)
	_, err = NewPolygon([]State{{0, 0}, {1, 1}, {2, 2}})
	require.ErrorIs(t, err, ErrDegenerateShape)

	p := square(2, 2, 2)
	assert.Len(t, p.Vertices(), 4)
	assert.Len(t, p.Edges(), 4)

	assert.True(t, p.Contains(State{3, 3}))
	assert.True(t, p.Contains(State{2, 3}))
	assert.False(t, p.Contains(State{5, 3}))

	assert.True(t, p.IntersectsSegment(Segment{State{0, 3}, State{6, 3}}))
	assert.True(t, p.IntersectsSegment(Segment{State{2.5, 2.5}, State{3.5, 3.5}}))
	assert.False(t, p.IntersectsSegment(Segment{State{0, 0}, State{6, 0}}))

	assert.Equal(t, 0.0, p.Distance(State{3, 3}))
	assert.InDelta(t, 1.0, p.Distance(State{5, 3}), 1e-12)

	closed, err := NewPolygon(append(p.Vertices(), p.Vertices()[0]))
	require.NoError(t, err)
	assert.Equal(t, p.Vertices(), closed.Vertices())
}

func TestCircle(t *testing.T) {
	_, err := NewCircle(State{0, 0}, 0)
	require.ErrorIs(t, err, ErrDegenerateShape)

	c, err := NewCircle(State{5, 5}, 1)
	require.NoError(t, err)
	assert.True(t, c.Contains(State{5.5, 5}))
	assert.False(t, c.Contains(State{7, 5}))
	assert.True(t, c.IntersectsSegment(Segment{State{0, 5}, State{10, 5}}))
	assert.False(t, c.IntersectsSegment(Segment{State{0, 7}, State{10, 7}}))
	assert.InDelta(t, 1.0, c.Distance(State{7, 5}), 1e-12)
	assert.Equal(t, 4.0, c.Bound().Min[0])
}

func TestConvexHull(t *testing.T) {
	points := []State{{0, 0}, {2, 0}, {1, 1}, {2, 2}, {0, 2}, {1, 0}}
	in := append([]State(nil), points...)
	hull := ConvexHull(points)
	assert.Equal(t, in, points)
	assert.Equal(t, []State{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, hull)
}

func TestPruneContained(t *testing.T) {
	outer := square(0, 0, 10)
	inner := square(2, 2, 2)
	apart := square(20, 20, 2)
	disc, err := NewCircle(State{5, 5}, 1)
	require.NoError(t, err)
	edgeDisc, err := NewCircle(State{0.5, 5}, 1)
	require.NoError(t, err)

	got := PruneContained([]Shape{inner, outer, apart, disc, edgeDisc})
	assert.Equal(t, []Shape{outer, apart, edgeDisc}, got)

	dup := PruneContained([]Shape{inner, inner})
	assert.Len(t, dup, 1)
}

func TestPolygonSimplify(t *testing.T) {
	p, err := NewPolygon([]State{{0, 0}, {1, 0}, {2, 0}, {2, 1}, {2, 2}, {1, 2}, {0, 2}, {0, 1}})
	require.NoError(t, err)

	assert.Equal(t, []State{{0, 0}, {2, 0}, {2, 2}, {0, 2}}, p.Simplify(0.1).Vertices())
	assert.Equal(t, p, p.Simplify(0))
	// Everything within tolerance collapses the ring, the polygon is kept as is
	assert.Equal(t, p, p.Simplify(10))

	disc, err := NewCircle(State{5, 5}, 1)
	require.NoError(t, err)
	got := SimplifyShapes([]Shape{p, disc}, 0.1)
	require.Len(t, got, 2)
	assert.Len(t, got[0].(Polygon).Vertices(), 4)
	assert.Equal(t, disc, got[1])
}
