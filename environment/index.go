package environment

import (
	"github.com/dhconnelly/rtreego"
	"github.com/paulmach/orb"

	"planbench/geometry"
)

// minExtent pads degenerate rectangles; rtreego rejects zero-length sides
const minExtent = 1e-9

// obstacleEntry wraps a shape for R-tree storage
type obstacleEntry struct {
	shape geometry.Shape
	rect  rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (e *obstacleEntry) Bounds() rtreego.Rect {
	return e.rect
}

// obstacleIndex answers "which obstacles may touch this region" queries
type obstacleIndex struct {
	tree *rtreego.Rtree
	size int
}

func newObstacleIndex(shapes []geometry.Shape) *obstacleIndex {
	tree := rtreego.NewTree(2, 25, 50) // 2D, min 25, max 50 entries per node

	for _, shape := range shapes {
		rect, err := boundToRect(shape.Bound(), 0)
		if err != nil {
			continue
		}
		tree.Insert(&obstacleEntry{shape: shape, rect: rect})
	}

	return &obstacleIndex{tree: tree, size: len(shapes)}
}

// query returns the shapes whose bounding boxes intersect b
func (idx *obstacleIndex) query(b orb.Bound) []geometry.Shape {
	if idx.size == 0 {
		return nil
	}
	rect, err := boundToRect(b, minExtent)
	if err != nil {
		return nil
	}

	results := idx.tree.SearchIntersect(rect)
	shapes := make([]geometry.Shape, 0, len(results))
	for _, item := range results {
		shapes = append(shapes, item.(*obstacleEntry).shape)
	}
	return shapes
}

// queryPoint returns the shapes whose bounding boxes contain s
func (idx *obstacleIndex) queryPoint(s geometry.State) []geometry.Shape {
	return idx.query(orb.Bound{Min: s.Point(), Max: s.Point()})
}

// querySegment returns the shapes whose bounding boxes meet the segment's box
func (idx *obstacleIndex) querySegment(a, b geometry.State) []geometry.Shape {
	return idx.query(orb.MultiPoint{a.Point(), b.Point()}.Bound())
}

// boundToRect converts an orb bound, widening it by margin and by minExtent
// wherever it has no extent
func boundToRect(b orb.Bound, margin float64) (rtreego.Rect, error) {
	minX, minY := b.Min[0]-margin, b.Min[1]-margin
	w, h := b.Max[0]-b.Min[0]+2*margin, b.Max[1]-b.Min[1]+2*margin
	if w < minExtent {
		minX -= minExtent / 2
		w = minExtent
	}
	if h < minExtent {
		minY -= minExtent / 2
		h = minExtent
	}
	return rtreego.NewRect(rtreego.Point{minX, minY}, []float64{w, h})
}
