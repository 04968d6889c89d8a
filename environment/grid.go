package environment

import (
	"math"

	"github.com/pkg/errors"

	"planbench/geometry"
)

// Grid is a width x height occupancy map. Cells are addressed [row][col].
type Grid struct {
	width, height int
	occupied      []bool
}

var _ Lattice = (*Grid)(nil)

// NewGrid builds a grid from an occupancy matrix indexed [row][col]. A nil matrix
// yields an empty grid. The matrix is copied.
func NewGrid(width, height int, occupancy [][]bool) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, errors.Wrapf(ErrInvalidEnvironment, "grid dimensions must be positive, got %dx%d", width, height)
	}
	g := &Grid{width: width, height: height, occupied: make([]bool, width*height)}
	if occupancy == nil {
		return g, nil
	}
	if len(occupancy) != height {
		return nil, errors.Wrapf(ErrInvalidEnvironment, "occupancy has %d rows, want %d", len(occupancy), height)
	}
	for r, row := range occupancy {
		if len(row) != width {
			return nil, errors.Wrapf(ErrInvalidEnvironment, "occupancy row %d has %d columns, want %d", r, len(row), width)
		}
		copy(g.occupied[r*width:(r+1)*width], row)
	}
	return g, nil
}

// NewEmptyGrid is a grid without obstacles
func NewEmptyGrid(width, height int) (*Grid, error) {
	return NewGrid(width, height, nil)
}

func (g *Grid) Kind() Kind  { return KindGrid }
func (g *Grid) Width() int  { return g.width }
func (g *Grid) Height() int { return g.height }

// Cells is the number of cells
func (g *Grid) Cells() int { return g.width * g.height }

// Index flattens a cell to row*width + col
func (g *Grid) Index(c Cell) int { return c.Row*g.width + c.Col }

// CellAt is the inverse of Index
func (g *Grid) CellAt(idx int) Cell {
	return Cell{Row: idx / g.width, Col: idx % g.width}
}

// Bounds covers every cell: [0, width] x [0, height]
func (g *Grid) Bounds() Bounds {
	return Bounds{MinX: 0, MaxX: float64(g.width), MinY: 0, MaxY: float64(g.height)}
}

func (g *Grid) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.height && c.Col >= 0 && c.Col < g.width
}

// Occupied reports whether a cell is an obstacle. Cells outside the grid count as occupied.
func (g *Grid) Occupied(c Cell) bool {
	if !g.InBounds(c) {
		return true
	}
	return g.occupied[g.Index(c)]
}

// CellOf maps a state to the cell containing it
func (g *Grid) CellOf(s geometry.State) Cell {
	return Cell{Row: int(math.Floor(s.Y)), Col: int(math.Floor(s.X))}
}

func (g *Grid) IsValid(s geometry.State) bool {
	if math.IsNaN(s.X) || math.IsNaN(s.Y) {
		return false
	}
	return !g.Occupied(g.CellOf(s))
}

// IsValidEdge checks both end cells and the cells between them. Between two cell
// corners it walks the Bresenham line, where a diagonal step is blocked only when both
// orthogonal neighbours are occupied. Any other segment is traced exactly and every
// cell it touches must be free.
func (g *Grid) IsValidEdge(a, b geometry.State) bool {
	if !g.IsValid(a) || !g.IsValid(b) {
		return false
	}
	if isCorner(a) && isCorner(b) {
		return g.LineOfSight(g.CellOf(a), g.CellOf(b))
	}
	return g.segmentClear(a, b)
}

func isCorner(s geometry.State) bool {
	return s.X == math.Trunc(s.X) && s.Y == math.Trunc(s.Y)
}

// segmentClear walks every cell the segment a-b passes through (Amanatides-Woo).
// Cells are half-open, so a segment crossing exactly through a grid corner touches
// the cell that owns the corner point and not its two orthogonal neighbours.
func (g *Grid) segmentClear(a, b geometry.State) bool {
	cell, end := g.CellOf(a), g.CellOf(b)
	dx, dy := b.X-a.X, b.Y-a.Y
	stepC, stepR := signf(dx), signf(dy)

	tMaxX, tDeltaX := math.Inf(1), math.Inf(1)
	switch {
	case dx > 0:
		tMaxX, tDeltaX = (float64(cell.Col+1)-a.X)/dx, 1/dx
	case dx < 0:
		tMaxX, tDeltaX = (float64(cell.Col)-a.X)/dx, -1/dx
	}
	tMaxY, tDeltaY := math.Inf(1), math.Inf(1)
	switch {
	case dy > 0:
		tMaxY, tDeltaY = (float64(cell.Row+1)-a.Y)/dy, 1/dy
	case dy < 0:
		tMaxY, tDeltaY = (float64(cell.Row)-a.Y)/dy, -1/dy
	}

	for {
		if g.Occupied(cell) {
			return false
		}
		if cell == end || (tMaxX > 1 && tMaxY > 1) {
			return true
		}
		switch {
		case tMaxX < tMaxY:
			cell.Col += stepC
			tMaxX += tDeltaX
		case tMaxY < tMaxX:
			cell.Row += stepR
			tMaxY += tDeltaY
		default:
			// Through a corner: the corner point belongs to the cell up-right of it
			corner := cell
			if stepC > 0 {
				corner.Col++
			}
			if stepR > 0 {
				corner.Row++
			}
			if corner != cell && g.Occupied(corner) {
				return false
			}
			cell.Col += stepC
			cell.Row += stepR
			tMaxX += tDeltaX
			tMaxY += tDeltaY
		}
	}
}

// LineOfSight walks the Bresenham line from a to b
func (g *Grid) LineOfSight(a, b Cell) bool {
	r, c := a.Row, a.Col
	dr, dc := abs(b.Row-a.Row), abs(b.Col-a.Col)
	sr, sc := sign(b.Row-a.Row), sign(b.Col-a.Col)
	err := dc - dr

	for {
		if g.Occupied(Cell{Row: r, Col: c}) {
			return false
		}
		if r == b.Row && c == b.Col {
			return true
		}
		e2 := 2 * err
		nr, nc := r, c
		if e2 > -dr {
			err -= dr
			nc += sc
		}
		if e2 < dc {
			err += dc
			nr += sr
		}
		// Corner cutting between two blocked orthogonal cells
		if nr != r && nc != c && g.Occupied(Cell{Row: r, Col: nc}) && g.Occupied(Cell{Row: nr, Col: c}) {
			return false
		}
		r, c = nr, nc
	}
}

// Clearance is the Euclidean distance, in cells, from the cell containing s to the
// nearest occupied cell. It is 0 on or outside obstacles and +Inf on an empty grid.
func (g *Grid) Clearance(s geometry.State) float64 {
	origin := g.CellOf(s)
	if g.Occupied(origin) {
		return 0
	}
	best := math.Inf(1)
	maxRing := max(g.width, g.height)
	// Rings of growing Chebyshev radius; a ring can not beat best once k exceeds it
	for k := 1; k <= maxRing && float64(k) < best; k++ {
		for dr := -k; dr <= k; dr++ {
			for dc := -k; dc <= k; dc++ {
				if abs(dr) != k && abs(dc) != k {
					continue
				}
				c := Cell{Row: origin.Row + dr, Col: origin.Col + dc}
				if !g.InBounds(c) || !g.occupied[g.Index(c)] {
					continue
				}
				best = math.Min(best, math.Hypot(float64(dr), float64(dc)))
			}
		}
	}
	return best
}

// ObstacleCount is the number of occupied cells
func (g *Grid) ObstacleCount() int {
	n := 0
	for _, o := range g.occupied {
		if o {
			n++
		}
	}
	return n
}

// Occupancy returns a copy of the occupancy matrix indexed [row][col]
func (g *Grid) Occupancy() [][]bool {
	out := make([][]bool, g.height)
	for r := range out {
		out[r] = append([]bool(nil), g.occupied[r*g.width:(r+1)*g.width]...)
	}
	return out
}

func (g *Grid) Describe() Description {
	occ := make([][]int, g.height)
	for r := range occ {
		occ[r] = make([]int, g.width)
		for c := range occ[r] {
			if g.occupied[r*g.width+c] {
				occ[r][c] = 1
			}
		}
	}
	return Description{Type: KindGrid, Width: g.width, Height: g.height, Occupancy: occ}
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func signf(v float64) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func sign(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}
