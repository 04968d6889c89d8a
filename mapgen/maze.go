package mapgen

import (
	"math/rand"
	"strconv"

	"github.com/katalvlaran/lvlath/core"
	"github.com/katalvlaran/lvlath/prim_kruskal"
	"github.com/pkg/errors"
)

// maze carves a perfect maze: rooms sit at odd coordinates of a (2h+1) x (2w+1)
// grid that starts fully blocked, every wall between neighbouring rooms gets a
// random weight and the walls of the minimum spanning tree are opened.
func maze(rng *rand.Rand, w, h int) ([][]bool, error) {
	rows, cols := 2*h+1, 2*w+1
	occ := newOccupancy(cols, rows, true)

	rooms := core.NewGraph(core.WithWeighted())
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			occ[2*r+1][2*c+1] = false
			if err := rooms.AddVertex(roomID(r*w + c)); err != nil {
				return nil, errors.Wrap(err, "failed to add maze room")
			}
		}
	}
	// Weights are drawn in a fixed room order so the seed alone fixes the maze
	for r := 0; r < h; r++ {
		for c := 0; c < w; c++ {
			room := r*w + c
			if c+1 < w {
				if _, err := rooms.AddEdge(roomID(room), roomID(room+1), rng.Int63()); err != nil {
					return nil, errors.Wrap(err, "failed to add maze wall")
				}
			}
			if r+1 < h {
				if _, err := rooms.AddEdge(roomID(room), roomID(room+w), rng.Int63()); err != nil {
					return nil, errors.Wrap(err, "failed to add maze wall")
				}
			}
		}
	}

	tree, _, err := prim_kruskal.Kruskal(rooms)
	if err != nil {
		return nil, errors.Wrap(err, "failed to span maze rooms")
	}
	for _, e := range tree {
		a, errA := strconv.Atoi(e.From)
		b, errB := strconv.Atoi(e.To)
		if errA != nil || errB != nil {
			return nil, errors.Errorf("unexpected maze room ids %q and %q", e.From, e.To)
		}
		ra, ca := a/w, a%w
		rb, cb := b/w, b%w
		occ[ra+rb+1][ca+cb+1] = false
	}
	return occ, nil
}

func roomID(room int) string {
	return strconv.Itoa(room)
}
