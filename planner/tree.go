package planner

import (
	"sort"

	"github.com/dhconnelly/rtreego"

	"planbench/geometry"
)

// pointTolerance is the half-size of the rectangle a tree vertex occupies in the R-tree
const pointTolerance = 1e-9

// treeNode is one vertex of the search tree. parent is -1 for the root.
type treeNode struct {
	state    geometry.State
	parent   int
	cost     float64
	children []int
}

// treeEntry wraps a tree vertex for R-tree storage
type treeEntry struct {
	id   int
	rect rtreego.Rect
}

// Bounds implements rtreego.Spatial
func (e *treeEntry) Bounds() rtreego.Rect {
	return e.rect
}

// tree is an arena of nodes addressed by index plus an R-tree over their states
type tree struct {
	nodes []treeNode
	index *rtreego.Rtree
}

func newTree(root geometry.State) *tree {
	t := &tree{index: rtreego.NewTree(2, 25, 50)}
	t.add(root, -1, 0)
	return t
}

func (t *tree) size() int { return len(t.nodes) }

func (t *tree) add(s geometry.State, parent int, cost float64) int {
	id := len(t.nodes)
	t.nodes = append(t.nodes, treeNode{state: s, parent: parent, cost: cost})
	if parent >= 0 {
		t.nodes[parent].children = append(t.nodes[parent].children, id)
	}
	t.index.Insert(&treeEntry{id: id, rect: rtreego.Point{s.X, s.Y}.ToRect(pointTolerance)})
	return id
}

// nearest returns the id of the vertex closest to s
func (t *tree) nearest(s geometry.State) int {
	return t.index.NearestNeighbor(rtreego.Point{s.X, s.Y}).(*treeEntry).id
}

// near returns the ids within radius of s in increasing id order
func (t *tree) near(s geometry.State, radius float64) []int {
	rect, err := rtreego.NewRect(rtreego.Point{s.X - radius, s.Y - radius}, []float64{2 * radius, 2 * radius})
	if err != nil {
		return nil
	}
	var ids []int
	for _, item := range t.index.SearchIntersect(rect) {
		id := item.(*treeEntry).id
		if t.nodes[id].state.Distance(s) <= radius {
			ids = append(ids, id)
		}
	}
	sort.Ints(ids)
	return ids
}

// reparent moves id under newParent with cost newCost and shifts the costs of
// its whole subtree by the same amount
func (t *tree) reparent(id, newParent int, newCost float64) {
	old := t.nodes[id].parent
	if old >= 0 {
		siblings := t.nodes[old].children
		for i, c := range siblings {
			if c == id {
				t.nodes[old].children = append(siblings[:i], siblings[i+1:]...)
				break
			}
		}
	}
	t.nodes[id].parent = newParent
	t.nodes[newParent].children = append(t.nodes[newParent].children, id)

	delta := newCost - t.nodes[id].cost
	stack := []int{id}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		t.nodes[n].cost += delta
		stack = append(stack, t.nodes[n].children...)
	}
}

// isAncestor reports whether a lies on the parent chain of b, b included
func (t *tree) isAncestor(a, b int) bool {
	for steps := 0; b >= 0 && steps <= len(t.nodes); steps++ {
		if b == a {
			return true
		}
		b = t.nodes[b].parent
	}
	return false
}

// pathTo walks parent indices from id back to the root
func (t *tree) pathTo(id int) ([]geometry.State, error) {
	var reversed []geometry.State
	for steps := 0; id >= 0; steps++ {
		if steps > len(t.nodes) {
			return nil, invariantf("tree parent chain has a cycle")
		}
		reversed = append(reversed, t.nodes[id].state)
		id = t.nodes[id].parent
	}
	states := make([]geometry.State, len(reversed))
	for i, s := range reversed {
		states[len(reversed)-1-i] = s
	}
	return states, nil
}
