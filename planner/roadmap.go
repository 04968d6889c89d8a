package planner

import (
	"container/heap"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/spatial/kdtree"

	"planbench/environment"
	"planbench/geometry"
)

// roadmapEdge is a connection to another roadmap node
type roadmapEdge struct {
	To   int
	Cost float64
}

type edgeKey struct {
	lo, hi int
}

func keyOf(a, b int) edgeKey {
	if a > b {
		a, b = b, a
	}
	return edgeKey{a, b}
}

// roadmap is an undirected graph of sampled states. Adjacency lists keep
// insertion order so searches are reproducible.
type roadmap struct {
	Nodes []geometry.State
	Edges [][]roadmapEdge
	keys  map[edgeKey]struct{}
}

func newRoadmap(capacity int) *roadmap {
	return &roadmap{
		Nodes: make([]geometry.State, 0, capacity),
		Edges: make([][]roadmapEdge, 0, capacity),
		keys:  make(map[edgeKey]struct{}),
	}
}

func (r *roadmap) addNode(s geometry.State) int {
	r.Nodes = append(r.Nodes, s)
	r.Edges = append(r.Edges, nil)
	return len(r.Nodes) - 1
}

func (r *roadmap) hasEdge(a, b int) bool {
	_, ok := r.keys[keyOf(a, b)]
	return ok
}

func (r *roadmap) addEdge(a, b int) {
	if a == b || r.hasEdge(a, b) {
		return
	}
	cost := r.Nodes[a].Distance(r.Nodes[b])
	r.keys[keyOf(a, b)] = struct{}{}
	r.Edges[a] = append(r.Edges[a], roadmapEdge{To: b, Cost: cost})
	r.Edges[b] = append(r.Edges[b], roadmapEdge{To: a, Cost: cost})
}

func (r *roadmap) edgeCount() int {
	return len(r.keys)
}

// samplePoint is a roadmap sample stored in the kd-tree
type samplePoint struct {
	id    int
	state geometry.State
}

func (p samplePoint) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(samplePoint)
	if d == 0 {
		return p.state.X - q.state.X
	}
	return p.state.Y - q.state.Y
}

func (p samplePoint) Dims() int { return 2 }

// Distance is squared Euclidean, as kdtree expects
func (p samplePoint) Distance(c kdtree.Comparable) float64 {
	q := c.(samplePoint)
	dx, dy := p.state.X-q.state.X, p.state.Y-q.state.Y
	return dx*dx + dy*dy
}

// samplePoints implements kdtree.Interface
type samplePoints []samplePoint

func (p samplePoints) Index(i int) kdtree.Comparable { return p[i] }
func (p samplePoints) Len() int                      { return len(p) }
func (p samplePoints) Pivot(d kdtree.Dim) int {
	return samplePlane{samplePoints: p, Dim: d}.Pivot()
}
func (p samplePoints) Slice(start, end int) kdtree.Interface { return p[start:end] }

// samplePlane sorts samples along one dimension for median selection
type samplePlane struct {
	kdtree.Dim
	samplePoints
}

func (p samplePlane) Less(i, j int) bool {
	return p.samplePoints[i].Compare(p.samplePoints[j], p.Dim) < 0
}
func (p samplePlane) Pivot() int { return kdtree.Partition(p, kdtree.MedianOfMedians(p)) }
func (p samplePlane) Slice(start, end int) kdtree.SortSlicer {
	p.samplePoints = p.samplePoints[start:end]
	return p
}
func (p samplePlane) Swap(i, j int) {
	p.samplePoints[i], p.samplePoints[j] = p.samplePoints[j], p.samplePoints[i]
}

// nearestIndex answers k-nearest queries over a fixed set of states
type nearestIndex struct {
	tree *kdtree.Tree
}

func newNearestIndex(states []geometry.State) *nearestIndex {
	if len(states) == 0 {
		return &nearestIndex{}
	}
	pts := make(samplePoints, len(states))
	for i, s := range states {
		pts[i] = samplePoint{id: i, state: s}
	}
	return &nearestIndex{tree: kdtree.New(pts, false)}
}

// nearest returns up to k ids closest to s, nearest first, ties by id. The id
// skip is excluded.
func (n *nearestIndex) nearest(s geometry.State, k, skip int) []int {
	if n.tree == nil || k <= 0 {
		return nil
	}
	want := k
	if skip >= 0 {
		want++
	}
	keeper := kdtree.NewNKeeper(want)
	n.tree.NearestSet(keeper, samplePoint{id: -1, state: s})

	found := make([]kdtree.ComparableDist, 0, len(keeper.Heap))
	for _, cd := range keeper.Heap {
		if cd.Comparable == nil {
			continue
		}
		if cd.Comparable.(samplePoint).id == skip {
			continue
		}
		found = append(found, cd)
	}
	sort.Slice(found, func(i, j int) bool {
		if found[i].Dist != found[j].Dist {
			return found[i].Dist < found[j].Dist
		}
		return found[i].Comparable.(samplePoint).id < found[j].Comparable.(samplePoint).id
	})
	if len(found) > k {
		found = found[:k]
	}
	ids := make([]int, len(found))
	for i, cd := range found {
		ids[i] = cd.Comparable.(samplePoint).id
	}
	return ids
}

// sampleFree draws up to n valid states from the bounds, giving up after 10n attempts
func sampleFree(rng *rand.Rand, checker *environment.Checker, n int) []geometry.State {
	b := checker.Environment().Bounds()
	samples := make([]geometry.State, 0, n)
	maxAttempts := n * 10 // Try up to 10x the desired samples
	for attempts := 0; len(samples) < n && attempts < maxAttempts; attempts++ {
		s := geometry.NewState(b.MinX+rng.Float64()*b.Width(), b.MinY+rng.Float64()*b.Height())
		if checker.IsValid(s) {
			samples = append(samples, s)
		}
	}
	return samples
}

// buildRoadmap connects every sample to its k nearest neighbours for which
// connect holds. The samples keep their ids 0..len-1.
func buildRoadmap(samples []geometry.State, k int, connect func(a, b geometry.State) bool) (*roadmap, *nearestIndex) {
	rm := newRoadmap(len(samples) + 2)
	for _, s := range samples {
		rm.addNode(s)
	}
	index := newNearestIndex(samples)
	for i, s := range samples {
		for _, j := range index.nearest(s, k, i) {
			if rm.hasEdge(i, j) {
				continue
			}
			if connect(s, samples[j]) {
				rm.addEdge(i, j)
			}
		}
	}
	return rm, index
}

// attach inserts a query state as a temporary node linked to its k nearest samples
func (r *roadmap) attach(s geometry.State, index *nearestIndex, k int, connect func(a, b geometry.State) bool) int {
	id := r.addNode(s)
	for _, j := range index.nearest(s, k, -1) {
		if connect(s, r.Nodes[j]) {
			r.addEdge(id, j)
		}
	}
	return id
}

// roadmapNode represents a node in the roadmap A* search
type roadmapNode struct {
	id      int
	g, h, f float64
	parent  *roadmapNode
	index   int
}

// roadmapQueue orders by f, then larger g, then lower node id
type roadmapQueue []*roadmapNode

func (pq roadmapQueue) Len() int { return len(pq) }

func (pq roadmapQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g > b.g
	}
	return a.id < b.id
}

func (pq roadmapQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *roadmapQueue) Push(x interface{}) {
	node := x.(*roadmapNode)
	node.index = len(*pq)
	*pq = append(*pq, node)
}

func (pq *roadmapQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// search runs A* with the Euclidean heuristic from start to goal, skipping edges
// for which removed holds. It returns the node ids of the path and the number of
// nodes expanded.
func (r *roadmap) search(start, goal int, removed func(edgeKey) bool) ([]int, int, error) {
	goalState := r.Nodes[goal]

	openSet := &roadmapQueue{}
	heap.Init(openSet)
	h0 := r.Nodes[start].Distance(goalState)
	startNode := &roadmapNode{id: start, h: h0, f: h0}
	heap.Push(openSet, startNode)

	closedSet := make(map[int]bool)
	openSetMap := map[int]*roadmapNode{start: startNode}
	expanded := 0

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*roadmapNode)
		delete(openSetMap, current.id)
		closedSet[current.id] = true
		expanded++

		if current.id == goal {
			var ids []int
			for node := current; node != nil; node = node.parent {
				if len(ids) > len(r.Nodes) {
					return nil, expanded, invariantf("roadmap parent chain has a cycle")
				}
				ids = append(ids, node.id)
			}
			for i, j := 0, len(ids)-1; i < j; i, j = i+1, j-1 {
				ids[i], ids[j] = ids[j], ids[i]
			}
			return ids, expanded, nil
		}

		for _, edge := range r.Edges[current.id] {
			if edge.Cost < 0 {
				return nil, expanded, invariantf("roadmap edge %d-%d has negative cost %g", current.id, edge.To, edge.Cost)
			}
			if edge.To < 0 || edge.To >= len(r.Nodes) {
				return nil, expanded, invariantf("roadmap edge points to missing node %d", edge.To)
			}
			if closedSet[edge.To] || (removed != nil && removed(keyOf(current.id, edge.To))) {
				continue
			}

			tentativeG := current.g + edge.Cost
			neighbor, exists := openSetMap[edge.To]
			if !exists {
				neighbor = &roadmapNode{id: edge.To, g: tentativeG, h: r.Nodes[edge.To].Distance(goalState), parent: current}
				neighbor.f = neighbor.g + neighbor.h
				heap.Push(openSet, neighbor)
				openSetMap[edge.To] = neighbor
			} else if tentativeG < neighbor.g {
				// Found a better path to this neighbour
				neighbor.g = tentativeG
				neighbor.f = neighbor.g + neighbor.h
				neighbor.parent = current
				heap.Fix(openSet, neighbor.index)
			}
		}
	}

	return nil, expanded, nil
}

func (r *roadmap) states(ids []int) []geometry.State {
	out := make([]geometry.State, len(ids))
	for i, id := range ids {
		out[i] = r.Nodes[id]
	}
	return out
}
