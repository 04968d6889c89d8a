package planner

import (
	"container/heap"
	"math"

	"go.uber.org/zap"

	"planbench/environment"
	"planbench/geometry"
)

// move is a neighbour offset and its step cost
type move struct {
	dr, dc int
	cost   float64
}

// Neighbour order: up, down, left, right, then the diagonals
var (
	fourConnected  = []move{{-1, 0, 1}, {1, 0, 1}, {0, -1, 1}, {0, 1, 1}}
	eightConnected = append(append([]move{}, fourConnected...),
		move{-1, -1, math.Sqrt2}, move{-1, 1, math.Sqrt2}, move{1, -1, math.Sqrt2}, move{1, 1, math.Sqrt2})
)

func movesFor(connectivity int) []move {
	if connectivity == 4 {
		return fourConnected
	}
	return eightConnected
}

type nodeStatus uint8

const (
	unseen nodeStatus = iota
	open
	closed
)

// searchNode is one cell of the search arena
type searchNode struct {
	id     int     // flattened cell index
	g      float64 // cost from start
	f      float64 // priority key
	parent int     // arena index of the parent, -1 for the start
	seq    int     // discovery order, last tie-break
	index  int     // index in the heap
	status nodeStatus
}

// priorityQueue implements heap.Interface. Lower f first; on equal f the larger g
// wins, then the earlier discovered node.
type priorityQueue []*searchNode

func (pq priorityQueue) Len() int { return len(pq) }

func (pq priorityQueue) Less(i, j int) bool {
	a, b := pq[i], pq[j]
	if a.f != b.f {
		return a.f < b.f
	}
	if a.g != b.g {
		return a.g > b.g
	}
	return a.seq < b.seq
}

func (pq priorityQueue) Swap(i, j int) {
	pq[i], pq[j] = pq[j], pq[i]
	pq[i].index = i
	pq[j].index = j
}

func (pq *priorityQueue) Push(x interface{}) {
	node := x.(*searchNode)
	node.index = len(*pq)
	*pq = append(*pq, node)
}

func (pq *priorityQueue) Pop() interface{} {
	old := *pq
	n := len(old)
	node := old[n-1]
	old[n-1] = nil
	node.index = -1
	*pq = old[0 : n-1]
	return node
}

// GridSearch is the best-first search shared by Dijkstra, A*, Weighted A* and
// Theta*. The key is g + weight*h; weight 0 turns the heuristic off. Paths run
// through the corners of the visited cells and start and end at the exact query
// states.
type GridSearch struct {
	name      string
	heuristic Heuristic
	weight    float64
	moves     []move
	anyAngle  bool
	logger    *zap.SugaredLogger

	expanded int
}

func (gs *GridSearch) Name() string       { return gs.name }
func (gs *GridSearch) NodesExpanded() int { return gs.expanded }

func (gs *GridSearch) Solve(env environment.Environment, start, goal geometry.State) (Path, error) {
	gs.expanded = 0

	lattice, ok := env.(environment.Lattice)
	if !ok {
		gs.logger.Warnw("graph search needs a grid environment", "planner", gs.name, "kind", env.Kind())
		return Failure(), nil
	}
	checker := environment.NewChecker(env)
	if !checker.IsValid(start) || !checker.IsValid(goal) {
		gs.logger.Debugw("infeasible query", "planner", gs.name, "start", start, "goal", goal)
		return Failure(), nil
	}

	width := lattice.Width()
	index := func(c environment.Cell) int { return c.Row*width + c.Col }
	cellAt := func(i int) environment.Cell { return environment.Cell{Row: i / width, Col: i % width} }

	startCell, goalCell := lattice.CellOf(start), lattice.CellOf(goal)
	goalID := index(goalCell)
	estimate := func(c environment.Cell) float64 {
		if gs.weight == 0 {
			return 0
		}
		return gs.weight * gs.heuristic.Estimate(float64(c.Col-goalCell.Col), float64(c.Row-goalCell.Row))
	}

	nodes := make([]searchNode, width*lattice.Height())
	openSet := &priorityQueue{}
	heap.Init(openSet)

	seq := 0
	startNode := &nodes[index(startCell)]
	*startNode = searchNode{id: index(startCell), f: estimate(startCell), parent: -1, seq: seq, status: open}
	heap.Push(openSet, startNode)

	for openSet.Len() > 0 {
		current := heap.Pop(openSet).(*searchNode)
		current.status = closed
		gs.expanded++

		if current.id == goalID {
			states, err := gs.reconstruct(nodes, current.id, cellAt)
			if err != nil {
				return Failure(), err
			}
			states = withEndpoints(states, start, goal)
			gs.logger.Debugw("path found", "planner", gs.name, "expanded", gs.expanded,
				"cost", current.g, "edge_checks", checker.EdgeChecks())
			return NewPath(states), nil
		}

		cell := cellAt(current.id)
		for _, m := range gs.moves {
			next := environment.Cell{Row: cell.Row + m.dr, Col: cell.Col + m.dc}
			if !lattice.InBounds(next) {
				continue
			}
			neighbor := &nodes[index(next)]
			if neighbor.status == closed {
				continue
			}
			if !checker.IsValidEdge(cell.State(), next.State()) {
				continue
			}

			parent, tentativeG := current.id, current.g+m.cost
			if gs.anyAngle && current.parent >= 0 {
				// Path 2: attach to the grandparent when it sees the neighbour
				grand := &nodes[current.parent]
				grandCell := cellAt(grand.id)
				if checker.IsValidEdge(grandCell.State(), next.State()) {
					parent = grand.id
					tentativeG = grand.g + grandCell.State().Distance(next.State())
				}
			}

			if neighbor.status == open && tentativeG >= neighbor.g {
				continue
			}
			neighbor.g = tentativeG
			neighbor.f = tentativeG + estimate(next)
			neighbor.parent = parent
			if neighbor.status == open {
				// Found a better path to this neighbour
				heap.Fix(openSet, neighbor.index)
				continue
			}
			seq++
			neighbor.id = index(next)
			neighbor.seq = seq
			neighbor.status = open
			heap.Push(openSet, neighbor)
		}
	}

	gs.logger.Debugw("open set exhausted", "planner", gs.name, "expanded", gs.expanded)
	return Failure(), nil
}

// withEndpoints puts the exact start and goal around the cell path. A state and the
// corner of its own cell always share that cell, so the added segments stay valid.
func withEndpoints(cells []geometry.State, start, goal geometry.State) []geometry.State {
	states := make([]geometry.State, 0, len(cells)+2)
	if cells[0] != start {
		states = append(states, start)
	}
	states = append(states, cells...)
	if states[len(states)-1] != goal {
		states = append(states, goal)
	}
	return states
}

// reconstruct follows parent indices back to the start
func (gs *GridSearch) reconstruct(nodes []searchNode, id int, cellAt func(int) environment.Cell) ([]geometry.State, error) {
	var reversed []geometry.State
	for steps := 0; id >= 0; steps++ {
		if steps > len(nodes) {
			return nil, invariantf("%s: parent chain longer than the grid", gs.name)
		}
		reversed = append(reversed, cellAt(id).State())
		id = nodes[id].parent
	}
	states := make([]geometry.State, len(reversed))
	for i, s := range reversed {
		states[len(reversed)-1-i] = s
	}
	return states, nil
}
