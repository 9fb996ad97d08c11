// Package solver runs breadth-first and depth-first search over a maze grid.
//
// Both algorithms share one contract: Solve returns the order in which cells
// were discovered (the trace) and, when the end is reachable, the path from
// start to end. They differ only in frontier discipline: BFS takes the oldest
// entry, DFS the newest.
package solver

import (
	"errors"
	"fmt"

	"github.com/beka-birhanu/maze-solver/maze"
)

var (
	ErrUnknownAlgorithm = errors.New("unknown search algorithm")
	ErrOutOfBounds      = errors.New("endpoint is out of the maze")
)

// Algorithm selects the frontier discipline.
type Algorithm uint8

const (
	BFS Algorithm = iota // first in, first out; shortest path
	DFS                  // last in, first out
)

// ParseAlgorithm maps "bfs" and "dfs" to an Algorithm.
func ParseAlgorithm(s string) (Algorithm, error) {
	switch s {
	case "bfs":
		return BFS, nil
	case "dfs":
		return DFS, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, s)
}

func (a Algorithm) String() string {
	switch a {
	case BFS:
		return "bfs"
	case DFS:
		return "dfs"
	}
	return fmt.Sprintf("algorithm(%d)", uint8(a))
}

// Directions are explored in this fixed order at every expanded cell.
var Directions = []maze.CellPosition{
	{Row: -1, Col: 0}, // up
	{Row: 1, Col: 0},  // down
	{Row: 0, Col: -1}, // left
	{Row: 0, Col: 1},  // right
}

// Result is the outcome of one search run.
type Result struct {
	Algorithm Algorithm
	Trace     []maze.CellPosition // discovery order, starts with the start cell unless the start is a Wall
	Path      []maze.CellPosition // start to end inclusive; empty when unreachable
}

// Found reports whether a path was found.
func (r *Result) Found() bool {
	return len(r.Path) > 0
}

// node is a frontier entry: a cell and the path taken to reach it.
type node struct {
	pos  maze.CellPosition
	path []maze.CellPosition
}

// walker holds the mutable state of one run.
type walker struct {
	maze     *maze.Maze
	end      maze.CellPosition
	frontier []node
	visited  [][]bool
	res      *Result
	lifo     bool
}

// Solve searches m from start to end with the given algorithm.
//
// A start equal to end yields a one cell trace and path without expanding
// anything. A start on a Wall yields an empty trace and path; it is the only
// case where the trace does not begin with start. The maze must not be
// mutated while Solve runs.
func Solve(alg Algorithm, m *maze.Maze, start, end maze.CellPosition) (*Result, error) {
	if alg != BFS && alg != DFS {
		return nil, fmt.Errorf("%w: %s", ErrUnknownAlgorithm, alg)
	}
	if !m.InBound(start) || !m.InBound(end) {
		return nil, fmt.Errorf("%w: start %s end %s in %dx%d", ErrOutOfBounds, start, end, m.Rows(), m.Cols())
	}

	res := &Result{Algorithm: alg}
	if start == end {
		res.Trace = []maze.CellPosition{start}
		res.Path = []maze.CellPosition{start}
		return res, nil
	}
	if !m.IsOpen(start) {
		return res, nil
	}

	w := newWalker(m, end, alg == DFS, res)
	w.discover(node{pos: start, path: []maze.CellPosition{start}})
	w.loop()
	return res, nil
}

// SolveMaze is Solve using the maze's own endpoints.
func SolveMaze(alg Algorithm, m *maze.Maze) (*Result, error) {
	start, okStart := m.Start()
	end, okEnd := m.End()
	if !okStart || !okEnd {
		return nil, fmt.Errorf("%w: start or end is not set", ErrOutOfBounds)
	}
	return Solve(alg, m, start, end)
}

func newWalker(m *maze.Maze, end maze.CellPosition, lifo bool, res *Result) *walker {
	n := m.Rows() * m.Cols()
	visited := make([][]bool, m.Rows())
	for i := range visited {
		visited[i] = make([]bool, m.Cols())
	}
	res.Trace = make([]maze.CellPosition, 0, n)
	return &walker{
		maze:     m,
		end:      end,
		frontier: make([]node, 0, n),
		visited:  visited,
		res:      res,
		lifo:     lifo,
	}
}

// discover marks n visited, records it in the trace and adds it to the
// frontier. It reports true when n is the end.
func (w *walker) discover(n node) bool {
	w.visited[n.pos.Row][n.pos.Col] = true
	w.res.Trace = append(w.res.Trace, n.pos)
	if n.pos == w.end {
		w.res.Path = n.path
		return true
	}
	w.frontier = append(w.frontier, n)
	return false
}

// next removes the entry the discipline picks.
func (w *walker) next() node {
	if w.lifo {
		last := len(w.frontier) - 1
		n := w.frontier[last]
		w.frontier = w.frontier[:last]
		return n
	}
	n := w.frontier[0]
	w.frontier = w.frontier[1:]
	return n
}

// loop expands frontier entries until the end is discovered or the frontier empties.
func (w *walker) loop() {
	for len(w.frontier) > 0 {
		cur := w.next()
		for _, d := range Directions {
			nbr := cur.pos.Add(d)
			if !w.admissible(nbr) {
				continue
			}
			if w.discover(node{pos: nbr, path: extend(cur.path, nbr)}) {
				return
			}
		}
	}
}

// admissible reports whether pos is in bounds, Open and unseen.
func (w *walker) admissible(pos maze.CellPosition) bool {
	return w.maze.IsOpen(pos) && !w.visited[pos.Row][pos.Col]
}

// extend copies path and appends pos, so siblings never share a backing array.
func extend(path []maze.CellPosition, pos maze.CellPosition) []maze.CellPosition {
	out := make([]maze.CellPosition, len(path)+1)
	copy(out, path)
	out[len(path)] = pos
	return out
}
