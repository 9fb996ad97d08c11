/*
Package maze provides the grid model behind the path finding visualizer.

A `Maze` is a fixed size matrix of Open and Wall cells together with an
optional start and end position. Edits mutate the grid in place; endpoints can
only be placed on Open cells.

The package also generates mazes (see Generator) and offers a `Brush` for
drag painting, where the value written is decided once by the first cell
touched.
*/
package maze

import (
	"errors"
	"fmt"
	"strings"
)

const (
	minMazeDimension = 2

	// DefaultMaxDimension is the largest row or column count accepted by New.
	DefaultMaxDimension = 30
)

var (
	ErrInvalidDimensions = errors.New("invalid maze dimensions")
	ErrOutOfBounds       = errors.New("position is out of the maze")
)

// Maze is a rows×cols grid of cell states plus the search endpoints.
type Maze struct {
	rows  int
	cols  int
	grid  [][]State
	start *CellPosition
	end   *CellPosition
}

// New creates an all Open maze with the start in the top-left corner and the
// end in the bottom-right corner.
func New(rows, cols int) (*Maze, error) {
	return NewWithLimit(rows, cols, DefaultMaxDimension)
}

// NewWithLimit is New with a caller supplied maximum dimension.
func NewWithLimit(rows, cols, maxDimension int) (*Maze, error) {
	if err := checkDimensions(rows, cols, maxDimension); err != nil {
		return nil, err
	}

	m := newFilled(rows, cols, Open)
	m.resetEndpoints()
	return m, nil
}

func checkDimensions(rows, cols, maxDimension int) error {
	if min(rows, cols) < minMazeDimension || max(rows, cols) > maxDimension {
		return fmt.Errorf("%w: %dx%d (allowed %d..%d)", ErrInvalidDimensions, rows, cols, minMazeDimension, maxDimension)
	}
	return nil
}

// newFilled allocates a grid with every cell set to s and no endpoints.
func newFilled(rows, cols int, s State) *Maze {
	grid := make([][]State, rows)
	for i := range grid {
		grid[i] = make([]State, cols)
		for j := range grid[i] {
			grid[i][j] = s
		}
	}
	return &Maze{rows: rows, cols: cols, grid: grid}
}

// Rows returns the number of rows.
func (m *Maze) Rows() int {
	return m.rows
}

// Cols returns the number of columns.
func (m *Maze) Cols() int {
	return m.cols
}

// InBound reports whether pos lies inside the grid.
func (m *Maze) InBound(pos CellPosition) bool {
	return pos.Row >= 0 && pos.Row < m.rows && pos.Col >= 0 && pos.Col < m.cols
}

// At returns the state of the cell at pos. pos must be in bounds.
func (m *Maze) At(pos CellPosition) State {
	return m.grid[pos.Row][pos.Col]
}

// IsOpen reports whether pos is in bounds and Open.
func (m *Maze) IsOpen(pos CellPosition) bool {
	return m.InBound(pos) && m.grid[pos.Row][pos.Col] == Open
}

// SetCell writes s at pos. Callers validate pos with InBound first; an out
// of bounds position panics.
func (m *Maze) SetCell(pos CellPosition, s State) {
	m.grid[pos.Row][pos.Col] = s
}

// Toggle flips the cell at pos between Open and Wall and returns the new state.
func (m *Maze) Toggle(pos CellPosition) State {
	s := m.grid[pos.Row][pos.Col].Inverse()
	m.grid[pos.Row][pos.Col] = s
	return s
}

// Start returns the start position, if set.
func (m *Maze) Start() (CellPosition, bool) {
	if m.start == nil {
		return CellPosition{}, false
	}
	return *m.start, true
}

// End returns the end position, if set.
func (m *Maze) End() (CellPosition, bool) {
	if m.end == nil {
		return CellPosition{}, false
	}
	return *m.end, true
}

// SetEndpoint moves the start or end to pos. It reports false and leaves the
// maze untouched when pos is out of bounds or a Wall.
func (m *Maze) SetEndpoint(e Endpoint, pos CellPosition) bool {
	if !m.IsOpen(pos) {
		return false
	}

	p := pos
	if e == StartPoint {
		m.start = &p
	} else {
		m.end = &p
	}
	return true
}

// ClearEndpoint unsets the start or end.
func (m *Maze) ClearEndpoint(e Endpoint) {
	if e == StartPoint {
		m.start = nil
	} else {
		m.end = nil
	}
}

// resetEndpoints places the endpoints on the corners.
func (m *Maze) resetEndpoints() {
	start := CellPosition{Row: 0, Col: 0}
	end := CellPosition{Row: m.rows - 1, Col: m.cols - 1}
	m.start, m.end = &start, &end
}

// CountWalls returns the number of Wall cells.
func (m *Maze) CountWalls() int {
	count := 0
	for _, row := range m.grid {
		for _, s := range row {
			if s == Wall {
				count++
			}
		}
	}
	return count
}

// Clone returns a deep copy of the maze.
func (m *Maze) Clone() *Maze {
	c := newFilled(m.rows, m.cols, Open)
	for i := range m.grid {
		copy(c.grid[i], m.grid[i])
	}
	if m.start != nil {
		start := *m.start
		c.start = &start
	}
	if m.end != nil {
		end := *m.end
		c.end = &end
	}
	return c
}

// Cells returns a copy of the grid, row major.
func (m *Maze) Cells() [][]State {
	cells := make([][]State, m.rows)
	for i := range m.grid {
		cells[i] = make([]State, m.cols)
		copy(cells[i], m.grid[i])
	}
	return cells
}

// String provides a textual representation of the maze.
// '#' is a wall, '.' an open cell, 'S' and 'E' the endpoints.
func (m *Maze) String() string {
	return m.Render(nil, nil)
}

// Render is String with an overlay: cells in visited are drawn as 'o' and
// cells in path as '*'. Endpoints always win.
func (m *Maze) Render(visited, path []CellPosition) string {
	overlay := make(map[CellPosition]byte, len(visited)+len(path))
	for _, p := range visited {
		overlay[p] = 'o'
	}
	for _, p := range path {
		overlay[p] = '*'
	}

	var sb strings.Builder
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			pos := CellPosition{Row: row, Col: col}
			sb.WriteByte(m.glyph(pos, overlay))
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

func (m *Maze) glyph(pos CellPosition, overlay map[CellPosition]byte) byte {
	switch {
	case m.start != nil && *m.start == pos:
		return 'S'
	case m.end != nil && *m.end == pos:
		return 'E'
	case m.grid[pos.Row][pos.Col] == Wall:
		return '#'
	}
	if g, ok := overlay[pos]; ok {
		return g
	}
	return '.'
}

// Parse builds a maze from the String format. Rows must have equal length
// and the grid must fit the same bounds as New.
// It is mostly useful for tests and fixtures.
func Parse(s string) (*Maze, error) {
	lines := strings.Fields(s)
	if len(lines) == 0 {
		return nil, ErrInvalidDimensions
	}
	if err := checkDimensions(len(lines), len(lines[0]), DefaultMaxDimension); err != nil {
		return nil, err
	}

	m := newFilled(len(lines), len(lines[0]), Open)
	for row, line := range lines {
		if len(line) != m.cols {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidDimensions, row, len(line), m.cols)
		}
		for col := 0; col < len(line); col++ {
			pos := CellPosition{Row: row, Col: col}
			switch line[col] {
			case '#':
				m.grid[row][col] = Wall
			case 'S':
				m.start = &pos
			case 'E':
				m.end = &pos
			case '.', 'o', '*':
			default:
				return nil, fmt.Errorf("unexpected cell %q at %s", line[col], pos)
			}
		}
	}
	return m, nil
}
