package maze

import (
	"errors"
	"fmt"
	"math/rand"
	"time"
)

const (
	maxComplexity = 100

	// carvedNoiseDivisor scales the complexity dial down for carved mazes so
	// at most a third of the open cells are walled.
	carvedNoiseDivisor = 3
)

var (
	ErrInvalidComplexity = errors.New("complexity must be within [0, 100]")
	ErrUnknownStrategy   = errors.New("unknown maze strategy")
)

// Strategy selects how Generate fills a maze.
type Strategy uint8

const (
	// Carved runs a randomized depth-first carve over a doubled lattice and
	// then sprinkles extra walls on top.
	Carved Strategy = iota
	// SparseRandom walls every cell independently.
	SparseRandom
)

// ParseStrategy maps "carved" and "sparse" to a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	switch s {
	case "carved":
		return Carved, nil
	case "sparse", "sparse-random":
		return SparseRandom, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownStrategy, s)
}

func (s Strategy) String() string {
	switch s {
	case Carved:
		return "carved"
	case SparseRandom:
		return "sparse"
	}
	return fmt.Sprintf("strategy(%d)", uint8(s))
}

// carveDirections are the lattice steps tried by the carver: up, right, down, left.
var carveDirections = []CellPosition{
	{Row: -1, Col: 0},
	{Row: 0, Col: 1},
	{Row: 1, Col: 0},
	{Row: 0, Col: -1},
}

// Generator produces new mazes. It is not safe for concurrent use because it
// owns its random source.
type Generator struct {
	rng          *rand.Rand
	maxDimension int
}

// NewGenerator returns a Generator drawing from rng. A nil rng is replaced by
// a time seeded source.
func NewGenerator(rng *rand.Rand) *Generator {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Generator{rng: rng, maxDimension: DefaultMaxDimension}
}

// WithMaxDimension overrides the largest accepted row or column count.
func (g *Generator) WithMaxDimension(n int) *Generator {
	g.maxDimension = n
	return g
}

// Generate builds a new rows×cols maze with the given strategy. The corners
// (0,0) and (rows-1,cols-1) are always Open and become the endpoints. The
// result may have no route between them.
func (g *Generator) Generate(strategy Strategy, rows, cols, complexity int) (*Maze, error) {
	if complexity < 0 || complexity > maxComplexity {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidComplexity, complexity)
	}

	m, err := NewWithLimit(rows, cols, g.maxDimension)
	if err != nil {
		return nil, err
	}

	switch strategy {
	case Carved:
		g.carve(m)
		g.sprinkle(m, Open, float64(complexity)/carvedNoiseDivisor)
	case SparseRandom:
		g.sprinkle(m, Open, float64(complexity))
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownStrategy, strategy)
	}

	m.resetEndpoints()
	m.SetCell(*m.start, Open)
	m.SetCell(*m.end, Open)
	return m, nil
}

// lattice is the doubled resolution carving grid. Even coordinates are maze
// cells, odd ones are the passages between neighbours.
type lattice struct {
	rows, cols int
	open       [][]bool
}

func newLattice(rows, cols int) *lattice {
	l := &lattice{rows: rows, cols: cols, open: make([][]bool, 2*rows-1)}
	for i := range l.open {
		l.open[i] = make([]bool, 2*cols-1)
	}
	return l
}

func (l *lattice) visited(pos CellPosition) bool {
	return l.open[2*pos.Row][2*pos.Col]
}

func (l *lattice) visit(pos CellPosition) {
	l.open[2*pos.Row][2*pos.Col] = true
}

// connect opens the passage strictly between two adjacent cells, i.e. the
// midpoint of their doubled coordinates.
func (l *lattice) connect(a, b CellPosition) {
	l.open[a.Row+b.Row][a.Col+b.Col] = true
}

// passages counts opened in-between entries.
func (l *lattice) passages() int {
	count := 0
	for i := range l.open {
		for j := range l.open[i] {
			if (i%2 == 1 || j%2 == 1) && l.open[i][j] {
				count++
			}
		}
	}
	return count
}

// carveLattice runs the randomized depth-first carve and returns the lattice.
func (g *Generator) carveLattice(rows, cols int) *lattice {
	l := newLattice(rows, cols)
	start := CellPosition{Row: 0, Col: 0}
	l.visit(start)
	stack := []CellPosition{start}

	inBound := func(p CellPosition) bool {
		return p.Row >= 0 && p.Row < rows && p.Col >= 0 && p.Col < cols
	}

	dirs := make([]CellPosition, len(carveDirections))
	for len(stack) > 0 {
		cur := stack[len(stack)-1]

		copy(dirs, carveDirections)
		g.rng.Shuffle(len(dirs), func(i, j int) { dirs[i], dirs[j] = dirs[j], dirs[i] })

		var neighbors []CellPosition
		for _, d := range dirs {
			next := cur.Add(d)
			if inBound(next) && !l.visited(next) {
				neighbors = append(neighbors, next)
			}
		}

		if len(neighbors) == 0 {
			pop(&stack)
			continue
		}

		next := neighbors[g.rng.Intn(len(neighbors))]
		l.connect(cur, next)
		l.visit(next)
		stack = append(stack, next)
	}
	return l
}

// carve projects a freshly carved lattice onto m: visited lattice cells are Open.
func (g *Generator) carve(m *Maze) {
	l := g.carveLattice(m.rows, m.cols)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			pos := CellPosition{Row: i, Col: j}
			if l.visited(pos) {
				m.SetCell(pos, Open)
			} else {
				m.SetCell(pos, Wall)
			}
		}
	}
}

// sprinkle turns each non corner cell currently in state from into a Wall
// with probability percent/100.
func (g *Generator) sprinkle(m *Maze, from State, percent float64) {
	last := CellPosition{Row: m.rows - 1, Col: m.cols - 1}
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			pos := CellPosition{Row: i, Col: j}
			if pos == (CellPosition{}) || pos == last {
				continue
			}
			if m.At(pos) == from && g.rng.Float64()*100 < percent {
				m.SetCell(pos, Wall)
			}
		}
	}
}

// pop removes and returns the last element of a stack of CellPositions.
func pop(s *[]CellPosition) CellPosition {
	lastIndex := len(*s) - 1
	popped := (*s)[lastIndex]
	*s = (*s)[:lastIndex]
	return popped
}
