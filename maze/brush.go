package maze

// Brush paints one state across many cells during a drag. The state is the
// inverse of the first cell touched, so a single drag either carves or fills.
type Brush struct {
	maze  *Maze
	value State
}

// NewBrush starts a drag at pos, paints it and returns the brush. It returns
// nil when pos is out of bounds.
func NewBrush(m *Maze, pos CellPosition) *Brush {
	if !m.InBound(pos) {
		return nil
	}
	b := &Brush{maze: m, value: m.At(pos).Inverse()}
	m.SetCell(pos, b.value)
	return b
}

// Value returns the state this brush writes.
func (b *Brush) Value() State {
	return b.value
}

// Apply paints pos with the brush value. Out of bounds positions are ignored.
func (b *Brush) Apply(pos CellPosition) bool {
	if !b.maze.InBound(pos) {
		return false
	}
	b.maze.SetCell(pos, b.value)
	return true
}
