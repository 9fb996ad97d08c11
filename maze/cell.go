package maze

import "fmt"

// State is the content of a single grid cell.
type State uint8

const (
	Open State = iota // Open cells can be walked through.
	Wall              // Wall cells block movement.
)

// String returns the name of the state.
func (s State) String() string {
	switch s {
	case Open:
		return "open"
	case Wall:
		return "wall"
	}
	return fmt.Sprintf("unknown state: %d", uint8(s))
}

// MarshalText implements encoding.TextMarshaler.
func (s State) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	switch string(b) {
	case "open":
		*s = Open
	case "wall":
		*s = Wall
	default:
		return fmt.Errorf("unknown state %q", b)
	}
	return nil
}

// Inverse returns the opposite state.
func (s State) Inverse() State {
	if s == Wall {
		return Open
	}
	return Wall
}

// CellPosition represents the position of a cell in the maze grid.
// Both coordinates are zero based.
type CellPosition struct {
	Row int `json:"row"` // Row index of the cell
	Col int `json:"col"` // Column index of the cell
}

// GetRow returns the row index of the cell.
func (cp CellPosition) GetRow() int {
	return cp.Row
}

// GetCol returns the column index of the cell.
func (cp CellPosition) GetCol() int {
	return cp.Col
}

// Add returns the position shifted by delta.
func (cp CellPosition) Add(delta CellPosition) CellPosition {
	return CellPosition{Row: cp.Row + delta.Row, Col: cp.Col + delta.Col}
}

// Adjacent reports whether other is one orthogonal step away.
func (cp CellPosition) Adjacent(other CellPosition) bool {
	dr, dc := cp.Row-other.Row, cp.Col-other.Col
	return dr*dr+dc*dc == 1
}

func (cp CellPosition) String() string {
	return fmt.Sprintf("(%d, %d)", cp.Row, cp.Col)
}

// Endpoint names one of the two search endpoints.
type Endpoint uint8

const (
	StartPoint Endpoint = iota
	EndPoint
)

// ParseEndpoint maps "start" and "end" to an Endpoint.
func ParseEndpoint(s string) (Endpoint, error) {
	switch s {
	case "start":
		return StartPoint, nil
	case "end":
		return EndPoint, nil
	}
	return 0, fmt.Errorf("unknown endpoint %q", s)
}

func (e Endpoint) String() string {
	if e == StartPoint {
		return "start"
	}
	return "end"
}
