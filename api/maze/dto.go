// Package mazeapi exposes maze sessions over HTTP.
package mazeapi

import (
	"time"

	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/beka-birhanu/maze-solver/game"
	"github.com/beka-birhanu/maze-solver/maze"
	"github.com/beka-birhanu/maze-solver/service/i"
	"github.com/beka-birhanu/maze-solver/solver"
)

// CreateSessionRequest represents a request to open a session. Zero sizes
// fall back to the configured defaults.
type CreateSessionRequest struct {
	Rows int `json:"rows" binding:"omitempty,min=2"`
	Cols int `json:"cols" binding:"omitempty,min=2"`
}

// CreateSessionResponse carries the new session and the token that grants access to it.
type CreateSessionResponse struct {
	ID    string     `json:"id"`
	Token string     `json:"token"`
	State game.State `json:"state"`
}

// ResizeRequest represents a request to rebuild the grid.
type ResizeRequest struct {
	Rows int `json:"rows" binding:"required,min=2"`
	Cols int `json:"cols" binding:"required,min=2"`
}

// CellRequest addresses one cell.
type CellRequest struct {
	Row *int `json:"row" binding:"required,min=0"`
	Col *int `json:"col" binding:"required,min=0"`
}

func (r *CellRequest) position() maze.CellPosition {
	return maze.CellPosition{Row: *r.Row, Col: *r.Col}
}

// PaintRequest is one drag stroke. The first cell picks the painted value.
type PaintRequest struct {
	Cells []maze.CellPosition `json:"cells" binding:"required,min=1"`
}

// PaintResponse reports how many cells a stroke changed.
type PaintResponse struct {
	Painted int        `json:"painted"`
	Value   maze.State `json:"value"`
}

// GenerateRequest represents a request to generate a maze.
type GenerateRequest struct {
	Strategy   string `json:"strategy" binding:"required"`
	Complexity *int   `json:"complexity" binding:"required,min=0,max=100"`
}

// AlgorithmRequest selects the search algorithm.
type AlgorithmRequest struct {
	Algorithm string `json:"algorithm" binding:"required"`
}

// SpeedRequest sets the replay speed.
type SpeedRequest struct {
	Speed int `json:"speed" binding:"required,min=1,max=100"`
}

// ResultResponse is the JSON form of a solve result.
type ResultResponse struct {
	Algorithm string              `json:"algorithm"`
	Found     bool                `json:"found"`
	Trace     []maze.CellPosition `json:"trace"`
	Path      []maze.CellPosition `json:"path"`
}

func newResultResponse(r *solver.Result) *ResultResponse {
	resp := &ResultResponse{
		Algorithm: r.Algorithm.String(),
		Found:     r.Found(),
		Trace:     r.Trace,
		Path:      r.Path,
	}
	if resp.Path == nil {
		resp.Path = []maze.CellPosition{}
	}
	return resp
}

// RunResponse is the JSON form of a recorded run.
type RunResponse struct {
	ID          string    `json:"id"`
	SessionID   string    `json:"session_id"`
	Algorithm   string    `json:"algorithm"`
	Rows        int       `json:"rows"`
	Cols        int       `json:"cols"`
	Walls       int       `json:"walls"`
	TraceLength int       `json:"trace_length"`
	PathLength  int       `json:"path_length"`
	Found       bool      `json:"found"`
	CreatedAt   time.Time `json:"created_at"`
}

func newRunResponse(r *domain.Run) *RunResponse {
	return &RunResponse{
		ID:          r.ID.String(),
		SessionID:   r.SessionID.String(),
		Algorithm:   r.Algorithm,
		Rows:        r.Rows,
		Cols:        r.Cols,
		Walls:       r.Walls,
		TraceLength: r.TraceLength,
		PathLength:  r.PathLength,
		Found:       r.Found,
		CreatedAt:   r.CreatedAt,
	}
}

// TopRunsQuery selects a leaderboard.
type TopRunsQuery struct {
	Algorithm string `form:"algorithm" binding:"required"`
	Rows      int    `form:"rows" binding:"required,min=2"`
	Cols      int    `form:"cols" binding:"required,min=2"`
	Limit     int64  `form:"limit" binding:"omitempty,min=1,max=100"`
}

// TopRunsResponse lists the best runs on a board, fewest cells explored first.
type TopRunsResponse struct {
	Board   string    `json:"board"`
	Entries []i.Entry `json:"entries"`
}
