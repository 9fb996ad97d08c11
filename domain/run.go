// Package domain holds the records the service persists.
package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/maze-solver/solver"
	"github.com/google/uuid"
)

var (
	ErrRunNotFound = errors.New("run not found")
)

// Run summarizes one solve invocation.
type Run struct {
	ID          uuid.UUID
	SessionID   uuid.UUID
	Algorithm   string
	Rows        int
	Cols        int
	Walls       int
	TraceLength int // cells discovered
	PathLength  int // cells on the path, 0 when unreachable
	Found       bool
	CreatedAt   time.Time
}

// RunConfig holds parameters for creating a Run.
type RunConfig struct {
	SessionID uuid.UUID
	Rows      int
	Cols      int
	Walls     int
	Result    *solver.Result
}

// NewRun creates a Run with a fresh ID from a solve result.
func NewRun(c RunConfig) *Run {
	return &Run{
		ID:          uuid.New(),
		SessionID:   c.SessionID,
		Algorithm:   c.Result.Algorithm.String(),
		Rows:        c.Rows,
		Cols:        c.Cols,
		Walls:       c.Walls,
		TraceLength: len(c.Result.Trace),
		PathLength:  len(c.Result.Path),
		Found:       c.Result.Found(),
		CreatedAt:   time.Now().UTC(),
	}
}

// Board returns the leaderboard name a run competes on.
func (r *Run) Board() string {
	return BoardName(r.Algorithm, r.Rows, r.Cols)
}

// BoardName names the leaderboard for an algorithm and grid size.
func BoardName(algorithm string, rows, cols int) string {
	return fmt.Sprintf("%s:%dx%d", algorithm, rows, cols)
}
