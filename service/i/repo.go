package i

import (
	"context"

	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/google/uuid"
)

// RunRepo defines the interface for solve run persistence.
type RunRepo interface {
	// Save inserts a run.
	Save(ctx context.Context, run *domain.Run) error

	// ByID retrieves a run by its unique ID.
	// Returns an error if the run is not found or in case of an unexpected error.
	ByID(ctx context.Context, id uuid.UUID) (*domain.Run, error)

	// BySession lists the runs of a session, newest first.
	BySession(ctx context.Context, sessionID uuid.UUID, limit int64) ([]*domain.Run, error)
}
