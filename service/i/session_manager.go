package i

import (
	"context"

	"github.com/beka-birhanu/maze-solver/domain"
	"github.com/beka-birhanu/maze-solver/game"
	"github.com/beka-birhanu/maze-solver/solver"
	"github.com/google/uuid"
)

// SessionManager hosts maze sessions and fans out their replay events.
type SessionManager interface {
	// NewSession creates a session with the given grid size and returns its ID.
	NewSession(rows, cols int) (uuid.UUID, error)

	// Session returns the session with the given ID.
	Session(id uuid.UUID) (*game.Session, error)

	// Solve solves the session's maze and records the run.
	Solve(ctx context.Context, id uuid.UUID) (*solver.Result, error)

	// Play starts the replay, solving first when needed.
	Play(ctx context.Context, id uuid.UUID) (*solver.Result, error)

	// Subscribe streams the session's replay events until cancel is called.
	Subscribe(id uuid.UUID) (<-chan game.Event, func(), error)

	// Runs lists recorded runs of a session, newest first.
	Runs(ctx context.Context, id uuid.UUID, limit int64) ([]*domain.Run, error)

	// Close stops and forgets a session.
	Close(id uuid.UUID) error
}
