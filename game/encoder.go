package game

import "github.com/beka-birhanu/maze-solver/solver"

// Encoder serializes solve results for transport.
type Encoder interface {
	ContentType() string
	MarshalResult(*solver.Result) ([]byte, error)
	UnmarshalResult([]byte) (*solver.Result, error)
}
