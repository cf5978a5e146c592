package i

import (
	"context"

	dmn "github.com/beka-birhanu/gridnav/domain"
	"github.com/beka-birhanu/gridnav/grid"
	"github.com/google/uuid"
)

// Simulator accepts simulation requests against the shared grid and reports their outcome.
type Simulator interface {
	// Submit validates the endpoints and queues a run, returning its ID.
	Submit(ctx context.Context, start, goal grid.Coordinate) (uuid.UUID, error)

	// Result returns the stored run.
	Result(ctx context.Context, id uuid.UUID) (*dmn.Run, error)

	// Grid returns the composition and debug rendering of the shared grid.
	Grid() (grid.Stats, string)
}
