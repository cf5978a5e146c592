package i

import (
	"context"

	dmn "github.com/beka-birhanu/gridnav/domain"
	"github.com/google/uuid"
)

// RunRepo defines the interface for simulation run persistence.
type RunRepo interface {
	// Save inserts or updates a run in the repository.
	// If the run already exists, it updates the record. Otherwise, it creates a new one.
	Save(ctx context.Context, run *dmn.Run) error

	// ByID retrieves a run by its unique ID.
	// Returns dmn.ErrRunNotFound if no run has that ID.
	ByID(ctx context.Context, id uuid.UUID) (*dmn.Run, error)
}
