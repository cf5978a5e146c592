package navigator

import (
	"fmt"
	"strings"
	"time"
)

// Stats are the counters collected during one run.
type Stats struct {
	// Moves into cells found blocked on arrival.
	Bumps int `json:"bumps" bson:"bumps"`
	// Ranked moves rejected because the target was known blocked.
	KnownBumps int `json:"known_bumps" bson:"knownBumps"`
	// Ranked moves rejected because the target was off the grid.
	OutOfBounds int `json:"out_of_bounds" bson:"outOfBounds"`
	// Loop iterations, backtracking included.
	CellsProcessed int `json:"cells_processed" bson:"cellsProcessed"`
	// Edges on the start to goal path. The path follows the first-visit parent
	// tree, so it can be shorter than the route the agent actually walked.
	TrajectoryLength int `json:"trajectory_length" bson:"trajectoryLength"`
	// Blocking probability of the grid, when known.
	Probability float64 `json:"probability" bson:"probability"`
	// Wall time spent in the loop.
	Runtime time.Duration `json:"runtime" bson:"runtime"`
}

func (s Stats) String() string {
	var b strings.Builder
	b.WriteString("GridWorldInfo{\n")
	fmt.Fprintf(&b, "numBumps = %d\n", s.Bumps)
	fmt.Fprintf(&b, "numKnownBumps = %d\n", s.KnownBumps)
	fmt.Fprintf(&b, "numOutOfBounds = %d\n", s.OutOfBounds)
	fmt.Fprintf(&b, "Number of cells processed = %d\n", s.CellsProcessed)
	fmt.Fprintf(&b, "Trajectory Length = %d\n", s.TrajectoryLength)
	b.WriteString("}")
	return b.String()
}
