/*
Package navigator drives an agent across a grid it can only partially observe.

Each step the agent senses its surroundings, hands its belief matrix to an Oracle,
and takes the best ranked move that is in bounds, not known to be blocked and not
already tried from the current cell. Walking into an unseen obstacle counts as a
bump and sends the agent back to the cell it came from.
*/
package navigator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/beka-birhanu/gridnav/grid"
)

var (
	ErrNilGrid           = errors.New("grid is required")
	ErrOracleUnavailable = errors.New("decision oracle is unavailable")
	ErrBlockedEndpoint   = errors.New("start and goal must be open cells")
	ErrAgentTrapped      = errors.New("agent is trapped")
	ErrStepLimit         = errors.New("step limit reached before the goal")
)

// State is the lifecycle state of a run.
type State int

const (
	Running State = iota
	GoalReached
	Failed
)

func (s State) String() string {
	switch s {
	case Running:
		return "RUNNING"
	case GoalReached:
		return "GOAL_REACHED"
	case Failed:
		return "FAILED"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Sensing selects what the agent observes before each decision.
type Sensing int

const (
	// SenseNeighbours4 marks blocked axis-aligned neighbours in the belief.
	SenseNeighbours4 Sensing = iota
	// SenseBlindfolded learns nothing and discovers obstacles only by bumping.
	SenseBlindfolded
)

// Config holds the parameters of a navigator.
type Config struct {
	Grid    *grid.Grid
	Oracle  Oracle
	Start   grid.Coordinate
	Goal    grid.Coordinate
	Sensing Sensing
	// MaxSteps caps CellsProcessed; derived from the grid size when <= 0.
	MaxSteps int
	// Observer is called after every step and must not modify the run.
	Observer func(r *Run)
}

// Run is the state of one simulation. It is owned by the Simulate call that made it
// and is safe to read once Simulate returns.
type Run struct {
	State    State
	Start    grid.Coordinate
	Goal     grid.Coordinate
	Position grid.Coordinate
	Belief   *Belief
	Ledger   *Ledger
	Stats    Stats
	Path     []grid.Coordinate // Start to goal, set when the goal is reached
}

// Navigator runs simulations between a fixed start and goal.
// Runs share only the grid and the oracle, so Simulate may be called concurrently
// when the oracle allows it.
type Navigator struct {
	grid     *grid.Grid
	oracle   Oracle
	start    grid.Coordinate
	goal     grid.Coordinate
	sensing  Sensing
	maxSteps int
	observer func(r *Run)
}

// New validates c and returns a Navigator.
func New(c Config) (*Navigator, error) {
	if c.Grid == nil {
		return nil, ErrNilGrid
	}
	if c.Oracle == nil {
		return nil, ErrOracleUnavailable
	}

	for _, pos := range []grid.Coordinate{c.Start, c.Goal} {
		cell, err := c.Grid.Cell(pos)
		if err != nil {
			return nil, err
		}
		if cell.IsBlocked {
			return nil, fmt.Errorf("%w: %s is blocked", ErrBlockedEndpoint, pos)
		}
	}

	maxSteps := c.MaxSteps
	if maxSteps <= 0 {
		maxSteps = 8*c.Grid.XSize()*c.Grid.YSize() + 8
	}

	return &Navigator{
		grid:     c.Grid,
		oracle:   c.Oracle,
		start:    c.Start,
		goal:     c.Goal,
		sensing:  c.Sensing,
		maxSteps: maxSteps,
		observer: c.Observer,
	}, nil
}

// Simulate walks the agent from start to goal with a fresh belief and ledger.
//
// On failure the returned Run is still non-nil, in state Failed, with the
// counters gathered so far. Oracle errors, ErrAgentTrapped, ErrStepLimit and
// context errors are returned as is or wrapped.
func (n *Navigator) Simulate(ctx context.Context) (*Run, error) {
	run := &Run{
		State:    Running,
		Start:    n.start,
		Goal:     n.goal,
		Position: n.start,
		Belief:   NewBelief(n.grid.XSize(), n.grid.YSize(), n.start, n.goal),
		Ledger:   NewLedger(n.start),
	}

	started := time.Now()
	err := n.loop(ctx, run)
	run.Stats.Runtime = time.Since(started)
	if err != nil {
		run.State = Failed
		return run, err
	}

	path, err := run.Ledger.Path(n.goal)
	if err != nil {
		run.State = Failed
		return run, err
	}
	run.Path = path
	run.Stats.TrajectoryLength = len(path) - 1
	run.State = GoalReached
	return run, nil
}

func (n *Navigator) loop(ctx context.Context, run *Run) error {
	for run.Position != n.goal {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := n.count(run); err != nil {
			return err
		}

		cell, err := n.grid.Cell(run.Position)
		if err != nil {
			return err
		}

		if cell.IsBlocked {
			if err := n.backtrack(run); err != nil {
				return err
			}
			n.observe(run)
			continue
		}

		n.sense(run)

		ranked, err := n.oracle.Predict(ctx, run.Belief.Matrix())
		if err != nil {
			return fmt.Errorf("predicting next action from %s: %w", run.Position, err)
		}
		if err := ValidateRanking(ranked); err != nil {
			return err
		}

		target, err := n.choose(run, ranked)
		if err != nil {
			return err
		}
		if err := run.Ledger.Attempt(run.Position, target); err != nil {
			return err
		}

		run.Belief.Set(run.Position, Unknown)
		run.Belief.Set(target, Occupied)
		run.Ledger.Record(target, run.Position)
		run.Position = target
		n.observe(run)
	}

	return nil
}

// backtrack handles a bump: the current cell is marked blocked and the agent
// returns to the cell it first entered it from.
func (n *Navigator) backtrack(run *Run) error {
	run.Stats.Bumps++
	run.Belief.Set(run.Position, KnownBlocked)

	parent, ok := run.Ledger.Parent(run.Position)
	if !ok {
		return fmt.Errorf("%w: %s is blocked and has no parent", ErrAgentTrapped, run.Position)
	}

	if err := n.count(run); err != nil {
		return err
	}

	run.Position = parent
	run.Belief.Set(run.Position, Occupied)
	return nil
}

// count charges one processed cell against the step cap, so CellsProcessed never exceeds it.
func (n *Navigator) count(run *Run) error {
	if run.Stats.CellsProcessed >= n.maxSteps {
		return fmt.Errorf("%w: %d steps", ErrStepLimit, run.Stats.CellsProcessed)
	}
	run.Stats.CellsProcessed++
	return nil
}

func (n *Navigator) sense(run *Run) {
	if n.sensing == SenseBlindfolded {
		return
	}

	for _, adj := range run.Position.Neighbours4() {
		if n.grid.IsBlocked(adj) {
			run.Belief.Set(adj, KnownBlocked)
		}
	}
}

// choose returns the target of the first acceptable ranked action.
func (n *Navigator) choose(run *Run, ranked []Action) (grid.Coordinate, error) {
	for _, a := range ranked {
		target := run.Position.Add(a.Delta())
		switch {
		case !n.grid.Contains(target):
			run.Stats.OutOfBounds++
		case run.Belief.At(target) == KnownBlocked:
			run.Stats.KnownBumps++
		case run.Ledger.Attempted(run.Position, target):
			// already tried from here
		default:
			return target, nil
		}
	}

	return grid.Coordinate{}, fmt.Errorf("%w at %s", ErrAgentTrapped, run.Position)
}

func (n *Navigator) observe(run *Run) {
	if n.observer != nil {
		n.observer(run)
	}
}
