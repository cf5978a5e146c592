package navigator

import (
	"context"
	"errors"
	"fmt"

	"github.com/beka-birhanu/gridnav/grid"
)

// Action is one of the four moves an oracle can rank.
type Action int

// The fixed action set. The numbering is shared with the oracle and must not change.
const (
	ActionWest  Action = iota + 1 // (x-1, y)
	ActionSouth                   // (x, y+1)
	ActionEast                    // (x+1, y)
	ActionNorth                   // (x, y-1)
)

var (
	// Actions lists the action set in numeric order.
	Actions = []Action{ActionWest, ActionSouth, ActionEast, ActionNorth}

	deltas = map[Action]grid.Coordinate{
		ActionWest:  {X: -1, Y: 0},
		ActionSouth: {X: 0, Y: 1},
		ActionEast:  {X: 1, Y: 0},
		ActionNorth: {X: 0, Y: -1},
	}

	ErrInvalidRanking = errors.New("oracle ranking is not a permutation of the action set")
)

// Delta returns the coordinate offset the action applies.
func (a Action) Delta() grid.Coordinate {
	return deltas[a]
}

// Valid reports whether a belongs to the action set.
func (a Action) Valid() bool {
	_, ok := deltas[a]
	return ok
}

func (a Action) String() string {
	switch a {
	case ActionWest:
		return "West"
	case ActionSouth:
		return "South"
	case ActionEast:
		return "East"
	case ActionNorth:
		return "North"
	default:
		return fmt.Sprintf("Action(%d)", int(a))
	}
}

// Oracle ranks the action set for a belief matrix, most preferred first.
//
// The matrix is indexed [x][y] and holds the belief encoding (-1, 0, 1, 2).
// Implementations receive their own copy and may keep it.
type Oracle interface {
	Predict(ctx context.Context, belief [][]int8) ([]Action, error)
}

// OracleFunc adapts a function to the Oracle interface.
type OracleFunc func(ctx context.Context, belief [][]int8) ([]Action, error)

// Predict calls f.
func (f OracleFunc) Predict(ctx context.Context, belief [][]int8) ([]Action, error) {
	return f(ctx, belief)
}

// ValidateRanking checks that ranked is a permutation of Actions.
func ValidateRanking(ranked []Action) error {
	if len(ranked) != len(Actions) {
		return fmt.Errorf("%w: got %d actions", ErrInvalidRanking, len(ranked))
	}

	seen := make(map[Action]struct{}, len(ranked))
	for _, a := range ranked {
		if !a.Valid() {
			return fmt.Errorf("%w: unknown action %d", ErrInvalidRanking, int(a))
		}
		if _, dup := seen[a]; dup {
			return fmt.Errorf("%w: duplicate action %s", ErrInvalidRanking, a)
		}
		seen[a] = struct{}{}
	}
	return nil
}
