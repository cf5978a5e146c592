/*
Package oracle provides decision oracles for the navigator.

Manhattan is a deterministic greedy ranking used offline and in tests. Remote
queries an external model server, Cached memoises any oracle in redis and
Serialized guards an oracle that cannot serve concurrent predictions.
*/
package oracle

import (
	"cmp"
	"context"
	"errors"
	"slices"

	"github.com/beka-birhanu/gridnav/grid"
	"github.com/beka-birhanu/gridnav/navigator"
)

var (
	ErrMalformedBelief = errors.New("belief matrix has no agent or goal")
)

// Manhattan ranks actions by the Manhattan distance from the resulting cell to the
// goal, breaking ties by action number. It ignores obstacles.
type Manhattan struct{}

// NewManhattan returns a Manhattan oracle.
func NewManhattan() *Manhattan {
	return &Manhattan{}
}

// Predict implements navigator.Oracle.
func (m *Manhattan) Predict(ctx context.Context, belief [][]int8) ([]navigator.Action, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	agent, goal, err := locate(belief)
	if err != nil {
		return nil, err
	}

	ranked := slices.Clone(navigator.Actions)
	slices.SortStableFunc(ranked, func(a, b navigator.Action) int {
		return cmp.Compare(
			ManhattanDistance(agent.Add(a.Delta()), goal),
			ManhattanDistance(agent.Add(b.Delta()), goal),
		)
	})
	return ranked, nil
}

// ManhattanDistance returns |a.X-b.X| + |a.Y-b.Y|.
func ManhattanDistance(a, b grid.Coordinate) int {
	return abs(a.X-b.X) + abs(a.Y-b.Y)
}

// locate finds the agent and goal markers in a belief matrix.
func locate(belief [][]int8) (agent, goal grid.Coordinate, err error) {
	foundAgent, foundGoal := false, false
	for x, col := range belief {
		for y, v := range col {
			switch v {
			case navigator.Occupied:
				agent, foundAgent = grid.Coordinate{X: x, Y: y}, true
			case navigator.GoalMarker:
				goal, foundGoal = grid.Coordinate{X: x, Y: y}, true
			}
		}
	}

	if !foundAgent || !foundGoal {
		return agent, goal, ErrMalformedBelief
	}
	return agent, goal, nil
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
