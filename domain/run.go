// Package domain holds the records the service persists.
package domain

import (
	"errors"
	"time"

	"github.com/beka-birhanu/gridnav/grid"
	"github.com/beka-birhanu/gridnav/navigator"
	"github.com/google/uuid"
)

var (
	ErrRunNotFound = errors.New("run not found")
)

// RunStatus is the lifecycle status of a queued simulation.
type RunStatus string

const (
	RunPending     RunStatus = "PENDING"
	RunGoalReached RunStatus = "GOAL_REACHED"
	RunFailed      RunStatus = "FAILED"
)

// Point is a grid coordinate in storage and wire form.
type Point struct {
	X int `bson:"x" json:"x"`
	Y int `bson:"y" json:"y"`
}

// PointOf converts a grid coordinate.
func PointOf(c grid.Coordinate) Point {
	return Point{X: c.X, Y: c.Y}
}

// Coordinate converts p back to a grid coordinate.
func (p Point) Coordinate() grid.Coordinate {
	return grid.Coordinate{X: p.X, Y: p.Y}
}

// Run is a simulation request and, once processed, its outcome.
type Run struct {
	ID        uuid.UUID       `bson:"_id" json:"id"`
	Start     Point           `bson:"start" json:"start"`
	Goal      Point           `bson:"goal" json:"goal"`
	Status    RunStatus       `bson:"status" json:"status"`
	Stats     navigator.Stats `bson:"stats" json:"stats"`
	Path      []Point         `bson:"path,omitempty" json:"path,omitempty"`
	Error     string          `bson:"error,omitempty" json:"error,omitempty"`
	CreatedAt time.Time       `bson:"createdAt" json:"created_at"`
	UpdatedAt time.Time       `bson:"updatedAt" json:"updated_at"`
}

// NewRun creates a pending run.
func NewRun(id uuid.UUID, start, goal grid.Coordinate) *Run {
	now := time.Now().UTC()
	return &Run{
		ID:        id,
		Start:     PointOf(start),
		Goal:      PointOf(goal),
		Status:    RunPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Complete records the outcome of a simulation.
func (r *Run) Complete(result *navigator.Run, err error) {
	r.UpdatedAt = time.Now().UTC()
	if result != nil {
		r.Stats = result.Stats
		r.Path = r.Path[:0]
		for _, c := range result.Path {
			r.Path = append(r.Path, PointOf(c))
		}
	}

	if err != nil {
		r.Status = RunFailed
		r.Error = err.Error()
		return
	}
	r.Status = RunGoalReached
	r.Error = ""
}
