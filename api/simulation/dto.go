// Package simulationapi exposes the simulation service over HTTP.
package simulationapi

import "github.com/beka-birhanu/gridnav/grid"

// PointRequest is a grid coordinate in a request body.
type PointRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

func (p PointRequest) coordinate() grid.Coordinate {
	return grid.Coordinate{X: *p.X, Y: *p.Y}
}

// SimulationRequest asks for a run between two cells of the shared grid.
type SimulationRequest struct {
	Start PointRequest `json:"start"`
	Goal  PointRequest `json:"goal"`
}

// SubmitResponse carries the ID of a queued run.
type SubmitResponse struct {
	ID string `json:"id"`
}

// GridResponse describes the shared grid.
type GridResponse struct {
	grid.Stats
	Rendering string `json:"rendering,omitempty"`
}
