package navigator

import "github.com/beka-birhanu/gridnav/grid"

// Belief cell values.
const (
	KnownBlocked int8 = -1
	Unknown      int8 = 0
	Occupied     int8 = 1
	GoalMarker   int8 = 2
)

// Belief is the agent's knowledge base: a matrix the size of the grid that records
// where the agent is, where the goal is and which cells it knows to be blocked.
// A Belief belongs to a single run.
type Belief struct {
	cells [][]int8 // indexed [x][y]
}

// NewBelief returns an all-unknown belief with the agent at start and the goal marked.
func NewBelief(xSize, ySize int, start, goal grid.Coordinate) *Belief {
	cells := make([][]int8, xSize)
	for x := range cells {
		cells[x] = make([]int8, ySize)
	}

	b := &Belief{cells: cells}
	b.Set(start, Occupied)
	b.Set(goal, GoalMarker)
	return b
}

// At returns the value held for c. c must be inside the grid.
func (b *Belief) At(c grid.Coordinate) int8 {
	return b.cells[c.X][c.Y]
}

// Set stores v for c. c must be inside the grid.
func (b *Belief) Set(c grid.Coordinate, v int8) {
	b.cells[c.X][c.Y] = v
}

// Count returns how many cells hold v.
func (b *Belief) Count(v int8) int {
	n := 0
	for _, col := range b.cells {
		for _, cell := range col {
			if cell == v {
				n++
			}
		}
	}
	return n
}

// Matrix returns a copy of the belief indexed [x][y].
func (b *Belief) Matrix() [][]int8 {
	out := make([][]int8, len(b.cells))
	for x, col := range b.cells {
		out[x] = append([]int8(nil), col...)
	}
	return out
}
