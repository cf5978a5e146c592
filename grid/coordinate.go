package grid

import "fmt"

// Coordinate is the position of a cell in the grid.
// It is a plain comparable value, so it can be used directly as a map key.
type Coordinate struct {
	X int // Column index
	Y int // Row index
}

// Add returns the coordinate shifted by delta.
func (c Coordinate) Add(delta Coordinate) Coordinate {
	return Coordinate{X: c.X + delta.X, Y: c.Y + delta.Y}
}

// Neighbours4 returns the von Neumann neighbourhood of c in the order
// (x-1,y), (x,y+1), (x+1,y), (x,y-1). No bounds filtering is applied.
func (c Coordinate) Neighbours4() []Coordinate {
	return []Coordinate{
		{X: c.X - 1, Y: c.Y},
		{X: c.X, Y: c.Y + 1},
		{X: c.X + 1, Y: c.Y},
		{X: c.X, Y: c.Y - 1},
	}
}

// Neighbours8 returns the Moore neighbourhood of c: the four axis-aligned
// neighbours followed by the four diagonals. No bounds filtering is applied.
func (c Coordinate) Neighbours8() []Coordinate {
	return append(c.Neighbours4(),
		Coordinate{X: c.X - 1, Y: c.Y - 1},
		Coordinate{X: c.X - 1, Y: c.Y + 1},
		Coordinate{X: c.X + 1, Y: c.Y + 1},
		Coordinate{X: c.X + 1, Y: c.Y - 1},
	)
}

// String returns the coordinate as <x,y>.
func (c Coordinate) String() string {
	return fmt.Sprintf("<%d,%d>", c.X, c.Y)
}
