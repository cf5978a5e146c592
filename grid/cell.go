package grid

// Cell holds the static ground truth of a single grid location.
// Cells are owned by their Grid and refer back to it only through their coordinates.
type Cell struct {
	X                int  // Column index
	Y                int  // Row index
	NumAdj           int  // In-bounds Moore neighbours: 3 at corners, 5 on edges, 8 inside
	IsBlocked        bool // Whether the cell is an obstacle
	NumSensedBlocked int  // In-bounds Moore neighbours that are blocked
}

// Location returns the coordinate of the cell.
func (c Cell) Location() Coordinate {
	return Coordinate{X: c.X, Y: c.Y}
}

// NumSensedEmpty returns the number of in-bounds neighbours that are open.
func (c Cell) NumSensedEmpty() int {
	return c.NumAdj - c.NumSensedBlocked
}
