/*
Package grid provides the ground-truth world the agent navigates.

A Grid is a rectangular array of cells, each either open or blocked. Grids are
generated from a blocking probability (or built from a fixed layout), carry
per-cell adjacency statistics and are read-only once built, so a single Grid can
be shared by any number of concurrent simulations.
*/
package grid

import (
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"
)

const (
	maxDimension = 1000
)

var (
	ErrInvalidDimensions  = errors.New("invalid grid dimensions")
	ErrInvalidProbability = errors.New("blocking probability must be within [0, 100]")
	ErrOutOfBounds        = errors.New("coordinate is out of the grid")
)

// BoundsError reports a lookup outside the grid.
// It matches ErrOutOfBounds with errors.Is.
type BoundsError struct {
	X, Y         int
	XSize, YSize int
}

func (e *BoundsError) Error() string {
	return fmt.Sprintf("coordinate <%d,%d> is out of the %dx%d grid", e.X, e.Y, e.XSize, e.YSize)
}

func (e *BoundsError) Is(target error) bool {
	return target == ErrOutOfBounds
}

// Config holds the parameters for generating a random grid.
type Config struct {
	XSize       int          // Number of columns
	YSize       int          // Number of rows
	Probability float64      // Chance, in percent, that a cell is blocked
	Rand        *rand.Rand   // Source of randomness; a time-seeded source is used when nil
	Open        []Coordinate // Cells forced open regardless of the draw (e.g. start and goal)
}

// Grid is an immutable rectangular array of cells stored in row-major order.
type Grid struct {
	xSize int
	ySize int
	cells []Cell
}

// Generate builds a random grid.
//
// Generation runs in two passes: the first draws every cell's blocked flag, the
// second derives NumSensedBlocked from the finished flags so the result does not
// depend on the order in which cells were drawn.
func Generate(c Config) (*Grid, error) {
	if err := validateDimensions(c.XSize, c.YSize); err != nil {
		return nil, err
	}
	if c.Probability < 0 || c.Probability > 100 {
		return nil, ErrInvalidProbability
	}

	rng := c.Rand
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	g := &Grid{xSize: c.XSize, ySize: c.YSize}
	g.cells = make([]Cell, 0, c.XSize*c.YSize)
	for y := 0; y < c.YSize; y++ {
		for x := 0; x < c.XSize; x++ {
			g.cells = append(g.cells, Cell{
				X:         x,
				Y:         y,
				NumAdj:    g.countInBounds(Coordinate{X: x, Y: y}.Neighbours8()),
				IsBlocked: rng.Float64()*100 < c.Probability,
			})
		}
	}

	for _, pos := range c.Open {
		if !g.Contains(pos) {
			return nil, &BoundsError{X: pos.X, Y: pos.Y, XSize: g.xSize, YSize: g.ySize}
		}
		g.cells[g.index(pos.X, pos.Y)].IsBlocked = false
	}

	g.senseBlocked()
	return g, nil
}

// FromLayout builds a grid from rows of text, one string per y, where 'X' marks
// a blocked cell and any other rune an open one. All rows must share a length.
func FromLayout(rows []string) (*Grid, error) {
	if len(rows) == 0 {
		return nil, ErrInvalidDimensions
	}
	xSize := len(rows[0])
	if err := validateDimensions(xSize, len(rows)); err != nil {
		return nil, err
	}

	g := &Grid{xSize: xSize, ySize: len(rows)}
	g.cells = make([]Cell, 0, xSize*len(rows))
	for y, row := range rows {
		if len(row) != xSize {
			return nil, fmt.Errorf("%w: row %d has %d columns, want %d", ErrInvalidDimensions, y, len(row), xSize)
		}
		for x := 0; x < xSize; x++ {
			g.cells = append(g.cells, Cell{
				X:         x,
				Y:         y,
				NumAdj:    g.countInBounds(Coordinate{X: x, Y: y}.Neighbours8()),
				IsBlocked: row[x] == 'X',
			})
		}
	}

	g.senseBlocked()
	return g, nil
}

func validateDimensions(xSize, ySize int) error {
	if min(xSize, ySize) <= 0 || max(xSize, ySize) > maxDimension {
		return ErrInvalidDimensions
	}
	return nil
}

// senseBlocked recomputes NumSensedBlocked for every cell from the blocked flags.
// It must only run once every flag is final.
func (g *Grid) senseBlocked() {
	for i := range g.cells {
		g.cells[i].NumSensedBlocked = 0
	}

	for _, cell := range g.cells {
		if !cell.IsBlocked {
			continue
		}
		for _, adj := range cell.Location().Neighbours8() {
			if !g.Contains(adj) {
				continue
			}
			g.cells[g.index(adj.X, adj.Y)].NumSensedBlocked++
		}
	}
}

func (g *Grid) countInBounds(coords []Coordinate) int {
	n := 0
	for _, c := range coords {
		if g.Contains(c) {
			n++
		}
	}
	return n
}

func (g *Grid) index(x, y int) int {
	return y*g.xSize + x
}

// XSize returns the number of columns.
func (g *Grid) XSize() int {
	return g.xSize
}

// YSize returns the number of rows.
func (g *Grid) YSize() int {
	return g.ySize
}

// InBounds reports whether 0 <= x < XSize and 0 <= y < YSize.
func (g *Grid) InBounds(x, y int) bool {
	return x >= 0 && y >= 0 && x < g.xSize && y < g.ySize
}

// Contains reports whether the coordinate lies inside the grid.
func (g *Grid) Contains(c Coordinate) bool {
	return g.InBounds(c.X, c.Y)
}

// CellAt returns the cell at (x, y) or a *BoundsError.
func (g *Grid) CellAt(x, y int) (Cell, error) {
	if !g.InBounds(x, y) {
		return Cell{}, &BoundsError{X: x, Y: y, XSize: g.xSize, YSize: g.ySize}
	}
	return g.cells[g.index(x, y)], nil
}

// Cell returns the cell at the given coordinate or a *BoundsError.
func (g *Grid) Cell(c Coordinate) (Cell, error) {
	return g.CellAt(c.X, c.Y)
}

// IsBlocked reports whether the coordinate is inside the grid and blocked.
func (g *Grid) IsBlocked(c Coordinate) bool {
	cell, err := g.Cell(c)
	return err == nil && cell.IsBlocked
}

// Stats summarises the grid's composition.
type Stats struct {
	XSize   int `json:"x_size"`
	YSize   int `json:"y_size"`
	Blocked int `json:"blocked"`
	Open    int `json:"open"`
}

// Stats counts blocked and open cells.
func (g *Grid) Stats() Stats {
	s := Stats{XSize: g.xSize, YSize: g.ySize}
	for _, cell := range g.cells {
		if cell.IsBlocked {
			s.Blocked++
		} else {
			s.Open++
		}
	}
	return s
}

// String renders the grid for debugging.
//
// Each line holds the cells (x, 0..YSize-1) for one x, every cell followed by a
// comma: 'S' at the origin, 'G' at the far corner, 'X' for blocked and ' ' for open.
func (g *Grid) String() string {
	var b strings.Builder
	b.WriteString("Grid{")

	for x := 0; x < g.xSize; x++ {
		b.WriteString("\n")
		for y := 0; y < g.ySize; y++ {
			switch {
			case x == 0 && y == 0:
				b.WriteString("S")
			case x == g.xSize-1 && y == g.ySize-1:
				b.WriteString("G")
			case g.cells[g.index(x, y)].IsBlocked:
				b.WriteString("X")
			default:
				b.WriteString(" ")
			}
			b.WriteString(",")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n}")
	return b.String()
}
