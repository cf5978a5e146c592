package grid

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerate(t *testing.T) {
	t.Run("NumAdj matches position", func(t *testing.T) {
		g, err := Generate(Config{XSize: 5, YSize: 4, Probability: 30, Rand: rand.New(rand.NewSource(1))})
		require.NoError(t, err)

		for y := 0; y < g.YSize(); y++ {
			for x := 0; x < g.XSize(); x++ {
				cell, err := g.CellAt(x, y)
				require.NoError(t, err)

				onXEdge := x == 0 || x == g.XSize()-1
				onYEdge := y == 0 || y == g.YSize()-1
				switch {
				case onXEdge && onYEdge:
					assert.Equal(t, 3, cell.NumAdj, "corner %d,%d", x, y)
				case onXEdge || onYEdge:
					assert.Equal(t, 5, cell.NumAdj, "edge %d,%d", x, y)
				default:
					assert.Equal(t, 8, cell.NumAdj, "interior %d,%d", x, y)
				}
				assert.Equal(t, Coordinate{X: x, Y: y}, cell.Location())
			}
		}
	})

	t.Run("NumSensedBlocked counts blocked Moore neighbours", func(t *testing.T) {
		g, err := Generate(Config{XSize: 12, YSize: 9, Probability: 40, Rand: rand.New(rand.NewSource(7))})
		require.NoError(t, err)

		for _, cell := range g.cells {
			want := 0
			for _, adj := range cell.Location().Neighbours8() {
				if g.IsBlocked(adj) {
					want++
				}
			}
			assert.Equal(t, want, cell.NumSensedBlocked, "cell %s", cell.Location())
			assert.Equal(t, cell.NumAdj-want, cell.NumSensedEmpty())
		}
	})

	t.Run("Sensing pass is idempotent", func(t *testing.T) {
		g, err := Generate(Config{XSize: 6, YSize: 6, Probability: 50, Rand: rand.New(rand.NewSource(3))})
		require.NoError(t, err)

		before := append([]Cell(nil), g.cells...)
		g.senseBlocked()
		assert.Equal(t, before, g.cells)
	})

	t.Run("Same blocked cells give same counts regardless of construction", func(t *testing.T) {
		g, err := Generate(Config{XSize: 5, YSize: 5, Probability: 45, Rand: rand.New(rand.NewSource(11))})
		require.NoError(t, err)

		rows := make([]string, g.YSize())
		for y := range rows {
			row := make([]byte, g.XSize())
			for x := range row {
				row[x] = ' '
				if g.IsBlocked(Coordinate{X: x, Y: y}) {
					row[x] = 'X'
				}
			}
			rows[y] = string(row)
		}

		rebuilt, err := FromLayout(rows)
		require.NoError(t, err)
		assert.Equal(t, g.cells, rebuilt.cells)
	})

	t.Run("Probability bounds", func(t *testing.T) {
		open, err := Generate(Config{XSize: 4, YSize: 4, Probability: 0})
		require.NoError(t, err)
		assert.Equal(t, 0, open.Stats().Blocked)

		full, err := Generate(Config{XSize: 4, YSize: 4, Probability: 100})
		require.NoError(t, err)
		assert.Equal(t, 16, full.Stats().Blocked)

		_, err = Generate(Config{XSize: 4, YSize: 4, Probability: 101})
		assert.ErrorIs(t, err, ErrInvalidProbability)
	})

	t.Run("Forced open cells", func(t *testing.T) {
		g, err := Generate(Config{
			XSize:       3,
			YSize:       3,
			Probability: 100,
			Open:        []Coordinate{{X: 0, Y: 0}, {X: 2, Y: 2}},
		})
		require.NoError(t, err)
		assert.False(t, g.IsBlocked(Coordinate{X: 0, Y: 0}))
		assert.False(t, g.IsBlocked(Coordinate{X: 2, Y: 2}))
		assert.Equal(t, 7, g.Stats().Blocked)

		_, err = Generate(Config{XSize: 3, YSize: 3, Open: []Coordinate{{X: 3, Y: 0}}})
		assert.ErrorIs(t, err, ErrOutOfBounds)
	})

	t.Run("Invalid dimensions", func(t *testing.T) {
		_, err := Generate(Config{XSize: 0, YSize: 3})
		assert.ErrorIs(t, err, ErrInvalidDimensions)

		_, err = FromLayout(nil)
		assert.ErrorIs(t, err, ErrInvalidDimensions)

		_, err = FromLayout([]string{"  ", " "})
		assert.ErrorIs(t, err, ErrInvalidDimensions)
	})
}

func TestCellLookup(t *testing.T) {
	g, err := FromLayout([]string{" X", "  "})
	require.NoError(t, err)

	t.Run("In bounds", func(t *testing.T) {
		cell, err := g.Cell(Coordinate{X: 1, Y: 0})
		require.NoError(t, err)
		assert.True(t, cell.IsBlocked)

		cell, err = g.CellAt(0, 1)
		require.NoError(t, err)
		assert.False(t, cell.IsBlocked)
	})

	t.Run("Out of bounds", func(t *testing.T) {
		for _, c := range []Coordinate{{X: -1, Y: 0}, {X: 0, Y: -1}, {X: 2, Y: 0}, {X: 0, Y: 2}} {
			_, err := g.Cell(c)
			assert.ErrorIs(t, err, ErrOutOfBounds)

			var boundsErr *BoundsError
			require.True(t, errors.As(err, &boundsErr))
			assert.Equal(t, c.X, boundsErr.X)
			assert.Equal(t, c.Y, boundsErr.Y)
			assert.False(t, g.InBounds(c.X, c.Y))
		}
	})
}

func TestString(t *testing.T) {
	t.Run("Open 2x2", func(t *testing.T) {
		g, err := FromLayout([]string{"  ", "  "})
		require.NoError(t, err)
		assert.Equal(t, "Grid{\nS, ,\n\n ,G,\n\n}", g.String())
	})

	t.Run("Blocked cell", func(t *testing.T) {
		g, err := FromLayout([]string{" X ", "   "})
		require.NoError(t, err)
		assert.Equal(t, "Grid{\nS, ,\n\nX, ,\n\n ,G,\n\n}", g.String())
	})
}
