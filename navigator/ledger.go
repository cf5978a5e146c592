package navigator

import (
	"fmt"

	"github.com/beka-birhanu/gridnav/grid"
)

const (
	// maxAttempts bounds the next cells tried from one cell: one per action.
	maxAttempts = 4
)

// Ledger records how the agent reached each cell and which moves it already tried.
type Ledger struct {
	root      grid.Coordinate
	parents   map[grid.Coordinate]grid.Coordinate
	attempted map[grid.Coordinate][]grid.Coordinate
}

// NewLedger returns a ledger whose parent tree is rooted at start.
func NewLedger(start grid.Coordinate) *Ledger {
	return &Ledger{
		root:      start,
		parents:   make(map[grid.Coordinate]grid.Coordinate),
		attempted: make(map[grid.Coordinate][]grid.Coordinate),
	}
}

// Visited reports whether c is part of the parent tree.
func (l *Ledger) Visited(c grid.Coordinate) bool {
	if c == l.root {
		return true
	}
	_, ok := l.parents[c]
	return ok
}

// Parent returns the cell the agent first reached c from.
// The root has no parent.
func (l *Ledger) Parent(c grid.Coordinate) (grid.Coordinate, bool) {
	p, ok := l.parents[c]
	return p, ok
}

// Record links target to from unless target is already in the tree,
// which keeps the parents acyclic.
func (l *Ledger) Record(target, from grid.Coordinate) {
	if l.Visited(target) {
		return
	}
	l.parents[target] = from
}

// Attempted reports whether the move from -> to was already tried.
func (l *Ledger) Attempted(from, to grid.Coordinate) bool {
	for _, c := range l.attempted[from] {
		if c == to {
			return true
		}
	}
	return false
}

// Attempts returns how many moves were tried from c.
func (l *Ledger) Attempts(c grid.Coordinate) int {
	return len(l.attempted[c])
}

// Attempt records the move from -> to.
func (l *Ledger) Attempt(from, to grid.Coordinate) error {
	if len(l.attempted[from]) >= maxAttempts {
		return fmt.Errorf("%w: every move from %s was tried", ErrAgentTrapped, from)
	}
	l.attempted[from] = append(l.attempted[from], to)
	return nil
}

// Path returns the cells from the root to c following parent links.
func (l *Ledger) Path(c grid.Coordinate) ([]grid.Coordinate, error) {
	if !l.Visited(c) {
		return nil, fmt.Errorf("%s was never reached", c)
	}

	path := []grid.Coordinate{c}
	for c != l.root {
		if len(path) > len(l.parents) {
			return nil, fmt.Errorf("parent chain from %s does not reach the start", path[0])
		}
		c = l.parents[c]
		path = append(path, c)
	}

	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path, nil
}
