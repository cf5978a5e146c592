package oracle

import (
	"context"
	"sync"

	"github.com/beka-birhanu/gridnav/navigator"
)

// Serialized lets one prediction through at a time.
// Wrap an oracle with it when the oracle is not safe for concurrent use.
type Serialized struct {
	next navigator.Oracle
	sync.Mutex
}

// NewSerialized wraps next.
func NewSerialized(next navigator.Oracle) *Serialized {
	return &Serialized{next: next}
}

// Predict implements navigator.Oracle.
func (s *Serialized) Predict(ctx context.Context, belief [][]int8) ([]navigator.Action, error) {
	s.Lock()
	defer s.Unlock()
	return s.next.Predict(ctx, belief)
}
