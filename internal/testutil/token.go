package testutil

import (
	"fmt"
	"sync/atomic"

	"revault/internal/rv"
)

// SequenceTokenSource yields deterministic tokens rev-000000000000000000000001,
// rev-…02, … so tests can assert on exact ids. Safe for concurrent use.
type SequenceTokenSource struct {
	n atomic.Int64
}

var _ rv.TokenSource = (*SequenceTokenSource)(nil)

func (s *SequenceTokenSource) NewToken() string {
	return fmt.Sprintf("rev-%024d", s.n.Add(1))
}
