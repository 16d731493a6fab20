package domain

import (
	"fmt"
	"strconv"
	"strings"
	"sync/atomic"
)

// Sequence generates prefixed, zero-padded monotonic identifiers such as
// ACC001 or TXN042. It replaces process-wide static counters with an explicit
// object owned by the component that mints the IDs, so restores can re-seed it.
type Sequence struct {
	prefix string
	n      atomic.Int64
}

// NewSequence returns a sequence starting at zero; the first Next is <prefix>001.
func NewSequence(prefix string) *Sequence {
	return &Sequence{prefix: prefix}
}

// Next returns the next identifier in the sequence.
func (s *Sequence) Next() string {
	return fmt.Sprintf("%s%03d", s.prefix, s.n.Add(1))
}

// Observe advances the counter to at least the numeric suffix of id, so IDs
// minted after a bulk restore never collide with restored ones. IDs with a
// different prefix or a non-numeric suffix are ignored.
func (s *Sequence) Observe(id string) {
	if !strings.HasPrefix(id, s.prefix) {
		return
	}
	v, err := strconv.ParseInt(id[len(s.prefix):], 10, 64)
	if err != nil {
		return
	}
	for {
		cur := s.n.Load()
		if v <= cur || s.n.CompareAndSwap(cur, v) {
			return
		}
	}
}

// Current reports the last issued (or observed) counter value.
func (s *Sequence) Current() int64 {
	return s.n.Load()
}
