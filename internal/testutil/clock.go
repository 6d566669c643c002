package testutil

import (
	"slices"
	"sync"
)

// StepSequencer is an engine.Sequencer that numbers calls 1, 2, 3, ... and
// keeps every number it handed out, so tests can check how many runs an
// engine sequenced.
type StepSequencer struct {
	mu     sync.Mutex
	issued []int64
}

// NewStepSequencer returns a sequencer whose first Next() is 1.
func NewStepSequencer() *StepSequencer {
	return &StepSequencer{}
}

func (s *StepSequencer) Next() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.issued)) + 1
	s.issued = append(s.issued, n)
	return n
}

// Current is the last number issued, or 0 before the first Next().
func (s *StepSequencer) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int64(len(s.issued))
}

// Issued returns a copy of every number handed out so far.
func (s *StepSequencer) Issued() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.issued)
}

// Reset forgets the history; numbering restarts at 1.
func (s *StepSequencer) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued = nil
}
