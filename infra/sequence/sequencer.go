package sequence

import "sync/atomic"

// Sequencer hands out strictly monotonic IDs for one engine instance.
// IDs are never reused, even after cancellation, so cancel requests
// and cache lookups are always unambiguous. It is owned by the engine,
// not global: two books never share a counter.
type Sequencer struct {
	next atomic.Uint64
}

// New creates a sequencer. Fresh start -> start = 0; after WAL replay
// -> start = last replayed seq.
func New(start uint64) *Sequencer {
	s := &Sequencer{}
	s.next.Store(start)
	return s
}

// Next returns the next sequence ID.
func (s *Sequencer) Next() uint64 {
	return s.next.Add(1)
}

// Current returns the last issued sequence.
func (s *Sequencer) Current() uint64 {
	return s.next.Load()
}

// Reset sets the sequencer to a specific value. Only used after
// replay, before the engine accepts traffic.
func (s *Sequencer) Reset(v uint64) {
	s.next.Store(v)
}
