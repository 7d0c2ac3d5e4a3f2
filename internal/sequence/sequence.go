// internal/sequence/sequence.go
package sequence

import "sync/atomic"

// Sequencer issues monotonically increasing request ids for one interactive
// session. Async operations capture an id at issue time and check IsLatest on
// completion; anything that is not the latest issued request must discard its
// result. This is what makes rapid re-typing safe: completion order stops
// mattering, only issue order does.
type Sequencer struct {
	counter atomic.Uint64
}

// Next issues the next request id.
func (s *Sequencer) Next() uint64 {
	return s.counter.Add(1)
}

// IsLatest reports whether id is the most recently issued request id.
func (s *Sequencer) IsLatest(id uint64) bool {
	return s.counter.Load() == id
}

// Current returns the most recently issued id, 0 if none was issued yet.
func (s *Sequencer) Current() uint64 {
	return s.counter.Load()
}

// Reset rewinds the counter to 0. Called when the session ends; ids are never
// shared across concurrent sessions.
func (s *Sequencer) Reset() {
	s.counter.Store(0)
}
