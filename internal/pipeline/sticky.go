// Package pipeline implements the block-parallel compress and decompress
// engines: fan out per-block work, keep writes to the sink in strict
// input order via a chain of per-block gates, and fold a frame-wide
// stream checksum without ever observing blocks out of order.
package pipeline

import "sync"

// Sticky holds the first error reported to it and discards every
// subsequent one — "first writer wins", per the frame format's sticky
// result discipline. Workers that observe a non-nil Get() are expected
// to stop doing work and return without calling Set themselves, so a
// late, less-specific error never overwrites an earlier, more
// informative one.
//
// A mutex guards the single field; contention is rare (one Set per
// failing block, at most) so there's no reason to reach for atomics.
type Sticky struct {
	mu  sync.Mutex
	err error
}

// Set records err as the sticky result if nothing has been recorded yet.
// Set(nil) is a no-op.
func (s *Sticky) Set(err error) {
	if err == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err == nil {
		s.err = err
	}
}

// Get returns the first error recorded, or nil if none has been.
func (s *Sticky) Get() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.err
}
