// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import "sync/atomic"

// Sequence is a monotonic logical clock ordering jobs by enqueue time.
// Wall clocks can repeat or go backwards; sequence numbers never do.
type Sequence struct {
	seq atomic.Uint64
}

// Next returns the next sequence number. The first call returns 1.
func (s *Sequence) Next() uint64 {
	return s.seq.Add(1)
}

// Current returns the last issued sequence number.
func (s *Sequence) Current() uint64 {
	return s.seq.Load()
}
