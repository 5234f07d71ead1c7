// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import (
	"sync"

	"github.com/session-foundation/config-sync/models"
)

// Entry is the live document of one target. All reads and writes of the
// document go through the entry's mutex, which makes every store operation
// on a target one critical section.
type Entry struct {
	mu sync.Mutex

	target models.ConfigTarget
	v      variant

	// failed entries hold no document; their dump could not be decoded.
	failed  bool
	lastErr error
}

func (e *Entry) Target() models.ConfigTarget {
	return e.target
}

// NeedsPush reports whether the entry holds unconfirmed local changes.
func (e *Entry) NeedsPush() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.failed && e.v.needsPush()
}

// NeedsDump reports whether the in-memory state is newer than the last
// persisted dump.
func (e *Entry) NeedsDump() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.failed && e.v.needsDump()
}

// LastError returns the most recent error recorded for the target, if any.
func (e *Entry) LastError() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastErr
}

// Available reports whether the entry holds a usable document.
func (e *Entry) Available() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return !e.failed
}
