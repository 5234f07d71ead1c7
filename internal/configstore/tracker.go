// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import (
	"cmp"
	"slices"
	"sync"

	"github.com/session-foundation/config-sync/models"
)

// HashTracker records, per target, the remote record hashes represented in
// local state or still awaiting deletion on the swarm. Incoming records whose
// hash is tracked were already applied.
//
// Hashes only leave the tracker through Remove, after the swarm confirmed
// their deletion; everything else is unioned in.
type HashTracker struct {
	mu        sync.RWMutex
	sets      map[models.ConfigTarget]models.HashSet
	persisted map[models.SwarmPublicKey]models.HashSet
}

func NewHashTracker() *HashTracker {
	return &HashTracker{
		sets:      make(map[models.ConfigTarget]models.HashSet),
		persisted: make(map[models.SwarmPublicKey]models.HashSet),
	}
}

// Set replaces the tracked hashes of target.
func (t *HashTracker) Set(target models.ConfigTarget, hashes models.HashSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.sets[target] = hashes.Clone()
}

// Add unions hashes into the set of target.
func (t *HashTracker) Add(target models.ConfigTarget, hashes models.HashSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	s, ok := t.sets[target]
	if !ok {
		s = models.NewHashSet()
		t.sets[target] = s
	}
	s.Union(hashes)
}

// Remove drops hashes from every target of swarm and from its persisted set.
func (t *HashTracker) Remove(swarm models.SwarmPublicKey, hashes []string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	for target, s := range t.sets {
		if target.Owner == swarm {
			s.Remove(hashes...)
		}
	}
	t.persisted[swarm].Remove(hashes...)
}

// Seed replaces the combined hash set persisted for swarm. Seen consults it
// alongside the per-target sets.
func (t *HashTracker) Seed(swarm models.SwarmPublicKey, hashes models.HashSet) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.persisted[swarm] = hashes.Clone()
}

func (t *HashTracker) Get(target models.ConfigTarget) models.HashSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.sets[target].Clone()
}

// Combined returns the union of all tracked hashes of a swarm.
func (t *HashTracker) Combined(swarm models.SwarmPublicKey) models.HashSet {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := t.persisted[swarm].Clone()
	for target, s := range t.sets {
		if target.Owner == swarm {
			out.Union(s)
		}
	}
	return out
}

// Seen reports whether swarm tracks hash for any of its targets.
func (t *HashTracker) Seen(swarm models.SwarmPublicKey, hash string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.persisted[swarm].Has(hash) {
		return true
	}
	for target, s := range t.sets {
		if target.Owner == swarm && s.Has(hash) {
			return true
		}
	}
	return false
}

// Holding returns the targets of swarm tracking any of hashes, in kind
// order.
func (t *HashTracker) Holding(swarm models.SwarmPublicKey, hashes []string) []models.ConfigTarget {
	t.mu.RLock()
	defer t.mu.RUnlock()
	var out []models.ConfigTarget
	for target, s := range t.sets {
		if target.Owner != swarm {
			continue
		}
		if slices.ContainsFunc(hashes, s.Has) {
			out = append(out, target)
		}
	}
	slices.SortFunc(out, func(a, b models.ConfigTarget) int {
		return cmp.Compare(a.Kind, b.Kind)
	})
	return out
}
