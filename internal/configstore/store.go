// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import (
	"cmp"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/session-foundation/config-sync/internal/document"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/models"
)

// PreparedDump is a dump together with the in-memory generation it captured.
// Pass both back to MarkDumped after the dump is durable.
type PreparedDump struct {
	Dump       models.ConfigDump
	Generation uint64
}

// Store is the registry of live documents owned by one engine instance.
//
// Every operation runs inside the per-entry critical section of the targets
// it touches. Group key operations also lock the group's info and members
// entries; multi-entry locks are always taken in merge-rank order.
type Store struct {
	origin  string
	log     *logger.Logger
	tracker *HashTracker

	mu      sync.RWMutex
	entries map[models.ConfigTarget]*Entry
}

// NewStore creates an empty registry. Origin identifies the local device in
// documents it creates or loads.
func NewStore(origin string, log *logger.Logger) *Store {
	return &Store{
		origin:  origin,
		log:     log,
		tracker: NewHashTracker(),
		entries: make(map[models.ConfigTarget]*Entry),
	}
}

// Tracker exposes the per-target hash sets.
func (s *Store) Tracker() *HashTracker {
	return s.tracker
}

// Load registers target from its persisted dump. A nil dump means a fresh
// install and yields an empty document. Loading an already loaded target is
// a no-op. A dump that cannot be decoded registers the target as
// unavailable and returns ErrTargetUnavailable.
func (s *Store) Load(target models.ConfigTarget, dump *models.ConfigDump) (*Entry, error) {
	if !target.Kind.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrUnknownKind, int(target.Kind))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[target]; ok {
		if !e.Available() {
			return e, fmt.Errorf("%w: %s", ErrTargetUnavailable, target)
		}
		return e, nil
	}

	e := &Entry{target: target}
	s.entries[target] = e

	v, err := s.decode(target, dump)
	if err != nil {
		e.failed = true
		e.lastErr = err
		s.log.Err(err).
			Str("func", "Store.Load").
			Stringer("target", target).
			Msg("persisted dump is unreadable, target closed")
		return e, fmt.Errorf("%w: %s: %v", ErrTargetUnavailable, target, err)
	}
	e.v = v

	hashes := v.knownHashes()
	if dump != nil {
		hashes.Union(dump.AssociatedMessageHashes)
	}
	s.tracker.Set(target, hashes)
	return e, nil
}

// LoadAll loads every kind of swarm, using the matching dump when one exists.
// All kinds are attempted; the returned error joins individual failures.
func (s *Store) LoadAll(swarm models.SwarmPublicKey, kinds []models.DocumentKind, dumps []models.ConfigDump) error {
	byKind := make(map[models.DocumentKind]*models.ConfigDump, len(dumps))
	for i := range dumps {
		if dumps[i].Owner == swarm {
			byKind[dumps[i].Kind] = &dumps[i]
		}
	}
	var errs []error
	for _, kind := range kinds {
		if _, err := s.Load(models.ConfigTarget{Kind: kind, Owner: swarm}, byKind[kind]); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (s *Store) decode(target models.ConfigTarget, dump *models.ConfigDump) (variant, error) {
	if dump == nil || len(dump.Data) == 0 {
		if target.Kind == models.GroupKeys {
			return groupKeysVariant{keys: document.NewKeys()}, nil
		}
		return standardVariant{doc: document.New(target.Kind, s.origin)}, nil
	}

	state, err := DecodeDump(target.Kind, dump.Data)
	if err != nil {
		return nil, err
	}
	if target.Kind == models.GroupKeys {
		keys, err := document.LoadKeys(state)
		if err != nil {
			return nil, err
		}
		return groupKeysVariant{keys: keys}, nil
	}
	doc, err := document.Load(target.Kind, s.origin, state)
	if err != nil {
		return nil, err
	}
	return standardVariant{doc: doc}, nil
}

// Entry returns the live entry of target.
func (s *Store) Entry(target models.ConfigTarget) (*Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	e, ok := s.entries[target]
	return e, ok
}

// Targets returns the loaded targets of swarm in merge-rank order.
func (s *Store) Targets(swarm models.SwarmPublicKey) []models.ConfigTarget {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []models.ConfigTarget
	for t := range s.entries {
		if t.Owner == swarm {
			out = append(out, t)
		}
	}
	slices.SortFunc(out, func(a, b models.ConfigTarget) int {
		return cmp.Compare(a.Kind.MergeRank(), b.Kind.MergeRank())
	})
	return out
}

// Swarms returns every swarm with at least one loaded target.
func (s *Store) Swarms() []models.SwarmPublicKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[models.SwarmPublicKey]struct{})
	var out []models.SwarmPublicKey
	for t := range s.entries {
		if _, ok := seen[t.Owner]; !ok {
			seen[t.Owner] = struct{}{}
			out = append(out, t.Owner)
		}
	}
	slices.Sort(out)
	return out
}

// with runs fn while holding the locks of all targets. Entries are passed to
// fn in the order of targets.
func (s *Store) with(targets []models.ConfigTarget, fn func(entries []*Entry) error) error {
	entries := make([]*Entry, len(targets))
	s.mu.RLock()
	for i, t := range targets {
		e, ok := s.entries[t]
		if !ok {
			s.mu.RUnlock()
			return fmt.Errorf("%w: %s", ErrNotLoaded, t)
		}
		entries[i] = e
	}
	s.mu.RUnlock()

	ordered := slices.Clone(entries)
	slices.SortFunc(ordered, func(a, b *Entry) int {
		return cmp.Or(
			cmp.Compare(a.target.Kind.MergeRank(), b.target.Kind.MergeRank()),
			cmp.Compare(a.target.Owner, b.target.Owner),
		)
	})
	for _, e := range ordered {
		e.mu.Lock()
	}
	defer func() {
		for i := len(ordered) - 1; i >= 0; i-- {
			ordered[i].mu.Unlock()
		}
	}()

	for _, e := range entries {
		if e.failed {
			return fmt.Errorf("%w: %s", ErrTargetUnavailable, e.target)
		}
	}
	err := fn(entries)
	for _, e := range entries {
		s.tracker.Add(e.target, e.v.knownHashes())
	}
	return err
}

func groupTargets(group models.SwarmPublicKey) []models.ConfigTarget {
	return []models.ConfigTarget{
		{Kind: models.GroupKeys, Owner: group},
		{Kind: models.GroupInfo, Owner: group},
		{Kind: models.GroupMembers, Owner: group},
	}
}

// groupDocs unpacks the entries returned for groupTargets.
func groupDocs(entries []*Entry) (*document.Keys, *document.Document, *document.Document, error) {
	keys, ok1 := entries[0].v.(groupKeysVariant)
	info, ok2 := entries[1].v.(standardVariant)
	members, ok3 := entries[2].v.(standardVariant)
	if !ok1 || !ok2 || !ok3 {
		return nil, nil, nil, ErrWrongVariant
	}
	return keys.keys, info.doc, members.doc, nil
}

func standardDoc(e *Entry) (*document.Document, error) {
	v, ok := e.v.(standardVariant)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrWrongVariant, e.target)
	}
	return v.doc, nil
}

// Get reads one key of a standard document.
func (s *Store) Get(target models.ConfigTarget, key string) ([]byte, bool, error) {
	var (
		value []byte
		found bool
	)
	err := s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		doc, err := standardDoc(es[0])
		if err != nil {
			return err
		}
		value, found = doc.Get(key)
		return nil
	})
	return value, found, err
}

// Mutate applies fn to a standard document inside its critical section.
func (s *Store) Mutate(target models.ConfigTarget, fn func(doc *document.Document) error) error {
	return s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		doc, err := standardDoc(es[0])
		if err != nil {
			return err
		}
		return fn(doc)
	})
}

// Rekey rotates the key of group and marks its info and members documents
// for re-push.
func (s *Store) Rekey(group models.SwarmPublicKey, nowMs int64) error {
	return s.with(groupTargets(group), func(es []*Entry) error {
		keys, info, members, err := groupDocs(es)
		if err != nil {
			return err
		}
		return keys.Rekey(nowMs, info, members)
	})
}

// Merge applies remote records to target. Unparsable records are skipped,
// logged and left out of the accepted hashes.
func (s *Store) Merge(target models.ConfigTarget, records []models.IncomingRecord) (models.MergeResult, error) {
	var (
		res  models.MergeResult
		errs []error
	)
	var err error
	if target.Kind == models.GroupKeys {
		err = s.with(groupTargets(target.Owner), func(es []*Entry) error {
			keys, info, members, err := groupDocs(es)
			if err != nil {
				return err
			}
			res, errs = keys.Merge(records, info, members)
			return nil
		})
	} else {
		err = s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
			doc, err := standardDoc(es[0])
			if err != nil {
				return err
			}
			res, errs = doc.Merge(records)
			return nil
		})
	}
	if err != nil {
		return models.MergeResult{}, err
	}

	for _, e := range errs {
		s.log.Warn().Err(e).
			Str("func", "Store.Merge").
			Stringer("target", target).
			Msg("skipping record")
	}
	return res, nil
}

// MergeSwarm merges records for several kinds of one swarm in merge-rank
// order, so group keys are loaded before the documents they decrypt.
func (s *Store) MergeSwarm(swarm models.SwarmPublicKey, byKind map[models.DocumentKind][]models.IncomingRecord) (map[models.DocumentKind]models.MergeResult, error) {
	kinds := make([]models.DocumentKind, 0, len(byKind))
	for k := range byKind {
		kinds = append(kinds, k)
	}
	slices.SortFunc(kinds, func(a, b models.DocumentKind) int {
		return cmp.Compare(a.MergeRank(), b.MergeRank())
	})

	out := make(map[models.DocumentKind]models.MergeResult, len(kinds))
	var errs []error
	for _, k := range kinds {
		res, err := s.Merge(models.ConfigTarget{Kind: k, Owner: swarm}, byKind[k])
		if err != nil {
			errs = append(errs, err)
			continue
		}
		out[k] = res
	}
	return out, errors.Join(errs...)
}

// PendingPush returns the outgoing payload of target, or nil when it has
// nothing to push.
func (s *Store) PendingPush(target models.ConfigTarget) (*models.PendingPush, error) {
	var push *models.PendingPush
	err := s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		switch v := es[0].v.(type) {
		case standardVariant:
			if !v.doc.NeedsPush() {
				return nil
			}
			payload, seqno, obsolete, err := v.doc.Push()
			if err != nil {
				return err
			}
			push = &models.PendingPush{
				Target:         target,
				Payload:        payload,
				SeqNo:          seqno,
				HasSeqNo:       true,
				ObsoleteHashes: obsolete,
			}
		case groupKeysVariant:
			if !v.keys.NeedsPush() {
				return nil
			}
			payload, gen, err := v.keys.Push()
			if err != nil {
				return err
			}
			push = &models.PendingPush{
				Target:         target,
				Payload:        payload,
				SeqNo:          gen,
				ObsoleteHashes: models.NewHashSet(),
			}
		}
		return nil
	})
	return push, err
}

// PendingPushes collects the outgoing payloads of every target of swarm in
// merge-rank order. Unavailable targets are skipped.
func (s *Store) PendingPushes(swarm models.SwarmPublicKey) ([]models.PendingPush, error) {
	var out []models.PendingPush
	for _, t := range s.Targets(swarm) {
		push, err := s.PendingPush(t)
		if errors.Is(err, ErrTargetUnavailable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if push != nil {
			out = append(out, *push)
		}
	}
	return out, nil
}

// ConfirmPushed records that the payload pushed for seqno was stored under
// hash. Stale sequence numbers never clear newer pending changes.
func (s *Store) ConfirmPushed(target models.ConfigTarget, seqno int64, hash string) error {
	return s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		switch v := es[0].v.(type) {
		case standardVariant:
			v.doc.ConfirmPushed(seqno, hash)
		case groupKeysVariant:
			v.keys.ConfirmPushed(seqno, hash)
		}
		es[0].lastErr = nil
		return nil
	})
}

// ConfirmDeleted drops hashes the swarm confirmed as deleted from every
// target of swarm and from the tracker.
func (s *Store) ConfirmDeleted(swarm models.SwarmPublicKey, hashes []string) error {
	if len(hashes) == 0 {
		return nil
	}
	defer s.tracker.Remove(swarm, hashes)

	var errs []error
	for _, t := range s.Targets(swarm) {
		err := s.with([]models.ConfigTarget{t}, func(es []*Entry) error {
			es[0].v.confirmDeleted(hashes...)
			return nil
		})
		if err != nil && !errors.Is(err, ErrTargetUnavailable) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// CreateDump serializes target with every hash the tracker holds for it,
// including hashes only known from an earlier dump. It returns nil when the
// persisted state is already current.
func (s *Store) CreateDump(target models.ConfigTarget) (*PreparedDump, error) {
	var out *PreparedDump
	err := s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		v := es[0].v
		if !v.needsDump() {
			return nil
		}
		state, gen, err := v.dump()
		if err != nil {
			return err
		}
		data, err := EncodeDump(target.Kind, state)
		if err != nil {
			return err
		}
		hashes := s.tracker.Get(target)
		hashes.Union(v.knownHashes())
		out = &PreparedDump{
			Dump: models.ConfigDump{
				Kind:                    target.Kind,
				Owner:                   target.Owner,
				Data:                    data,
				AssociatedMessageHashes: hashes,
			},
			Generation: gen,
		}
		return nil
	})
	return out, err
}

// CreateDumps returns dumps of every target of swarm that needs one.
func (s *Store) CreateDumps(swarm models.SwarmPublicKey) ([]PreparedDump, error) {
	var out []PreparedDump
	for _, t := range s.Targets(swarm) {
		d, err := s.CreateDump(t)
		if errors.Is(err, ErrTargetUnavailable) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if d != nil {
			out = append(out, *d)
		}
	}
	return out, nil
}

// MarkDumped clears NeedsDump of target unless it changed after the dump
// with generation gen was taken.
func (s *Store) MarkDumped(target models.ConfigTarget, gen uint64) error {
	return s.with([]models.ConfigTarget{target}, func(es []*Entry) error {
		es[0].v.markDumped(gen)
		return nil
	})
}

// MarkAllDumped is MarkDumped for each prepared dump.
func (s *Store) MarkAllDumped(dumps []PreparedDump) error {
	var errs []error
	for _, d := range dumps {
		if err := s.MarkDumped(d.Dump.Target(), d.Generation); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RecordError stores err as the last error of target.
func (s *Store) RecordError(target models.ConfigTarget, err error) {
	if e, ok := s.Entry(target); ok {
		e.mu.Lock()
		e.lastErr = err
		e.mu.Unlock()
	}
}

// PendingChangeCount returns how many targets of swarm need a push.
func (s *Store) PendingChangeCount(swarm models.SwarmPublicKey) int {
	n := 0
	for _, t := range s.Targets(swarm) {
		if e, ok := s.Entry(t); ok && e.NeedsPush() {
			n++
		}
	}
	return n
}
