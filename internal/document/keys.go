// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package document

import (
	"bytes"
	"cmp"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"slices"

	"github.com/session-foundation/config-sync/models"
)

const groupKeySize = 32

// GroupKey is one generation of a group's shared encryption key.
type GroupKey struct {
	Generation int64  `json:"generation"`
	Key        []byte `json:"key"`
	CreatedMs  int64  `json:"created"`
}

type keyMessage struct {
	Generation int64  `json:"generation"`
	Key        []byte `json:"key"`
	CreatedMs  int64  `json:"created"`
}

type keysDump struct {
	Keys       []GroupKey     `json:"keys"`
	Pending    []byte         `json:"pending,omitempty"`
	PendingGen int64          `json:"pending_generation,omitempty"`
	Known      models.HashSet `json:"known"`
}

// Keys is the key ring of one group. Every key message ever stored stays
// relevant to old members, so Keys never reports obsolete hashes.
type Keys struct {
	keys []GroupKey

	pending    []byte
	pendingGen int64

	known models.HashSet

	generation uint64
	dumped     uint64
}

// NewKeys returns an empty key ring.
func NewKeys() *Keys {
	return &Keys{known: models.NewHashSet()}
}

// LoadKeys restores a key ring from Dump output.
func LoadKeys(data []byte) (*Keys, error) {
	var d keysDump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDump, err)
	}
	k := NewKeys()
	k.keys = d.Keys
	k.pending = d.Pending
	k.pendingGen = d.PendingGen
	if d.Known != nil {
		k.known = d.Known
	}
	k.sort()
	return k, nil
}

func (k *Keys) Kind() models.DocumentKind {
	return models.GroupKeys
}

// NeedsPush reports whether a key message is waiting to be stored.
func (k *Keys) NeedsPush() bool {
	return k.pending != nil
}

func (k *Keys) NeedsDump() bool {
	return k.generation != k.dumped
}

// ActiveGeneration returns the newest key generation, or 0 without keys.
func (k *Keys) ActiveGeneration() int64 {
	if len(k.keys) == 0 {
		return 0
	}
	return k.keys[0].Generation
}

// GroupKeys returns all keys, newest first.
func (k *Keys) GroupKeys() []GroupKey {
	return slices.Clone(k.keys)
}

// Rekey creates a new key generation, queues its key message and stamps the
// info and members documents, which must be pushed again under the new key.
func (k *Keys) Rekey(nowMs int64, info, members *Document) error {
	if info == nil || members == nil {
		return ErrMissingDependencies
	}
	key := make([]byte, groupKeySize)
	if _, err := rand.Read(key); err != nil {
		return fmt.Errorf("generate group key: %w", err)
	}
	gen := k.ActiveGeneration() + 1
	msg := keyMessage{Generation: gen, Key: key, CreatedMs: nowMs}
	payload, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("encode key message: %w", err)
	}

	k.addKey(GroupKey(msg))
	k.pending = payload
	k.pendingGen = gen
	k.generation++

	info.SetKeyGeneration(gen, true)
	members.SetKeyGeneration(gen, true)
	return nil
}

// Push returns the pending key message and its generation.
func (k *Keys) Push() ([]byte, int64, error) {
	if k.pending == nil {
		return nil, 0, ErrNothingToPush
	}
	return slices.Clone(k.pending), k.pendingGen, nil
}

// ConfirmPushed clears the pending message if it is still the one for gen.
func (k *Keys) ConfirmPushed(gen int64, hash string) {
	k.known.Add(hash)
	if k.pending != nil && k.pendingGen == gen {
		k.pending = nil
		k.pendingGen = 0
	}
	k.generation++
}

// ConfirmDeleted forgets hashes the swarm no longer holds.
func (k *Keys) ConfirmDeleted(hashes ...string) {
	for _, h := range hashes {
		if k.known.Has(h) {
			k.known.Remove(h)
			k.generation++
		}
	}
}

// KnownHashes returns the hashes of every key message merged or pushed.
func (k *Keys) KnownHashes() models.HashSet {
	return k.known.Clone()
}

// Merge loads remote key messages. Newer generations are stamped onto the
// info and members documents without forcing a push; the admin who rekeyed
// stores their re-encrypted records.
func (k *Keys) Merge(records []models.IncomingRecord, info, members *Document) (models.MergeResult, []error) {
	var res models.MergeResult
	if info == nil || members == nil {
		return res, []error{ErrMissingDependencies}
	}
	var errs []error
	changed := false
	for _, r := range records {
		if r.Hash != "" && k.known.Has(r.Hash) {
			res.AcceptedHashes = append(res.AcceptedHashes, r.Hash)
			continue
		}
		var msg keyMessage
		if err := json.Unmarshal(r.Payload, &msg); err != nil || msg.Generation <= 0 || len(msg.Key) != groupKeySize {
			errs = append(errs, fmt.Errorf("%w: hash %q", ErrMalformedRecord, r.Hash))
			continue
		}
		k.addKey(GroupKey(msg))
		k.known.Add(r.Hash)
		changed = true
		if r.Hash != "" {
			res.AcceptedHashes = append(res.AcceptedHashes, r.Hash)
		}
		res.LatestSentAtMs = max(res.LatestSentAtMs, r.SentAtMs)
	}
	if changed {
		k.generation++
		gen := k.ActiveGeneration()
		info.SetKeyGeneration(gen, false)
		members.SetKeyGeneration(gen, false)
	}
	res.NeedsPush = k.NeedsPush()
	res.NeedsDump = k.NeedsDump()
	return res, errs
}

// addKey keeps every distinct key. Two admins rekeying at once produce two
// keys of one generation; both stay in the ring and compareKeys picks the
// same active one on every replica.
func (k *Keys) addKey(g GroupKey) {
	for _, existing := range k.keys {
		if existing.Generation == g.Generation && bytes.Equal(existing.Key, g.Key) {
			return
		}
	}
	k.keys = append(k.keys, g)
	k.sort()
}

func (k *Keys) sort() {
	slices.SortFunc(k.keys, compareKeys)
}

// compareKeys orders keys newest first by generation, then creation time,
// then key bytes.
func compareKeys(a, b GroupKey) int {
	if c := cmp.Compare(b.Generation, a.Generation); c != 0 {
		return c
	}
	if c := cmp.Compare(b.CreatedMs, a.CreatedMs); c != 0 {
		return c
	}
	return bytes.Compare(b.Key, a.Key)
}

// Dump serializes the key ring and the generation it reflects.
func (k *Keys) Dump() ([]byte, uint64, error) {
	b, err := json.Marshal(keysDump{
		Keys:       k.keys,
		Pending:    k.pending,
		PendingGen: k.pendingGen,
		Known:      k.known,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode keys dump: %w", err)
	}
	return b, k.generation, nil
}

// MarkDumped records that the state at generation gen is persisted.
func (k *Keys) MarkDumped(gen uint64) {
	if gen > k.dumped && gen <= k.generation {
		k.dumped = gen
	}
}
