// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package document

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"slices"

	"github.com/session-foundation/config-sync/models"
)

// PushState is the position of a document in its push cycle.
type PushState int

const (
	// Clean documents have nothing to push.
	Clean PushState = iota
	// Dirty documents have local changes not yet handed out by Push.
	Dirty
	// Pushed documents have handed out their payload and wait for
	// ConfirmPushed with the same sequence number.
	Pushed
)

func (s PushState) String() string {
	switch s {
	case Clean:
		return "clean"
	case Dirty:
		return "dirty"
	case Pushed:
		return "pushed"
	}
	return "unknown"
}

type entry struct {
	Value   []byte `json:"v,omitempty"`
	SeqNo   int64  `json:"s"`
	Origin  string `json:"o"`
	Deleted bool   `json:"d,omitempty"`
}

// wins reports whether e replaces other under last-writer-wins.
// Ties on seqno break on origin, then tombstones, then value bytes, so every
// replica picks the same winner regardless of merge order.
func (e entry) wins(other entry) bool {
	if e.SeqNo != other.SeqNo {
		return e.SeqNo > other.SeqNo
	}
	if e.Origin != other.Origin {
		return e.Origin > other.Origin
	}
	if e.Deleted != other.Deleted {
		return e.Deleted
	}
	return bytes.Compare(e.Value, other.Value) > 0
}

func (e entry) equal(other entry) bool {
	return e.SeqNo == other.SeqNo && e.Origin == other.Origin &&
		e.Deleted == other.Deleted && bytes.Equal(e.Value, other.Value)
}

// record is the wire payload of one pushed document state.
// encoding/json writes map keys sorted, which keeps payloads canonical.
type record struct {
	SeqNo   int64            `json:"seqno"`
	Entries map[string]entry `json:"entries"`
}

type dump struct {
	Kind          models.DocumentKind `json:"kind"`
	SeqNo         int64               `json:"seqno"`
	State         PushState           `json:"state"`
	Entries       map[string]entry    `json:"entries"`
	CurrentHash   string              `json:"current_hash,omitempty"`
	Known         models.HashSet      `json:"known"`
	Obsolete      models.HashSet      `json:"obsolete"`
	KeyGeneration int64               `json:"key_generation,omitempty"`
}

// Document is a last-writer-wins map of string keys to opaque values.
type Document struct {
	kind   models.DocumentKind
	origin string

	seqno   int64
	state   PushState
	entries map[string]entry

	currentHash string
	known       models.HashSet
	obsolete    models.HashSet

	keyGeneration int64

	generation uint64
	dumped     uint64
}

// New returns an empty clean document. Origin identifies the local device and
// breaks ties between concurrent writes with equal sequence numbers.
func New(kind models.DocumentKind, origin string) *Document {
	return &Document{
		kind:     kind,
		origin:   origin,
		entries:  make(map[string]entry),
		known:    models.NewHashSet(),
		obsolete: models.NewHashSet(),
	}
}

// Load restores a document from Dump output.
func Load(kind models.DocumentKind, origin string, data []byte) (*Document, error) {
	var d dump
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptDump, err)
	}
	if d.Kind != kind {
		return nil, fmt.Errorf("%w: dump holds %s, want %s", ErrKindMismatch, d.Kind, kind)
	}
	if d.State < Clean || d.State > Pushed || d.SeqNo < 0 {
		return nil, fmt.Errorf("%w: invalid push state %d at seqno %d", ErrCorruptDump, d.State, d.SeqNo)
	}

	doc := New(kind, origin)
	doc.seqno = d.SeqNo
	doc.state = d.State
	// A payload handed out before a restart can never be confirmed.
	if doc.state == Pushed {
		doc.state = Dirty
	}
	if d.Entries != nil {
		doc.entries = d.Entries
	}
	doc.currentHash = d.CurrentHash
	if d.Known != nil {
		doc.known = d.Known
	}
	if d.Obsolete != nil {
		doc.obsolete = d.Obsolete
	}
	doc.keyGeneration = d.KeyGeneration
	return doc, nil
}

func (d *Document) Kind() models.DocumentKind {
	return d.kind
}

func (d *Document) SeqNo() int64 {
	return d.seqno
}

func (d *Document) State() PushState {
	return d.state
}

// NeedsPush reports whether the document holds changes the swarm has not
// confirmed. It stays true while a push is in flight.
func (d *Document) NeedsPush() bool {
	return d.state != Clean
}

// NeedsDump reports whether the in-memory state is newer than the last state
// marked as persisted.
func (d *Document) NeedsDump() bool {
	return d.generation != d.dumped
}

// Get returns the live value under key.
func (d *Document) Get(key string) ([]byte, bool) {
	e, ok := d.entries[key]
	if !ok || e.Deleted {
		return nil, false
	}
	return slices.Clone(e.Value), true
}

// Keys returns the live keys in lexical order.
func (d *Document) Keys() []string {
	out := make([]string, 0, len(d.entries))
	for k, e := range d.entries {
		if !e.Deleted {
			out = append(out, k)
		}
	}
	slices.Sort(out)
	return out
}

// Set stores value under key. Writing the current value is a no-op.
func (d *Document) Set(key string, value []byte) {
	if e, ok := d.entries[key]; ok && !e.Deleted && bytes.Equal(e.Value, value) {
		return
	}
	d.mutate()
	d.entries[key] = entry{Value: slices.Clone(value), SeqNo: d.seqno, Origin: d.origin}
}

// Delete removes key. Deleting a missing key is a no-op.
func (d *Document) Delete(key string) {
	if e, ok := d.entries[key]; !ok || e.Deleted {
		return
	}
	d.mutate()
	d.entries[key] = entry{SeqNo: d.seqno, Origin: d.origin, Deleted: true}
}

// mutate opens a new sequence number unless an unpushed one is already open.
func (d *Document) mutate() {
	if d.state != Dirty {
		d.seqno++
		d.state = Dirty
	}
	d.touch()
}

func (d *Document) touch() {
	d.generation++
}

// Push hands out the payload for the current sequence number and the hashes
// that payload supersedes. The document stays in NeedsPush until
// ConfirmPushed is called with the returned seqno.
func (d *Document) Push() (payload []byte, seqno int64, obsolete models.HashSet, err error) {
	if d.state == Clean {
		return nil, 0, nil, ErrNothingToPush
	}
	payload, err = json.Marshal(record{SeqNo: d.seqno, Entries: d.entries})
	if err != nil {
		return nil, 0, nil, fmt.Errorf("encode document: %w", err)
	}
	d.state = Pushed
	return payload, d.seqno, d.obsolete.Clone(), nil
}

// ConfirmPushed records that the payload for seqno was stored under hash.
// A confirmation for an older seqno keeps the document dirty and marks the
// stored record obsolete, since the pending state already supersedes it.
func (d *Document) ConfirmPushed(seqno int64, hash string) {
	defer d.touch()

	if seqno != d.seqno || d.state != Pushed {
		d.known.Add(hash)
		d.obsolete.Add(hash)
		return
	}
	d.state = Clean
	if d.currentHash != "" && d.currentHash != hash {
		d.obsolete.Add(d.currentHash)
	}
	d.currentHash = hash
	d.known.Add(hash)
	d.obsolete.Remove(hash)
}

// ConfirmDeleted forgets hashes the swarm no longer holds.
func (d *Document) ConfirmDeleted(hashes ...string) {
	changed := false
	for _, h := range hashes {
		if d.obsolete.Has(h) || d.known.Has(h) {
			changed = true
		}
		d.obsolete.Remove(h)
		d.known.Remove(h)
	}
	if changed {
		d.touch()
	}
}

// CurrentHash returns the hash of the record the clean state was last pushed
// or adopted from.
func (d *Document) CurrentHash() string {
	return d.currentHash
}

// KnownHashes returns every hash the document was built from or still wants
// deleted.
func (d *Document) KnownHashes() models.HashSet {
	s := d.known.Clone()
	s.Union(d.obsolete)
	return s
}

// ObsoleteHashes returns hashes superseded by the current state.
func (d *Document) ObsoleteHashes() models.HashSet {
	return d.obsolete.Clone()
}

// KeyGeneration returns the group key generation the document is encrypted
// for. Standard user documents report 0.
func (d *Document) KeyGeneration() int64 {
	return d.keyGeneration
}

// SetKeyGeneration stamps a newer key generation. With repush the document
// must be pushed again under the new key.
func (d *Document) SetKeyGeneration(gen int64, repush bool) {
	if gen <= d.keyGeneration {
		return
	}
	d.keyGeneration = gen
	if repush {
		d.mutate()
		return
	}
	d.touch()
}

// Merge folds remote records into the document. Malformed records and
// records whose hash is already known are skipped. Accepted hashes include
// known ones so callers can advance their retrieve cursor past them.
func (d *Document) Merge(records []models.IncomingRecord) (models.MergeResult, []error) {
	var (
		res   models.MergeResult
		errs  []error
		fresh []parsedRecord
	)
	seen := models.NewHashSet()
	for _, r := range records {
		if r.Hash != "" && (d.known.Has(r.Hash) || d.obsolete.Has(r.Hash) || seen.Has(r.Hash)) {
			res.AcceptedHashes = append(res.AcceptedHashes, r.Hash)
			continue
		}
		var rec record
		if err := json.Unmarshal(r.Payload, &rec); err != nil || rec.SeqNo < 0 {
			errs = append(errs, fmt.Errorf("%w: hash %q", ErrMalformedRecord, r.Hash))
			continue
		}
		if rec.Entries == nil {
			rec.Entries = map[string]entry{}
		}
		seen.Add(r.Hash)
		fresh = append(fresh, parsedRecord{hash: r.Hash, rec: rec})
		if r.Hash != "" {
			res.AcceptedHashes = append(res.AcceptedHashes, r.Hash)
		}
		res.LatestSentAtMs = max(res.LatestSentAtMs, r.SentAtMs)
	}
	if len(fresh) == 0 {
		res.NeedsPush = d.NeedsPush()
		res.NeedsDump = d.NeedsDump()
		return res, errs
	}

	wasClean := d.state == Clean
	merged := maps.Clone(d.entries)
	maxSeq := int64(0)
	for _, p := range fresh {
		maxSeq = max(maxSeq, p.rec.SeqNo)
		for k, e := range p.rec.Entries {
			if cur, ok := merged[k]; !ok || e.wins(cur) {
				merged[k] = e
			}
		}
	}
	changed := !sameEntries(merged, d.entries)
	d.entries = merged

	minCover := d.seqno
	if !changed {
		minCover++
	}
	cover, covered := coveringRecord(fresh, merged, minCover)
	switch {
	case wasClean && covered:
		d.adopt(cover, fresh)
	case changed:
		d.conflict(fresh, maxSeq)
	default:
		for _, p := range fresh {
			d.obsoleteRecord(p.hash)
		}
	}

	d.touch()
	res.NeedsPush = d.NeedsPush()
	res.NeedsDump = true
	return res, errs
}

type parsedRecord struct {
	hash string
	rec  record
}

// coveringRecord finds a record that alone represents the merged state with
// a sequence number of at least minSeq. The highest-hash record wins among
// equals so the choice does not depend on arrival order.
func coveringRecord(fresh []parsedRecord, merged map[string]entry, minSeq int64) (parsedRecord, bool) {
	var (
		best  parsedRecord
		found bool
	)
	for _, p := range fresh {
		if p.rec.SeqNo < minSeq || !sameEntries(p.rec.Entries, merged) {
			continue
		}
		if !found || p.rec.SeqNo > best.rec.SeqNo || (p.rec.SeqNo == best.rec.SeqNo && p.hash > best.hash) {
			best, found = p, true
		}
	}
	return best, found
}

func (d *Document) adopt(p parsedRecord, fresh []parsedRecord) {
	if d.currentHash != "" && d.currentHash != p.hash {
		d.obsolete.Add(d.currentHash)
	}
	for _, other := range fresh {
		if other.hash != p.hash {
			d.obsoleteRecord(other.hash)
		}
	}
	d.seqno = p.rec.SeqNo
	d.state = Clean
	d.currentHash = p.hash
	d.known.Add(p.hash)
	d.obsolete.Remove(p.hash)
}

// conflict leaves the document dirty with a sequence number newer than every
// merged record. The merged records become obsolete once the combined state
// is pushed, so they are offered for deletion alongside it.
func (d *Document) conflict(fresh []parsedRecord, maxSeq int64) {
	if d.state != Dirty || d.seqno <= maxSeq {
		d.seqno = max(d.seqno, maxSeq) + 1
	}
	d.state = Dirty
	for _, p := range fresh {
		d.obsoleteRecord(p.hash)
	}
}

func (d *Document) obsoleteRecord(hash string) {
	if hash == "" || hash == d.currentHash {
		return
	}
	d.known.Add(hash)
	d.obsolete.Add(hash)
}

func sameEntries(a, b map[string]entry) bool {
	return maps.EqualFunc(a, b, entry.equal)
}

// Dump serializes the full document state together with the generation it
// reflects. Pass the generation to MarkDumped once the bytes are durable.
func (d *Document) Dump() ([]byte, uint64, error) {
	b, err := json.Marshal(dump{
		Kind:          d.kind,
		SeqNo:         d.seqno,
		State:         d.state,
		Entries:       d.entries,
		CurrentHash:   d.currentHash,
		Known:         d.known,
		Obsolete:      d.obsolete,
		KeyGeneration: d.keyGeneration,
	})
	if err != nil {
		return nil, 0, fmt.Errorf("encode dump: %w", err)
	}
	return b, d.generation, nil
}

// MarkDumped records that the state at generation gen is persisted. A newer
// mutation since that Dump keeps NeedsDump true.
func (d *Document) MarkDumped(gen uint64) {
	if gen > d.dumped && gen <= d.generation {
		d.dumped = gen
	}
}
