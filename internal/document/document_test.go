// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/session-foundation/config-sync/models"
)

// pushed returns the payload a remote device would store after applying fn.
func pushed(t *testing.T, origin string, fn func(d *Document)) []byte {
	t.Helper()
	d := New(models.UserProfile, origin)
	fn(d)
	payload, _, _, err := d.Push()
	require.NoError(t, err)
	return payload
}

// ── local mutation ──

func TestDocument_SetOpensOneSeqNoUntilPushed(t *testing.T) {
	d := New(models.UserProfile, "local")
	assert.False(t, d.NeedsPush())

	d.Set("name", []byte("alice"))
	d.Set("avatar", []byte("url"))
	assert.Equal(t, int64(1), d.SeqNo())
	assert.Equal(t, Dirty, d.State())

	_, seq, _, err := d.Push()
	require.NoError(t, err)
	assert.Equal(t, int64(1), seq)
	assert.True(t, d.NeedsPush(), "in-flight push is still pending")

	d.Set("name", []byte("bob"))
	assert.Equal(t, int64(2), d.SeqNo())
}

func TestDocument_SetSameValueIsNoop(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("name", []byte("alice"))
	_, seq, _, _ := d.Push()
	d.ConfirmPushed(seq, "h1")
	require.False(t, d.NeedsPush())

	d.Set("name", []byte("alice"))
	d.Delete("missing")
	assert.False(t, d.NeedsPush())
	assert.Equal(t, int64(1), d.SeqNo())
}

func TestDocument_PushOnCleanDocument(t *testing.T) {
	_, _, _, err := New(models.Contacts, "local").Push()
	assert.ErrorIs(t, err, ErrNothingToPush)
}

func TestDocument_DeleteHidesKey(t *testing.T) {
	d := New(models.Contacts, "local")
	d.Set("a", []byte("1"))
	d.Set("b", []byte("2"))
	d.Delete("a")

	_, ok := d.Get("a")
	assert.False(t, ok)
	assert.Equal(t, []string{"b"}, d.Keys())
}

// ── push confirmation ──

func TestDocument_ConfirmPushed(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("name", []byte("alice"))
	_, seq, obsolete, err := d.Push()
	require.NoError(t, err)
	assert.Empty(t, obsolete)

	d.ConfirmPushed(seq, "h1")
	assert.False(t, d.NeedsPush())
	assert.Equal(t, "h1", d.CurrentHash())
	assert.Empty(t, d.ObsoleteHashes())

	d.Set("name", []byte("bob"))
	_, seq, _, _ = d.Push()
	d.ConfirmPushed(seq, "h2")
	assert.Equal(t, "h2", d.CurrentHash())
	assert.Equal(t, models.NewHashSet("h1"), d.ObsoleteHashes(), "previous record is superseded")
}

func TestDocument_StaleConfirmKeepsNewerChanges(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("name", []byte("alice"))
	_, first, _, _ := d.Push()

	d.Set("name", []byte("bob"))
	d.ConfirmPushed(first, "h1")

	assert.True(t, d.NeedsPush())
	assert.Equal(t, int64(2), d.SeqNo())
	assert.True(t, d.ObsoleteHashes().Has("h1"))

	_, second, obsolete, _ := d.Push()
	assert.Equal(t, int64(2), second)
	assert.True(t, obsolete.Has("h1"))
}

func TestDocument_SeqNoStrictlyIncreasesAcrossPushes(t *testing.T) {
	d := New(models.UserProfile, "local")
	var last int64
	for i := range 5 {
		d.Set("k", []byte{byte(i)})
		_, seq, _, err := d.Push()
		require.NoError(t, err)
		assert.Greater(t, seq, last)
		last = seq
		if i%2 == 0 {
			d.ConfirmPushed(seq, string(rune('a'+i)))
		}
	}
}

func TestDocument_ConfirmDeleted(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("k", []byte("1"))
	_, seq, _, _ := d.Push()
	d.ConfirmPushed(seq, "h1")
	d.Set("k", []byte("2"))
	_, seq, _, _ = d.Push()
	d.ConfirmPushed(seq, "h2")
	require.True(t, d.ObsoleteHashes().Has("h1"))

	d.ConfirmDeleted("h1", "unknown")
	assert.Empty(t, d.ObsoleteHashes())
	assert.Equal(t, models.NewHashSet("h2"), d.KnownHashes())
}

// ── merge ──

func TestDocument_MergeAdoptsCoveringRecords(t *testing.T) {
	r1 := pushed(t, "remote", func(d *Document) { d.Set("x", []byte("1")) })
	r2 := pushed(t, "remote", func(d *Document) {
		d.Set("x", []byte("1"))
		_, s, _, _ := d.Push()
		d.ConfirmPushed(s, "a")
		d.Set("y", []byte("2"))
	})

	d := New(models.UserProfile, "local")
	res, errs := d.Merge([]models.IncomingRecord{{Hash: "a", Payload: r1, SentAtMs: 10}})
	require.Empty(t, errs)
	assert.False(t, res.NeedsPush)
	assert.True(t, res.NeedsDump)
	assert.Equal(t, []string{"a"}, res.AcceptedHashes)

	res, errs = d.Merge([]models.IncomingRecord{{Hash: "b", Payload: r2, SentAtMs: 20}})
	require.Empty(t, errs)
	assert.False(t, res.NeedsPush)
	assert.Equal(t, int64(20), res.LatestSentAtMs)
	assert.Equal(t, "b", d.CurrentHash())
	assert.Equal(t, models.NewHashSet("a", "b"), d.KnownHashes())
	assert.Equal(t, models.NewHashSet("a"), d.ObsoleteHashes())
}

func TestDocument_MergeKnownHashIsNoop(t *testing.T) {
	r1 := pushed(t, "remote", func(d *Document) { d.Set("x", []byte("1")) })
	d := New(models.UserProfile, "local")
	_, _ = d.Merge([]models.IncomingRecord{{Hash: "a", Payload: r1}})
	data, gen, err := d.Dump()
	require.NoError(t, err)
	d.MarkDumped(gen)

	res, errs := d.Merge([]models.IncomingRecord{{Hash: "a", Payload: r1}, {Hash: "a", Payload: r1}})
	assert.Empty(t, errs)
	assert.False(t, res.NeedsDump)
	assert.Equal(t, []string{"a", "a"}, res.AcceptedHashes)

	after, _, _ := d.Dump()
	assert.Equal(t, data, after)
}

func TestDocument_MergeSkipsMalformedRecords(t *testing.T) {
	good := pushed(t, "remote", func(d *Document) { d.Set("x", []byte("1")) })
	d := New(models.UserProfile, "local")

	res, errs := d.Merge([]models.IncomingRecord{
		{Hash: "bad", Payload: []byte("not json")},
		{Hash: "good", Payload: good},
	})
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedRecord)
	assert.Equal(t, []string{"good"}, res.AcceptedHashes)
	v, ok := d.Get("x")
	assert.True(t, ok)
	assert.Equal(t, []byte("1"), v)
}

func TestDocument_MergeConflictNeedsPush(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("mine", []byte("1"))

	theirs := pushed(t, "remote", func(r *Document) { r.Set("theirs", []byte("2")) })
	res, errs := d.Merge([]models.IncomingRecord{{Hash: "r", Payload: theirs}})
	require.Empty(t, errs)

	assert.True(t, res.NeedsPush)
	assert.Equal(t, []string{"mine", "theirs"}, d.Keys())
	assert.Greater(t, d.SeqNo(), int64(1))
	assert.True(t, d.ObsoleteHashes().Has("r"))
}

func TestDocument_MergeIsOrderIndependent(t *testing.T) {
	r1 := pushed(t, "alpha", func(d *Document) { d.Set("a", []byte("1")) })
	r2 := pushed(t, "beta", func(d *Document) { d.Set("b", []byte("2")) })
	r3 := pushed(t, "gamma", func(d *Document) { d.Set("a", []byte("3")) })
	records := []models.IncomingRecord{
		{Hash: "h1", Payload: r1},
		{Hash: "h2", Payload: r2},
		{Hash: "h3", Payload: r3},
	}

	orders := [][]int{{0, 1, 2}, {2, 1, 0}, {1, 0, 2}}
	var payloads [][]byte
	for _, order := range orders {
		d := New(models.UserProfile, "local")
		for _, i := range order {
			_, errs := d.Merge([]models.IncomingRecord{records[i]})
			require.Empty(t, errs)
		}
		payload, _, _, err := d.Push()
		require.NoError(t, err)
		payloads = append(payloads, payload)
	}
	assert.Equal(t, payloads[0], payloads[1])
	assert.Equal(t, payloads[0], payloads[2])

	batched := New(models.UserProfile, "local")
	_, errs := batched.Merge(records)
	require.Empty(t, errs)
	payload, _, _, err := batched.Push()
	require.NoError(t, err)
	assert.Equal(t, payloads[0], payload)
}

// ── persistence ──

func TestDocument_DumpRoundTrip(t *testing.T) {
	d := New(models.ConvoInfoVolatile, "local")
	d.Set("k", []byte("1"))
	_, seq, _, _ := d.Push()
	d.ConfirmPushed(seq, "h1")
	d.Set("k", []byte("2"))
	_, _, _, _ = d.Push()

	data, _, err := d.Dump()
	require.NoError(t, err)

	restored, err := Load(models.ConvoInfoVolatile, "local", data)
	require.NoError(t, err)
	assert.Equal(t, Dirty, restored.State(), "in-flight push cannot survive a restart")
	assert.Equal(t, d.SeqNo(), restored.SeqNo())
	assert.Equal(t, "h1", restored.CurrentHash())
	assert.False(t, restored.NeedsDump())

	_, seq, _, _ = restored.Push()
	restored.ConfirmPushed(seq, "h2")
	assert.True(t, restored.ObsoleteHashes().Has("h1"))
}

func TestDocument_LoadRejectsBadDumps(t *testing.T) {
	_, err := Load(models.UserProfile, "local", []byte("{"))
	assert.ErrorIs(t, err, ErrCorruptDump)

	data, _, err := New(models.Contacts, "local").Dump()
	require.NoError(t, err)
	_, err = Load(models.UserProfile, "local", data)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestDocument_MarkDumpedIgnoresOlderGeneration(t *testing.T) {
	d := New(models.UserProfile, "local")
	d.Set("k", []byte("1"))
	_, gen, err := d.Dump()
	require.NoError(t, err)

	d.Set("k", []byte("2"))
	d.MarkDumped(gen)
	assert.True(t, d.NeedsDump())

	_, gen, _ = d.Dump()
	d.MarkDumped(gen)
	assert.False(t, d.NeedsDump())
}
