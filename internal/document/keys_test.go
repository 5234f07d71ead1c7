// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/session-foundation/config-sync/models"
)

func groupDocs() (*Document, *Document) {
	return New(models.GroupInfo, "local"), New(models.GroupMembers, "local")
}

func TestKeys_RekeyRequiresInfoAndMembers(t *testing.T) {
	info, _ := groupDocs()
	err := NewKeys().Rekey(1, info, nil)
	assert.ErrorIs(t, err, ErrMissingDependencies)
}

func TestKeys_RekeyQueuesMessageAndRepushesGroupDocs(t *testing.T) {
	keys := NewKeys()
	info, members := groupDocs()

	require.NoError(t, keys.Rekey(1000, info, members))

	assert.True(t, keys.NeedsPush())
	assert.Equal(t, int64(1), keys.ActiveGeneration())
	assert.Equal(t, int64(1), info.KeyGeneration())
	assert.True(t, info.NeedsPush())
	assert.True(t, members.NeedsPush())

	_, gen, err := keys.Push()
	require.NoError(t, err)
	keys.ConfirmPushed(gen, "k1")
	assert.False(t, keys.NeedsPush())
	assert.Equal(t, models.NewHashSet("k1"), keys.KnownHashes())
}

func TestKeys_ConfirmForOlderGenerationKeepsPending(t *testing.T) {
	keys := NewKeys()
	info, members := groupDocs()
	require.NoError(t, keys.Rekey(1, info, members))
	_, first, _ := keys.Push()

	require.NoError(t, keys.Rekey(2, info, members))
	keys.ConfirmPushed(first, "k1")

	assert.True(t, keys.NeedsPush())
	_, gen, _ := keys.Push()
	assert.Equal(t, int64(2), gen)
}

func TestKeys_MergeAdoptsRemoteGeneration(t *testing.T) {
	admin := NewKeys()
	ai, am := groupDocs()
	require.NoError(t, admin.Rekey(1, ai, am))
	require.NoError(t, admin.Rekey(2, ai, am))
	msg, _, err := admin.Push()
	require.NoError(t, err)

	keys := NewKeys()
	info, members := groupDocs()
	res, errs := keys.Merge([]models.IncomingRecord{
		{Hash: "k2", Payload: msg, SentAtMs: 5},
		{Hash: "junk", Payload: []byte(`{"generation":0}`)},
	}, info, members)

	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], ErrMalformedRecord)
	assert.False(t, res.NeedsPush)
	assert.True(t, res.NeedsDump)
	assert.Equal(t, []string{"k2"}, res.AcceptedHashes)
	assert.Equal(t, int64(2), keys.ActiveGeneration())
	assert.Equal(t, int64(2), info.KeyGeneration())
	assert.False(t, info.NeedsPush(), "only the rekeying admin re-pushes group docs")
}

func TestKeys_DumpRoundTrip(t *testing.T) {
	keys := NewKeys()
	info, members := groupDocs()
	require.NoError(t, keys.Rekey(1, info, members))

	data, _, err := keys.Dump()
	require.NoError(t, err)
	restored, err := LoadKeys(data)
	require.NoError(t, err)

	assert.True(t, restored.NeedsPush())
	assert.Equal(t, keys.GroupKeys(), restored.GroupKeys())

	_, err = LoadKeys([]byte("nope"))
	assert.ErrorIs(t, err, ErrCorruptDump)
}

func TestKeys_ConcurrentRekeysConverge(t *testing.T) {
	pushRekey := func(nowMs int64) []byte {
		admin := NewKeys()
		info, members := groupDocs()
		require.NoError(t, admin.Rekey(nowMs, info, members))
		msg, gen, err := admin.Push()
		require.NoError(t, err)
		require.Equal(t, int64(1), gen)
		return msg
	}
	ra := models.IncomingRecord{Hash: "ka", Payload: pushRekey(10)}
	rb := models.IncomingRecord{Hash: "kb", Payload: pushRekey(10)}

	tests := []struct {
		name    string
		records []models.IncomingRecord
	}{
		{name: "a then b", records: []models.IncomingRecord{ra, rb}},
		{name: "b then a", records: []models.IncomingRecord{rb, ra}},
		{name: "separate merges", records: nil},
	}

	var rings [][]GroupKey
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			keys := NewKeys()
			info, members := groupDocs()
			if tt.records == nil {
				_, errs := keys.Merge([]models.IncomingRecord{rb}, info, members)
				require.Empty(t, errs)
				_, errs = keys.Merge([]models.IncomingRecord{ra}, info, members)
				require.Empty(t, errs)
			} else {
				_, errs := keys.Merge(tt.records, info, members)
				require.Empty(t, errs)
			}
			assert.Len(t, keys.GroupKeys(), 2)
			assert.Equal(t, int64(1), keys.ActiveGeneration())
			rings = append(rings, keys.GroupKeys())
		})
	}

	require.Len(t, rings, len(tests))
	for _, ring := range rings[1:] {
		assert.Equal(t, rings[0], ring)
	}
}

func TestKeys_MergeSameKeyTwice(t *testing.T) {
	admin := NewKeys()
	ai, am := groupDocs()
	require.NoError(t, admin.Rekey(1, ai, am))
	msg, _, err := admin.Push()
	require.NoError(t, err)

	keys := NewKeys()
	info, members := groupDocs()
	keys.Merge([]models.IncomingRecord{{Hash: "k1", Payload: msg}, {Hash: "k1-copy", Payload: msg}}, info, members)
	assert.Len(t, keys.GroupKeys(), 1)
}
