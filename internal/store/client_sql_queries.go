// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/session-foundation/config-sync/models"
)

const (
	tableDumps     = "config_dumps"
	tableHashes    = "config_hashes"
	tableSyncState = "swarm_sync_state"
	tableCursors   = "poll_cursors"
)

// sqlite uses ? placeholders
var sqlite = sq.StatementBuilder.PlaceholderFormat(sq.Question)

func buildUpsertDumpQuery(dump models.ConfigDump, now time.Time) (string, []any, error) {
	return sqlite.Insert(tableDumps).
		Columns("kind", "owner", "data", "updated_at").
		Values(int(dump.Kind), string(dump.Owner), dump.Data, now.UnixMilli()).
		Suffix("ON CONFLICT (kind, owner) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at").
		ToSql()
}

func buildDeleteHashesQuery(target models.ConfigTarget) (string, []any, error) {
	return sqlite.Delete(tableHashes).
		Where(sq.Eq{"kind": int(target.Kind), "owner": string(target.Owner)}).
		ToSql()
}

// buildInsertHashesQuery returns an empty query for an empty set.
func buildInsertHashesQuery(target models.ConfigTarget, hashes models.HashSet) (string, []any, error) {
	if len(hashes) == 0 {
		return "", nil, nil
	}
	q := sqlite.Insert(tableHashes).Columns("kind", "owner", "hash")
	for _, h := range hashes.Sorted() {
		q = q.Values(int(target.Kind), string(target.Owner), h)
	}
	return q.Suffix("ON CONFLICT DO NOTHING").ToSql()
}

func buildSelectDumpsQuery(swarm models.SwarmPublicKey) (string, []any, error) {
	return sqlite.Select("kind", "data").
		From(tableDumps).
		Where(sq.Eq{"owner": string(swarm)}).
		OrderBy("kind").
		ToSql()
}

func buildSelectHashesQuery(swarm models.SwarmPublicKey) (string, []any, error) {
	return sqlite.Select("kind", "hash").
		From(tableHashes).
		Where(sq.Eq{"owner": string(swarm)}).
		ToSql()
}

func buildUpsertSyncStateQuery(swarm models.SwarmPublicKey, at time.Time) (string, []any, error) {
	return sqlite.Insert(tableSyncState).
		Columns("owner", "last_synced_at").
		Values(string(swarm), at.UnixMilli()).
		Suffix("ON CONFLICT (owner) DO UPDATE SET last_synced_at = excluded.last_synced_at").
		ToSql()
}

func buildSelectSyncStateQuery(swarm models.SwarmPublicKey) (string, []any, error) {
	return sqlite.Select("last_synced_at").
		From(tableSyncState).
		Where(sq.Eq{"owner": string(swarm)}).
		ToSql()
}

func buildUpsertCursorQuery(swarm models.SwarmPublicKey, namespace int, lastHash string) (string, []any, error) {
	return sqlite.Insert(tableCursors).
		Columns("owner", "namespace", "last_hash").
		Values(string(swarm), namespace, lastHash).
		Suffix("ON CONFLICT (owner, namespace) DO UPDATE SET last_hash = excluded.last_hash").
		ToSql()
}

func buildSelectCursorQuery(swarm models.SwarmPublicKey, namespace int) (string, []any, error) {
	return sqlite.Select("last_hash").
		From(tableCursors).
		Where(sq.Eq{"owner": string(swarm), "namespace": namespace}).
		ToSql()
}
