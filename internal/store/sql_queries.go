// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	sq "github.com/Masterminds/squirrel"

	"github.com/session-foundation/config-sync/models"
)

const tableMessages = "messages"

var postgres = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func buildInsertMessageQuery(owner models.SwarmPublicKey, msg models.StoredMessage) (string, []any, error) {
	return postgres.Insert(tableMessages).
		Columns("owner", "namespace", "hash", "data", "timestamp_ms", "expiry_ms").
		Values(string(owner), msg.Namespace, msg.Hash, msg.Data, msg.TimestampMs, msg.ExpiryMs).
		Suffix("ON CONFLICT (owner, hash) DO NOTHING RETURNING id").
		ToSql()
}

// buildRetrieveMessagesQuery selects one row past limit so the caller can
// tell whether more remain. An unknown lastHash reads from the start.
func buildRetrieveMessagesQuery(owner models.SwarmPublicKey, namespace int, lastHash string, limit int, nowMs int64) (string, []any, error) {
	q := postgres.Select("hash", "namespace", "data", "timestamp_ms", "expiry_ms").
		From(tableMessages).
		Where(sq.Eq{"owner": string(owner), "namespace": namespace}).
		Where(sq.Gt{"expiry_ms": nowMs})

	if lastHash != "" {
		q = q.Where(sq.Expr(
			"id > COALESCE((SELECT id FROM messages WHERE owner = ? AND hash = ?), 0)",
			string(owner), lastHash,
		))
	}

	return q.OrderBy("id").Limit(uint64(limit) + 1).ToSql()
}

func buildDeleteMessagesQuery(owner models.SwarmPublicKey, hashes []string) (string, []any, error) {
	return postgres.Delete(tableMessages).
		Where(sq.Eq{"owner": string(owner), "hash": hashes}).
		Suffix("RETURNING hash").
		ToSql()
}
