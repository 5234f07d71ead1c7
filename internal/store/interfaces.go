// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package store implements durable storage: the sync daemon's local SQLite
// database of config dumps and bookkeeping, and the storage node's
// PostgreSQL message table.
//
// Every multi-row write runs in a single transaction so a crash never
// leaves a dump without the hashes it depends on.
package store

import (
	"context"
	"time"

	"github.com/session-foundation/config-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/store_mock.go -package=mock

// DumpRepository persists config dumps and sync bookkeeping on the client.
type DumpRepository interface {
	// ReadDumps returns every persisted dump of swarm.
	ReadDumps(ctx context.Context, swarm models.SwarmPublicKey) ([]models.ConfigDump, error)

	// WriteDumps overwrites the given dumps and their hash sets.
	WriteDumps(ctx context.Context, dumps []models.ConfigDump) error

	// FetchCombinedHashSet returns the union of the hash sets of all of
	// swarm's dumps.
	FetchCombinedHashSet(ctx context.Context, swarm models.SwarmPublicKey) (models.HashSet, error)

	// UpdateCombinedHashSet replaces the hash set of target without touching
	// its data.
	UpdateCombinedHashSet(ctx context.Context, target models.ConfigTarget, hashes models.HashSet) error

	// SaveSyncResult writes a sync run's dumps and its completion time.
	SaveSyncResult(ctx context.Context, result models.SyncBookkeeping) error

	// LastSyncedAt returns when swarm last completed a sync run.
	LastSyncedAt(ctx context.Context, swarm models.SwarmPublicKey) (time.Time, bool, error)

	// SavePollResult writes a poll cycle's dumps and last seen hashes.
	SavePollResult(ctx context.Context, result models.PollBookkeeping) error

	// LastHash returns the newest record hash seen in a swarm namespace.
	LastHash(ctx context.Context, swarm models.SwarmPublicKey, namespace int) (string, error)
}

// MessageRepository stores swarm records on a storage node.
type MessageRepository interface {
	// Store saves a record and returns whether it was new. Storing the same
	// record twice is not an error.
	Store(ctx context.Context, owner models.SwarmPublicKey, msg models.StoredMessage) (bool, error)

	// Retrieve returns up to limit records of a namespace stored after the
	// record lastHash, oldest first, and whether more remain.
	Retrieve(ctx context.Context, owner models.SwarmPublicKey, namespace int, lastHash string, limit int) ([]models.StoredMessage, bool, error)

	// Delete removes records by hash and returns the hashes that existed.
	Delete(ctx context.Context, owner models.SwarmPublicKey, hashes []string) ([]string, error)
}
