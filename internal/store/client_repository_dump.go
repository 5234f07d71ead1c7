// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/models"
)

// dumpRepository is the SQLite-backed implementation of [DumpRepository].
// A dump's hash set lives in its own table, one row per hash, so the
// combined set of a swarm is a single indexed query.
type dumpRepository struct {
	*DB
	clock  clockwork.Clock
	logger *logger.Logger
}

// NewDumpRepository constructs a [DumpRepository] backed by db.
func NewDumpRepository(db *DB, clock clockwork.Clock, logger *logger.Logger) DumpRepository {
	return &dumpRepository{
		DB:     db,
		clock:  clock,
		logger: logger,
	}
}

func (d *dumpRepository) ReadDumps(ctx context.Context, swarm models.SwarmPublicKey) ([]models.ConfigDump, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildSelectDumpsQuery(swarm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).
			Str("func", "dumpRepository.ReadDumps").
			Str("swarm", swarm.Short()).
			Msg("failed to query dumps")
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	var dumps []models.ConfigDump
	index := make(map[models.DocumentKind]int)
	for rows.Next() {
		var (
			k    int
			data []byte
		)
		if err = rows.Scan(&k, &data); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		index[models.DocumentKind(k)] = len(dumps)
		dumps = append(dumps, models.ConfigDump{
			Kind:                    models.DocumentKind(k),
			Owner:                   swarm,
			Data:                    data,
			AssociatedMessageHashes: models.NewHashSet(),
		})
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	if len(dumps) == 0 {
		return nil, nil
	}

	hashes, err := d.selectHashes(ctx, swarm)
	if err != nil {
		return nil, err
	}
	for k, set := range hashes {
		if i, ok := index[k]; ok {
			dumps[i].AssociatedMessageHashes = set
		}
	}
	return dumps, nil
}

func (d *dumpRepository) selectHashes(ctx context.Context, swarm models.SwarmPublicKey) (map[models.DocumentKind]models.HashSet, error) {
	query, args, err := buildSelectHashesQuery(swarm)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := d.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	out := make(map[models.DocumentKind]models.HashSet)
	for rows.Next() {
		var (
			k    int
			hash string
		)
		if err = rows.Scan(&k, &hash); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		set, ok := out[models.DocumentKind(k)]
		if !ok {
			set = models.NewHashSet()
			out[models.DocumentKind(k)] = set
		}
		set.Add(hash)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return out, nil
}

func (d *dumpRepository) WriteDumps(ctx context.Context, dumps []models.ConfigDump) error {
	if len(dumps) == 0 {
		return nil
	}
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return d.writeDumps(ctx, tx, dumps)
	})
}

func (d *dumpRepository) writeDumps(ctx context.Context, tx *sql.Tx, dumps []models.ConfigDump) error {
	log := logger.FromContext(ctx)
	now := d.clock.Now()

	for _, dump := range dumps {
		if !dump.Kind.Valid() || dump.Owner == "" {
			return fmt.Errorf("%w: %s", ErrInvalidDump, dump.Target())
		}

		query, args, err := buildUpsertDumpQuery(dump, now)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			log.Err(err).
				Str("func", "dumpRepository.writeDumps").
				Stringer("target", dump.Target()).
				Msg("failed to upsert dump")
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}

		if err = replaceHashes(ctx, tx, dump.Target(), dump.AssociatedMessageHashes); err != nil {
			log.Err(err).
				Str("func", "dumpRepository.writeDumps").
				Stringer("target", dump.Target()).
				Msg("failed to replace dump hashes")
			return err
		}
	}

	log.Debug().
		Str("func", "dumpRepository.writeDumps").
		Int("dumps", len(dumps)).
		Msg("dumps written")
	return nil
}

func replaceHashes(ctx context.Context, tx *sql.Tx, target models.ConfigTarget, hashes models.HashSet) error {
	query, args, err := buildDeleteHashesQuery(target)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}

	query, args, err = buildInsertHashesQuery(target, hashes)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}
	if query == "" {
		return nil
	}
	if _, err = tx.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return nil
}

func (d *dumpRepository) FetchCombinedHashSet(ctx context.Context, swarm models.SwarmPublicKey) (models.HashSet, error) {
	perKind, err := d.selectHashes(ctx, swarm)
	if err != nil {
		return nil, err
	}
	combined := models.NewHashSet()
	for _, set := range perKind {
		combined.Union(set)
	}
	return combined, nil
}

func (d *dumpRepository) UpdateCombinedHashSet(ctx context.Context, target models.ConfigTarget, hashes models.HashSet) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		return replaceHashes(ctx, tx, target, hashes)
	})
}

func (d *dumpRepository) SaveSyncResult(ctx context.Context, result models.SyncBookkeeping) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if err := d.writeDumps(ctx, tx, result.Dumps); err != nil {
			return err
		}

		query, args, err := buildUpsertSyncStateQuery(result.Swarm, result.SyncedAt)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
		}
		return nil
	})
}

func (d *dumpRepository) LastSyncedAt(ctx context.Context, swarm models.SwarmPublicKey) (time.Time, bool, error) {
	query, args, err := buildSelectSyncStateQuery(swarm)
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var ms int64
	err = d.QueryRowContext(ctx, query, args...).Scan(&ms)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return time.UnixMilli(ms), true, nil
}

func (d *dumpRepository) SavePollResult(ctx context.Context, result models.PollBookkeeping) error {
	return d.withTx(ctx, func(tx *sql.Tx) error {
		if err := d.writeDumps(ctx, tx, result.Dumps); err != nil {
			return err
		}

		for _, namespace := range slices.Sorted(maps.Keys(result.LastHashes)) {
			hash := result.LastHashes[namespace]
			if hash == "" {
				continue
			}
			query, args, err := buildUpsertCursorQuery(result.Swarm, namespace, hash)
			if err != nil {
				return fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
			}
			if _, err = tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("%w: %w", ErrExecutingStatement, err)
			}
		}
		return nil
	})
}

func (d *dumpRepository) LastHash(ctx context.Context, swarm models.SwarmPublicKey, namespace int) (string, error) {
	query, args, err := buildSelectCursorQuery(swarm, namespace)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var hash string
	err = d.QueryRowContext(ctx, query, args...).Scan(&hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	return hash, nil
}
