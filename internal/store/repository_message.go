// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/models"
)

// DefaultRetrieveLimit caps a retrieve without an explicit limit.
const DefaultRetrieveLimit = 256

// messageRepository is the PostgreSQL-backed implementation of
// [MessageRepository]. Records are append-only per owner; the serial id
// orders them for cursor-based retrieval.
type messageRepository struct {
	*DB
	clock  clockwork.Clock
	logger *logger.Logger
}

// NewMessageRepository constructs a [MessageRepository] backed by db.
func NewMessageRepository(db *DB, clock clockwork.Clock, logger *logger.Logger) MessageRepository {
	return &messageRepository{
		DB:     db,
		clock:  clock,
		logger: logger,
	}
}

// Store implements [MessageRepository]. The (owner, hash) unique key makes
// a repeated store a no-op.
func (m *messageRepository) Store(ctx context.Context, owner models.SwarmPublicKey, msg models.StoredMessage) (bool, error) {
	log := logger.FromContext(ctx)

	query, args, err := buildInsertMessageQuery(owner, msg)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	var id int64
	err = m.QueryRowContext(ctx, query, args...).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows), isUniqueViolation(err):
		log.Debug().
			Str("func", "messageRepository.Store").
			Str("hash", msg.Hash).
			Msg("record already stored")
		return false, nil
	case err != nil:
		log.Err(err).
			Str("func", "messageRepository.Store").
			Str("owner", owner.Short()).
			Int("namespace", msg.Namespace).
			Bool("retryable", m.Retryable(err)).
			Msg("failed to store record")
		return false, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	return true, nil
}

// Retrieve implements [MessageRepository]. Expired records are never
// returned.
func (m *messageRepository) Retrieve(ctx context.Context, owner models.SwarmPublicKey, namespace int, lastHash string, limit int) ([]models.StoredMessage, bool, error) {
	if limit <= 0 {
		limit = DefaultRetrieveLimit
	}

	query, args, err := buildRetrieveMessagesQuery(owner, namespace, lastHash, limit, m.clock.Now().UnixMilli())
	if err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := m.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.Retrieve").
			Str("owner", owner.Short()).
			Int("namespace", namespace).
			Msg("failed to query records")
		return nil, false, fmt.Errorf("%w: %w", ErrExecutingQuery, err)
	}
	defer rows.Close()

	msgs := make([]models.StoredMessage, 0, limit)
	for rows.Next() {
		var msg models.StoredMessage
		if err = rows.Scan(&msg.Hash, &msg.Namespace, &msg.Data, &msg.TimestampMs, &msg.ExpiryMs); err != nil {
			return nil, false, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		msgs = append(msgs, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, false, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}

	if len(msgs) > limit {
		return msgs[:limit], true, nil
	}
	return msgs, false, nil
}

// Delete implements [MessageRepository]. Hashes that are not stored are
// silently skipped.
func (m *messageRepository) Delete(ctx context.Context, owner models.SwarmPublicKey, hashes []string) ([]string, error) {
	if len(hashes) == 0 {
		return nil, nil
	}

	query, args, err := buildDeleteMessagesQuery(owner, hashes)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrBuildingSQLQuery, err)
	}

	rows, err := m.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromContext(ctx).Err(err).
			Str("func", "messageRepository.Delete").
			Str("owner", owner.Short()).
			Int("hashes", len(hashes)).
			Msg("failed to delete records")
		return nil, fmt.Errorf("%w: %w", ErrExecutingStatement, err)
	}
	defer rows.Close()

	var deleted []string
	for rows.Next() {
		var h string
		if err = rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
		}
		deleted = append(deleted, h)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrScanningRows, err)
	}
	return deleted, nil
}
