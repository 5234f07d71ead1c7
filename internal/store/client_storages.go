// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package store

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/logger"
)

// ClientStorages groups the sync daemon's repositories.
type ClientStorages struct {
	DumpRepository DumpRepository

	db *DB
}

// NewClientStorages opens the local SQLite database at cfg.DB.DSN, applying
// migrations, and wires the repositories to it.
func NewClientStorages(ctx context.Context, cfg config.ClientStorage, clock clockwork.Clock, logger *logger.Logger) (*ClientStorages, error) {
	logger.Info().Str("func", "NewClientStorages").Msg("creating client storages...")

	db, err := NewConnectSQLite(ctx, cfg.DB, logger)
	if err != nil {
		return nil, fmt.Errorf("sqlite connection error: %w", err)
	}

	return &ClientStorages{
		DumpRepository: NewDumpRepository(db, clock, logger),
		db:             db,
	}, nil
}

func (s *ClientStorages) Close() error {
	return s.db.Close()
}

// NodeStorages groups the storage node's repositories.
type NodeStorages struct {
	MessageRepository MessageRepository

	db *DB
}

// NewNodeStorages connects to PostgreSQL at dsn, applying migrations.
func NewNodeStorages(ctx context.Context, dsn string, clock clockwork.Clock, logger *logger.Logger) (*NodeStorages, error) {
	logger.Info().Str("func", "NewNodeStorages").Msg("creating node storages...")

	db, err := NewConnectPostgres(ctx, dsn, logger)
	if err != nil {
		return nil, fmt.Errorf("postgres connection error: %w", err)
	}

	return &NodeStorages{
		MessageRepository: NewMessageRepository(db, clock, logger),
		db:                db,
	}, nil
}

func (s *NodeStorages) Close() error {
	return s.db.Close()
}
