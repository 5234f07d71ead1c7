// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/configstore"
	"github.com/session-foundation/config-sync/internal/document"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/models"
)

type configService struct {
	configs *configstore.Store
	dumps   store.DumpRepository
	sync    ConfigSyncService
	clock   clockwork.Clock
	logger  *logger.Logger
}

// NewConfigService creates the local mutation service.
func NewConfigService(configs *configstore.Store, dumps store.DumpRepository, syncService ConfigSyncService, clock clockwork.Clock, log *logger.Logger) ConfigService {
	return &configService{
		configs: configs,
		dumps:   dumps,
		sync:    syncService,
		clock:   clock,
		logger:  log,
	}
}

func (c *configService) Get(target models.ConfigTarget, key string) ([]byte, bool, error) {
	if err := validateTarget(target); err != nil {
		return nil, false, err
	}
	return c.configs.Get(target, key)
}

func (c *configService) Set(ctx context.Context, target models.ConfigTarget, key string, value []byte) error {
	return c.mutate(ctx, target, func(doc *document.Document) {
		doc.Set(key, value)
	})
}

func (c *configService) Delete(ctx context.Context, target models.ConfigTarget, key string) error {
	return c.mutate(ctx, target, func(doc *document.Document) {
		doc.Delete(key)
	})
}

func (c *configService) Rekey(ctx context.Context, group models.SwarmPublicKey) error {
	if !group.Valid() {
		return fmt.Errorf("%w: bad group key", ErrInvalidTarget)
	}
	if err := c.configs.Rekey(group, c.clock.Now().UnixMilli()); err != nil {
		return fmt.Errorf("rekey group: %w", err)
	}

	prepared, err := c.configs.CreateDumps(group)
	if err != nil {
		return fmt.Errorf("create dumps: %w", err)
	}
	if err = c.save(ctx, prepared); err != nil {
		return err
	}

	c.logger.Info().
		Str("func", "configService.Rekey").
		Str("swarm", group.Short()).
		Msg("group rekeyed")
	c.scheduleSync(group)
	return nil
}

func (c *configService) mutate(ctx context.Context, target models.ConfigTarget, fn func(doc *document.Document)) error {
	if err := validateTarget(target); err != nil {
		return err
	}
	if err := c.configs.Mutate(target, func(doc *document.Document) error {
		fn(doc)
		return nil
	}); err != nil {
		return fmt.Errorf("mutate %s: %w", target, err)
	}

	prepared, err := c.configs.CreateDump(target)
	if err != nil {
		return fmt.Errorf("create dump: %w", err)
	}
	if prepared != nil {
		if err = c.save(ctx, []configstore.PreparedDump{*prepared}); err != nil {
			return err
		}
	}
	c.scheduleSync(target.Owner)
	return nil
}

func (c *configService) save(ctx context.Context, prepared []configstore.PreparedDump) error {
	if len(prepared) == 0 {
		return nil
	}
	dumps := make([]models.ConfigDump, len(prepared))
	for i, d := range prepared {
		dumps[i] = d.Dump
	}
	if err := c.dumps.WriteDumps(ctx, dumps); err != nil {
		return fmt.Errorf("write dumps: %w", err)
	}
	return c.configs.MarkAllDumped(prepared)
}

// scheduleSync asks for a push without waiting for it. The local change is
// already durable, so a failure to schedule is only logged.
func (c *configService) scheduleSync(swarm models.SwarmPublicKey) {
	if _, err := c.sync.ScheduleSync(swarm, nil); err != nil {
		c.logger.Warn().Err(err).
			Str("func", "configService.scheduleSync").
			Str("swarm", swarm.Short()).
			Msg("failed to schedule config sync")
	}
}

func validateTarget(target models.ConfigTarget) error {
	if !target.Kind.Valid() {
		return fmt.Errorf("%w: unknown kind %d", ErrInvalidTarget, int(target.Kind))
	}
	if !target.Owner.Valid() {
		return fmt.Errorf("%w: bad owner key", ErrInvalidTarget)
	}
	return nil
}
