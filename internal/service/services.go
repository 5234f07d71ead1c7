// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/configstore"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

// ClientServices is the sync daemon's service graph.
type ClientServices struct {
	Configs *configstore.Store
	Sync    *SyncOrchestrator
	Poller  *ConfigPoller
	Config  ConfigService

	dumps store.DumpRepository
	log   *logger.Logger
}

// NewClientServices wires the services and registers the sync orchestrator
// with runner. Documents are empty until Bootstrap loads them.
func NewClientServices(
	dumps store.DumpRepository,
	swarmAdapter adapter.SwarmAdapter,
	identity crypto.IdentityProvider,
	observer connectivity.Observer,
	runner *workers.Runner,
	clock clockwork.Clock,
	cfg config.ClientWorkers,
	log *logger.Logger,
) *ClientServices {
	// each process run writes under its own origin
	configs := configstore.NewStore(utils.NewUUIDGenerator().Generate(), log)

	syncSvc := NewSyncOrchestrator(configs, dumps, swarmAdapter, identity, observer, runner, clock, cfg, log)
	runner.Register(models.KindConfigSync, syncSvc)

	return &ClientServices{
		Configs: configs,
		Sync:    syncSvc,
		Poller:  NewConfigPoller(configs, dumps, swarmAdapter, identity, observer, syncSvc, runner, clock, cfg.PollInterval, log),
		Config:  NewConfigService(configs, dumps, syncSvc, clock, log),
		dumps:   dumps,
		log:     log,
	}
}

// Bootstrap loads the persisted documents of the user's swarm and of every
// group swarm. A target whose dump is corrupt stays closed; the rest load
// normally.
func (c *ClientServices) Bootstrap(ctx context.Context, user models.SwarmPublicKey, groups []models.SwarmPublicKey) error {
	if err := c.LoadDumps(ctx, user, models.UserKinds()); err != nil {
		return err
	}
	for _, g := range groups {
		if err := c.LoadDumps(ctx, g, models.GroupKinds()); err != nil {
			return err
		}
	}
	return nil
}

// LoadDumps registers kinds of swarm from their persisted dumps.
func (c *ClientServices) LoadDumps(ctx context.Context, swarm models.SwarmPublicKey, kinds []models.DocumentKind) error {
	dumps, err := c.dumps.ReadDumps(ctx, swarm)
	if err != nil {
		return fmt.Errorf("read dumps of %s: %w", swarm.Short(), err)
	}

	err = c.Configs.LoadAll(swarm, kinds, dumps)
	if errors.Is(err, configstore.ErrTargetUnavailable) {
		c.log.Err(err).
			Str("func", "ClientServices.LoadDumps").
			Str("swarm", swarm.Short()).
			Msg("some config targets are unavailable")
		return nil
	}
	if err != nil {
		return err
	}

	c.log.Debug().
		Str("func", "ClientServices.LoadDumps").
		Str("swarm", swarm.Short()).
		Int("dumps", len(dumps)).
		Msg("config dumps loaded")
	return nil
}

// Workers returns the background loops of the service graph.
func (c *ClientServices) Workers() []workers.Worker {
	return []workers.Worker{c.Sync, c.Poller}
}
