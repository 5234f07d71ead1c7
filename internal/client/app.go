// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/service"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/internal/tui"
	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

// App is the sync daemon.
type App struct {
	identity  *crypto.Identity
	storages  *store.ClientStorages
	runner    *workers.Runner
	monitor   *connectivity.Monitor
	services  *service.ClientServices
	clock     clockwork.Clock
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

// NewApp opens the local store and builds the service graph from cfg.
func NewApp(ctx context.Context, cfg *config.ClientConfig, buildInfo models.AppBuildInfo, log *logger.Logger) (*App, error) {
	clock := clockwork.NewRealClock()

	identity, err := crypto.NewIdentity(cfg.App.IdentitySeed, cfg.App.GroupSeeds...)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	swarmAdapter, err := adapter.NewHTTPSwarmAdapter(cfg.Adapter, cfg.App, log)
	if err != nil {
		return nil, fmt.Errorf("create swarm adapter: %w", err)
	}

	storages, err := store.NewClientStorages(ctx, cfg.Storage, clock, log)
	if err != nil {
		return nil, fmt.Errorf("create local storage: %w", err)
	}

	runner := workers.NewRunner(clock, workers.RetryPolicy{
		MaxRetries: cfg.Workers.MaxRetries,
		BaseDelay:  cfg.Workers.RetryBaseDelay,
	}, log)
	monitor := connectivity.NewMonitor(swarmAdapter, cfg.Workers.ConnectivityInterval, clock, log)
	services := service.NewClientServices(storages.DumpRepository, swarmAdapter, identity, monitor, runner, clock, cfg.Workers, log)

	return &App{
		identity:  identity,
		storages:  storages,
		runner:    runner,
		monitor:   monitor,
		services:  services,
		clock:     clock,
		buildInfo: buildInfo,
		logger:    log,
	}, nil
}

// Run implements [Client]. Swarms with changes left over from an earlier run
// get a sync scheduled right away.
func (a *App) Run(ctx context.Context) error {
	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	for _, swarm := range a.services.Configs.Swarms() {
		if a.services.Sync.PendingChangeCount(swarm) == 0 {
			continue
		}
		if _, err := a.services.Sync.ScheduleSync(swarm, nil); err != nil {
			a.logger.Warn().Err(err).
				Str("func", "*App.Run").
				Str("swarm", swarm.Short()).
				Msg("failed to schedule startup sync")
		}
	}

	a.logger.Info().
		Str("func", "*App.Run").
		Str("swarm", a.identity.UserSwarm().Short()).
		Int("groups", len(a.identity.GroupSwarms())).
		Msg("sync daemon started")

	ws := append([]workers.Worker{a.runner, a.monitor}, a.services.Workers()...)
	err := workers.NewWorkers(ws...).Run(ctx)
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Status implements [Client].
func (a *App) Status(ctx context.Context, w io.Writer) error {
	if err := a.bootstrap(ctx); err != nil {
		return err
	}

	var rows []tui.TargetStatus
	for _, swarm := range a.swarms() {
		syncedAt, _, err := a.storages.DumpRepository.LastSyncedAt(ctx, swarm)
		if err != nil {
			return fmt.Errorf("read last sync of %s: %w", swarm.Short(), err)
		}
		for _, target := range a.services.Configs.Targets(swarm) {
			e, ok := a.services.Configs.Entry(target)
			if !ok {
				continue
			}
			rows = append(rows, tui.TargetStatus{
				Target:     target,
				NeedsPush:  e.NeedsPush(),
				LastSynced: syncedAt,
				LastError:  e.LastError(),
			})
		}
	}

	_, err := fmt.Fprintln(w, tui.RenderStatus(a.buildInfo, rows, a.clock.Now()))
	return err
}

// Close implements [Client].
func (a *App) Close() error {
	return a.storages.Close()
}

func (a *App) bootstrap(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := a.services.Bootstrap(ctx, a.identity.UserSwarm(), a.identity.GroupSwarms()); err != nil {
		return fmt.Errorf("bootstrap: %w", err)
	}
	return nil
}

// swarms lists the user's swarm first, then every group swarm.
func (a *App) swarms() []models.SwarmPublicKey {
	return append([]models.SwarmPublicKey{a.identity.UserSwarm()}, a.identity.GroupSwarms()...)
}
