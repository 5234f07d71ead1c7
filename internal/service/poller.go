// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/configstore"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/models"
)

const (
	defaultPollInterval = 30 * time.Second
	retrieveLimit       = 100
)

// ConfigPoller fetches new records of every loaded swarm and merges them
// into the config store.
type ConfigPoller struct {
	configs  *configstore.Store
	dumps    store.DumpRepository
	adapter  adapter.SwarmAdapter
	identity crypto.IdentityProvider
	observer connectivity.Observer
	sync     ConfigSyncService
	runner   JobRunner
	clock    clockwork.Clock
	interval time.Duration
	logger   *logger.Logger
}

// NewConfigPoller creates a poller running every interval. If interval is
// zero or negative it defaults to 30 seconds.
func NewConfigPoller(
	configs *configstore.Store,
	dumps store.DumpRepository,
	swarmAdapter adapter.SwarmAdapter,
	identity crypto.IdentityProvider,
	observer connectivity.Observer,
	syncService ConfigSyncService,
	runner JobRunner,
	clock clockwork.Clock,
	interval time.Duration,
	log *logger.Logger,
) *ConfigPoller {
	if interval <= 0 {
		interval = defaultPollInterval
	}
	return &ConfigPoller{
		configs:  configs,
		dumps:    dumps,
		adapter:  swarmAdapter,
		identity: identity,
		observer: observer,
		sync:     syncService,
		runner:   runner,
		clock:    clock,
		interval: interval,
		logger:   log,
	}
}

// Run implements [workers.Worker]. It polls once right away and then on
// every tick until ctx is done.
func (p *ConfigPoller) Run(ctx context.Context) error {
	ticker := p.clock.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		p.PollAll(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.Chan():
		}
	}
}

// PollAll polls every loaded swarm. Nothing is fetched while the swarm is
// known to be unreachable.
func (p *ConfigPoller) PollAll(ctx context.Context) {
	if p.observer.State() == connectivity.Offline {
		p.logger.Debug().Str("func", "ConfigPoller.PollAll").Msg("offline, skipping poll")
		return
	}

	for _, swarm := range p.configs.Swarms() {
		if err := p.PollSwarm(ctx, swarm); err != nil {
			if ctx.Err() != nil {
				return
			}
			p.logger.Warn().Err(err).
				Str("func", "ConfigPoller.PollAll").
				Str("swarm", swarm.Short()).
				Msg("poll failed")
		}
	}
}

// PollSwarm fetches the records of every namespace of swarm added since the
// last poll, merges them and persists the result. Records whose hash is
// already tracked, in memory or in the persisted hash sets, are dropped
// before the merge. The merged dumps and the new last hashes are written in
// one transaction; a namespace whose records could not be merged keeps its
// old last hash. A sync is scheduled when the merge left local changes to
// push.
func (p *ConfigPoller) PollSwarm(ctx context.Context, swarm models.SwarmPublicKey) error {
	auth, err := p.identity.AuthenticationMethod(swarm)
	if err != nil {
		return err
	}

	persisted, err := p.dumps.FetchCombinedHashSet(ctx, swarm)
	if err != nil {
		return fmt.Errorf("fetch hash set: %w", err)
	}
	tracker := p.configs.Tracker()
	tracker.Seed(swarm, persisted)

	byKind := make(map[models.DocumentKind][]models.IncomingRecord)
	fetched := make(map[models.DocumentKind]string)
	lastHashes := make(map[int]string)
	for _, target := range p.configs.Targets(swarm) {
		records, last, err := p.fetch(ctx, auth, target.Kind.Namespace())
		if err != nil {
			return fmt.Errorf("retrieve %s: %w", target, err)
		}
		if len(records) == 0 {
			continue
		}

		fresh := records[:0]
		for _, r := range records {
			if r.Hash == "" || !tracker.Seen(swarm, r.Hash) {
				fresh = append(fresh, r)
			}
		}
		if len(fresh) == 0 {
			lastHashes[target.Kind.Namespace()] = last
			continue
		}
		byKind[target.Kind] = fresh
		fetched[target.Kind] = last
	}

	if len(byKind) == 0 {
		if len(lastHashes) == 0 {
			return nil
		}
		if err = p.dumps.SavePollResult(ctx, models.PollBookkeeping{Swarm: swarm, LastHashes: lastHashes}); err != nil {
			return fmt.Errorf("save poll result: %w", err)
		}
		return nil
	}

	if err = p.awaitSync(ctx, swarm); err != nil {
		return err
	}

	results, err := p.configs.MergeSwarm(swarm, byKind)
	if err != nil {
		p.logger.Warn().Err(err).
			Str("func", "ConfigPoller.PollSwarm").
			Str("swarm", swarm.Short()).
			Msg("some records could not be merged")
	}

	needsPush := false
	for kind, res := range results {
		lastHashes[kind.Namespace()] = fetched[kind]
		needsPush = needsPush || res.NeedsPush
	}

	prepared, err := p.configs.CreateDumps(swarm)
	if err != nil {
		return fmt.Errorf("create dumps: %w", err)
	}
	dumps := make([]models.ConfigDump, len(prepared))
	for i, d := range prepared {
		dumps[i] = d.Dump
	}
	if err = p.dumps.SavePollResult(ctx, models.PollBookkeeping{
		Swarm:      swarm,
		Dumps:      dumps,
		LastHashes: lastHashes,
	}); err != nil {
		return fmt.Errorf("save poll result: %w", err)
	}
	if err = p.configs.MarkAllDumped(prepared); err != nil {
		return err
	}

	if needsPush {
		if _, err = p.sync.ScheduleSync(swarm, nil); err != nil {
			return fmt.Errorf("schedule sync: %w", err)
		}
	}
	return nil
}

// awaitSync waits for a running sync of swarm to release it. The records
// that run stores are confirmed only when it finishes; merging them earlier
// would read them as a conflicting remote change.
func (p *ConfigPoller) awaitSync(ctx context.Context, swarm models.SwarmPublicKey) error {
	if _, running := p.runner.FirstRunning(models.KindConfigSync, swarm, math.MaxUint64); !running {
		return nil
	}
	released := p.runner.Subscribe(models.DependencyToken{Kind: models.KindConfigSync, Swarm: swarm})
	if _, running := p.runner.FirstRunning(models.KindConfigSync, swarm, math.MaxUint64); !running {
		return nil
	}

	p.logger.Debug().
		Str("func", "ConfigPoller.awaitSync").
		Str("swarm", swarm.Short()).
		Msg("waiting for running config sync")
	select {
	case <-released:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// fetch pages through one namespace starting after its last seen hash.
func (p *ConfigPoller) fetch(ctx context.Context, auth *crypto.AuthenticationMethod, namespace int) ([]models.IncomingRecord, string, error) {
	lastHash, err := p.dumps.LastHash(ctx, auth.Swarm(), namespace)
	if err != nil {
		return nil, "", err
	}

	var records []models.IncomingRecord
	for {
		req := models.SwarmRequest{
			Method: models.MethodRetrieve,
			Retrieve: &models.RetrieveParams{
				Namespace: namespace,
				LastHash:  lastHash,
				Limit:     retrieveLimit,
			},
		}
		auth.Sign(&req, p.clock.Now().UnixMilli())

		res, err := p.adapter.Retrieve(ctx, req)
		if err != nil {
			return nil, "", err
		}
		for _, m := range res.Messages {
			records = append(records, models.IncomingRecord{
				Hash:     m.Hash,
				Payload:  m.Data,
				SentAtMs: m.TimestampMs,
			})
			lastHash = m.Hash
		}
		if !res.More || len(res.Messages) == 0 {
			return records, lastHash, nil
		}
	}
}
