// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/configstore"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

// recordTTL is how long the swarm keeps a pushed config record.
const recordTTL = 30 * 24 * time.Hour

// SyncDetails is the job payload of a config sync run.
type SyncDetails struct {
	Extras *models.AdditionalRequests
}

// SyncOrchestrator runs config sync jobs. It is the [workers.Executor] of
// [models.KindConfigSync] and a [workers.Worker] watching connectivity for
// swarms whose last run failed offline.
//
// At most one batch per swarm is in flight: a run first waits for every
// earlier running job of its swarm, then for the throttle window measured
// from the previous run's completion.
type SyncOrchestrator struct {
	configs  *configstore.Store
	dumps    store.DumpRepository
	adapter  adapter.SwarmAdapter
	identity crypto.IdentityProvider
	observer connectivity.Observer
	runner   JobRunner
	clock    clockwork.Clock
	cfg      config.ClientWorkers
	logger   *logger.Logger

	mu        sync.Mutex
	completed map[models.SwarmPublicKey]time.Time
	offline   map[models.SwarmPublicKey]struct{}
}

func NewSyncOrchestrator(
	configs *configstore.Store,
	dumps store.DumpRepository,
	swarmAdapter adapter.SwarmAdapter,
	identity crypto.IdentityProvider,
	observer connectivity.Observer,
	runner JobRunner,
	clock clockwork.Clock,
	cfg config.ClientWorkers,
	log *logger.Logger,
) *SyncOrchestrator {
	return &SyncOrchestrator{
		configs:   configs,
		dumps:     dumps,
		adapter:   swarmAdapter,
		identity:  identity,
		observer:  observer,
		runner:    runner,
		clock:     clock,
		cfg:       cfg,
		logger:    log,
		completed: make(map[models.SwarmPublicKey]time.Time),
		offline:   make(map[models.SwarmPublicKey]struct{}),
	}
}

// RequestSync implements [ConfigSyncService].
func (s *SyncOrchestrator) RequestSync(ctx context.Context, swarm models.SwarmPublicKey, extras *models.AdditionalRequests) error {
	h, err := s.ScheduleSync(swarm, extras)
	if err != nil {
		return err
	}

	status, err := s.runner.Result(ctx, h)
	switch {
	case status == models.JobSucceeded, status == models.JobDeferred:
		return nil
	case err != nil:
		return err
	}
	return fmt.Errorf("%w: job %s", ErrSyncFailed, status)
}

// ScheduleSync implements [ConfigSyncService]. A plain request joins the
// first queued run of swarm; a request with extras always gets a run of
// its own.
func (s *SyncOrchestrator) ScheduleSync(swarm models.SwarmPublicKey, extras *models.AdditionalRequests) (workers.JobHandle, error) {
	if _, err := s.identity.AuthenticationMethod(swarm); err != nil {
		return workers.JobHandle{}, err
	}

	if extras.Empty() {
		if queued := s.runner.Queued(models.KindConfigSync, swarm); len(queued) > 0 {
			return queued[0].Handle, nil
		}
		extras = nil
	}

	runAt := s.clock.Now()
	if next, throttled := s.throttledUntil(swarm); throttled {
		runAt = next.Add(s.stagger(swarm))
	}

	h := s.runner.Enqueue(models.KindConfigSync, swarm,
		workers.WithRunAt(runAt),
		workers.WithDetails(SyncDetails{Extras: extras}),
	)
	s.logger.Debug().
		Str("func", "SyncOrchestrator.ScheduleSync").
		Str("swarm", swarm.Short()).
		Stringer("job", h).
		Time("run_at", runAt).
		Msg("config sync scheduled")
	return h, nil
}

// PendingChangeCount implements [ConfigSyncService].
func (s *SyncOrchestrator) PendingChangeCount(swarm models.SwarmPublicKey) int {
	return s.configs.PendingChangeCount(swarm)
}

// Execute implements [workers.Executor].
func (s *SyncOrchestrator) Execute(ctx context.Context, job *workers.Job) error {
	log := s.logger.With().
		Str("func", "SyncOrchestrator.Execute").
		Str("job_id", job.ID).
		Str("swarm", job.Swarm.Short()).
		Logger()

	waited, err := s.awaitInFlight(ctx, job)
	if err != nil {
		return err
	}
	defer s.release(job.Swarm)

	if err = s.awaitThrottle(ctx, job.Swarm); err != nil {
		return err
	}

	details, _ := job.Details.(SyncDetails)
	pushes, err := s.configs.PendingPushes(job.Swarm)
	if err != nil {
		return workers.Permanent(fmt.Errorf("collect pending pushes: %w", err))
	}

	if len(pushes) == 0 && details.Extras.Empty() {
		log.Debug().Bool("waited", waited).Msg("nothing to push")
		if _, err = s.persist(ctx, job.Swarm, false); err != nil {
			return err
		}
		if waited {
			return workers.Deferred(ErrCoalesced)
		}
		return nil
	}

	auth, err := s.identity.AuthenticationMethod(job.Swarm)
	if err != nil {
		return workers.Permanent(err)
	}

	batch := s.buildBatch(auth, pushes, details.Extras)
	if n := len(batch.requests); n > models.MaxBatchRequests {
		return workers.Permanent(fmt.Errorf("%w: %d > %d requests", ErrBatchTooLarge, n, models.MaxBatchRequests))
	}
	responses, err := s.adapter.SendBatch(ctx, job.Swarm, batch.requests)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		state := s.observer.State()
		if state == connectivity.Offline {
			s.watchOffline(job.Swarm)
		}
		log.Warn().Err(err).Stringer("connectivity", state).Msg("batch request failed")
		return classifyBatchError(err, state)
	}

	pruned, err := s.applyResponses(job.Swarm, batch, responses, details.Extras)
	if err != nil {
		return err
	}
	written, err := s.persist(ctx, job.Swarm, true)
	if err != nil {
		return err
	}
	s.prunePersistedHashes(ctx, pruned, written)

	log.Info().
		Int("pushed", len(pushes)).
		Int("obsolete", len(batch.obsolete)).
		Msg("config sync completed")
	s.finish(job.Swarm)
	return nil
}

// awaitInFlight waits until no earlier run of the job's swarm is running and
// reports whether there was one.
func (s *SyncOrchestrator) awaitInFlight(ctx context.Context, job *workers.Job) (bool, error) {
	waited := false
	for {
		h, ok := s.runner.FirstRunning(models.KindConfigSync, job.Swarm, job.Seq)
		if !ok {
			return waited, nil
		}
		waited = true
		_, _ = s.runner.Result(ctx, h)
		if err := ctx.Err(); err != nil {
			return waited, err
		}
	}
}

func (s *SyncOrchestrator) awaitThrottle(ctx context.Context, swarm models.SwarmPublicKey) error {
	next, throttled := s.throttledUntil(swarm)
	if !throttled {
		return nil
	}
	select {
	case <-s.clock.After(next.Sub(s.clock.Now())):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// throttledUntil returns the end of swarm's throttle window if it is still
// open.
func (s *SyncOrchestrator) throttledUntil(swarm models.SwarmPublicKey) (time.Time, bool) {
	s.mu.Lock()
	last, ok := s.completed[swarm]
	s.mu.Unlock()
	if !ok {
		return time.Time{}, false
	}
	next := last.Add(s.cfg.ThrottleInterval)
	return next, s.clock.Now().Before(next)
}

// stagger spreads throttled runs of different swarms apart.
func (s *SyncOrchestrator) stagger(swarm models.SwarmPublicKey) time.Duration {
	i := slices.Index(s.configs.Swarms(), swarm)
	if i < 0 {
		return 0
	}
	return time.Duration(i) * s.cfg.TargetStagger
}

// syncBatch is one network exchange and the positions of its parts.
type syncBatch struct {
	requests []models.SwarmRequest
	pushes   []models.PendingPush
	storeAt  int
	deleteAt int
	obsolete []string
}

func (s *SyncOrchestrator) buildBatch(auth *crypto.AuthenticationMethod, pushes []models.PendingPush, extras *models.AdditionalRequests) syncBatch {
	now := s.clock.Now().UnixMilli()
	b := syncBatch{pushes: pushes, deleteAt: -1}

	if extras != nil {
		b.requests = append(b.requests, signAll(auth, extras.Before, now)...)
	}

	b.storeAt = len(b.requests)
	obsolete := models.NewHashSet()
	for _, p := range pushes {
		req := models.SwarmRequest{
			Method: models.MethodStore,
			Store: &models.StoreParams{
				Namespace: p.Target.Kind.Namespace(),
				Data:      p.Payload,
				TTLMs:     recordTTL.Milliseconds(),
			},
		}
		auth.Sign(&req, now)
		b.requests = append(b.requests, req)
		obsolete.Union(p.ObsoleteHashes)
	}

	if len(obsolete) > 0 {
		b.obsolete = obsolete.Sorted()
		req := models.SwarmRequest{
			Method: models.MethodDelete,
			Delete: &models.DeleteParams{Hashes: b.obsolete},
		}
		auth.Sign(&req, now)
		b.deleteAt = len(b.requests)
		b.requests = append(b.requests, req)
	}

	if extras != nil {
		b.requests = append(b.requests, signAll(auth, extras.After, now)...)
	}
	return b
}

// signAll signs the requests that arrive unsigned.
func signAll(auth *crypto.AuthenticationMethod, reqs []models.SwarmRequest, now int64) []models.SwarmRequest {
	out := make([]models.SwarmRequest, len(reqs))
	for i, r := range reqs {
		if r.Signature == "" {
			auth.Sign(&r, now)
		}
		out[i] = r
	}
	return out
}

// applyResponses confirms stored payloads and deleted records. A store
// that did not succeed leaves its change pending for the next run. It
// returns the targets that tracked a deleted record.
func (s *SyncOrchestrator) applyResponses(swarm models.SwarmPublicKey, b syncBatch, responses []models.SwarmResponse, extras *models.AdditionalRequests) ([]models.ConfigTarget, error) {
	if len(responses) != len(b.requests) {
		return nil, workers.Permanent(fmt.Errorf("%w: sent %d, got %d", adapter.ErrResponseMismatch, len(b.requests), len(responses)))
	}

	if extras != nil && extras.RequireAllRequestsSucceed {
		for i, r := range responses {
			if !r.Succeeded() {
				return nil, workers.Permanent(fmt.Errorf("%w: request %d returned %d", ErrRequestFailed, i, r.Code))
			}
		}
	}

	log := s.logger.With().Str("func", "SyncOrchestrator.applyResponses").Str("swarm", swarm.Short()).Logger()

	for i, p := range b.pushes {
		hash, err := storedHash(responses[b.storeAt+i])
		if err != nil {
			log.Warn().Err(err).Stringer("target", p.Target).Int64("seqno", p.SeqNo).Msg("push not stored, keeping it pending")
			s.configs.RecordError(p.Target, err)
			continue
		}
		if err = s.configs.ConfirmPushed(p.Target, p.SeqNo, hash); err != nil {
			log.Err(err).Stringer("target", p.Target).Msg("failed to confirm push")
			continue
		}
		log.Debug().Stringer("target", p.Target).Int64("seqno", p.SeqNo).Str("hash", hash).Msg("push confirmed")
	}

	var pruned []models.ConfigTarget
	if b.deleteAt >= 0 {
		// missing hashes are not reported back; any 2xx means none of the
		// requested records remain
		if resp := responses[b.deleteAt]; resp.Succeeded() {
			pruned = s.configs.Tracker().Holding(swarm, b.obsolete)
			if err := s.configs.ConfirmDeleted(swarm, b.obsolete); err != nil {
				log.Err(err).Msg("failed to confirm deleted records")
			}
		} else {
			log.Debug().Int("code", resp.Code).Int("hashes", len(b.obsolete)).Msg("obsolete records not deleted")
		}
	}
	return pruned, nil
}

func storedHash(resp models.SwarmResponse) (string, error) {
	if !resp.Succeeded() {
		return "", fmt.Errorf("%w: store returned %d", ErrRequestFailed, resp.Code)
	}
	var res models.StoreResult
	if err := json.Unmarshal(resp.Body, &res); err != nil {
		return "", fmt.Errorf("decode store result: %w", err)
	}
	if res.Hash == "" {
		return "", fmt.Errorf("%w: store result without hash", ErrRequestFailed)
	}
	return res.Hash, nil
}

// persist writes every dump of swarm that changed in one transaction and
// returns their targets. A completed network run also records its
// completion time.
func (s *SyncOrchestrator) persist(ctx context.Context, swarm models.SwarmPublicKey, synced bool) ([]models.ConfigTarget, error) {
	prepared, err := s.configs.CreateDumps(swarm)
	if err != nil {
		return nil, fmt.Errorf("create dumps: %w", err)
	}

	dumps := make([]models.ConfigDump, len(prepared))
	targets := make([]models.ConfigTarget, len(prepared))
	for i, p := range prepared {
		dumps[i] = p.Dump
		targets[i] = p.Dump.Target()
	}

	switch {
	case synced:
		err = s.dumps.SaveSyncResult(ctx, models.SyncBookkeeping{
			Swarm:    swarm,
			Dumps:    dumps,
			SyncedAt: s.clock.Now(),
		})
	case len(dumps) > 0:
		err = s.dumps.WriteDumps(ctx, dumps)
	default:
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("save dumps: %w", err)
	}
	return targets, s.configs.MarkAllDumped(prepared)
}

// prunePersistedHashes rewrites the hash sets of targets that lost a
// deleted record without their document changing, so no dump was written
// for them. A failure only leaves a stale superset behind.
func (s *SyncOrchestrator) prunePersistedHashes(ctx context.Context, pruned, written []models.ConfigTarget) {
	for _, t := range pruned {
		if slices.Contains(written, t) {
			continue
		}
		if err := s.dumps.UpdateCombinedHashSet(ctx, t, s.configs.Tracker().Get(t)); err != nil {
			s.logger.Warn().Err(err).
				Str("func", "SyncOrchestrator.prunePersistedHashes").
				Stringer("target", t).
				Msg("failed to prune persisted hashes")
		}
	}
}

// finish starts the throttle window of swarm and makes sure exactly one
// plain run follows if anything is still pending.
func (s *SyncOrchestrator) finish(swarm models.SwarmPublicKey) {
	now := s.clock.Now()
	s.mu.Lock()
	s.completed[swarm] = now
	s.mu.Unlock()

	next := now.Add(s.cfg.ThrottleInterval).Add(s.stagger(swarm))
	queued := s.runner.Queued(models.KindConfigSync, swarm)

	var plain *workers.JobHandle
	for _, q := range queued {
		if d, _ := q.Details.(SyncDetails); d.Extras.Empty() {
			if plain != nil {
				s.runner.Supersede(q.Handle, *plain)
				continue
			}
			h := q.Handle
			plain = &h
		}
		if q.RunAt.Before(next) {
			s.runner.Reschedule(q.Handle, next)
		}
	}

	if len(queued) == 0 && s.configs.PendingChangeCount(swarm) > 0 {
		s.runner.Enqueue(models.KindConfigSync, swarm,
			workers.WithRunAt(next),
			workers.WithDetails(SyncDetails{}),
		)
	}
}

// release unblocks consumers waiting for the run of swarm, whatever its
// outcome.
func (s *SyncOrchestrator) release(swarm models.SwarmPublicKey) {
	s.runner.RemoveDependency(models.DependencyToken{Kind: models.KindConfigSync, Swarm: swarm})
}

// watchOffline remembers swarm for a fresh run once the swarm is reachable
// again.
func (s *SyncOrchestrator) watchOffline(swarm models.SwarmPublicKey) {
	s.mu.Lock()
	s.offline[swarm] = struct{}{}
	s.mu.Unlock()

	if s.observer.State() == connectivity.Online {
		s.resumeOffline()
	}
}

func (s *SyncOrchestrator) resumeOffline() {
	s.mu.Lock()
	swarms := slices.Sorted(maps.Keys(s.offline))
	clear(s.offline)
	s.mu.Unlock()

	for _, swarm := range swarms {
		if _, err := s.ScheduleSync(swarm, nil); err != nil {
			s.logger.Err(err).
				Str("func", "SyncOrchestrator.resumeOffline").
				Str("swarm", swarm.Short()).
				Msg("failed to resume config sync")
		}
	}
}

// Run implements [workers.Worker]. It re-enqueues the runs that failed
// offline whenever connectivity is restored.
func (s *SyncOrchestrator) Run(ctx context.Context) error {
	states := s.observer.Subscribe(ctx)
	for {
		select {
		case <-ctx.Done():
			return nil
		case state, ok := <-states:
			if !ok {
				return nil
			}
			if state == connectivity.Online {
				s.resumeOffline()
			}
		}
	}
}
