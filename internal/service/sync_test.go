// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/configstore"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/document"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/mock"
	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

var (
	userSeed  = strings.Repeat("01", 32)
	groupSeed = strings.Repeat("02", 32)

	testWorkersCfg = config.ClientWorkers{
		ThrottleInterval: 3 * time.Second,
		TargetStagger:    100 * time.Millisecond,
	}
)

type syncFixture struct {
	svc      *SyncOrchestrator
	configs  *configstore.Store
	identity *crypto.Identity
	dumps    *mock.MockDumpRepository
	adapter  *mock.MockSwarmAdapter
	runner   *mock.MockJobRunner
	monitor  *connectivity.Monitor
	clock    *clockwork.FakeClock
	swarm    models.SwarmPublicKey
	target   models.ConfigTarget
	token    models.DependencyToken
}

func newSyncFixture(t *testing.T, ctrl *gomock.Controller) *syncFixture {
	t.Helper()

	identity, err := crypto.NewIdentity(userSeed)
	require.NoError(t, err)
	swarm := identity.UserSwarm()

	configs := configstore.NewStore("device-a", logger.Nop())
	require.NoError(t, configs.LoadAll(swarm, models.UserKinds(), nil))

	clock := clockwork.NewFakeClockAt(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	fx := &syncFixture{
		configs:  configs,
		identity: identity,
		dumps:    mock.NewMockDumpRepository(ctrl),
		adapter:  mock.NewMockSwarmAdapter(ctrl),
		runner:   mock.NewMockJobRunner(ctrl),
		monitor:  connectivity.NewMonitor(nil, time.Second, clock, logger.Nop()),
		clock:    clock,
		swarm:    swarm,
		target:   models.ConfigTarget{Kind: models.UserProfile, Owner: swarm},
		token:    models.DependencyToken{Kind: models.KindConfigSync, Swarm: swarm},
	}
	fx.svc = NewSyncOrchestrator(configs, fx.dumps, fx.adapter, identity, fx.monitor, fx.runner, clock, testWorkersCfg, logger.Nop())
	return fx
}

func (fx *syncFixture) set(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, fx.configs.Mutate(fx.target, func(doc *document.Document) error {
		doc.Set(key, []byte(value))
		return nil
	}))
}

func (fx *syncFixture) job(details any) *workers.Job {
	return &workers.Job{ID: "job-1", Seq: 1, Kind: models.KindConfigSync, Swarm: fx.swarm, Details: details}
}

func storeOK(hash string) models.SwarmResponse {
	body, _ := json.Marshal(models.StoreResult{Hash: hash})
	return models.SwarmResponse{Code: 200, Body: body}
}

// ── Execute ──────────────────────────────────────────────────────────────────

func TestSyncOrchestrator_Execute_NothingToPush(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)

	fx.runner.EXPECT().FirstRunning(models.KindConfigSync, fx.swarm, uint64(1)).Return(workers.JobHandle{}, false)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(nil)))
}

func TestSyncOrchestrator_Execute_SinglePush(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")

	fx.runner.EXPECT().FirstRunning(models.KindConfigSync, fx.swarm, uint64(1)).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.SwarmPublicKey, reqs []models.SwarmRequest) ([]models.SwarmResponse, error) {
			require.Len(t, reqs, 1)
			assert.Equal(t, models.MethodStore, reqs[0].Method)
			assert.Equal(t, models.UserProfile.Namespace(), reqs[0].Store.Namespace)
			assert.Equal(t, fx.clock.Now().UnixMilli(), reqs[0].TimestampMs)
			assert.NoError(t, crypto.VerifySignature(reqs[0]))
			return []models.SwarmResponse{storeOK("h1")}, nil
		})
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, res models.SyncBookkeeping) error {
			assert.Equal(t, fx.swarm, res.Swarm)
			assert.Equal(t, fx.clock.Now(), res.SyncedAt)
			require.Len(t, res.Dumps, 1)
			assert.Equal(t, fx.target, res.Dumps[0].Target())
			assert.True(t, res.Dumps[0].AssociatedMessageHashes.Equal(models.NewHashSet("h1")))
			return nil
		})
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(nil)))

	push, err := fx.configs.PendingPush(fx.target)
	require.NoError(t, err)
	assert.Nil(t, push)
	assert.Equal(t, 0, fx.svc.PendingChangeCount(fx.swarm))
	assert.True(t, fx.configs.Tracker().Get(fx.target).Equal(models.NewHashSet("h1")))

	e, ok := fx.configs.Entry(fx.target)
	require.True(t, ok)
	assert.False(t, e.NeedsDump())
}

func TestSyncOrchestrator_Execute_RejectedStoreStaysPending(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).
		Return([]models.SwarmResponse{{Code: 500}}, nil)
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).Return(nil)
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil)
	fx.runner.EXPECT().
		Enqueue(models.KindConfigSync, fx.swarm, gomock.Any(), gomock.Any()).
		Return(workers.JobHandle{ID: "next", Seq: 2})
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(nil)))

	assert.Equal(t, 1, fx.svc.PendingChangeCount(fx.swarm))
	e, _ := fx.configs.Entry(fx.target)
	assert.ErrorIs(t, e.LastError(), ErrRequestFailed)
}

func TestSyncOrchestrator_Execute_BatchOrder(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)

	// two confirmed pushes leave h1 obsolete
	for i, hash := range []string{"h1", "h2"} {
		fx.set(t, "name", hash)
		push, err := fx.configs.PendingPush(fx.target)
		require.NoError(t, err)
		require.NotNil(t, push, "push %d", i)
		require.NoError(t, fx.configs.ConfirmPushed(fx.target, push.SeqNo, hash))
	}
	fx.set(t, "name", "h3")

	before := models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2}}
	after := models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 3}}
	extras := &models.AdditionalRequests{Before: []models.SwarmRequest{before}, After: []models.SwarmRequest{after}}

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).
		DoAndReturn(func(_ context.Context, _ models.SwarmPublicKey, reqs []models.SwarmRequest) ([]models.SwarmResponse, error) {
			require.Len(t, reqs, 4)
			assert.Equal(t, 2, reqs[0].Retrieve.Namespace)
			assert.Equal(t, models.MethodStore, reqs[1].Method)
			assert.Equal(t, models.MethodDelete, reqs[2].Method)
			assert.Equal(t, []string{"h1"}, reqs[2].Delete.Hashes)
			assert.False(t, reqs[2].Delete.RequireSuccessfulDeletion)
			assert.Equal(t, 3, reqs[3].Retrieve.Namespace)
			for _, r := range reqs {
				assert.NoError(t, crypto.VerifySignature(r))
			}
			return []models.SwarmResponse{
				{Code: 200},
				storeOK("h3"),
				{Code: 200, Body: json.RawMessage(`{"deleted":["h1"]}`)},
				{Code: 200},
			}, nil
		})
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).Return(nil)
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(SyncDetails{Extras: extras})))

	hashes := fx.configs.Tracker().Get(fx.target)
	assert.False(t, hashes.Has("h1"))
	assert.True(t, hashes.Has("h2"))
	assert.True(t, hashes.Has("h3"))

	fx.set(t, "name", "h4")
	push, err := fx.configs.PendingPush(fx.target)
	require.NoError(t, err)
	assert.Equal(t, []string{"h2"}, push.ObsoleteHashes.Sorted())
}

func TestSyncOrchestrator_Execute_RequireAllRequestsSucceed(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")

	extras := &models.AdditionalRequests{
		Before:                    []models.SwarmRequest{{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2}}},
		RequireAllRequestsSucceed: true,
	}

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).
		Return([]models.SwarmResponse{{Code: 200}, {Code: 500}}, nil)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	err := fx.svc.Execute(context.Background(), fx.job(SyncDetails{Extras: extras}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrRequestFailed)
	assert.True(t, workers.IsPermanent(err))

	push, err := fx.configs.PendingPush(fx.target)
	require.NoError(t, err)
	assert.NotNil(t, push)
}

func TestSyncOrchestrator_Execute_ExtrasWithoutChanges(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)

	extras := &models.AdditionalRequests{
		After: []models.SwarmRequest{{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2}}},
	}

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Len(1)).
		Return([]models.SwarmResponse{{Code: 200}}, nil)
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).Return(nil)
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(SyncDetails{Extras: extras})))
}

func TestSyncOrchestrator_Execute_TransportErrors(t *testing.T) {
	tests := []struct {
		name          string
		state         connectivity.State
		err           error
		wantPermanent bool
		wantErr       error
	}{
		{name: "transient while online", state: connectivity.Online, err: adapter.ErrServiceUnavailable, wantErr: adapter.ErrServiceUnavailable},
		{name: "transient with unknown connectivity", state: connectivity.Unknown, err: adapter.ErrNetwork, wantErr: adapter.ErrNetwork},
		{name: "rejected signature", state: connectivity.Online, err: adapter.ErrUnauthorized, wantPermanent: true, wantErr: adapter.ErrUnauthorized},
		{name: "offline", state: connectivity.Offline, err: adapter.ErrNetwork, wantPermanent: true, wantErr: ErrOffline},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			fx := newSyncFixture(t, ctrl)
			fx.set(t, "name", "alice")
			fx.monitor.SetState(tt.state)

			fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
			fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).Return(nil, tt.err)
			fx.runner.EXPECT().RemoveDependency(fx.token)

			err := fx.svc.Execute(context.Background(), fx.job(nil))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, tt.wantPermanent, workers.IsPermanent(err))
			assert.Equal(t, 1, fx.svc.PendingChangeCount(fx.swarm))
		})
	}
}

func TestSyncOrchestrator_Execute_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)

	group, err := crypto.SwarmFromSeed(groupSeed)
	require.NoError(t, err)
	require.NoError(t, fx.configs.LoadAll(group, models.GroupKinds(), nil))
	require.NoError(t, fx.configs.Rekey(group, fx.clock.Now().UnixMilli()))

	fx.runner.EXPECT().FirstRunning(gomock.Any(), group, gomock.Any()).Return(workers.JobHandle{}, false)
	fx.runner.EXPECT().RemoveDependency(models.DependencyToken{Kind: models.KindConfigSync, Swarm: group})

	job := &workers.Job{ID: "job-1", Seq: 1, Kind: models.KindConfigSync, Swarm: group}
	err = fx.svc.Execute(context.Background(), job)
	assert.ErrorIs(t, err, crypto.ErrMissingCredentials)
	assert.True(t, workers.IsPermanent(err))
}

func TestSyncOrchestrator_Execute_Cancelled(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).
		DoAndReturn(func(context.Context, models.SwarmPublicKey, []models.SwarmRequest) ([]models.SwarmResponse, error) {
			cancel()
			return []models.SwarmResponse{storeOK("h1")}, nil
		})
	fx.runner.EXPECT().RemoveDependency(fx.token)

	err := fx.svc.Execute(ctx, fx.job(nil))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fx.svc.PendingChangeCount(fx.swarm))
}

func TestSyncOrchestrator_Execute_WaitsForRunningJob(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)

	running := workers.JobHandle{ID: "job-0", Seq: 0}
	gomock.InOrder(
		fx.runner.EXPECT().FirstRunning(models.KindConfigSync, fx.swarm, uint64(1)).Return(running, true),
		fx.runner.EXPECT().Result(gomock.Any(), running).Return(models.JobSucceeded, nil),
		fx.runner.EXPECT().FirstRunning(models.KindConfigSync, fx.swarm, uint64(1)).Return(workers.JobHandle{}, false),
	)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	// the earlier run pushed everything
	err := fx.svc.Execute(context.Background(), fx.job(nil))
	require.Error(t, err)
	assert.True(t, workers.IsDeferred(err))
	assert.ErrorIs(t, err, ErrCoalesced)
}

func TestSyncOrchestrator_Execute_BatchTooLarge(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")

	before := make([]models.SwarmRequest, models.MaxBatchRequests)
	for i := range before {
		before[i] = models.SwarmRequest{Method: models.MethodRetrieve, Retrieve: &models.RetrieveParams{Namespace: 2}}
	}
	extras := &models.AdditionalRequests{Before: before}

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	err := fx.svc.Execute(context.Background(), fx.job(SyncDetails{Extras: extras}))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrBatchTooLarge)
	assert.True(t, workers.IsPermanent(err))
	assert.Equal(t, 1, fx.svc.PendingChangeCount(fx.swarm))
}

func TestSyncOrchestrator_Execute_PrunesHashOnlyTargets(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	contacts := models.ConfigTarget{Kind: models.Contacts, Owner: fx.swarm}

	// h1 is also listed by the contacts dump of an earlier run
	fx.configs.Tracker().Add(contacts, models.NewHashSet("h1"))
	for _, hash := range []string{"h1", "h2"} {
		fx.set(t, "name", hash)
		push, err := fx.configs.PendingPush(fx.target)
		require.NoError(t, err)
		require.NoError(t, fx.configs.ConfirmPushed(fx.target, push.SeqNo, hash))
	}
	fx.set(t, "name", "h3")

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Len(2)).
		Return([]models.SwarmResponse{storeOK("h3"), {Code: 200}}, nil)
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, res models.SyncBookkeeping) error {
			require.Len(t, res.Dumps, 1)
			assert.Equal(t, fx.target, res.Dumps[0].Target())
			assert.False(t, res.Dumps[0].AssociatedMessageHashes.Has("h1"))
			return nil
		})
	fx.dumps.EXPECT().UpdateCombinedHashSet(gomock.Any(), contacts, models.NewHashSet()).Return(nil)
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	require.NoError(t, fx.svc.Execute(context.Background(), fx.job(nil)))
	assert.False(t, fx.configs.Tracker().Seen(fx.swarm, "h1"))
}

// ── one batch in flight ──────────────────────────────────────────────────────

// countingAdapter answers every batch successfully and records how many
// batches overlap.
type countingAdapter struct {
	mu       sync.Mutex
	inFlight int
	maxSeen  int
	spans    [][2]time.Time
	next     int
}

func (a *countingAdapter) SendBatch(_ context.Context, _ models.SwarmPublicKey, reqs []models.SwarmRequest) ([]models.SwarmResponse, error) {
	a.mu.Lock()
	a.inFlight++
	a.maxSeen = max(a.maxSeen, a.inFlight)
	start := time.Now()
	a.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	a.mu.Lock()
	defer a.mu.Unlock()
	a.inFlight--
	a.spans = append(a.spans, [2]time.Time{start, time.Now()})

	out := make([]models.SwarmResponse, len(reqs))
	for i, r := range reqs {
		switch r.Method {
		case models.MethodStore:
			a.next++
			body, _ := json.Marshal(models.StoreResult{Hash: fmt.Sprintf("h%d", a.next)})
			out[i] = models.SwarmResponse{Code: 200, Body: body}
		default:
			out[i] = models.SwarmResponse{Code: 200, Body: json.RawMessage(`{}`)}
		}
	}
	return out, nil
}

func (a *countingAdapter) Retrieve(context.Context, models.SwarmRequest) (models.RetrieveResult, error) {
	return models.RetrieveResult{}, nil
}

func (a *countingAdapter) Ping(context.Context) error { return nil }

func TestSyncOrchestrator_RequestSync_OneBatchInFlight(t *testing.T) {
	ctrl := gomock.NewController(t)
	identity, err := crypto.NewIdentity(userSeed)
	require.NoError(t, err)
	swarm := identity.UserSwarm()
	target := models.ConfigTarget{Kind: models.UserProfile, Owner: swarm}

	configs := configstore.NewStore("device-a", logger.Nop())
	require.NoError(t, configs.LoadAll(swarm, models.UserKinds(), nil))

	clock := clockwork.NewRealClock()
	dumps := mock.NewMockDumpRepository(ctrl)
	dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	dumps.EXPECT().WriteDumps(gomock.Any(), gomock.Any()).Return(nil).AnyTimes()
	dumps.EXPECT().UpdateCombinedHashSet(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil).AnyTimes()

	swarmAdapter := &countingAdapter{}
	runner := workers.NewRunner(clock, workers.RetryPolicy{}, logger.Nop())
	monitor := connectivity.NewMonitor(nil, time.Second, clock, logger.Nop())
	cfg := config.ClientWorkers{ThrottleInterval: 100 * time.Millisecond}
	svc := NewSyncOrchestrator(configs, dumps, swarmAdapter, identity, monitor, runner, clock, cfg, logger.Nop())
	runner.Register(models.KindConfigSync, svc)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = runner.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	const callers = 10
	errs := make(chan error, callers)
	var wg sync.WaitGroup
	for i := range callers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := configs.Mutate(target, func(doc *document.Document) error {
				doc.Set(fmt.Sprintf("key-%d", i), []byte("value"))
				return nil
			}); err != nil {
				errs <- err
				return
			}
			reqCtx, reqCancel := context.WithTimeout(ctx, 10*time.Second)
			defer reqCancel()
			errs <- svc.RequestSync(reqCtx, swarm, nil)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		assert.NoError(t, err)
	}

	assert.Equal(t, 0, svc.PendingChangeCount(swarm))

	swarmAdapter.mu.Lock()
	defer swarmAdapter.mu.Unlock()
	assert.Equal(t, 1, swarmAdapter.maxSeen)
	require.NotEmpty(t, swarmAdapter.spans)
	for i := 1; i < len(swarmAdapter.spans); i++ {
		gap := swarmAdapter.spans[i][0].Sub(swarmAdapter.spans[i-1][1])
		assert.GreaterOrEqual(t, gap, cfg.ThrottleInterval, "batch %d", i)
	}
}

// ── offline watcher ─────────────────────────────────────────────────────────

func TestSyncOrchestrator_ResumesOnceWhenBackOnline(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	fx.set(t, "name", "alice")
	fx.monitor.SetState(connectivity.Offline)

	fx.runner.EXPECT().FirstRunning(gomock.Any(), gomock.Any(), gomock.Any()).Return(workers.JobHandle{}, false)
	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).Return(nil, adapter.ErrNetwork)
	fx.runner.EXPECT().RemoveDependency(fx.token)

	err := fx.svc.Execute(context.Background(), fx.job(nil))
	require.ErrorIs(t, err, ErrOffline)

	var enqueued atomic.Int32
	fx.runner.EXPECT().Queued(models.KindConfigSync, fx.swarm).Return(nil).AnyTimes()
	fx.runner.EXPECT().
		Enqueue(models.KindConfigSync, fx.swarm, gomock.Any(), gomock.Any()).
		DoAndReturn(func(models.JobKind, models.SwarmPublicKey, ...workers.EnqueueOption) workers.JobHandle {
			enqueued.Add(1)
			return workers.JobHandle{ID: "resumed", Seq: 2}
		})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = fx.svc.Run(ctx)
	}()
	defer func() {
		cancel()
		<-done
	}()

	require.Eventually(t, func() bool {
		fx.monitor.SetState(connectivity.Offline)
		fx.monitor.SetState(connectivity.Online)
		return enqueued.Load() > 0
	}, 2*time.Second, 10*time.Millisecond)

	fx.monitor.SetState(connectivity.Offline)
	fx.monitor.SetState(connectivity.Online)
	assert.Equal(t, int32(1), enqueued.Load())
}

// ── ScheduleSync ─────────────────────────────────────────────────────────────

func newRealRunner(fx *syncFixture) *workers.Runner {
	r := workers.NewRunner(fx.clock, workers.RetryPolicy{}, logger.Nop())
	fx.svc.runner = r
	return r
}

func TestSyncOrchestrator_ScheduleSync_Coalesces(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	r := newRealRunner(fx)

	h1, err := fx.svc.ScheduleSync(fx.swarm, nil)
	require.NoError(t, err)
	h2, err := fx.svc.ScheduleSync(fx.swarm, &models.AdditionalRequests{})
	require.NoError(t, err)
	assert.Equal(t, h1, h2)

	extras := &models.AdditionalRequests{After: []models.SwarmRequest{{Method: models.MethodRetrieve}}}
	h3, err := fx.svc.ScheduleSync(fx.swarm, extras)
	require.NoError(t, err)
	assert.NotEqual(t, h1, h3)

	queued := r.Queued(models.KindConfigSync, fx.swarm)
	require.Len(t, queued, 2)
	assert.Equal(t, fx.clock.Now(), queued[0].RunAt)
	assert.Equal(t, SyncDetails{Extras: extras}, queued[1].Details)
}

func TestSyncOrchestrator_ScheduleSync_MissingCredentials(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	newRealRunner(fx)

	group, err := crypto.SwarmFromSeed(groupSeed)
	require.NoError(t, err)

	_, err = fx.svc.ScheduleSync(group, nil)
	assert.ErrorIs(t, err, crypto.ErrMissingCredentials)
}

func TestSyncOrchestrator_ScheduleSync_ThrottledAndStaggered(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	r := newRealRunner(fx)

	group, err := fx.identity.AddGroup(groupSeed)
	require.NoError(t, err)
	require.NoError(t, fx.configs.LoadAll(group, models.GroupKinds(), nil))

	now := fx.clock.Now()
	fx.svc.completed[fx.swarm] = now
	fx.svc.completed[group] = now

	_, err = fx.svc.ScheduleSync(fx.swarm, nil)
	require.NoError(t, err)
	_, err = fx.svc.ScheduleSync(group, nil)
	require.NoError(t, err)

	swarms := fx.configs.Swarms()
	require.Len(t, swarms, 2)
	for i, swarm := range swarms {
		queued := r.Queued(models.KindConfigSync, swarm)
		require.Len(t, queued, 1)
		want := now.Add(testWorkersCfg.ThrottleInterval).Add(time.Duration(i) * testWorkersCfg.TargetStagger)
		assert.Equal(t, want, queued[0].RunAt, "swarm %d", i)
	}
}

func TestSyncOrchestrator_Finish_CoalescesQueuedRuns(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	r := newRealRunner(fx)

	first := r.Enqueue(models.KindConfigSync, fx.swarm, workers.WithDetails(SyncDetails{}))
	second := r.Enqueue(models.KindConfigSync, fx.swarm, workers.WithDetails(SyncDetails{}))
	withExtras := r.Enqueue(models.KindConfigSync, fx.swarm, workers.WithDetails(SyncDetails{
		Extras: &models.AdditionalRequests{Before: []models.SwarmRequest{{Method: models.MethodRetrieve}}},
	}))

	fx.svc.finish(fx.swarm)

	queued := r.Queued(models.KindConfigSync, fx.swarm)
	require.Len(t, queued, 2)
	assert.Equal(t, first, queued[0].Handle)
	assert.Equal(t, withExtras, queued[1].Handle)

	next := fx.clock.Now().Add(testWorkersCfg.ThrottleInterval)
	for _, q := range queued {
		assert.Equal(t, next, q.RunAt)
	}
	assert.Equal(t, models.JobPending, r.Status(second))
}

// ── RequestSync ──────────────────────────────────────────────────────────────

func TestSyncOrchestrator_RequestSync(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	r := newRealRunner(fx)
	r.Register(models.KindConfigSync, fx.svc)
	fx.set(t, "name", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	released := r.Subscribe(fx.token)

	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Len(1)).
		Return([]models.SwarmResponse{storeOK("h1")}, nil)
	fx.dumps.EXPECT().SaveSyncResult(gomock.Any(), gomock.Any()).Return(nil)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()
	require.NoError(t, fx.svc.RequestSync(reqCtx, fx.swarm, nil))

	assert.Equal(t, 0, fx.svc.PendingChangeCount(fx.swarm))
	select {
	case <-released:
	default:
		t.Fatal("dependency not released")
	}
}

func TestSyncOrchestrator_RequestSync_Failure(t *testing.T) {
	ctrl := gomock.NewController(t)
	fx := newSyncFixture(t, ctrl)
	r := newRealRunner(fx)
	r.Register(models.KindConfigSync, fx.svc)
	fx.set(t, "name", "alice")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = r.Run(ctx)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})

	fx.adapter.EXPECT().SendBatch(gomock.Any(), fx.swarm, gomock.Any()).Return(nil, adapter.ErrForbidden)

	reqCtx, reqCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer reqCancel()
	err := fx.svc.RequestSync(reqCtx, fx.swarm, nil)
	assert.ErrorIs(t, err, adapter.ErrForbidden)
}

// ── classifyBatchError ──────────────────────────────────────────────────────

func TestClassifyBatchError(t *testing.T) {
	assert.NoError(t, classifyBatchError(nil, connectivity.Offline))

	err := classifyBatchError(crypto.ErrMissingCredentials, connectivity.Online)
	assert.True(t, workers.IsPermanent(err))

	err = classifyBatchError(errors.New("reset"), connectivity.Unknown)
	assert.False(t, workers.IsPermanent(err))
	assert.True(t, workers.IsTransient(err))
}
