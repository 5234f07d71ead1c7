// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package service holds the sync daemon's business logic: the config sync
// orchestrator, the poller feeding remote records into the config store and
// the mutation service local callers use to edit documents.
package service

import (
	"context"
	"time"

	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// ConfigSyncService pushes pending config changes of a swarm.
type ConfigSyncService interface {
	// RequestSync schedules a sync run for swarm and waits for it to finish.
	// Concurrent requests are coalesced: without extras the call joins any
	// queued run. Returns [crypto.ErrMissingCredentials] if no key for swarm
	// is held, and the run's error if it failed.
	RequestSync(ctx context.Context, swarm models.SwarmPublicKey, extras *models.AdditionalRequests) error

	// ScheduleSync is RequestSync without waiting.
	ScheduleSync(swarm models.SwarmPublicKey, extras *models.AdditionalRequests) (workers.JobHandle, error)

	// PendingChangeCount returns how many targets of swarm await a push.
	PendingChangeCount(swarm models.SwarmPublicKey) int
}

// ConfigService edits local config documents. Every mutation is persisted
// before it returns and triggers a sync of the document's swarm.
type ConfigService interface {
	// Get reads key of a key-value document.
	Get(target models.ConfigTarget, key string) ([]byte, bool, error)

	// Set writes key of a key-value document.
	Set(ctx context.Context, target models.ConfigTarget, key string, value []byte) error

	// Delete removes key of a key-value document.
	Delete(ctx context.Context, target models.ConfigTarget, key string) error

	// Rekey rotates the key of group, re-pushing its info and members.
	Rekey(ctx context.Context, group models.SwarmPublicKey) error
}

// JobRunner is the part of [workers.Runner] the orchestrator drives and
// the poller waits on.
type JobRunner interface {
	Enqueue(kind models.JobKind, swarm models.SwarmPublicKey, opts ...workers.EnqueueOption) workers.JobHandle
	Result(ctx context.Context, h workers.JobHandle) (models.JobStatus, error)
	FirstRunning(kind models.JobKind, swarm models.SwarmPublicKey, before uint64) (workers.JobHandle, bool)
	Queued(kind models.JobKind, swarm models.SwarmPublicKey) []workers.JobInfo
	Reschedule(h workers.JobHandle, runAt time.Time) bool
	Supersede(old, replacement workers.JobHandle) bool
	RemoveDependency(token models.DependencyToken)
	Subscribe(token models.DependencyToken) <-chan struct{}
}
