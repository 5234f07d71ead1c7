// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import "time"

// JobKind names a category of background job handled by the job runner.
type JobKind string

// KindConfigSync is the job that pushes pending config changes for one swarm.
const KindConfigSync JobKind = "configSync"

// JobStatus is the lifecycle state of one job.
type JobStatus int

const (
	JobPending JobStatus = iota
	JobRunning
	JobSucceeded
	JobFailed
	JobDeferred
	JobNotFound
)

func (s JobStatus) String() string {
	switch s {
	case JobPending:
		return "pending"
	case JobRunning:
		return "running"
	case JobSucceeded:
		return "succeeded"
	case JobFailed:
		return "failed"
	case JobDeferred:
		return "deferred"
	case JobNotFound:
		return "not_found"
	}
	return "unknown"
}

// Terminal reports whether no further transitions will happen.
func (s JobStatus) Terminal() bool {
	return s == JobSucceeded || s == JobFailed || s == JobDeferred || s == JobNotFound
}

// DependencyToken identifies work other jobs can wait on. The sync
// orchestrator releases the token for its swarm after every successful run.
type DependencyToken struct {
	Kind  JobKind
	Swarm SwarmPublicKey
}

// AdditionalRequests are caller-supplied one-shot requests bracketing the
// config pushes of a single sync run. A run carrying them always performs a
// network call, even when no config changes are pending.
type AdditionalRequests struct {
	Before []SwarmRequest
	After  []SwarmRequest

	// RequireAllRequestsSucceed fails the whole run, without updating any
	// local state, if any sub-response is non-2xx.
	RequireAllRequestsSucceed bool
}

// Empty reports whether there is nothing to send.
func (a *AdditionalRequests) Empty() bool {
	return a == nil || (len(a.Before) == 0 && len(a.After) == 0)
}

// SyncBookkeeping is everything a successful sync run persists, written in
// a single transaction.
type SyncBookkeeping struct {
	Swarm    SwarmPublicKey
	Dumps    []ConfigDump
	SyncedAt time.Time
}

// PollBookkeeping is everything one poll cycle persists for a swarm, written
// in a single transaction.
type PollBookkeeping struct {
	Swarm      SwarmPublicKey
	Dumps      []ConfigDump
	LastHashes map[int]string
}
