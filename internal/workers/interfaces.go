// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package workers runs the background machinery of the sync daemon.
//
// [Workers] starts long-running components ([Worker]) under one errgroup.
// [Runner] is the job runner: jobs are enqueued per (kind, swarm), executed
// when due by the [Executor] registered for their kind, retried with
// exponential backoff unless marked [Permanent] or [Deferred], and can be
// rescheduled or superseded while still pending.
package workers

import "context"

// Worker is a long-running background component. Run blocks until ctx is
// cancelled or the worker fails.
//
// Example implementation:
//
//	type poller struct{}
//
//	func (p *poller) Run(ctx context.Context) error {
//	    <-ctx.Done()
//	    return nil
//	}
type Worker interface {
	Run(ctx context.Context) error
}

// Executor performs jobs of one kind. A nil error marks the job succeeded;
// errors are retried unless wrapped with Permanent or Deferred.
type Executor interface {
	Execute(ctx context.Context, job *Job) error
}

// ExecutorFunc adapts a function to Executor.
type ExecutorFunc func(ctx context.Context, job *Job) error

func (f ExecutorFunc) Execute(ctx context.Context, job *Job) error {
	return f(ctx, job)
}
