// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sethvargo/go-retry"

	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/models"
)

// finishedRetention is how many finished jobs stay queryable via Result.
const finishedRetention = 1024

// JobHandle identifies an enqueued job.
type JobHandle struct {
	ID  string
	Seq uint64
}

// Job is one unit of work. Executors may read the exported fields; they are
// fixed once the job starts running.
type Job struct {
	ID      string
	Seq     uint64
	Kind    models.JobKind
	Swarm   models.SwarmPublicKey
	Details any
	RunAt   time.Time

	status models.JobStatus
	err    error
	done   chan struct{}

	// next is set when the job was superseded while pending; waiters follow
	// it to the replacement's result.
	next *Job
}

func (j *Job) Handle() JobHandle {
	return JobHandle{ID: j.ID, Seq: j.Seq}
}

// JobInfo is a snapshot of a pending job.
type JobInfo struct {
	Handle  JobHandle
	RunAt   time.Time
	Details any
}

// EnqueueOption customizes a job at enqueue time.
type EnqueueOption func(j *Job)

// WithRunAt delays the job until t.
func WithRunAt(t time.Time) EnqueueOption {
	return func(j *Job) {
		j.RunAt = t
	}
}

// WithDetails attaches executor-specific data to the job.
func WithDetails(details any) EnqueueOption {
	return func(j *Job) {
		j.Details = details
	}
}

// RetryPolicy configures retries of transient job failures.
type RetryPolicy struct {
	MaxRetries uint64
	BaseDelay  time.Duration
}

func (p RetryPolicy) backoff() retry.Backoff {
	base := p.BaseDelay
	if base <= 0 {
		base = time.Millisecond
	}
	return retry.WithMaxRetries(p.MaxRetries, retry.NewExponential(base))
}

// Runner schedules and executes jobs. It is a Worker: Run drives the
// scheduling loop until its context is cancelled.
type Runner struct {
	clock  clockwork.Clock
	log    *logger.Logger
	ids    *utils.UUIDGenerator
	seq    Sequence
	policy RetryPolicy

	mu        sync.Mutex
	executors map[models.JobKind]Executor
	jobs      map[string]*Job
	finished  []string
	subs      map[models.DependencyToken][]chan struct{}

	wake chan struct{}
	wg   sync.WaitGroup
}

// NewRunner creates a runner driven by clock.
func NewRunner(clock clockwork.Clock, policy RetryPolicy, log *logger.Logger) *Runner {
	return &Runner{
		clock:     clock,
		log:       log,
		ids:       utils.NewUUIDGenerator(),
		policy:    policy,
		executors: make(map[models.JobKind]Executor),
		jobs:      make(map[string]*Job),
		subs:      make(map[models.DependencyToken][]chan struct{}),
		wake:      make(chan struct{}, 1),
	}
}

// Register sets the executor of kind, replacing any previous one.
func (r *Runner) Register(kind models.JobKind, exec Executor) {
	r.mu.Lock()
	r.executors[kind] = exec
	r.mu.Unlock()
	r.notify()
}

// Enqueue adds a pending job. Without WithRunAt it is due immediately.
func (r *Runner) Enqueue(kind models.JobKind, swarm models.SwarmPublicKey, opts ...EnqueueOption) JobHandle {
	j := &Job{
		ID:     r.ids.Generate(),
		Seq:    r.seq.Next(),
		Kind:   kind,
		Swarm:  swarm,
		RunAt:  r.clock.Now(),
		status: models.JobPending,
		done:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(j)
	}

	r.mu.Lock()
	r.jobs[j.ID] = j
	r.mu.Unlock()

	r.log.Debug().
		Str("func", "Runner.Enqueue").
		Str("job_id", j.ID).
		Str("kind", string(kind)).
		Str("swarm", swarm.Short()).
		Time("run_at", j.RunAt).
		Msg("job enqueued")

	r.notify()
	return j.Handle()
}

// Status returns the current status of a job.
func (r *Runner) Status(h JobHandle) models.JobStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[h.ID]
	if !ok {
		return models.JobNotFound
	}
	for j.next != nil {
		j = j.next
	}
	return j.status
}

// Result blocks until the job reaches a terminal status and returns it with
// the job's error. Superseded jobs report the result of their replacement.
func (r *Runner) Result(ctx context.Context, h JobHandle) (models.JobStatus, error) {
	for {
		r.mu.Lock()
		j, ok := r.jobs[h.ID]
		r.mu.Unlock()
		if !ok {
			return models.JobNotFound, ErrJobNotFound
		}

		select {
		case <-j.done:
		case <-ctx.Done():
			return models.JobPending, ctx.Err()
		}

		r.mu.Lock()
		next, status, err := j.next, j.status, j.err
		r.mu.Unlock()
		if next == nil {
			return status, err
		}
		h = next.Handle()
	}
}

// FirstRunning returns the earliest running job of (kind, swarm) enqueued
// before the job with sequence number before.
func (r *Runner) FirstRunning(kind models.JobKind, swarm models.SwarmPublicKey, before uint64) (JobHandle, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var first *Job
	for _, j := range r.jobs {
		if j.status != models.JobRunning || j.Kind != kind || j.Swarm != swarm || j.Seq >= before {
			continue
		}
		if first == nil || j.Seq < first.Seq {
			first = j
		}
	}
	if first == nil {
		return JobHandle{}, false
	}
	return first.Handle(), true
}

// Queued returns the pending jobs of (kind, swarm) in enqueue order.
func (r *Runner) Queued(kind models.JobKind, swarm models.SwarmPublicKey) []JobInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []JobInfo
	for _, j := range r.jobs {
		if j.status == models.JobPending && j.next == nil && j.Kind == kind && j.Swarm == swarm {
			out = append(out, JobInfo{Handle: j.Handle(), RunAt: j.RunAt, Details: j.Details})
		}
	}
	slices.SortFunc(out, func(a, b JobInfo) int {
		return cmp.Compare(a.Handle.Seq, b.Handle.Seq)
	})
	return out
}

// Reschedule moves a pending job to runAt. It reports false if the job is
// no longer pending.
func (r *Runner) Reschedule(h JobHandle, runAt time.Time) bool {
	r.mu.Lock()
	j, ok := r.jobs[h.ID]
	if !ok || j.status != models.JobPending || j.next != nil {
		r.mu.Unlock()
		return false
	}
	j.RunAt = runAt
	r.mu.Unlock()
	r.notify()
	return true
}

// Supersede drops the pending job old in favour of replacement. Waiters on
// old receive replacement's result.
func (r *Runner) Supersede(old, replacement JobHandle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	j, ok := r.jobs[old.ID]
	repl, rok := r.jobs[replacement.ID]
	if !ok || !rok || j == repl || j.status != models.JobPending || j.next != nil {
		return false
	}
	j.next = repl
	close(j.done)
	r.retire(j)
	return true
}

// Subscribe returns a channel closed by the next RemoveDependency(token).
func (r *Runner) Subscribe(token models.DependencyToken) <-chan struct{} {
	ch := make(chan struct{})
	r.mu.Lock()
	r.subs[token] = append(r.subs[token], ch)
	r.mu.Unlock()
	return ch
}

// RemoveDependency releases everything waiting on token.
func (r *Runner) RemoveDependency(token models.DependencyToken) {
	r.mu.Lock()
	subs := r.subs[token]
	delete(r.subs, token)
	r.mu.Unlock()
	for _, ch := range subs {
		close(ch)
	}
}

// Run drives the scheduling loop. Running jobs are cancelled with ctx and
// waited for before Run returns.
func (r *Runner) Run(ctx context.Context) error {
	defer r.wg.Wait()
	for {
		wait, ok := r.dispatchDue(ctx)

		var (
			timer  clockwork.Timer
			timerC <-chan time.Time
		)
		if ok {
			timer = r.clock.NewTimer(wait)
			timerC = timer.Chan()
		}

		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case <-r.wake:
		case <-timerC:
		}
		if timer != nil {
			timer.Stop()
		}
	}
}

func (r *Runner) notify() {
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// dispatchDue starts every due job and returns the delay until the next
// pending job, if any.
func (r *Runner) dispatchDue(ctx context.Context) (time.Duration, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.clock.Now()
	var due []*Job
	var next time.Time
	hasNext := false
	for _, j := range r.jobs {
		if j.status != models.JobPending || j.next != nil {
			continue
		}
		if _, ok := r.executors[j.Kind]; !ok {
			continue
		}
		if !j.RunAt.After(now) {
			due = append(due, j)
			continue
		}
		if !hasNext || j.RunAt.Before(next) {
			next, hasNext = j.RunAt, true
		}
	}
	slices.SortFunc(due, func(a, b *Job) int { return cmp.Compare(a.Seq, b.Seq) })

	for _, j := range due {
		j.status = models.JobRunning
		exec := r.executors[j.Kind]
		r.wg.Add(1)
		go func() {
			defer r.wg.Done()
			r.execute(ctx, exec, j)
		}()
	}

	if !hasNext {
		return 0, false
	}
	return next.Sub(now), true
}

func (r *Runner) execute(ctx context.Context, exec Executor, j *Job) {
	log := r.log.With().
		Str("func", "Runner.execute").
		Str("job_id", j.ID).
		Str("kind", string(j.Kind)).
		Str("swarm", j.Swarm.Short()).
		Logger()

	attempt := 0
	err := retry.Do(ctx, r.policy.backoff(), func(ctx context.Context) error {
		attempt++
		err := exec.Execute(ctx, j)
		if err == nil || IsPermanent(err) || IsDeferred(err) || ctx.Err() != nil {
			return err
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("job attempt failed, retrying")
		return retry.RetryableError(err)
	})

	status := models.JobSucceeded
	switch {
	case err == nil:
	case IsDeferred(err):
		status = models.JobDeferred
		log.Info().Err(err).Msg("job deferred")
	default:
		status = models.JobFailed
		log.Err(err).Int("attempts", attempt).Msg("job failed")
	}

	r.mu.Lock()
	j.status = status
	j.err = err
	close(j.done)
	r.retire(j)
	r.mu.Unlock()
	r.notify()
}

// retire remembers a finished job for Result and prunes the oldest ones.
// Callers hold r.mu.
func (r *Runner) retire(j *Job) {
	r.finished = append(r.finished, j.ID)
	for len(r.finished) > finishedRetention {
		delete(r.jobs, r.finished[0])
		r.finished = r.finished[1:]
	}
}

// String is used in log fields.
func (h JobHandle) String() string {
	return fmt.Sprintf("%s#%d", h.ID, h.Seq)
}

// IsTransient reports whether err is worth another job run.
func IsTransient(err error) bool {
	return err != nil && !IsPermanent(err) && !IsDeferred(err) && !errors.Is(err, context.Canceled)
}
