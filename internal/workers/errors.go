// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package workers

import "errors"

var (
	// ErrJobNotFound is returned by Result for unknown or pruned jobs.
	ErrJobNotFound = errors.New("job not found")

	// ErrNoExecutor is returned when a job kind has no registered executor.
	ErrNoExecutor = errors.New("no executor registered for job kind")
)

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. The job fails immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err was wrapped with Permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return errors.As(err, &p)
}

type deferredError struct {
	err error
}

func (e *deferredError) Error() string { return e.err.Error() }
func (e *deferredError) Unwrap() error { return e.err }

// Deferred ends a job without failure; the work will be picked up by a
// later job.
func Deferred(err error) error {
	if err == nil {
		return nil
	}
	return &deferredError{err: err}
}

// IsDeferred reports whether err was wrapped with Deferred.
func IsDeferred(err error) bool {
	var d *deferredError
	return errors.As(err, &d)
}
