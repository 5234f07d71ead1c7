// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package service

import (
	"errors"
	"fmt"

	"github.com/session-foundation/config-sync/internal/adapter"
	"github.com/session-foundation/config-sync/internal/connectivity"
	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/workers"
)

var (
	// ErrOffline is returned by a run whose batch failed while the swarm was
	// known to be unreachable. A fresh run is enqueued once it is back.
	ErrOffline = errors.New("swarm is offline")

	// ErrRequestFailed is returned when a run requiring every sub-request to
	// succeed got a non-2xx sub-response.
	ErrRequestFailed = errors.New("swarm request failed")

	// ErrSyncFailed is returned by RequestSync when the run did not succeed
	// but left no error behind.
	ErrSyncFailed = errors.New("config sync failed")

	// ErrBatchTooLarge is returned by a run whose additional requests do not
	// fit into one batch next to the config pushes.
	ErrBatchTooLarge = errors.New("sync batch too large")

	// ErrCoalesced ends a run that waited for an earlier run of its swarm
	// and found nothing left to push.
	ErrCoalesced = errors.New("changes pushed by an earlier run")

	ErrInvalidTarget = errors.New("invalid config target")
)

// classifyBatchError decides how the runner treats a failed batch call:
// retried, or failed for good.
func classifyBatchError(err error, state connectivity.State) error {
	switch {
	case err == nil:
		return nil
	case state == connectivity.Offline:
		return workers.Permanent(fmt.Errorf("%w: %w", ErrOffline, err))
	case errors.Is(err, crypto.ErrMissingCredentials), adapter.IsPermanent(err):
		return workers.Permanent(err)
	}
	return err
}
