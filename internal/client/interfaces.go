// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import (
	"context"
	"io"
)

// Client is a runnable sync daemon.
type Client interface {
	// Run loads persisted state and syncs until ctx is cancelled.
	Run(ctx context.Context) error

	// Status writes the persisted sync state of every target to w.
	Status(ctx context.Context, w io.Writer) error

	Close() error
}
