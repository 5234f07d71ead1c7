// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package swarm implements a single storage node of a swarm for development
// and end-to-end testing. It keeps records in the message repository and
// checks every request signature against the swarm key it targets.
package swarm

import (
	"context"

	"github.com/session-foundation/config-sync/models"
)

// Service is what the node's transport calls into.
type Service interface {
	// Batch executes requests in order and answers each one positionally.
	// A failing sub-request does not stop the batch.
	Batch(ctx context.Context, batch models.SwarmBatch) ([]models.SwarmResponse, error)

	// Retrieve returns records of one namespace newer than the request's
	// last hash.
	Retrieve(ctx context.Context, req models.SwarmRequest) (models.RetrieveResult, error)
}
