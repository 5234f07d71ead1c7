// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package adapter provides the transport used to talk to a storage swarm.
//
// [SwarmAdapter] decouples the sync engine from the wire protocol. The
// package ships an HTTP implementation ([NewHTTPSwarmAdapter]) speaking to
// the storage node's /api/v1 endpoints.
//
// Error values defined in errors.go are mapped from HTTP status codes by
// mapHTTPError so that callers can use [errors.Is] for transport-agnostic
// error handling (e.g. [ErrUnauthorized] for 401, [ErrServiceUnavailable]
// for 503). Requests are expected to arrive already signed.
package adapter

import (
	"context"

	"github.com/session-foundation/config-sync/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/swarm_adapter_mock.go -package=mock

// SwarmAdapter defines communication with a storage swarm.
type SwarmAdapter interface {
	// SendBatch sends requests to swarm as one batch. Responses are returned
	// positionally, one per request. A non-2xx sub-response is not an error;
	// an error means the batch as a whole did not go through.
	SendBatch(ctx context.Context, swarm models.SwarmPublicKey, requests []models.SwarmRequest) ([]models.SwarmResponse, error)

	// Retrieve fetches the records of one namespace newer than the request's
	// last hash.
	Retrieve(ctx context.Context, req models.SwarmRequest) (models.RetrieveResult, error)

	// Ping checks that the swarm is reachable.
	Ping(ctx context.Context) error
}
