// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package swarm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/crypto"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/models"
)

const (
	// MaxBatchRequests caps the sub-requests of one batch.
	MaxBatchRequests = models.MaxBatchRequests

	maxClockSkew = 5 * time.Minute
	maxTTL       = 30 * 24 * time.Hour
)

// Node is the storage node service.
type Node struct {
	messages store.MessageRepository
	clock    clockwork.Clock
	logger   *logger.Logger
}

// NewNode creates a node storing records in messages.
func NewNode(messages store.MessageRepository, clock clockwork.Clock, log *logger.Logger) *Node {
	return &Node{
		messages: messages,
		clock:    clock,
		logger:   log,
	}
}

// Batch implements [Service].
func (n *Node) Batch(ctx context.Context, batch models.SwarmBatch) ([]models.SwarmResponse, error) {
	switch {
	case len(batch.Requests) == 0:
		return nil, ErrEmptyBatch
	case len(batch.Requests) > MaxBatchRequests:
		return nil, fmt.Errorf("%w: %d > %d", ErrBatchTooLarge, len(batch.Requests), MaxBatchRequests)
	}

	results := make([]models.SwarmResponse, len(batch.Requests))
	for i, req := range batch.Requests {
		results[i] = n.execute(ctx, req)
	}
	n.logger.Debug().
		Str("func", "Node.Batch").
		Int("requests", len(results)).
		Msg("batch executed")
	return results, nil
}

// Retrieve implements [Service].
func (n *Node) Retrieve(ctx context.Context, req models.SwarmRequest) (models.RetrieveResult, error) {
	if req.Method != models.MethodRetrieve || req.Retrieve == nil {
		return models.RetrieveResult{}, ErrMissingParams
	}
	if err := n.authorize(req); err != nil {
		return models.RetrieveResult{}, err
	}
	return n.retrieve(ctx, req)
}

func (n *Node) execute(ctx context.Context, req models.SwarmRequest) models.SwarmResponse {
	log := logger.FromContext(ctx)

	if err := n.authorize(req); err != nil {
		log.Warn().Err(err).
			Str("func", "Node.execute").
			Str("method", string(req.Method)).
			Str("swarm", req.PubKey.Short()).
			Msg("request rejected")
		return errorResponse(err)
	}

	var (
		body any
		err  error
	)
	switch req.Method {
	case models.MethodStore:
		body, err = n.store(ctx, req)
	case models.MethodDelete:
		body, err = n.delete(ctx, req)
	case models.MethodRetrieve:
		body, err = n.retrieve(ctx, req)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}
	if err != nil {
		log.Err(err).
			Str("func", "Node.execute").
			Str("method", string(req.Method)).
			Str("swarm", req.PubKey.Short()).
			Msg("request failed")
		return errorResponse(err)
	}

	raw, err := json.Marshal(body)
	if err != nil {
		return errorResponse(err)
	}
	return models.SwarmResponse{Code: http.StatusOK, Body: raw}
}

// authorize checks the request shape, then its signature, then its
// timestamp.
func (n *Node) authorize(req models.SwarmRequest) error {
	switch req.Method {
	case models.MethodStore:
		if req.Store == nil {
			return ErrMissingParams
		}
	case models.MethodDelete:
		if req.Delete == nil {
			return ErrMissingParams
		}
	case models.MethodRetrieve:
		if req.Retrieve == nil {
			return ErrMissingParams
		}
	default:
		return fmt.Errorf("%w: %q", ErrUnsupportedMethod, req.Method)
	}

	if err := crypto.VerifySignature(req); err != nil {
		return err
	}
	skew := n.clock.Now().Sub(time.UnixMilli(req.TimestampMs))
	if skew > maxClockSkew || skew < -maxClockSkew {
		return fmt.Errorf("%w: %s", ErrClockSkew, skew)
	}
	return nil
}

func (n *Node) store(ctx context.Context, req models.SwarmRequest) (models.StoreResult, error) {
	p := req.Store
	ttl := time.Duration(p.TTLMs) * time.Millisecond
	if ttl <= 0 || ttl > maxTTL {
		ttl = maxTTL
	}

	msg := models.StoredMessage{
		Hash:        crypto.MessageHash(p.Namespace, p.Data),
		Namespace:   p.Namespace,
		Data:        p.Data,
		TimestampMs: req.TimestampMs,
		ExpiryMs:    n.clock.Now().Add(ttl).UnixMilli(),
	}
	created, err := n.messages.Store(ctx, req.PubKey, msg)
	if err != nil {
		return models.StoreResult{}, err
	}

	logger.FromContext(ctx).Debug().
		Str("func", "Node.store").
		Str("swarm", req.PubKey.Short()).
		Int("namespace", p.Namespace).
		Str("hash", msg.Hash).
		Bool("created", created).
		Msg("record stored")
	return models.StoreResult{Hash: msg.Hash}, nil
}

func (n *Node) delete(ctx context.Context, req models.SwarmRequest) (models.DeleteResult, error) {
	p := req.Delete
	deleted, err := n.messages.Delete(ctx, req.PubKey, p.Hashes)
	if err != nil {
		return models.DeleteResult{}, err
	}
	if p.RequireSuccessfulDeletion && len(deleted) < len(p.Hashes) {
		return models.DeleteResult{}, fmt.Errorf("%w: %d of %d", ErrNotAllDeleted, len(p.Hashes)-len(deleted), len(p.Hashes))
	}
	if deleted == nil {
		deleted = []string{}
	}
	return models.DeleteResult{Deleted: deleted}, nil
}

func (n *Node) retrieve(ctx context.Context, req models.SwarmRequest) (models.RetrieveResult, error) {
	p := req.Retrieve
	limit := p.Limit
	if limit <= 0 || limit > store.DefaultRetrieveLimit {
		limit = store.DefaultRetrieveLimit
	}

	msgs, more, err := n.messages.Retrieve(ctx, req.PubKey, p.Namespace, p.LastHash, limit)
	if err != nil {
		return models.RetrieveResult{}, err
	}
	if msgs == nil {
		msgs = []models.StoredMessage{}
	}
	return models.RetrieveResult{Messages: msgs, More: more}, nil
}

// StatusFromError maps a node error to the HTTP status reported for it.
func StatusFromError(err error) int {
	switch {
	case errors.Is(err, ErrMissingParams),
		errors.Is(err, ErrUnsupportedMethod),
		errors.Is(err, ErrEmptyBatch),
		errors.Is(err, ErrBatchTooLarge):
		return http.StatusBadRequest
	case errors.Is(err, crypto.ErrInvalidSignature),
		errors.Is(err, crypto.ErrPubKeyMismatch):
		return http.StatusUnauthorized
	case errors.Is(err, ErrClockSkew):
		return http.StatusNotAcceptable
	case errors.Is(err, ErrNotAllDeleted):
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func errorResponse(err error) models.SwarmResponse {
	raw, _ := json.Marshal(map[string]string{"error": err.Error()})
	return models.SwarmResponse{Code: StatusFromError(err), Body: raw}
}
