// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package adapter

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"

	"github.com/go-resty/resty/v2"

	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/models"
)

const (
	// HashHeader carries the HMAC-SHA256 of the request body.
	HashHeader    = "HashSHA256"
	TraceIDHeader = "X-Trace-ID"

	batchPath    = "/api/v1/batch"
	retrievePath = "/api/v1/retrieve"
	pingPath     = "/api/v1/ping"
)

// HTTPSwarmAdapter is the HTTP implementation of [SwarmAdapter].
type HTTPSwarmAdapter struct {
	client *utils.HTTPClient
	hasher *utils.Hasher

	logger *logger.Logger
}

// NewHTTPSwarmAdapter normalises adapterCfg.HTTPAddress and builds a client
// whose per-request timeout covers both swarm routing and the request
// itself. Returns [ErrInvalidAddress] if the address cannot be used.
func NewHTTPSwarmAdapter(adapterCfg config.ClientAdapter, appCfg config.ClientApp, log *logger.Logger) (*HTTPSwarmAdapter, error) {
	baseURL, err := normalizeBaseURL(adapterCfg.HTTPAddress)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAddress, err)
	}

	timeout := adapterCfg.RoutingTimeout + adapterCfg.RequestTimeout
	return &HTTPSwarmAdapter{
		client: utils.NewHTTPClient(baseURL, timeout),
		hasher: utils.NewHasher(appCfg.HashKey),
		logger: log,
	}, nil
}

func normalizeBaseURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("empty address")
	}

	if !strings.Contains(raw, "://") {
		raw = "http://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return "", err
	}
	if u.Scheme == "" || u.Host == "" {
		return "", fmt.Errorf("address must include host and scheme")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// SendBatch implements [SwarmAdapter]. It fails with [ErrResponseMismatch]
// if the node answers with a different number of results than requests.
func (h *HTTPSwarmAdapter) SendBatch(ctx context.Context, swarm models.SwarmPublicKey, requests []models.SwarmRequest) ([]models.SwarmResponse, error) {
	var out models.SwarmBatchResponse
	if err := h.post(ctx, batchPath, models.SwarmBatch{Requests: requests}, &out); err != nil {
		return nil, fmt.Errorf("send batch: %w", err)
	}
	if len(out.Results) != len(requests) {
		return nil, fmt.Errorf("%w: sent %d, got %d", ErrResponseMismatch, len(requests), len(out.Results))
	}

	h.logger.Debug().
		Str("func", "*HTTPSwarmAdapter.SendBatch").
		Str("swarm", swarm.Short()).
		Int("requests", len(requests)).
		Msg("batch sent")
	return out.Results, nil
}

// Retrieve implements [SwarmAdapter].
func (h *HTTPSwarmAdapter) Retrieve(ctx context.Context, req models.SwarmRequest) (models.RetrieveResult, error) {
	var out models.RetrieveResult
	if err := h.post(ctx, retrievePath, req, &out); err != nil {
		return models.RetrieveResult{}, fmt.Errorf("retrieve: %w", err)
	}
	return out, nil
}

// Ping implements [SwarmAdapter].
func (h *HTTPSwarmAdapter) Ping(ctx context.Context) error {
	resp, err := h.request(ctx).Get(pingPath)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	return mapHTTPError(resp)
}

func (h *HTTPSwarmAdapter) post(ctx context.Context, path string, body, result any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	resp, err := h.request(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader(HashHeader, h.hasher.SumHex(payload)).
		SetBody(payload).
		Post(path)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if err = mapHTTPError(resp); err != nil {
		return err
	}

	if err = json.Unmarshal(resp.Body(), result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (h *HTTPSwarmAdapter) request(ctx context.Context) *resty.Request {
	req := h.client.R().SetContext(ctx)
	if traceID, ok := utils.GetTraceIDFromContext(ctx); ok {
		req.SetHeader(TraceIDHeader, traceID)
	}
	return req
}
