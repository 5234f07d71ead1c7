// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/swarm"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/models"
)

// Handler serves the storage node API.
type Handler struct {
	node      swarm.Service
	hasher    *utils.Hasher
	buildInfo models.AppBuildInfo

	logger *logger.Logger
}

// NewHandler creates a handler for node. An empty hashKey disables the
// integrity header check.
func NewHandler(node swarm.Service, hashKey string, buildInfo models.AppBuildInfo, logger *logger.Logger) *Handler {
	h := &Handler{
		node:      node,
		buildInfo: buildInfo,
		logger:    logger,
	}
	if hashKey != "" {
		h.hasher = utils.NewHasher(hashKey)
	}
	logger.Info().Bool("integrity_check", h.hasher != nil).Msg("http handler created")
	return h
}
