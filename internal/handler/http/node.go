// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"net/http"

	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/swarm"
	"github.com/session-foundation/config-sync/internal/utils"
	"github.com/session-foundation/config-sync/models"
)

func (h *Handler) batch(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var batch models.SwarmBatch
	if err := utils.ReadJSON(r.Body, &batch); err != nil {
		log.Err(err).Str("func", "*Handler.batch").Msg("invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	results, err := h.node.Batch(r.Context(), batch)
	if err != nil {
		log.Err(err).Str("func", "*Handler.batch").Int("requests", len(batch.Requests)).Msg("batch rejected")
		http.Error(w, err.Error(), swarm.StatusFromError(err))
		return
	}

	utils.WriteJSON(w, models.SwarmBatchResponse{Results: results}, http.StatusOK)
}

func (h *Handler) retrieve(w http.ResponseWriter, r *http.Request) {
	log := logger.FromRequest(r)

	var req models.SwarmRequest
	if err := utils.ReadJSON(r.Body, &req); err != nil {
		log.Err(err).Str("func", "*Handler.retrieve").Msg("invalid JSON was passed")
		http.Error(w, "Invalid JSON was passed", http.StatusBadRequest)
		return
	}

	res, err := h.node.Retrieve(r.Context(), req)
	if err != nil {
		log.Err(err).
			Str("func", "*Handler.retrieve").
			Str("swarm", req.PubKey.Short()).
			Msg("retrieve failed")
		http.Error(w, err.Error(), swarm.StatusFromError(err))
		return
	}

	utils.WriteJSON(w, res, http.StatusOK)
}
