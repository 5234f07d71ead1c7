// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"bytes"
	"io"
	"net/http"

	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/utils"
)

const hashHeader = "HashSHA256"

// withHashCheck verifies the HashSHA256 header against the raw request body
// and restores the body for the next handler.
func (h *Handler) withHashCheck(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if h.hasher == nil {
			next.ServeHTTP(w, r)
			return
		}
		log := logger.FromRequest(r)

		sum := r.Header.Get(hashHeader)
		if sum == "" {
			log.Warn().Str("func", "*Handler.withHashCheck").Msg("request without integrity header")
			http.Error(w, ErrEmptyHashHeader.Error(), http.StatusBadRequest)
			return
		}

		body, err := io.ReadAll(io.LimitReader(r.Body, utils.MaxBodyBytes))
		if err != nil {
			log.Err(err).Str("func", "*Handler.withHashCheck").Msg("failed to read request body")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		r.Body = io.NopCloser(bytes.NewReader(body))

		if !h.hasher.Verify(body, sum) {
			log.Error().Str("func", "*Handler.withHashCheck").
				Str("hash from request", sum).
				Msg("hashes are not equal")
			http.Error(w, ErrHashMismatch.Error(), http.StatusBadRequest)
			return
		}

		next.ServeHTTP(w, r)
	})
}
