// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Init builds the node router.
func (h *Handler) Init() *chi.Mux {
	router := chi.NewRouter()
	router.Use(middleware.Recoverer)
	router.Use(h.withTraceID, h.withLogging, withGZip)

	router.Route("/api/v1", func(r chi.Router) {
		r.Get("/ping", h.ping)
		r.Get("/version", h.version)

		r.Group(func(r chi.Router) {
			r.Use(h.withHashCheck)
			r.Post("/batch", h.batch)
			r.Post("/retrieve", h.retrieve)
		})
	})

	router.MethodNotAllowed(CheckHTTPMethod(router))

	return router
}
