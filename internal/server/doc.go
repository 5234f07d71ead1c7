// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package server runs the storage node's HTTP server, from startup to
// graceful shutdown.
package server
