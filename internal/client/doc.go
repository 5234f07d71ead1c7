// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sync daemon runtime.
//
// It wires the local store, the swarm transport, the identity and the
// service graph into one process lifecycle, and renders the status view.
package client
