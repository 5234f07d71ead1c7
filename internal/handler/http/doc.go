// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package http is the storage node's REST transport.
//
// Every request gets a trace id and an access log line. Request bodies are
// checked against the HashSHA256 integrity header before they reach the
// node service.
package http
