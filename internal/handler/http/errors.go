// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package http

import "errors"

var (
	// ErrEmptyHashHeader is returned when a body-carrying request has no
	// HashSHA256 header while the node is configured with a hash key.
	ErrEmptyHashHeader = errors.New("empty `HashSHA256` header")

	// ErrHashMismatch is returned when the HashSHA256 header does not match
	// the request body.
	ErrHashMismatch = errors.New("request body integrity check failed")
)
