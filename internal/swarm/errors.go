// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package swarm

import "errors"

var (
	ErrEmptyBatch        = errors.New("batch has no requests")
	ErrBatchTooLarge     = errors.New("batch has too many requests")
	ErrUnsupportedMethod = errors.New("unsupported request method")
	ErrMissingParams     = errors.New("request params do not match method")
	ErrClockSkew         = errors.New("request timestamp too far from node time")
	ErrNotAllDeleted     = errors.New("some records were not found")
)
