// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import "errors"

var (
	// ErrTargetUnavailable is returned for every operation on a target whose
	// persisted dump could not be decoded. The target stays closed until the
	// swarm is unloaded and loaded again.
	ErrTargetUnavailable = errors.New("config target unavailable")

	// ErrNotLoaded is returned for a target that was never loaded.
	ErrNotLoaded = errors.New("config target not loaded")

	// ErrUnknownKind is returned when a target names an unsupported kind.
	ErrUnknownKind = errors.New("unknown document kind")

	// ErrWrongVariant is returned when an operation does not apply to the
	// target's document variant, e.g. key-value edits on group keys.
	ErrWrongVariant = errors.New("operation not supported for document kind")

	// ErrUnsupportedDumpVersion is returned for dump envelopes written by a
	// newer release.
	ErrUnsupportedDumpVersion = errors.New("unsupported dump version")
)
