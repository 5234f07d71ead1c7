// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package document

import "errors"

var (
	// ErrCorruptDump is returned when persisted document bytes cannot be
	// decoded. The document must not be used in that case.
	ErrCorruptDump = errors.New("corrupt document dump")

	// ErrMalformedRecord is returned for a remote record whose payload cannot
	// be parsed. Merges skip such records.
	ErrMalformedRecord = errors.New("malformed record payload")

	// ErrKindMismatch is returned when a dump belongs to another document kind.
	ErrKindMismatch = errors.New("document kind mismatch")

	// ErrMissingDependencies is returned when a group key operation is
	// attempted without the group's info and members documents.
	ErrMissingDependencies = errors.New("group keys require info and members documents")

	// ErrNothingToPush is returned by Push when the document is clean.
	ErrNothingToPush = errors.New("nothing to push")
)
