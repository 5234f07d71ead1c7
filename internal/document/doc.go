// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package document implements the mergeable configuration documents the sync
// engine drives.
//
// [Document] is a last-writer-wins map CRDT used for every standard config
// kind (user profile, contacts, group info, group members, ...). Each local
// push carries a strictly increasing sequence number owned by the document,
// and confirmations for stale sequence numbers never clear newer pending
// changes.
//
// [Keys] is the group key ring. It has no sequence number: a pending key
// message is either present (needs push) or not.
//
// Both types track the remote record hashes they were built from so callers
// can tell which stored records are obsolete and may be deleted. Neither type
// is safe for concurrent use; the config store serializes access.
package document
