// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package models

import (
	"encoding/hex"
	"fmt"
	"strings"
)

// DocumentKind identifies one kind of mergeable configuration document.
// The numeric value doubles as the swarm namespace the document's records
// are stored under.
type DocumentKind int

const (
	UserProfile       DocumentKind = 2
	Contacts          DocumentKind = 3
	ConvoInfoVolatile DocumentKind = 4
	UserGroups        DocumentKind = 5
	GroupKeys         DocumentKind = 12
	GroupInfo         DocumentKind = 13
	GroupMembers      DocumentKind = 14
)

// UserKinds lists the documents kept in a user's own swarm, in merge order.
func UserKinds() []DocumentKind {
	return []DocumentKind{UserProfile, Contacts, ConvoInfoVolatile, UserGroups}
}

// GroupKinds lists the documents kept in a group swarm, in merge order.
// Keys always come first: info and members can only be read with the keys
// they were encrypted for.
func GroupKinds() []DocumentKind {
	return []DocumentKind{GroupKeys, GroupInfo, GroupMembers}
}

// Namespace returns the swarm namespace records of this kind are stored in.
func (k DocumentKind) Namespace() int {
	return int(k)
}

// IsGroup reports whether the kind belongs to a group swarm.
func (k DocumentKind) IsGroup() bool {
	return k == GroupKeys || k == GroupInfo || k == GroupMembers
}

// Valid reports whether k is one of the known document kinds.
func (k DocumentKind) Valid() bool {
	switch k {
	case UserProfile, Contacts, ConvoInfoVolatile, UserGroups, GroupKeys, GroupInfo, GroupMembers:
		return true
	}
	return false
}

// MergeRank orders kinds within one swarm for merging and pushing.
func (k DocumentKind) MergeRank() int {
	switch k {
	case GroupKeys:
		return 0
	case GroupInfo:
		return 1
	case GroupMembers:
		return 2
	}
	return int(k)
}

func (k DocumentKind) String() string {
	switch k {
	case UserProfile:
		return "user_profile"
	case Contacts:
		return "contacts"
	case ConvoInfoVolatile:
		return "convo_info_volatile"
	case UserGroups:
		return "user_groups"
	case GroupKeys:
		return "group_keys"
	case GroupInfo:
		return "group_info"
	case GroupMembers:
		return "group_members"
	}
	return fmt.Sprintf("unknown(%d)", int(k))
}

// KindFromNamespace maps a swarm namespace back to its document kind.
func KindFromNamespace(namespace int) (DocumentKind, bool) {
	k := DocumentKind(namespace)
	return k, k.Valid()
}

// SwarmPublicKey is the hex-encoded ed25519 public key addressing one swarm.
// A user's own account and every group each have their own swarm.
type SwarmPublicKey string

// Valid reports whether the key is a 32-byte hex string.
func (s SwarmPublicKey) Valid() bool {
	b, err := hex.DecodeString(string(s))
	return err == nil && len(b) == 32
}

// Bytes returns the decoded public key, or nil if it is malformed.
func (s SwarmPublicKey) Bytes() []byte {
	b, err := hex.DecodeString(string(s))
	if err != nil {
		return nil
	}
	return b
}

// Short returns a log-friendly prefix of the key.
func (s SwarmPublicKey) Short() string {
	if len(s) <= 8 {
		return string(s)
	}
	return string(s[:8]) + "…"
}

// ConfigTarget is one synchronization scope: a document kind owned by a swarm.
// At most one live document exists per target.
type ConfigTarget struct {
	Kind  DocumentKind   `json:"kind"`
	Owner SwarmPublicKey `json:"owner"`
}

func (t ConfigTarget) String() string {
	return t.Kind.String() + "/" + strings.ToLower(t.Owner.Short())
}

// ConfigDump is the persisted form of one document. It is always written
// whole, never patched.
type ConfigDump struct {
	Kind  DocumentKind   `json:"kind"`
	Owner SwarmPublicKey `json:"owner"`

	// Data is the serialized document state.
	Data []byte `json:"data"`

	// AssociatedMessageHashes holds every remote record hash still needed to
	// reconstruct Data or still awaiting deletion on the swarm.
	AssociatedMessageHashes HashSet `json:"associated_message_hashes"`
}

// Target returns the dump's config target.
func (d ConfigDump) Target() ConfigTarget {
	return ConfigTarget{Kind: d.Kind, Owner: d.Owner}
}

// PendingPush is the outgoing work for one target during one sync attempt.
// It is never persisted.
type PendingPush struct {
	Target ConfigTarget

	Payload []byte

	// SeqNo is the document's push sequence number. Documents without a
	// sequence (group keys) report HasSeqNo == false.
	SeqNo    int64
	HasSeqNo bool

	// ObsoleteHashes are previously stored records the current state
	// supersedes. They are offered for deletion until the swarm confirms it.
	ObsoleteHashes HashSet
}

// IncomingRecord is one remote record fetched from the swarm.
type IncomingRecord struct {
	// Hash is the swarm-assigned record hash; empty when unknown.
	Hash     string
	Payload  []byte
	SentAtMs int64
}

// MergeResult summarizes the effect of merging one batch of records.
type MergeResult struct {
	NeedsPush      bool
	NeedsDump      bool
	AcceptedHashes []string
	LatestSentAtMs int64
}
