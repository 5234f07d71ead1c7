// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import (
	"github.com/session-foundation/config-sync/internal/document"
	"github.com/session-foundation/config-sync/models"
)

// variant is what the store needs from any live document. Operations that
// differ between documents and key rings are dispatched on the concrete type.
type variant interface {
	needsPush() bool
	needsDump() bool
	dump() ([]byte, uint64, error)
	markDumped(gen uint64)
	knownHashes() models.HashSet
	confirmDeleted(hashes ...string)
}

type standardVariant struct {
	doc *document.Document
}

func (v standardVariant) needsPush() bool { return v.doc.NeedsPush() }
func (v standardVariant) needsDump() bool { return v.doc.NeedsDump() }
func (v standardVariant) dump() ([]byte, uint64, error) { return v.doc.Dump() }
func (v standardVariant) markDumped(gen uint64) { v.doc.MarkDumped(gen) }
func (v standardVariant) knownHashes() models.HashSet { return v.doc.KnownHashes() }
func (v standardVariant) confirmDeleted(hashes ...string) { v.doc.ConfirmDeleted(hashes...) }

// groupKeysVariant holds the key ring. Operations on it also need the
// group's info and members documents, which the store locks alongside.
type groupKeysVariant struct {
	keys *document.Keys
}

func (v groupKeysVariant) needsPush() bool { return v.keys.NeedsPush() }
func (v groupKeysVariant) needsDump() bool { return v.keys.NeedsDump() }
func (v groupKeysVariant) dump() ([]byte, uint64, error) { return v.keys.Dump() }
func (v groupKeysVariant) markDumped(gen uint64) { v.keys.MarkDumped(gen) }
func (v groupKeysVariant) knownHashes() models.HashSet { return v.keys.KnownHashes() }
func (v groupKeysVariant) confirmDeleted(hashes ...string) { v.keys.ConfirmDeleted(hashes...) }
