// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package crypto holds the signing identities used to authenticate swarm
// requests and the record hash shared by clients and storage nodes.
//
// Every swarm is addressed by an ed25519 public key. Requests against a
// swarm are signed with the matching private key:
//
//	signature = ed25519.Sign(priv, method ‖ namespace ‖ timestamp ‖ extra)
//
// where extra is the sorted hash list for delete requests and empty
// otherwise.
package crypto

import "github.com/session-foundation/config-sync/models"

//go:generate mockgen -source=interfaces.go -destination=../mock/identity_provider_mock.go -package=mock

// IdentityProvider resolves the credentials for a swarm.
type IdentityProvider interface {
	// AuthenticationMethod returns the signer for swarm, or
	// [ErrMissingCredentials] if no key for it is held.
	AuthenticationMethod(swarm models.SwarmPublicKey) (*AuthenticationMethod, error)
}
