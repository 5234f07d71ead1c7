// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"encoding/hex"
	"fmt"
	"slices"
	"sync"

	"github.com/session-foundation/config-sync/models"
)

// Identity is the in-memory [IdentityProvider]: the user's own signing key
// plus the admin keys of every group the user administers.
type Identity struct {
	user models.SwarmPublicKey

	mu   sync.RWMutex
	keys map[models.SwarmPublicKey]ed25519.PrivateKey
}

// NewIdentity derives the user key from userSeed and registers every group
// seed. Seeds are 32-byte hex strings.
func NewIdentity(userSeed string, groupSeeds ...string) (*Identity, error) {
	id := &Identity{keys: make(map[models.SwarmPublicKey]ed25519.PrivateKey)}

	user, err := id.add(userSeed)
	if err != nil {
		return nil, fmt.Errorf("user seed: %w", err)
	}
	id.user = user

	for i, seed := range groupSeeds {
		if _, err := id.add(seed); err != nil {
			return nil, fmt.Errorf("group seed %d: %w", i, err)
		}
	}
	return id, nil
}

// UserSwarm returns the swarm of the user's own account.
func (id *Identity) UserSwarm() models.SwarmPublicKey {
	return id.user
}

// GroupSwarms returns the registered group swarms in lexical order.
func (id *Identity) GroupSwarms() []models.SwarmPublicKey {
	id.mu.RLock()
	defer id.mu.RUnlock()
	out := make([]models.SwarmPublicKey, 0, len(id.keys))
	for swarm := range id.keys {
		if swarm != id.user {
			out = append(out, swarm)
		}
	}
	slices.Sort(out)
	return out
}

// AddGroup registers an admin seed and returns the group's swarm.
func (id *Identity) AddGroup(seed string) (models.SwarmPublicKey, error) {
	return id.add(seed)
}

// AuthenticationMethod implements [IdentityProvider].
func (id *Identity) AuthenticationMethod(swarm models.SwarmPublicKey) (*AuthenticationMethod, error) {
	id.mu.RLock()
	priv, ok := id.keys[swarm]
	id.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingCredentials, swarm.Short())
	}
	return &AuthenticationMethod{swarm: swarm, priv: priv}, nil
}

func (id *Identity) add(seed string) (models.SwarmPublicKey, error) {
	priv, err := keyFromSeed(seed)
	if err != nil {
		return "", err
	}
	swarm := models.SwarmPublicKey(hex.EncodeToString(priv.Public().(ed25519.PublicKey)))

	id.mu.Lock()
	id.keys[swarm] = priv
	id.mu.Unlock()
	return swarm, nil
}

func keyFromSeed(seed string) (ed25519.PrivateKey, error) {
	raw, err := hex.DecodeString(seed)
	if err != nil || len(raw) != ed25519.SeedSize {
		return nil, ErrInvalidSeed
	}
	return ed25519.NewKeyFromSeed(raw), nil
}

// SwarmFromSeed returns the swarm addressed by the key derived from seed.
func SwarmFromSeed(seed string) (models.SwarmPublicKey, error) {
	priv, err := keyFromSeed(seed)
	if err != nil {
		return "", err
	}
	return models.SwarmPublicKey(hex.EncodeToString(priv.Public().(ed25519.PublicKey))), nil
}
