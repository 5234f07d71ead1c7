// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import "errors"

var (
	ErrMissingCredentials = errors.New("no credentials held for swarm")
	ErrInvalidSeed        = errors.New("seed must be 32 hex-encoded bytes")
	ErrInvalidSignature   = errors.New("request signature is invalid")
	ErrPubKeyMismatch     = errors.New("request pubkey does not match signer")
)
