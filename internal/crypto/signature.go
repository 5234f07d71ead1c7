// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package crypto

import (
	"crypto/ed25519"
	"encoding/base64"
	"slices"
	"strconv"
	"strings"

	"golang.org/x/crypto/blake2b"

	"github.com/session-foundation/config-sync/models"
)

// AuthenticationMethod signs requests on behalf of one swarm.
type AuthenticationMethod struct {
	swarm models.SwarmPublicKey
	priv  ed25519.PrivateKey
}

// Swarm returns the swarm the method signs for.
func (a *AuthenticationMethod) Swarm() models.SwarmPublicKey {
	return a.swarm
}

// Sign stamps req with the method's pubkey, timestampMs and signature.
func (a *AuthenticationMethod) Sign(req *models.SwarmRequest, timestampMs int64) {
	req.PubKey = a.swarm
	req.TimestampMs = timestampMs
	sig := ed25519.Sign(a.priv, SigningPayload(*req))
	req.Signature = base64.StdEncoding.EncodeToString(sig)
}

// SigningPayload returns the bytes a request signature covers.
func SigningPayload(req models.SwarmRequest) []byte {
	var b strings.Builder
	b.WriteString(string(req.Method))

	switch {
	case req.Store != nil:
		b.WriteString(strconv.Itoa(req.Store.Namespace))
	case req.Retrieve != nil:
		b.WriteString(strconv.Itoa(req.Retrieve.Namespace))
	}
	b.WriteString(strconv.FormatInt(req.TimestampMs, 10))

	if req.Delete != nil {
		hashes := slices.Clone(req.Delete.Hashes)
		slices.Sort(hashes)
		for _, h := range hashes {
			b.WriteString(h)
		}
	}
	return []byte(b.String())
}

// VerifySignature checks req against the swarm key it claims to be signed
// by.
func VerifySignature(req models.SwarmRequest) error {
	pub := req.PubKey.Bytes()
	if len(pub) != ed25519.PublicKeySize {
		return ErrPubKeyMismatch
	}
	sig, err := base64.StdEncoding.DecodeString(req.Signature)
	if err != nil {
		return ErrInvalidSignature
	}
	if !ed25519.Verify(pub, SigningPayload(req), sig) {
		return ErrInvalidSignature
	}
	return nil
}

// MessageHash is the content hash a storage node assigns to a stored
// record: unpadded base64-url of blake2b-256 over namespace and data.
func MessageHash(namespace int, data []byte) string {
	h, _ := blake2b.New256(nil)
	h.Write([]byte(strconv.Itoa(namespace)))
	h.Write(data)
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}
