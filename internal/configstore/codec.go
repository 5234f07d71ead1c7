// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package configstore

import (
	"encoding/json"
	"fmt"

	"github.com/session-foundation/config-sync/models"
)

const dumpVersion = 1

type envelope struct {
	Version int                 `json:"version"`
	Kind    models.DocumentKind `json:"kind"`
	Data    []byte              `json:"data"`
}

// EncodeDump wraps serialized document state in a versioned envelope.
func EncodeDump(kind models.DocumentKind, state []byte) ([]byte, error) {
	b, err := json.Marshal(envelope{Version: dumpVersion, Kind: kind, Data: state})
	if err != nil {
		return nil, fmt.Errorf("encode dump envelope: %w", err)
	}
	return b, nil
}

// DecodeDump unwraps a dump envelope and checks it belongs to kind.
func DecodeDump(kind models.DocumentKind, data []byte) ([]byte, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("decode dump envelope: %w", err)
	}
	if env.Version < 1 || env.Version > dumpVersion {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedDumpVersion, env.Version)
	}
	if env.Kind != kind {
		return nil, fmt.Errorf("dump envelope holds %s, want %s", env.Kind, kind)
	}
	return env.Data, nil
}
