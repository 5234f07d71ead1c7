// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/hex"
	"strings"
)

const seedSize = 32

func validSeed(s string) bool {
	b, err := hex.DecodeString(s)
	return err == nil && len(b) == seedSize
}

func (cfg *ClientConfig) validate() error {
	if cfg.Storage.DB.DSN == "" || strings.Contains(cfg.Storage.DB.DSN, "memory") {
		return ErrInvalidStorageConfigs
	}

	if cfg.Adapter.HTTPAddress == "" || cfg.Adapter.RequestTimeout <= 0 || cfg.Adapter.RoutingTimeout < 0 {
		return ErrInvalidAdapterConfigs
	}

	w := cfg.Workers
	if w.ThrottleInterval <= 0 || w.PollInterval <= 0 || w.ConnectivityInterval <= 0 ||
		w.TargetStagger < 0 || w.RetryBaseDelay <= 0 {
		return ErrInvalidWorkerConfigs
	}

	if cfg.App.HashKey == "" || !validSeed(cfg.App.IdentitySeed) {
		return ErrInvalidAppConfigs
	}
	for _, s := range cfg.App.GroupSeeds {
		if !validSeed(s) {
			return ErrInvalidAppConfigs
		}
	}

	return nil
}

func (cfg *NodeConfig) validate() error {
	if cfg.DSN == "" {
		return ErrInvalidStorageConfigs
	}

	if cfg.HTTPAddress == "" || cfg.RequestTimeout <= 0 {
		return ErrInvalidServerConfigs
	}

	if cfg.HashKey == "" {
		return ErrInvalidAppConfigs
	}

	return nil
}
