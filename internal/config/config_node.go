// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// NodeConfig is the storage node's view of [StructuredConfig].
type NodeConfig struct {
	HashKey        string
	HTTPAddress    string
	RequestTimeout time.Duration
	DSN            string
}

// GetNodeConfig builds and validates the storage node configuration from
// all sources, parsing flags from args.
func GetNodeConfig(args []string) (*NodeConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	nodeCfg := cfg.Node()
	return nodeCfg, nodeCfg.validate()
}

// Node maps the fields relevant to the storage node.
func (cfg *StructuredConfig) Node() *NodeConfig {
	return &NodeConfig{
		HashKey:        cfg.App.HashKey,
		HTTPAddress:    cfg.Server.HTTPAddress,
		RequestTimeout: cfg.Server.RequestTimeout,
		DSN:            cfg.Storage.DB.DSN,
	}
}
