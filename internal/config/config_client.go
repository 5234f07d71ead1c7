// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"fmt"
	"time"
)

// ClientApp holds identity and integrity settings of the sync daemon.
type ClientApp struct {
	HashKey      string
	IdentitySeed string
	GroupSeeds   []string
	LogPath      string
	Version      string
}

// ClientAdapter holds the swarm transport settings.
type ClientAdapter struct {
	HTTPAddress    string
	RequestTimeout time.Duration
	RoutingTimeout time.Duration
}

// ClientDB contains local database connection settings.
type ClientDB struct {
	// DSN is the SQLite database file path.
	DSN string
}

// ClientStorage groups client storage backend settings.
type ClientStorage struct {
	DB ClientDB
}

// ClientWorkers contains scheduling settings of the sync daemon's jobs.
type ClientWorkers struct {
	ThrottleInterval     time.Duration
	TargetStagger        time.Duration
	PollInterval         time.Duration
	ConnectivityInterval time.Duration
	MaxRetries           uint64
	RetryBaseDelay       time.Duration
}

// ClientConfig is the sync daemon's view of [StructuredConfig].
type ClientConfig struct {
	App     ClientApp
	Adapter ClientAdapter
	Storage ClientStorage
	Workers ClientWorkers
}

// GetClientConfig builds and validates the sync daemon configuration from
// all sources, parsing flags from args.
func GetClientConfig(args []string) (*ClientConfig, error) {
	cfg, err := GetStructuredConfig(args)
	if err != nil {
		return nil, fmt.Errorf("error get structured config: %w", err)
	}

	clientCfg := cfg.Client()
	return clientCfg, clientCfg.validate()
}

// Client maps the fields relevant to the sync daemon.
func (cfg *StructuredConfig) Client() *ClientConfig {
	return &ClientConfig{
		App: ClientApp{
			HashKey:      cfg.App.HashKey,
			IdentitySeed: cfg.App.IdentitySeed,
			GroupSeeds:   cfg.App.GroupSeeds,
			LogPath:      cfg.App.LogPath,
			Version:      cfg.App.Version,
		},
		Adapter: ClientAdapter{
			HTTPAddress:    cfg.Adapter.HTTPAddress,
			RequestTimeout: cfg.Adapter.RequestTimeout,
			RoutingTimeout: cfg.Adapter.RoutingTimeout,
		},
		Storage: ClientStorage{
			DB: ClientDB{DSN: cfg.Storage.DB.DSN},
		},
		Workers: ClientWorkers{
			ThrottleInterval:     cfg.Workers.ThrottleInterval,
			TargetStagger:        cfg.Workers.TargetStagger,
			PollInterval:         cfg.Workers.PollInterval,
			ConnectivityInterval: cfg.Workers.ConnectivityInterval,
			MaxRetries:           cfg.Workers.MaxRetries,
			RetryBaseDelay:       cfg.Workers.RetryBaseDelay,
		},
	}
}
