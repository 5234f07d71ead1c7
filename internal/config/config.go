// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"time"
)

// StructuredConfig is the top-level configuration container shared by the
// sync daemon and the storage node. It is populated by merging defaults,
// environment variables, command-line flags and an optional JSON file.
//
// Struct tags:
//   - envPrefix: prefix applied to all nested env tag lookups (caarlos0/env).
//   - env: direct environment variable name for scalar fields.
type StructuredConfig struct {
	// App holds identity and integrity settings.
	App App `envPrefix:"APP_"`

	// Storage holds the database connection settings.
	Storage Storage `envPrefix:"STORAGE_"`

	// Server holds the listen address of the storage node.
	Server Server `envPrefix:"SERVER_"`

	// Adapter holds the swarm endpoint used by the sync daemon.
	Adapter Adapter `envPrefix:"ADAPTER_"`

	// Workers holds scheduling settings of the sync and poll jobs.
	Workers Workers `envPrefix:"WORKERS_"`

	// JSONFilePath is the optional path to a JSON configuration file.
	// Populated via the CONFIG environment variable or the -c / -config flag.
	JSONFilePath string `env:"CONFIG"`
}

// Storage groups the configuration for storage backends.
type Storage struct {
	DB DB `envPrefix:"DB_"`
}

// App holds application-level configuration.
type App struct {
	// HashKey is the HMAC key for the request integrity header shared by the
	// daemon and the node.
	// Env: APP_HASH_KEY
	HashKey string `env:"HASH_KEY"`

	// Version is the version string of the running binary.
	// Env: APP_VERSION
	Version string `env:"VERSION"`

	// IdentitySeed is the hex-encoded 32-byte ed25519 seed of the account.
	// Its public key addresses the user's own swarm.
	// Env: APP_IDENTITY_SEED
	IdentitySeed string `env:"IDENTITY_SEED"`

	// GroupSeeds are hex-encoded admin seeds of groups this device manages.
	// Env: APP_GROUP_SEEDS (comma separated)
	GroupSeeds []string `env:"GROUP_SEEDS" envSeparator:","`

	// LogPath is the file the daemon logs to. Empty means "logs" next to the
	// executable.
	// Env: APP_LOG_PATH
	LogPath string `env:"LOG_PATH"`
}

// Server holds network and timeout settings of the storage node.
type Server struct {
	// HTTPAddress is the "host:port" the node listens on.
	// Env: SERVER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the handling of a single inbound request.
	// Env: SERVER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
}

// DB holds connection settings for the database backend.
type DB struct {
	// DSN is a SQLite file path for the daemon or a PostgreSQL URL for the
	// node.
	// Env: STORAGE_DB_DATABASE_URI
	DSN string `env:"DATABASE_URI"`
}

// Adapter holds settings of the outbound swarm transport.
type Adapter struct {
	// HTTPAddress is the base URL or "host:port" of the swarm endpoint.
	// Env: ADAPTER_ADDRESS
	HTTPAddress string `env:"ADDRESS"`

	// RequestTimeout bounds the node's handling of a batch.
	// Env: ADAPTER_REQUEST_TIMEOUT
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`

	// RoutingTimeout is the allowance for reaching a node of the swarm. It is
	// added to RequestTimeout for every call.
	// Env: ADAPTER_ROUTING_TIMEOUT
	RoutingTimeout time.Duration `env:"ROUTING_TIMEOUT"`
}

// Workers holds scheduling settings of background jobs.
type Workers struct {
	// ThrottleInterval is the minimum gap between the completion of one sync
	// of a swarm and the start of the next.
	// Env: WORKERS_THROTTLE_INTERVAL
	ThrottleInterval time.Duration `env:"THROTTLE_INTERVAL"`

	// TargetStagger spaces out queued syncs of one swarm that carry
	// additional requests.
	// Env: WORKERS_TARGET_STAGGER
	TargetStagger time.Duration `env:"TARGET_STAGGER"`

	// PollInterval is how often every swarm is polled for new records.
	// Env: WORKERS_POLL_INTERVAL
	PollInterval time.Duration `env:"POLL_INTERVAL"`

	// ConnectivityInterval is how often the swarm endpoint is probed.
	// Env: WORKERS_CONNECTIVITY_INTERVAL
	ConnectivityInterval time.Duration `env:"CONNECTIVITY_INTERVAL"`

	// MaxRetries caps retries of a transiently failing job.
	// Env: WORKERS_MAX_RETRIES
	MaxRetries uint64 `env:"MAX_RETRIES"`

	// RetryBaseDelay is the first backoff delay between retries.
	// Env: WORKERS_RETRY_BASE_DELAY
	RetryBaseDelay time.Duration `env:"RETRY_BASE_DELAY"`
}

// GetStructuredConfig loads and merges the configuration from all sources
// in priority order (later sources override non-zero fields):
//  1. Built-in defaults
//  2. Environment variables
//  3. Command-line flags parsed from args
//  4. JSON file (path resolved from sources 2 and 3)
func GetStructuredConfig(args []string) (*StructuredConfig, error) {
	return newConfigBuilder().
		withDefaults().
		withEnv().
		withFlags(args).
		withJSON().
		build()
}
