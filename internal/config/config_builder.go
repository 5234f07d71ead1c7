// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"fmt"
	"time"

	"dario.cat/mergo"
)

// Defaults applied before any other source.
const (
	DefaultThrottleInterval     = 3 * time.Second
	DefaultTargetStagger        = 250 * time.Millisecond
	DefaultPollInterval         = 5 * time.Second
	DefaultConnectivityInterval = 10 * time.Second
	DefaultMaxRetries           = 3
	DefaultRetryBaseDelay       = 500 * time.Millisecond
	DefaultRequestTimeout       = 10 * time.Second
	DefaultRoutingTimeout       = 5 * time.Second
)

type configBuilder struct {
	configs []*StructuredConfig
	err     error
}

func newConfigBuilder() *configBuilder {
	return &configBuilder{
		configs: make([]*StructuredConfig, 0, 4),
	}
}

func (b *configBuilder) build() (*StructuredConfig, error) {
	if b.err != nil {
		return nil, fmt.Errorf("error occurred during building config: %w", b.err)
	}

	config := new(StructuredConfig)
	for _, cfg := range b.configs {
		if err := mergo.Merge(config, cfg, mergo.WithOverride); err != nil {
			return nil, fmt.Errorf("error merging configs: %w", err)
		}
	}

	return config, nil
}

func (b *configBuilder) withDefaults() *configBuilder {
	b.configs = append(b.configs, &StructuredConfig{
		Server: Server{RequestTimeout: DefaultRequestTimeout},
		Adapter: Adapter{
			RequestTimeout: DefaultRequestTimeout,
			RoutingTimeout: DefaultRoutingTimeout,
		},
		Workers: Workers{
			ThrottleInterval:     DefaultThrottleInterval,
			TargetStagger:        DefaultTargetStagger,
			PollInterval:         DefaultPollInterval,
			ConnectivityInterval: DefaultConnectivityInterval,
			MaxRetries:           DefaultMaxRetries,
			RetryBaseDelay:       DefaultRetryBaseDelay,
		},
	})
	return b
}

func (b *configBuilder) withEnv() *configBuilder {
	envCfg := &StructuredConfig{}
	if err := parseEnv(envCfg); err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, envCfg)
	return b
}

func (b *configBuilder) withFlags(args []string) *configBuilder {
	flags, err := ParseFlags(args)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}

	b.configs = append(b.configs, flags)
	return b
}

func (b *configBuilder) withJSON() *configBuilder {
	var jsonPath string
	for _, cfg := range b.configs {
		if cfg.JSONFilePath != "" {
			jsonPath = cfg.JSONFilePath
		}
	}
	if jsonPath == "" {
		return b
	}

	jsonCfg, err := parseJSON(jsonPath)
	if err != nil {
		b.err = errors.Join(b.err, err)
		return b
	}
	b.configs = append(b.configs, jsonCfg)
	return b
}
