// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// StructuredJSONConfig mirrors [StructuredConfig] in the JSON file layout.
type StructuredJSONConfig struct {
	App struct {
		HashKey      string   `json:"hash_key"`
		Version      string   `json:"version"`
		IdentitySeed string   `json:"identity_seed"`
		GroupSeeds   []string `json:"group_seeds"`
		LogPath      string   `json:"log_path"`
	} `json:"app,omitempty"`

	Storage struct {
		DB struct {
			DSN string `json:"dsn"`
		} `json:"db,omitempty"`
	} `json:"storage,omitempty"`

	Server struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
	} `json:"server,omitempty"`

	Adapter struct {
		HTTPAddress    string   `json:"http_address"`
		RequestTimeout Duration `json:"request_timeout"`
		RoutingTimeout Duration `json:"routing_timeout"`
	} `json:"adapter,omitempty"`

	Workers struct {
		ThrottleInterval     Duration `json:"throttle_interval"`
		TargetStagger        Duration `json:"target_stagger"`
		PollInterval         Duration `json:"poll_interval"`
		ConnectivityInterval Duration `json:"connectivity_interval"`
		MaxRetries           uint64   `json:"max_retries"`
		RetryBaseDelay       Duration `json:"retry_base_delay"`
	} `json:"workers,omitempty"`
}

func parseJSON(jsonFilePath string) (*StructuredConfig, error) {
	jsonFile, err := os.Open(jsonFilePath)
	if err != nil {
		return nil, fmt.Errorf("error reading a json file: %w", err)
	}
	defer jsonFile.Close()

	var jsonCfg StructuredJSONConfig
	if err := json.NewDecoder(jsonFile).Decode(&jsonCfg); err != nil {
		return nil, fmt.Errorf("error decoding json configs: %w", err)
	}

	cfg := &StructuredConfig{
		App: App{
			HashKey:      jsonCfg.App.HashKey,
			Version:      jsonCfg.App.Version,
			IdentitySeed: jsonCfg.App.IdentitySeed,
			GroupSeeds:   jsonCfg.App.GroupSeeds,
			LogPath:      jsonCfg.App.LogPath,
		},
		Storage: Storage{
			DB: DB{DSN: jsonCfg.Storage.DB.DSN},
		},
		Server: Server{
			HTTPAddress:    jsonCfg.Server.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Server.RequestTimeout),
		},
		Adapter: Adapter{
			HTTPAddress:    jsonCfg.Adapter.HTTPAddress,
			RequestTimeout: time.Duration(jsonCfg.Adapter.RequestTimeout),
			RoutingTimeout: time.Duration(jsonCfg.Adapter.RoutingTimeout),
		},
		Workers: Workers{
			ThrottleInterval:     time.Duration(jsonCfg.Workers.ThrottleInterval),
			TargetStagger:        time.Duration(jsonCfg.Workers.TargetStagger),
			PollInterval:         time.Duration(jsonCfg.Workers.PollInterval),
			ConnectivityInterval: time.Duration(jsonCfg.Workers.ConnectivityInterval),
			MaxRetries:           jsonCfg.Workers.MaxRetries,
			RetryBaseDelay:       time.Duration(jsonCfg.Workers.RetryBaseDelay),
		},
	}

	return cfg, nil
}

// Duration is a wrapper around time.Duration that supports JSON unmarshaling
// from strings like "1h", "30s" as well as raw nanoseconds.
type Duration time.Duration

func (d *Duration) UnmarshalJSON(b []byte) error {
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}

	switch value := v.(type) {
	case float64:
		*d = Duration(time.Duration(value))
		return nil
	case string:
		tmp, err := time.ParseDuration(value)
		if err != nil {
			return err
		}
		*d = Duration(tmp)
		return nil
	default:
		return fmt.Errorf("invalid duration %s", string(b))
	}
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}
