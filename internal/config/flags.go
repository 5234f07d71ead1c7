// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package config

import (
	"errors"
	"flag"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"
)

// NetAddress holds structured network address data for host and port.
// It implements the flag.Value interface.
type NetAddress struct {
	Host string
	Port int
}

// ParseFlags parses configuration flags from args (without the program
// name or subcommand).
//
// Flags:
//
//	-a node listen address in format [host]:[port]
//	-s swarm endpoint address
//	-d database DSN
//	-c/-config json file path with configs
//	-hash-key request integrity hash key
//	-identity-seed hex ed25519 account seed
//	-log log file path
//	-request-timeout request timeout (e.g., "10s")
//	-routing-timeout routing allowance added to each swarm call
//	-throttle minimum gap between syncs of one swarm
//	-poll-interval swarm poll interval
func ParseFlags(args []string) (*StructuredConfig, error) {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)

	var serverAddress NetAddress
	var swarmAddress, databaseDSN, jsonConfigPath, hashKey, identitySeed, logPath string
	var requestTimeout, routingTimeout, throttle, pollInterval time.Duration

	fs.Var(&serverAddress, "a", "Net address host:port")
	fs.StringVar(&swarmAddress, "s", "", "Swarm endpoint address")
	fs.StringVar(&databaseDSN, "d", "", "Database DSN")
	fs.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	fs.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	fs.StringVar(&hashKey, "hash-key", "", "Request integrity hash key")
	fs.StringVar(&identitySeed, "identity-seed", "", "Hex ed25519 account seed")
	fs.StringVar(&logPath, "log", "", "Log file path")
	fs.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 10s)")
	fs.DurationVar(&routingTimeout, "routing-timeout", 0, "Routing timeout added to each swarm call")
	fs.DurationVar(&throttle, "throttle", 0, "Minimum gap between syncs of one swarm")
	fs.DurationVar(&pollInterval, "poll-interval", 0, "Swarm poll interval")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("error parsing flags: %w", err)
	}

	return &StructuredConfig{
		App: App{
			HashKey:      hashKey,
			IdentitySeed: identitySeed,
			LogPath:      logPath,
		},
		Storage: Storage{
			DB: DB{DSN: databaseDSN},
		},
		Server: Server{
			HTTPAddress:    serverAddress.String(),
			RequestTimeout: requestTimeout,
		},
		Adapter: Adapter{
			HTTPAddress:    swarmAddress,
			RequestTimeout: requestTimeout,
			RoutingTimeout: routingTimeout,
		},
		Workers: Workers{
			ThrottleInterval: throttle,
			PollInterval:     pollInterval,
		},
		JSONFilePath: jsonConfigPath,
	}, nil
}

// String returns a canonical host:port string for a NetAddress, or an empty
// string when neither part is set.
func (a *NetAddress) String() string {
	if a.Host == "" && a.Port == 0 {
		return ""
	}

	return a.Host + ":" + strconv.Itoa(a.Port)
}

// Set parses the input string of form host:port and populates the NetAddress.
// It validates the port range, checks IP correctness unless host is
// "localhost" or empty, and returns an error if the format or values are
// invalid.
func (a *NetAddress) Set(s string) error {
	hostAndPort := strings.Split(s, ":")
	if len(hostAndPort) != 2 {
		return errors.New("need address in a form `host:port`")
	}

	host := hostAndPort[0]
	port, err := strconv.Atoi(hostAndPort[1])
	if err != nil {
		return err
	}

	if port < 1 || port > 65535 {
		return errors.New("port number must be in range 1-65535")
	}

	if host != "localhost" && host != "" {
		if net.ParseIP(host) == nil {
			return errors.New("incorrect IP-address provided")
		}
	}

	a.Host = host
	a.Port = port
	return nil
}
