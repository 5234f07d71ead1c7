// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command syncd is the config sync daemon.
//
// Usage:
//
//	syncd [run] [flags]   sync until interrupted
//	syncd status [flags]  print pending changes per config target
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/session-foundation/config-sync/internal/client"
	"github.com/session-foundation/config-sync/internal/config"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)

	command, args := "run", os.Args[1:]
	if len(args) > 0 && (args[0] == "run" || args[0] == "status") {
		command, args = args[0], args[1:]
	}

	cfg, err := config.GetClientConfig(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error getting configs: %v\n", err)
		os.Exit(1)
	}

	log := logger.NewClientLogger("syncd", cfg.App.LogPath)
	log.Info().Str("version", buildInfo.BuildVersion()).Str("command", command).Msg("starting")

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	app, err := client.NewApp(ctx, cfg, buildInfo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init sync daemon error")
	}
	defer app.Close()

	switch command {
	case "status":
		err = app.Status(ctx, os.Stdout)
	default:
		fmt.Print(buildInfo)
		err = app.Run(ctx)
	}
	if err != nil {
		log.Error().Err(err).Str("command", command).Msg("sync daemon error")
		app.Close()
		os.Exit(1)
	}
}
