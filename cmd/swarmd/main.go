// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Command swarmd is a development storage node serving the swarm API.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/session-foundation/config-sync/internal/config"
	handler "github.com/session-foundation/config-sync/internal/handler/http"
	"github.com/session-foundation/config-sync/internal/logger"
	"github.com/session-foundation/config-sync/internal/server"
	"github.com/session-foundation/config-sync/internal/store"
	"github.com/session-foundation/config-sync/internal/swarm"
	"github.com/session-foundation/config-sync/internal/workers"
	"github.com/session-foundation/config-sync/models"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	buildInfo := models.NewAppBuildInfo(buildVersion, buildDate, buildCommit)
	fmt.Print(buildInfo)

	log := logger.NewLogger("swarmd")
	cfg, err := config.GetNodeConfig(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT, syscall.SIGQUIT)
	defer stop()

	clock := clockwork.NewRealClock()
	storages, err := store.NewNodeStorages(ctx, cfg.DSN, clock, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	node := swarm.NewNode(storages.MessageRepository, clock, log)
	h := handler.NewHandler(node, cfg.HashKey, buildInfo, log)

	srv, err := server.NewServer(h.Init(), cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	if err = workers.NewWorkers(srv).Run(ctx); err != nil {
		log.Error().Err(err).Msg("storage node stopped with error")
		storages.Close()
		os.Exit(1)
	}
	log.Info().Msg("storage node stopped")
}
