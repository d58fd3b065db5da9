// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package main

import (
	"context"
	"fmt"

	"github.com/nymproject/directory-relay/internal/config"
	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/internal/supervisor"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	log := logger.NewLogger("directory-relay-server")
	cfg, err := config.GetStructuredConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("error getting configs")
	}

	log.Info().Msg("starting directory and relay server")
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx := context.Background()
	sup, err := supervisor.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error constructing supervisor")
	}

	if err := sup.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("server stopped with error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}

	if buildDate == "" {
		buildDate = "N/A"
	}

	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
