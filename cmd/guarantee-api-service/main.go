package main

import (
	"context"
	"fmt"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/blockfinax/guarantee-api-service/cmd/guarantee-api-service/cli"
	"github.com/blockfinax/guarantee-api-service/internal/api"
	"github.com/blockfinax/guarantee-api-service/internal/clients"
	"github.com/blockfinax/guarantee-api-service/internal/config"
	"github.com/blockfinax/guarantee-api-service/internal/db/model"
	"github.com/blockfinax/guarantee-api-service/internal/observability/healthcheck"
	"github.com/blockfinax/guarantee-api-service/internal/observability/metrics"
	"github.com/blockfinax/guarantee-api-service/internal/queue"
	"github.com/blockfinax/guarantee-api-service/internal/services"
	"github.com/blockfinax/guarantee-api-service/internal/types"
)

func init() {
	if err := godotenv.Load(); err != nil {
		log.Debug().Msg("failed to load .env file")
	}
}

func main() {
	ctx := context.Background()

	// setup cli commands and flags
	if err := cli.Setup(); err != nil {
		log.Fatal().Err(err).Msg("error while setting up cli")
	}

	// load config
	cfgPath := cli.GetConfigPath()
	cfg, err := config.New(cfgPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading config file: %s", cfgPath))
	}

	paramsPath := cli.GetParamsPath()
	params, err := types.NewProtocolParams(paramsPath)
	if err != nil {
		log.Fatal().Err(err).Msg(fmt.Sprintf("error while loading protocol params file: %s", paramsPath))
	}

	// initialize metrics with the metrics port from config
	metricsPort := cfg.Metrics.GetMetricsPort()
	metrics.Init(metricsPort)

	err = model.Setup(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up guarantee db model")
	}

	platformClients := clients.New(cfg)
	services, err := services.New(ctx, cfg, params, platformClients)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up guarantee services layer")
	}

	queues := queue.New(&cfg.Queue)
	services.SetEventEmitter(queues)
	defer queues.Stop()

	// Check if the replay flag is set
	if cli.GetReplayFlag() {
		log.Info().Msg("Replay flag is set. Starting replay of unpublished events.")
		if err := services.ReplayUnpublishedEvents(ctx); err != nil {
			log.Fatal().Err(err).Msg("error while replaying unpublished events")
		}
		log.Info().Msg("Replay of unpublished events completed.")
		return
	}

	healthcheck.StartHealthCheckCron(ctx, queues, cfg.Server.HealthCheckInterval)

	apiServer, err := api.New(ctx, cfg, services)
	if err != nil {
		log.Fatal().Err(err).Msg("error while setting up guarantee api service")
	}
	if err = apiServer.Start(); err != nil {
		log.Fatal().Err(err).Msg("error while starting guarantee api service")
	}
}
