package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/povarna/pet-poison-map/internal/setup"
	applog "github.com/povarna/pet-poison-map/internal/setup/logger"
	"github.com/povarna/pet-poison-map/internal/stream"
	redisstream "github.com/povarna/pet-poison-map/internal/stream/redis"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Load env
	envErr := godotenv.Load()

	cfg := setup.LoadConfig()

	// Setup logging
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = applog.New(cfg.LogLevel, cfg.LogFormat)
	logger := log.Logger

	if envErr != nil {
		log.Warn().Msg("No .env file found")
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	moderation, err := setup.WireModeration(ctx, cfg, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to wire moderation")
	}
	defer moderation.Close()

	streamCfg := stream.NewStreamConfig(
		os.Getenv("STREAM_PROVIDER"),
		redisstream.NewRedisStreamConfig(
			cfg.RedisAddr,
			cfg.RedisPassword,
			os.Getenv("REQUESTS_STREAM"),
			os.Getenv("CONSUMER_GROUP"),
			os.Getenv("HOSTNAME"),
			os.Getenv("RESULTS_STREAM"),
		),
	)

	consumer, err := stream.NewStreamConsumer(ctx, streamCfg, moderation.Executor, &logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create stream consumer")
	}

	// Setup consumer
	if err := consumer.Setup(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	// Start consumer
	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	// Wait for context to be done
	<-ctx.Done()
	logger.Info().Msg("Shutting down...")

	if err := consumer.Stop(); err != nil {
		logger.Warn().Err(err).Msg("Failed to stop consumer")
	}

	log.Info().Msg("Moderation worker stopped")
}
