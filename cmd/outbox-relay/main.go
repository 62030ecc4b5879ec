package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/niiodoi/venda/internal/config"
	"github.com/niiodoi/venda/internal/database"
	"github.com/niiodoi/venda/internal/kafka"
	"github.com/niiodoi/venda/internal/logger"
	"github.com/niiodoi/venda/internal/outbox"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.New(cfg.Observability)
	defer loggerService.Shutdown()
	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	if len(cfg.Kafka.Brokers) == 0 {
		log.Fatal().Msg("VENDA_KAFKA_BROKERS is required for the outbox relay")
	}

	log.Info().Msg("Starting Outbox Relay...")

	db, err := database.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	producer, err := kafka.NewProducer(kafka.DefaultConfig(cfg.Kafka.Brokers), &log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize kafka producer")
	}
	defer producer.Close()

	relay := outbox.NewRelay(db.Pool, producer, &log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		if err := relay.Start(ctx); err != nil {
			log.Error().Err(err).Msg("Relay service stopped with error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down Outbox Relay...")
	cancel()

	log.Info().Msg("Outbox Relay shutdown complete")
}
