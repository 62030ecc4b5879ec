package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/niiodoi/venda/internal/admin"
	"github.com/niiodoi/venda/internal/config"
	"github.com/niiodoi/venda/internal/database"
	"github.com/niiodoi/venda/internal/fulfillment"
	"github.com/niiodoi/venda/internal/ledger"
	"github.com/niiodoi/venda/internal/logger"
	"github.com/niiodoi/venda/internal/network"
	"github.com/niiodoi/venda/internal/pipeline"
	"github.com/niiodoi/venda/internal/pricing"
	"github.com/niiodoi/venda/internal/psp"
	redisPkg "github.com/niiodoi/venda/internal/redis"
	"github.com/niiodoi/venda/internal/router"
	"github.com/niiodoi/venda/internal/server"
	"github.com/niiodoi/venda/internal/webhook"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	loggerService := logger.New(cfg.Observability)
	defer loggerService.Shutdown()

	log := logger.NewLoggerWithService(cfg.Observability, loggerService)

	db, err := database.New(cfg, &log, loggerService)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize database")
	}
	defer db.Close()

	redis, err := redisPkg.New(&log, &cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize redis client")
	}
	defer redis.Close()

	classifier, err := network.NewClassifier(network.FromConfig(
		cfg.Prefixes.MTN, cfg.Prefixes.Telecel, cfg.Prefixes.AT))
	if err != nil {
		log.Fatal().Err(err).Msg("invalid prefix configuration")
	}

	table := pricing.NewDefaultTable()

	if cfg.Bytewave.TLSInsecure {
		log.Warn().Msg("TLS certificate verification DISABLED for the Bytewave client")
	}

	verifier := psp.NewPaystackClient(cfg.Paystack.SecretKey, cfg.Paystack.BaseURL, cfg.Paystack.CallTimeout)
	submitter := fulfillment.NewBytewaveClient(cfg.Bytewave.APIKey, cfg.Bytewave.BaseURL, cfg.Bytewave.CallTimeout, cfg.Bytewave.TLSInsecure)

	store := ledger.NewPostgresStore(db.Pool)
	dedup := redisPkg.NewSubmittedSet(redis, cfg.Redis.SubmittedTTL)

	pipe := pipeline.New(verifier, submitter, classifier, table, store, dedup)

	srv := server.NewServer(cfg, &log, loggerService, db, redis)

	handlers := &router.Handlers{
		Webhook: webhook.NewWebhookHandler(pipe),
		Admin:   admin.NewAdminHandler(store),
	}

	r := router.NewRouter(srv, handlers)

	srv.SetupHTTPServer(r)

	go func() {
		if err := srv.Start(); err != nil {
			log.Error().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server...")

	// Give outstanding requests 10 seconds to complete
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("server shutdown error")
	}

	log.Info().Msg("server stopped")
}
