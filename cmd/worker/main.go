package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/config"
	"github.com/wanbao-hr/agency-api/internal/repository/postgres"
	"github.com/wanbao-hr/agency-api/pkg/logger"
	"github.com/wanbao-hr/agency-api/pkg/messaging/redis"
	"github.com/wanbao-hr/agency-api/pkg/metrics"
	"github.com/wanbao-hr/agency-api/pkg/worker"
)

func setupHealthCheck(lg *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			lg.Fatal(err, "health check server failed")
		}
	}()
}

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	lg := logger.NewLogger(nil)

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	broker, err := redis.NewRedisBroker(cfg.Redis.ToBrokerConfig(), &log.Logger)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create Redis broker")
	}
	defer broker.Close()

	baseRepo := postgres.NewBaseRepository(db)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	processor := worker.NewOutboxProcessor(
		outboxRepo,
		broker,
		cfg.Outbox.ToWorkerConfig(),
		lg,
		metrics.NewMetrics("agency", "outbox_processor"),
	)

	setupHealthCheck(lg)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		lg.Info("shutting down worker")
		cancel()
	}()

	processor.Start(ctx)
}
