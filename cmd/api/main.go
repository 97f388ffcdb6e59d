package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/wanbao-hr/agency-api/internal/config"
	"github.com/wanbao-hr/agency-api/internal/email"
	"github.com/wanbao-hr/agency-api/internal/handler"
	entryFilingHandler "github.com/wanbao-hr/agency-api/internal/handler/entryfiling"
	medicalExceptionHandler "github.com/wanbao-hr/agency-api/internal/handler/medicalexception"
	overseasHandler "github.com/wanbao-hr/agency-api/internal/handler/overseas"
	"github.com/wanbao-hr/agency-api/internal/middleware"
	"github.com/wanbao-hr/agency-api/internal/repository/postgres"
	"github.com/wanbao-hr/agency-api/internal/router"
	entryFilingService "github.com/wanbao-hr/agency-api/internal/service/entryfiling"
	medicalExceptionService "github.com/wanbao-hr/agency-api/internal/service/medicalexception"
	overseasService "github.com/wanbao-hr/agency-api/internal/service/overseas"
)

func main() {
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Repositories
	baseRepo := postgres.NewBaseRepository(db)
	workerRepo := postgres.NewWorkerRepository(baseRepo)
	candidateRepo := postgres.NewCandidateRepository(baseRepo)
	entryFilingRepo := postgres.NewEntryFilingRepository(baseRepo)
	overseasRepo := postgres.NewOverseasProgressRepository(baseRepo)
	medicalRepo := postgres.NewMedicalExceptionRepository(baseRepo)
	outboxRepo := postgres.NewOutboxRepository(baseRepo)

	// Services
	mailer := email.NewService(cfg.Email)
	entryFilingSvc := entryFilingService.NewService(entryFilingRepo, workerRepo)
	overseasSvc := overseasService.NewService(overseasRepo, candidateRepo)
	medicalSvc := medicalExceptionService.NewService(medicalRepo, workerRepo, mailer, cfg.Notification.Email)

	// Handlers
	h := handler.NewHandler(db)
	entryFilingH := entryFilingHandler.NewHandler(entryFilingSvc, outboxRepo)
	overseasH := overseasHandler.NewHandler(overseasSvc, outboxRepo)
	medicalH := medicalExceptionHandler.NewHandler(medicalSvc, outboxRepo)

	r := router.NewRouter(entryFilingH, overseasH, medicalH, h, router.Config{
		RateLimitRPS:   cfg.RateLimit.RPS,
		RateLimitBurst: cfg.RateLimit.Burst,
		RequestTimeout: cfg.Server.Timeout(),
		CORSConfig:     middleware.DefaultCORSConfig(),
	})
	r.Setup()

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: r.Engine(),
	}

	go func() {
		log.Info().Int("port", cfg.Server.Port).Msg("starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server exited properly")
}
