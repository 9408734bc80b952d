package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"

	"github.com/appointy/booking-api/internal/config"
	"github.com/appointy/booking-api/internal/repository/postgres"
	schedulingService "github.com/appointy/booking-api/internal/service/scheduling"
	"github.com/appointy/booking-api/internal/worker"
	"github.com/appointy/booking-api/pkg/logger"
	"github.com/appointy/booking-api/pkg/messaging"
	redisBroker "github.com/appointy/booking-api/pkg/messaging/redis"
	"github.com/appointy/booking-api/pkg/metrics"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	appLogger := logger.NewLogger(nil)

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	policyRepo := postgres.NewSchedulePolicyRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	var broker messaging.Broker
	if cfg.Redis.Enabled {
		broker, err = redisBroker.NewRedisBroker(redisBroker.Config{
			URL:          cfg.Redis.URL,
			MaxRetries:   cfg.Redis.MaxRetries,
			RetryBackoff: cfg.Redis.RetryBackoff,
			PoolSize:     cfg.Redis.PoolSize,
			MinIdleConns: cfg.Redis.MinIdleConns,
		}, &log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis")
		}
		defer broker.Close()
	}

	schedulingSvc := schedulingService.NewService(policyRepo, appointmentRepo, broker, appLogger, cfg.Scheduling)
	schedulerMetrics := metrics.New("booking_scheduler")
	resetWorker := worker.NewDayResetWorker(schedulingSvc, appLogger, schedulerMetrics, cfg.DayReset.Schedule)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Liveness and metrics only; the scheduler serves no API.
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	healthSrv := &http.Server{
		Addr:    ":8081",
		Handler: engine,
	}
	go func() {
		if err := healthSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start health server")
		}
	}()

	workerDone := make(chan error, 1)
	go func() {
		workerDone <- resetWorker.Start(ctx)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down scheduler...")
	cancel()

	if err := <-workerDone; err != nil {
		log.Error().Err(err).Msg("day reset worker exited with error")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := healthSrv.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("health server forced to shutdown")
	}

	log.Info().Msg("scheduler exited properly")
}
