package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/appointy/booking-api/internal/config"
	"github.com/appointy/booking-api/internal/email"
	"github.com/appointy/booking-api/internal/handler"
	appointmentHandler "github.com/appointy/booking-api/internal/handler/appointment"
	authHandler "github.com/appointy/booking-api/internal/handler/auth"
	scheduleHandler "github.com/appointy/booking-api/internal/handler/schedule"
	"github.com/appointy/booking-api/internal/middleware"
	"github.com/appointy/booking-api/internal/repository/postgres"
	"github.com/appointy/booking-api/internal/router"
	authService "github.com/appointy/booking-api/internal/service/auth"
	schedulingService "github.com/appointy/booking-api/internal/service/scheduling"
	"github.com/appointy/booking-api/pkg/auth"
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

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	policyRepo := postgres.NewSchedulePolicyRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	// Lifecycle events are optional; the engine runs without a broker.
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

	// Services
	jwtSvc := auth.NewJWTService(cfg.JWT.Secret, time.Duration(cfg.JWT.ExpiryHours)*time.Hour)
	emailSvc := email.NewSMTPService(cfg.SMTP)
	schedulingSvc := schedulingService.NewService(policyRepo, appointmentRepo, broker, appLogger, cfg.Scheduling)
	authSvc := authService.NewService(userRepo, schedulingSvc, jwtSvc, emailSvc, appLogger, cfg.SMTP.FrontURL)

	// Handlers
	bookingMetrics := metrics.New("booking")
	h := handler.NewHandler(db)
	authH := authHandler.NewHandler(authSvc)
	scheduleH := scheduleHandler.NewHandler(schedulingSvc)
	appointmentH := appointmentHandler.NewHandler(schedulingSvc, bookingMetrics)

	authMiddleware := middleware.NewAuthMiddleware(jwtSvc)

	r := router.NewRouter(authMiddleware, authH, scheduleH, appointmentH, h, router.Config{
		RateLimit: middleware.RateLimiterConfig{
			RPS:   cfg.RateLimit.RPS,
			Burst: cfg.RateLimit.Burst,
		},
		CORS:          middleware.DefaultCORSConfig(),
		MetricsPrefix: "booking_api",
	})
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()
	log.Info().Int("port", cfg.Server.Port).Msg("server started")

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
