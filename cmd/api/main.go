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
	"golang.org/x/time/rate"

	"github.com/barberhq/booking-api/config"
	"github.com/barberhq/booking-api/internal/cache"
	"github.com/barberhq/booking-api/internal/email"
	appointmentHandler "github.com/barberhq/booking-api/internal/handler/appointment"
	authHandler "github.com/barberhq/booking-api/internal/handler/auth"
	healthHandler "github.com/barberhq/booking-api/internal/handler/health"
	shopHandler "github.com/barberhq/booking-api/internal/handler/shop"
	"github.com/barberhq/booking-api/internal/middleware"
	"github.com/barberhq/booking-api/internal/repository/postgres"
	"github.com/barberhq/booking-api/internal/router"
	appointmentService "github.com/barberhq/booking-api/internal/service/appointment"
	authService "github.com/barberhq/booking-api/internal/service/auth"
	bookingService "github.com/barberhq/booking-api/internal/service/booking"
	identityService "github.com/barberhq/booking-api/internal/service/identity"
	shopService "github.com/barberhq/booking-api/internal/service/shop"
	"github.com/barberhq/booking-api/internal/slot"
	"github.com/barberhq/booking-api/pkg/auth"
	"github.com/barberhq/booking-api/pkg/logger"
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

	if err := postgres.Migrate(db); err != nil {
		log.Fatal().Err(err).Msg("failed to apply database schema")
	}

	// Initialize repositories
	appointmentRepo := postgres.NewAppointmentRepository(db)
	shopRepo := postgres.NewShopRepository(db)
	userRepo := postgres.NewUserRepository(db)
	outboxRepo := postgres.NewOutboxRepository(db)

	// Cache backend: Redis when configured, in-process otherwise
	var store cache.Store
	if cfg.Redis.Enabled {
		redisStore, err := cache.NewRedisStore(cfg.Redis.URL)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to connect to Redis cache")
		}
		defer redisStore.Close()
		store = redisStore
	} else {
		store = cache.NewMemoryStore(cache.AppointmentListTTL, 10*time.Minute)
	}

	var emailSvc email.Service = email.NoopService{}
	if cfg.SMTP.Enabled {
		emailSvc = email.NewSMTPService(email.SMTPConfig{
			Host:     cfg.SMTP.Host,
			Port:     cfg.SMTP.Port,
			Username: cfg.SMTP.Username,
			Password: cfg.SMTP.Password,
			From:     cfg.SMTP.From,
		})
	}

	jwtSvc := auth.NewJWTService(auth.JWTConfig{
		Secret:      cfg.JWT.Secret,
		ExpiryHours: cfg.JWT.ExpiryHours,
	})

	var profiles identityService.ProfileFetcher
	if cfg.Auth.ProfileURL != "" {
		profiles = identityService.NewHTTPProfileFetcher(cfg.Auth.ProfileURL)
	}

	// Initialize services
	identitySvc := identityService.NewService(store, jwtSvc, profiles, appLogger)
	authSvc := authService.NewService(userRepo, jwtSvc)
	shopSvc := shopService.NewService(shopRepo)
	bookingSvc := bookingService.NewService(
		appointmentRepo,
		shopRepo,
		userRepo,
		outboxRepo,
		store,
		emailSvc,
		slot.Default(),
		appLogger,
	)
	appointmentSvc := appointmentService.NewService(
		appointmentRepo,
		shopRepo,
		userRepo,
		store,
		emailSvc,
		appLogger,
	)

	// Initialize middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(identitySvc)
	authH := authHandler.NewHandler(authSvc)
	appointmentH := appointmentHandler.NewHandler(bookingSvc, appointmentSvc)
	shopH := shopHandler.NewHandler(shopSvc)
	healthH := healthHandler.NewHandler(db)

	r := router.NewRouter(
		authMiddleware,
		authH,
		appointmentH,
		shopH,
		healthH,
		router.Config{
			RateLimit:     rate.Limit(cfg.Rate.RPS),
			RateBurst:     cfg.Rate.Burst,
			CORSConfig:    middleware.DefaultCORSConfig(),
			MetricsPrefix: "booking_api",
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.TimeoutSeconds) * time.Second,
	}

	go func() {
		appLogger.Info("starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
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
