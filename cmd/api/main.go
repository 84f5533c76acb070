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

	"github.com/petchlovefamily/clinic-system/internal/config"
	"github.com/petchlovefamily/clinic-system/internal/handler"
	appointmentHandler "github.com/petchlovefamily/clinic-system/internal/handler/appointment"
	authHandler "github.com/petchlovefamily/clinic-system/internal/handler/auth"
	patientHandler "github.com/petchlovefamily/clinic-system/internal/handler/patient"
	userHandler "github.com/petchlovefamily/clinic-system/internal/handler/user"
	"github.com/petchlovefamily/clinic-system/internal/middleware"
	"github.com/petchlovefamily/clinic-system/internal/repository/postgres"
	"github.com/petchlovefamily/clinic-system/internal/repository/redisrepo"
	"github.com/petchlovefamily/clinic-system/internal/router"
	appointmentService "github.com/petchlovefamily/clinic-system/internal/service/appointment"
	authService "github.com/petchlovefamily/clinic-system/internal/service/auth"
	patientService "github.com/petchlovefamily/clinic-system/internal/service/patient"
	userService "github.com/petchlovefamily/clinic-system/internal/service/user"
	"github.com/petchlovefamily/clinic-system/pkg/auth"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
	"github.com/petchlovefamily/clinic-system/pkg/security"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	rdb, err := redisrepo.NewClient(cfg.Redis.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to Redis")
	}
	defer rdb.Close()

	m := metrics.New("clinic")

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)
	tokenRepo := redisrepo.NewTokenRepository(rdb)

	// Services
	tokens := auth.NewJWTService(cfg.JWT.Secret, cfg.JWT.Expiry())
	hasher := security.NewBcryptHasher(cfg.Security.BcryptCost)
	authSvc := authService.NewService(userRepo, tokenRepo, tokens, hasher)
	userSvc := userService.NewService(userRepo)
	patientSvc := patientService.NewService(patientRepo)
	appointmentSvc := appointmentService.NewService(appointmentRepo, m)

	// Middleware and handlers
	authMiddleware := middleware.NewAuthMiddleware(authSvc)
	authH := authHandler.NewHandler(authSvc)
	userH := userHandler.NewHandler(userSvc)
	patientH := patientHandler.NewHandler(patientSvc)
	appointmentH := appointmentHandler.NewHandler(appointmentSvc)
	healthH := handler.NewHealthHandler(db, rdb)

	r := router.New(
		authMiddleware,
		authH,
		userH,
		patientH,
		appointmentH,
		healthH,
		m,
		router.Config{
			RateLimit: middleware.RateLimiterConfig{
				RPS:   cfg.RateLimit.RPS,
				Burst: cfg.RateLimit.Burst,
			},
			CORS: middleware.DefaultCORSConfig(),
		},
	)
	r.Setup()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r.Engine(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
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
