package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"

	"github.com/petchlovefamily/clinic-system/internal/config"
	"github.com/petchlovefamily/clinic-system/internal/notification"
	"github.com/petchlovefamily/clinic-system/internal/repository/postgres"
	"github.com/petchlovefamily/clinic-system/internal/worker"
	"github.com/petchlovefamily/clinic-system/pkg/logger"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
)

func setupHealthCheck(log *logger.Logger) {
	mux := http.NewServeMux()
	mux.HandleFunc("/health/live", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("/health/ready", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	go func() {
		if err := http.ListenAndServe(":8081", mux); err != nil {
			log.ZL.Error().Err(err).Msg("Health check server failed")
			os.Exit(1)
		}
	}()
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		zlog.Fatal().Err(err).Msg("Failed to load config")
	}

	zlog.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	log := &logger.Logger{ZL: zlog.Logger}

	db, err := postgres.NewDB(cfg.Database)
	if err != nil {
		log.ZL.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer db.Close()

	m := metrics.New("clinic_worker")

	patientRepo := postgres.NewPatientRepository(db)
	appointmentRepo := postgres.NewAppointmentRepository(db)

	setupHealthCheck(log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup

	if cfg.Digest.Enabled {
		mailer := notification.NewMailer(cfg.SMTP)
		digest := worker.NewScheduleDigestWorker(
			appointmentRepo,
			mailer,
			cfg.Digest.To,
			cfg.Digest.Interval,
			cfg.Digest.Window,
			log,
			m,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			digest.Start(ctx)
		}()
	}

	if cfg.Retention.Enabled {
		retention := worker.NewRetentionWorker(
			patientRepo,
			appointmentRepo,
			cfg.Retention.Days,
			cfg.Retention.Interval,
			log,
			m,
		)
		wg.Add(1)
		go func() {
			defer wg.Done()
			retention.Start(ctx)
		}()
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.ZL.Info().Msg("Shutting down workers...")
	cancel()
	wg.Wait()
	log.ZL.Info().Msg("Workers exited properly")
}
