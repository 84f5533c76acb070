package worker

import (
	"context"
	"time"

	"github.com/petchlovefamily/clinic-system/internal/repository"
	"github.com/petchlovefamily/clinic-system/pkg/logger"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
)

// RetentionWorker permanently removes soft-deleted rows once they have
// been deleted for longer than the retention period.
type RetentionWorker struct {
	patients      repository.PatientRepository
	appointments  repository.AppointmentRepository
	retentionDays int
	interval      time.Duration
	logger        *logger.Logger
	metrics       *metrics.Metrics
}

func NewRetentionWorker(
	patients repository.PatientRepository,
	appointments repository.AppointmentRepository,
	retentionDays int,
	interval time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *RetentionWorker {
	return &RetentionWorker{
		patients:      patients,
		appointments:  appointments,
		retentionDays: retentionDays,
		interval:      interval,
		logger:        log,
		metrics:       m,
	}
}

func (w *RetentionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.ZL.Info().Int("retention_days", w.retentionDays).Msg("Retention worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.ZL.Info().Msg("Retention worker shutting down")
			return
		case <-ticker.C:
			if err := w.purge(ctx); err != nil {
				w.logger.ZL.Error().Err(err).Msg("Failed to purge deleted rows")
				w.metrics.WorkerErrors.WithLabelValues("retention").Inc()
			}
		}
	}
}

func (w *RetentionWorker) purge(ctx context.Context) error {
	cutoff := time.Now().AddDate(0, 0, -w.retentionDays)

	// Appointments first: they reference patients.
	n, err := w.appointments.Purge(ctx, cutoff)
	if err != nil {
		return err
	}
	w.metrics.PurgedRows.WithLabelValues("appointments").Add(float64(n))

	n, err = w.patients.Purge(ctx, cutoff)
	if err != nil {
		return err
	}
	w.metrics.PurgedRows.WithLabelValues("patients").Add(float64(n))

	w.logger.ZL.Debug().Time("cutoff", cutoff).Msg("Purge pass completed")
	return nil
}
