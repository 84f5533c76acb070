package worker

import (
	"context"
	"time"

	"github.com/petchlovefamily/clinic-system/internal/model"
	"github.com/petchlovefamily/clinic-system/internal/repository"
	"github.com/petchlovefamily/clinic-system/pkg/logger"
	"github.com/petchlovefamily/clinic-system/pkg/metrics"
)

// DigestSender delivers a schedule summary to a recipient.
type DigestSender interface {
	SendScheduleDigest(to string, day time.Time, appointments []*model.AppointmentDetail) error
}

// ScheduleDigestWorker periodically mails the upcoming schedule to the
// clinic's shared inbox.
type ScheduleDigestWorker struct {
	repo     repository.AppointmentRepository
	sender   DigestSender
	to       string
	interval time.Duration
	window   time.Duration
	logger   *logger.Logger
	metrics  *metrics.Metrics
}

func NewScheduleDigestWorker(
	repo repository.AppointmentRepository,
	sender DigestSender,
	to string,
	interval, window time.Duration,
	log *logger.Logger,
	m *metrics.Metrics,
) *ScheduleDigestWorker {
	return &ScheduleDigestWorker{
		repo:     repo,
		sender:   sender,
		to:       to,
		interval: interval,
		window:   window,
		logger:   log,
		metrics:  m,
	}
}

func (w *ScheduleDigestWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.ZL.Info().Dur("interval", w.interval).Msg("Schedule digest worker started")

	for {
		select {
		case <-ctx.Done():
			w.logger.ZL.Info().Msg("Schedule digest worker shutting down")
			return
		case <-ticker.C:
			if err := w.sendDigest(ctx); err != nil {
				w.logger.ZL.Error().Err(err).Msg("Failed to send schedule digest")
				w.metrics.WorkerErrors.WithLabelValues("digest").Inc()
			}
		}
	}
}

func (w *ScheduleDigestWorker) sendDigest(ctx context.Context) error {
	now := time.Now()

	appointments, err := w.repo.ListBetween(ctx, now, now.Add(w.window))
	if err != nil {
		return err
	}

	if err := w.sender.SendScheduleDigest(w.to, now, appointments); err != nil {
		return err
	}

	w.metrics.DigestsSent.Inc()
	w.logger.ZL.Info().Int("appointments", len(appointments)).Msg("Schedule digest sent")
	return nil
}
