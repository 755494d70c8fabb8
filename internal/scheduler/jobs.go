package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/Padelicious/internal/booking"
	"github.com/codr1/Padelicious/internal/config"
)

const (
	sessionSweepJob     = "session_sweep"
	reminderJob         = "session_reminders"
	pendingReconcileJob = "pending_reconcile"

	jobTimeout = 2 * time.Minute
)

// BookingJobs is the part of the booking service the background jobs drive.
type BookingJobs interface {
	SweepSessions(ctx context.Context, now time.Time) (booking.SweepResult, error)
	SendDueReminders(ctx context.Context, now time.Time) (int, error)
	ReconcileStalePending(ctx context.Context, now time.Time) (booking.PendingResult, error)
}

// RegisterBookingJobs registers the session sweep, reminder, and stale
// checkout jobs on the singleton scheduler.
func RegisterBookingJobs(jobs BookingJobs, cfg config.SchedulerConfig, remindersEnabled bool) error {
	svc, err := ServiceInstance()
	if err != nil {
		return err
	}
	return svc.RegisterBookingJobs(jobs, cfg, remindersEnabled)
}

func (s *Service) RegisterBookingJobs(jobs BookingJobs, cfg config.SchedulerConfig, remindersEnabled bool) error {
	if jobs == nil {
		return fmt.Errorf("booking jobs require a booking service")
	}

	if _, err := s.AddJob(sessionSweepJob, cfg.SessionSweepCron, sessionSweepTask(jobs, time.Now)); err != nil {
		return fmt.Errorf("register %s: %w", sessionSweepJob, err)
	}
	if _, err := s.AddJob(pendingReconcileJob, cfg.PendingReconcileCron, pendingReconcileTask(jobs, time.Now)); err != nil {
		return fmt.Errorf("register %s: %w", pendingReconcileJob, err)
	}
	if !remindersEnabled {
		log.Info().Msg("Reminder job not registered: email disabled")
		return nil
	}
	if _, err := s.AddJob(reminderJob, cfg.ReminderCron, reminderTask(jobs, time.Now)); err != nil {
		return fmt.Errorf("register %s: %w", reminderJob, err)
	}
	return nil
}

func jobContext(name string) (context.Context, context.CancelFunc, zerolog.Logger) {
	logger := log.With().Str("component", "scheduler").Str("job_name", name).Logger()
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	return logger.WithContext(ctx), cancel, logger
}

func sessionSweepTask(jobs BookingJobs, now func() time.Time) func() {
	return func() {
		ctx, cancel, logger := jobContext(sessionSweepJob)
		defer cancel()

		res, err := jobs.SweepSessions(ctx, now())
		if err != nil {
			logger.Error().Err(err).Int("updated", res.Updated).Msg("Session sweep aborted")
			return
		}
		logger.Debug().
			Int("scanned", res.Scanned).
			Int("updated", res.Updated).
			Int("failed", res.Failed).
			Msg("Session sweep run")
	}
}

func reminderTask(jobs BookingJobs, now func() time.Time) func() {
	return func() {
		ctx, cancel, logger := jobContext(reminderJob)
		defer cancel()

		sent, err := jobs.SendDueReminders(ctx, now())
		if err != nil {
			logger.Error().Err(err).Int("sent", sent).Msg("Reminder run aborted")
			return
		}
		logger.Debug().Int("sent", sent).Msg("Reminder run")
	}
}

func pendingReconcileTask(jobs BookingJobs, now func() time.Time) func() {
	return func() {
		ctx, cancel, logger := jobContext(pendingReconcileJob)
		defer cancel()

		res, err := jobs.ReconcileStalePending(ctx, now())
		if err != nil {
			logger.Error().Err(err).Msg("Stale checkout reconciliation aborted")
			return
		}
		if res.Scanned > 0 {
			logger.Info().
				Int("scanned", res.Scanned).
				Int("paid", res.Paid).
				Int("cancelled", res.Cancelled).
				Int("still_pending", res.StillPending).
				Int("failed", res.Failed).
				Msg("Stale checkouts reconciled")
		}
	}
}
