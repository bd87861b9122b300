package entrypoint

import (
	"context"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lending/internal/scheduler"
	"github.com/mrlokans/lending/internal/tasks"
)

const (
	jobOverdueScan  = "overdue_scan"
	jobAuditCleanup = "audit_cleanup"
)

// Enqueuer hands a task to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// newScheduler registers the periodic lending jobs. With a queue the jobs only
// enqueue work; without one they run inline on the scheduler goroutine.
func newScheduler(app *App, queue Enqueuer) (*scheduler.Scheduler, error) {
	s := scheduler.New()
	cfg := app.Config

	if cfg.OverdueScan.Enabled && cfg.OverdueScan.Schedule != "" {
		if err := s.Add(jobOverdueScan, cfg.OverdueScan.Schedule, overdueScanJob(app, queue)); err != nil {
			return nil, err
		}
	}

	if cfg.Audit.CleanupSchedule != "" {
		if err := s.Add(jobAuditCleanup, cfg.Audit.CleanupSchedule, auditCleanupJob(app, queue)); err != nil {
			return nil, err
		}
	}

	return s, nil
}

func overdueScanJob(app *App, queue Enqueuer) scheduler.JobFunc {
	return func(ctx context.Context) error {
		if queue != nil {
			_, err := queue.Enqueue(ctx, tasks.OverdueScanTask{RequestedBy: "scheduler"})
			return err
		}
		_, err := tasks.RunOverdueScan(ctx, app.Borrow, app.Audit)
		return err
	}
}

func auditCleanupJob(app *App, queue Enqueuer) scheduler.JobFunc {
	days := app.Config.Audit.RetentionDays
	if days <= 0 {
		days = tasks.DefaultConfig().AuditRetentionDays
	}
	return func(ctx context.Context) error {
		if queue != nil {
			_, err := queue.Enqueue(ctx, tasks.CleanupAuditEventsTask{RetentionDays: days})
			return err
		}
		deleted, err := app.Audit.DeleteOldEvents(ctx, time.Duration(days)*24*time.Hour)
		if err != nil {
			return err
		}
		log.Printf("[SCHEDULER] Deleted %d audit events older than %d days", deleted, days)
		return nil
	}
}
