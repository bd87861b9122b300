package tasks

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/lending/internal/borrow"
)

// OverdueLister lists the loans that are past due right now.
type OverdueLister interface {
	Overdue(ctx context.Context) ([]borrow.LoanView, error)
}

// ScanRecorder records the outcome of a scan.
type ScanRecorder interface {
	LogOverdueScan(ctx context.Context, overdue int, err error)
}

// OverdueScanTask classifies every active loan and reports the overdue ones.
type OverdueScanTask struct {
	// RequestedBy is "scheduler" or the admin user that triggered the scan.
	RequestedBy string `json:"requested_by,omitempty"`
}

// Config returns the queue configuration for overdue scans.
func (t OverdueScanTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "overdue_scan",
		MaxAttempts: 3,
		Backoff:     time.Minute,
		Timeout:     5 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// RunOverdueScan logs one line per overdue loan and returns how many were found.
// recorder may be nil.
func RunOverdueScan(ctx context.Context, lister OverdueLister, recorder ScanRecorder) (int, error) {
	if lister == nil {
		return 0, fmt.Errorf("overdue lister not configured")
	}

	loans, err := lister.Overdue(ctx)
	if recorder != nil {
		recorder.LogOverdueScan(ctx, len(loans), err)
	}
	if err != nil {
		return 0, fmt.Errorf("overdue scan: %w", err)
	}

	for _, loan := range loans {
		log.Printf("[TASK] OVERDUE borrow=%d user=%s book=%q due=%s days=%d",
			loan.ID, loan.User.Username, loan.Book.Title,
			loan.DueAt.Format(time.RFC3339), -loan.DaysRemaining)
	}
	log.Printf("[TASK] Overdue scan complete: %d overdue loans", len(loans))
	return len(loans), nil
}

// OverdueScanProcessor creates a processor function for OverdueScanTask.
func OverdueScanProcessor(lister OverdueLister, recorder ScanRecorder) backlite.QueueProcessor[OverdueScanTask] {
	return func(ctx context.Context, task OverdueScanTask) error {
		_, err := RunOverdueScan(ctx, lister, recorder)
		return err
	}
}

// NewOverdueScanQueue creates a backlite queue for overdue scans.
func NewOverdueScanQueue(lister OverdueLister, recorder ScanRecorder) backlite.Queue {
	return backlite.NewQueue(OverdueScanProcessor(lister, recorder))
}
