// Package audit records an append-only trail of lending and authentication events.
package audit

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	jsoniter "github.com/json-iterator/go"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/database/audit"
	"github.com/mrlokans/lending/internal/entities"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var _ borrow.Recorder = (*Service)(nil)

// Service provides high-level audit logging functionality.
type Service struct {
	repo *audit.Repository
	wg   sync.WaitGroup
}

// NewService creates a new audit service.
func NewService(repo *audit.Repository) *Service {
	return &Service{repo: repo}
}

// Log records an audit event synchronously.
func (s *Service) Log(ctx context.Context, event *entities.AuditEvent) error {
	if event.RequestID == "" {
		event.RequestID = RequestIDFrom(ctx)
	}
	return s.repo.LogEvent(ctx, event)
}

// LogAsync records an audit event in the background. The write outlives the
// request context; call Wait to drain pending writes.
func (s *Service) LogAsync(ctx context.Context, event *entities.AuditEvent) {
	if event.RequestID == "" {
		event.RequestID = RequestIDFrom(ctx)
	}
	detached := context.WithoutCancel(ctx)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := s.repo.LogEvent(detached, event); err != nil {
			log.Printf("[AUDIT] Failed to log %s event: %v", event.EventType, err)
		}
	}()
}

// Wait blocks until every LogAsync write has finished.
func (s *Service) Wait() {
	s.wg.Wait()
}

// LogBorrow records a new loan.
func (s *Service) LogBorrow(ctx context.Context, record *entities.BorrowRecord) {
	event := &entities.AuditEvent{
		UserID:      record.UserID,
		EventType:   entities.AuditEventBorrow,
		Action:      "borrow_create",
		Description: fmt.Sprintf("Borrowed %q until %s", record.Book.Title, record.DueAt.Format(time.RFC3339)),
		EntityType:  "borrow_record",
		EntityID:    &record.ID,
		Metadata: encodeMetadata(map[string]any{
			"book_id":  record.BookID,
			"due_date": record.DueAt,
		}),
		Status: entities.AuditStatusSuccess,
	}
	s.LogAsync(ctx, event)
}

// LogReturn records a closed loan.
func (s *Service) LogReturn(ctx context.Context, record *entities.BorrowRecord, actorID uint) {
	metadata := map[string]any{
		"book_id":     record.BookID,
		"borrower_id": record.UserID,
	}
	if record.ReturnedAt != nil {
		metadata["overdue"] = record.ReturnedAt.After(record.DueAt)
	}

	event := &entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventReturn,
		Action:      "borrow_return",
		Description: fmt.Sprintf("Returned borrow %d", record.ID),
		EntityType:  "borrow_record",
		EntityID:    &record.ID,
		Metadata:    encodeMetadata(metadata),
		Status:      entities.AuditStatusSuccess,
	}
	s.LogAsync(ctx, event)
}

// LogInconsistent records a broken ledger invariant with status failed.
func (s *Service) LogInconsistent(ctx context.Context, op string, bookID, borrowID, actorID uint, err error) {
	event := &entities.AuditEvent{
		UserID:      actorID,
		EventType:   entities.AuditEventInconsistent,
		Action:      op,
		Description: fmt.Sprintf("INCONSISTENT ledger for book %d", bookID),
		EntityType:  "book",
		EntityID:    &bookID,
		Metadata: encodeMetadata(map[string]any{
			"borrow_id": borrowID,
		}),
		Status: entities.AuditStatusFailed,
	}
	if err != nil {
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(ctx, event)
}

// LogOverdueScan records the outcome of a background overdue scan.
func (s *Service) LogOverdueScan(ctx context.Context, overdue int, err error) {
	event := &entities.AuditEvent{
		EventType:   entities.AuditEventOverdueScan,
		Action:      "overdue_scan",
		Description: fmt.Sprintf("Found %d overdue loans", overdue),
		Metadata:    encodeMetadata(map[string]any{"overdue_count": overdue}),
		Status:      entities.AuditStatusSuccess,
	}
	if err != nil {
		event.Status = entities.AuditStatusFailed
		event.ErrorMsg = truncate(err.Error(), 500)
	}
	s.LogAsync(ctx, event)
}

// LogAuth records an authentication event.
func (s *Service) LogAuth(ctx context.Context, userID uint, action, ipAddr, userAgent string, success bool) {
	event := &entities.AuditEvent{
		UserID:    userID,
		EventType: entities.AuditEventAuth,
		Action:    action,
		IPAddress: ipAddr,
		UserAgent: truncate(userAgent, 500),
		Status:    entities.AuditStatusSuccess,
	}

	if !success {
		event.Status = entities.AuditStatusFailed
	}

	s.LogAsync(ctx, event)
}

// ListEvents retrieves paginated audit events.
func (s *Service) ListEvents(ctx context.Context, filter audit.EventFilter) ([]entities.AuditEvent, int64, error) {
	return s.repo.ListEvents(ctx, filter)
}

// DeleteOldEvents removes events older than the retention window.
func (s *Service) DeleteOldEvents(ctx context.Context, retention time.Duration) (int64, error) {
	cutoff := time.Now().Add(-retention)
	return s.repo.DeleteOldEvents(ctx, cutoff)
}

func encodeMetadata(metadata map[string]any) string {
	b, err := json.Marshal(metadata)
	if err != nil {
		return ""
	}
	return string(b)
}

// truncate shortens a string to max length.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
