package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	auditRepo "github.com/mrlokans/lending/internal/database/audit"
	"github.com/mrlokans/lending/internal/entities"
)

func setupTestService(t *testing.T) (*Service, *gorm.DB) {
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "audit.db")+"?_busy_timeout=5000"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&entities.AuditEvent{})
	require.NoError(t, err)

	svc := NewService(auditRepo.NewRepository(db))
	t.Cleanup(func() {
		svc.Wait()
		sqlDB.Close()
	})
	return svc, db
}

func TestService_Log_AttachesRequestID(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := WithRequestID(context.Background(), "req-123")

	event := &entities.AuditEvent{
		EventType: entities.AuditEventAuth,
		Action:    "login",
		Status:    entities.AuditStatusSuccess,
	}
	require.NoError(t, svc.Log(ctx, event))

	var saved entities.AuditEvent
	require.NoError(t, db.First(&saved, event.ID).Error)
	assert.Equal(t, "req-123", saved.RequestID)
}

func TestService_LogBorrowAndReturn(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	now := time.Now()
	record := &entities.BorrowRecord{
		ID:         7,
		BookID:     3,
		UserID:     5,
		BorrowedAt: now,
		DueAt:      now.Add(24 * time.Hour),
		Book:       entities.Book{Title: "Dune"},
	}

	svc.LogBorrow(ctx, record)
	svc.Wait()

	var borrowed entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "borrow_create").First(&borrowed).Error)
	assert.Equal(t, uint(5), borrowed.UserID)
	assert.Equal(t, entities.AuditEventBorrow, borrowed.EventType)
	require.NotNil(t, borrowed.EntityID)
	assert.Equal(t, uint(7), *borrowed.EntityID)
	assert.Contains(t, borrowed.Description, "Dune")
	assert.Contains(t, borrowed.Metadata, `"book_id":3`)

	returnedAt := now.Add(48 * time.Hour)
	record.IsReturned = true
	record.ReturnedAt = &returnedAt
	svc.LogReturn(ctx, record, 1)
	svc.Wait()

	var returned entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "borrow_return").First(&returned).Error)
	assert.Equal(t, uint(1), returned.UserID)
	assert.Contains(t, returned.Metadata, `"overdue":true`)
}

func TestService_LogInconsistent(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogInconsistent(context.Background(), "return_borrow", 9, 4, 2, errors.New("book 9 has 3/3 copies"))
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventInconsistent).First(&event).Error)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Equal(t, "return_borrow", event.Action)
	assert.Contains(t, event.Description, "INCONSISTENT")
	assert.Equal(t, "book 9 has 3/3 copies", event.ErrorMsg)
}

func TestService_LogOverdueScan(t *testing.T) {
	svc, db := setupTestService(t)
	ctx := context.Background()

	svc.LogOverdueScan(ctx, 3, nil)
	svc.LogOverdueScan(ctx, 0, errors.New("database is locked"))
	svc.Wait()

	var events []entities.AuditEvent
	require.NoError(t, db.Where("event_type = ?", entities.AuditEventOverdueScan).Order("id").Find(&events).Error)
	require.Len(t, events, 2)

	statuses := []entities.AuditStatus{events[0].Status, events[1].Status}
	assert.ElementsMatch(t, []entities.AuditStatus{entities.AuditStatusSuccess, entities.AuditStatusFailed}, statuses)
}

func TestService_LogAuth(t *testing.T) {
	svc, db := setupTestService(t)

	svc.LogAuth(WithRequestID(context.Background(), "abc"), 1, "login_failed", "10.0.0.1", "curl/8", false)
	svc.Wait()

	var event entities.AuditEvent
	require.NoError(t, db.Where("action = ?", "login_failed").First(&event).Error)
	assert.Equal(t, entities.AuditStatusFailed, event.Status)
	assert.Equal(t, "10.0.0.1", event.IPAddress)
	assert.Equal(t, "abc", event.RequestID)
}

func TestService_DeleteOldEvents(t *testing.T) {
	svc, _ := setupTestService(t)
	ctx := context.Background()

	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventBorrow,
		Status:    entities.AuditStatusSuccess,
		CreatedAt: time.Now().Add(-200 * 24 * time.Hour),
	}))
	require.NoError(t, svc.Log(ctx, &entities.AuditEvent{
		EventType: entities.AuditEventBorrow,
		Status:    entities.AuditStatusSuccess,
	}))

	deleted, err := svc.DeleteOldEvents(ctx, 90*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	events, total, err := svc.ListEvents(ctx, auditRepo.EventFilter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Len(t, events, 1)
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abcdefg...", truncate("abcdefghijklmnop", 10))
}
