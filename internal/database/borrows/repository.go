// Package borrows stores loan records.
//
// The repository works both inside a transaction (through database.Atomically) and on
// the shared connection for read views.
//
// # Usage
//
//	repo := borrows.NewRepository(db)
//	records, err := repo.ListBorrowRecords(ctx, borrow.LoanFilter{UserID: id})
package borrows

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

var (
	_ borrow.RecordStore = (*Repository)(nil)
	_ borrow.LoanReader  = (*Repository)(nil)
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// FindActive returns the open record for (book, user), or nil when there is none.
func (r *Repository) FindActive(ctx context.Context, bookID, userID uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.db.WithContext(ctx).
		Where("book_id = ? AND user_id = ? AND is_returned = ?", bookID, userID, false).
		Limit(1).
		Find(&record).Error
	if err != nil {
		return nil, fmt.Errorf("borrows.find_active: %w", err)
	}
	if record.ID == 0 {
		return nil, nil
	}
	return &record, nil
}

// Create inserts a new open record. The partial unique index turns a second open
// record for the same pair into KindDuplicateActiveBorrow.
func (r *Repository) Create(ctx context.Context, record *entities.BorrowRecord) error {
	record.IsReturned = false
	record.ReturnedAt = nil
	if err := r.db.WithContext(ctx).Create(record).Error; err != nil {
		if isUniqueViolation(err) {
			return borrow.NewError(borrow.KindDuplicateActiveBorrow, "borrows.create", err)
		}
		return fmt.Errorf("borrows.create: %w", err)
	}
	return nil
}

// GetByID loads a record with its book and user.
func (r *Repository) GetByID(ctx context.Context, id uint) (*entities.BorrowRecord, error) {
	var record entities.BorrowRecord
	err := r.withAssociations(r.db.WithContext(ctx)).First(&record, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, borrow.NewError(borrow.KindNotFound, "borrows.get", err)
		}
		return nil, fmt.Errorf("borrows.get: %w", err)
	}
	return &record, nil
}

// MarkReturned closes an open record. Only an UPDATE guarded by is_returned = false
// can close it, so a concurrent second return affects zero rows.
func (r *Repository) MarkReturned(ctx context.Context, id uint, at time.Time, actorID uint) error {
	const op = "borrows.mark_returned"

	result := r.db.WithContext(ctx).Model(&entities.BorrowRecord{}).
		Where("id = ? AND is_returned = ?", id, false).
		Updates(map[string]interface{}{
			"is_returned": true,
			"returned_at": at,
			"returned_by": actorID,
		})
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	var count int64
	if err := r.db.WithContext(ctx).Model(&entities.BorrowRecord{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if count == 0 {
		return borrow.NewError(borrow.KindNotFound, op, nil)
	}
	return borrow.NewError(borrow.KindAlreadyReturned, op, nil)
}

// ListBorrowRecords returns records matching filter, newest first.
func (r *Repository) ListBorrowRecords(ctx context.Context, filter borrow.LoanFilter) ([]entities.BorrowRecord, error) {
	query := r.withAssociations(r.db.WithContext(ctx))
	if filter.UserID > 0 {
		query = query.Where("user_id = ?", filter.UserID)
	}
	if filter.Returned != nil {
		query = query.Where("is_returned = ?", *filter.Returned)
	}

	var records []entities.BorrowRecord
	if err := query.Order("borrowed_at DESC, id DESC").Find(&records).Error; err != nil {
		return nil, fmt.Errorf("borrows.list: %w", err)
	}
	return records, nil
}

// Soft-deleted books and users still show up on the loans that reference them.
func (r *Repository) withAssociations(db *gorm.DB) *gorm.DB {
	unscoped := func(db *gorm.DB) *gorm.DB { return db.Unscoped() }
	return db.Preload("Book", unscoped).Preload("User", unscoped)
}

func isUniqueViolation(err error) bool {
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}
