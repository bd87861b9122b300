// Package ledger keeps per-book copy counters consistent.
//
// Every mutation is a single conditional UPDATE, so the row itself enforces
// 0 <= available_copies <= total_copies no matter how callers interleave.
//
// # Usage
//
//	repo := ledger.NewRepository(tx)
//	if err := repo.TryDecrement(ctx, bookID); err != nil {
//		// borrow.KindUnavailable, borrow.KindNotFound, ...
//	}
package ledger

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

var _ borrow.Ledger = (*Repository)(nil)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// TryDecrement takes one copy of a physical book if any is left.
func (r *Repository) TryDecrement(ctx context.Context, bookID uint) error {
	const op = "ledger.try_decrement"

	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND book_type = ? AND available_copies > 0", bookID, entities.BookTypePhysical).
		Update("available_copies", gorm.Expr("available_copies - 1"))
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	snap, err := r.Snapshot(ctx, bookID)
	if err != nil {
		return err
	}
	switch {
	case snap.BookType != entities.BookTypePhysical:
		return borrow.NewError(borrow.KindNotBorrowable, op, nil)
	case snap.AvailableCopies == 0:
		return borrow.NewError(borrow.KindUnavailable, op, nil)
	default:
		return borrow.NewError(borrow.KindInconsistent, op,
			fmt.Errorf("book %d: update matched no row with %d/%d copies", bookID, snap.AvailableCopies, snap.TotalCopies))
	}
}

// Increment returns one copy. A book already at total_copies means a return was
// counted twice, which is reported as KindInconsistent.
func (r *Repository) Increment(ctx context.Context, bookID uint) error {
	const op = "ledger.increment"

	result := r.db.WithContext(ctx).Model(&entities.Book{}).
		Where("id = ? AND book_type = ? AND available_copies < total_copies", bookID, entities.BookTypePhysical).
		Update("available_copies", gorm.Expr("available_copies + 1"))
	if result.Error != nil {
		return fmt.Errorf("%s: %w", op, result.Error)
	}
	if result.RowsAffected == 1 {
		return nil
	}

	snap, err := r.Snapshot(ctx, bookID)
	if err != nil {
		return err
	}
	return borrow.NewError(borrow.KindInconsistent, op,
		fmt.Errorf("book %d (%s) has %d/%d copies", bookID, snap.BookType, snap.AvailableCopies, snap.TotalCopies))
}

// Snapshot reads the current counters of a book.
func (r *Repository) Snapshot(ctx context.Context, bookID uint) (borrow.Availability, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).
		Select("id", "book_type", "total_copies", "available_copies").
		First(&book, bookID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return borrow.Availability{}, borrow.NewError(borrow.KindNotFound, "ledger.snapshot", err)
		}
		return borrow.Availability{}, fmt.Errorf("ledger.snapshot: %w", err)
	}
	return borrow.Availability{
		BookID:          book.ID,
		BookType:        book.BookType,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
	}, nil
}
