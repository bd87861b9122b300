package borrow

import (
	"context"
	"time"

	"github.com/mrlokans/lending/internal/entities"
)

// Availability is a point-in-time view of a book's copy counters.
type Availability struct {
	BookID          uint              `json:"book_id"`
	BookType        entities.BookType `json:"book_type"`
	TotalCopies     uint              `json:"total_copies"`
	AvailableCopies uint              `json:"available_copies"`
}

// Borrowable reports whether a physical copy can be lent right now.
func (a Availability) Borrowable() bool {
	return a.BookType == entities.BookTypePhysical && a.AvailableCopies > 0
}

// Ledger owns the per-book copy counters. Implementations must keep
// 0 <= available_copies <= total_copies with single conditional updates.
type Ledger interface {
	TryDecrement(ctx context.Context, bookID uint) error
	Increment(ctx context.Context, bookID uint) error
	Snapshot(ctx context.Context, bookID uint) (Availability, error)
}

// RecordStore persists borrow records.
type RecordStore interface {
	// FindActive returns the unreturned record for the pair, or nil if none exists.
	FindActive(ctx context.Context, bookID, userID uint) (*entities.BorrowRecord, error)
	Create(ctx context.Context, record *entities.BorrowRecord) error
	GetByID(ctx context.Context, id uint) (*entities.BorrowRecord, error)
	// MarkReturned closes an open record. A record that is already closed yields
	// KindAlreadyReturned.
	MarkReturned(ctx context.Context, id uint, at time.Time, actorID uint) error
}

// Tx exposes a ledger and record store bound to one transaction.
type Tx interface {
	Ledger() Ledger
	Records() RecordStore
}

// UnitOfWork runs fn atomically. Returning an error from fn rolls back every write
// made through the Tx.
type UnitOfWork interface {
	Atomically(ctx context.Context, fn func(tx Tx) error) error
}

// Catalog is the book lookup collaborator.
type Catalog interface {
	GetBook(ctx context.Context, id uint) (*entities.Book, error)
}

// Users is the user lookup collaborator.
type Users interface {
	GetUser(ctx context.Context, id uint) (*entities.User, error)
}

// LoanFilter narrows ListBorrowRecords. Zero values match everything.
type LoanFilter struct {
	UserID   uint
	Returned *bool
}

// LoanReader serves the read side outside of transactions.
type LoanReader interface {
	GetByID(ctx context.Context, id uint) (*entities.BorrowRecord, error)
	ListBorrowRecords(ctx context.Context, filter LoanFilter) ([]entities.BorrowRecord, error)
}

// Recorder receives lending events for the audit trail.
type Recorder interface {
	LogBorrow(ctx context.Context, record *entities.BorrowRecord)
	LogReturn(ctx context.Context, record *entities.BorrowRecord, actorID uint)
	LogInconsistent(ctx context.Context, op string, bookID, borrowID, actorID uint, err error)
}

type nopRecorder struct{}

func (nopRecorder) LogBorrow(context.Context, *entities.BorrowRecord) {}
func (nopRecorder) LogReturn(context.Context, *entities.BorrowRecord, uint) {}
func (nopRecorder) LogInconsistent(context.Context, string, uint, uint, uint, error) {}
