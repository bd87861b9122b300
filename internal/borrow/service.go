// Package borrow implements lending: creating and closing loans against the copy
// ledger and the record store, and classifying loans for every read view.
package borrow

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/mrlokans/lending/internal/entities"
)

const (
	opCreateBorrow = "create_borrow"
	opReturnBorrow = "return_borrow"

	DefaultMinDays = 1
	DefaultMaxDays = 30
)

// Service coordinates the ledger and the record store.
type Service struct {
	uow      UnitOfWork
	catalog  Catalog
	users    Users
	loans    LoanReader
	recorder Recorder
	now      func() time.Time
	minDays  int
	maxDays  int
}

type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithDurationBounds sets the accepted range for requested loan days.
func WithDurationBounds(minDays, maxDays int) Option {
	return func(s *Service) {
		if minDays > 0 && maxDays >= minDays {
			s.minDays = minDays
			s.maxDays = maxDays
		}
	}
}

func WithRecorder(r Recorder) Option {
	return func(s *Service) {
		if r != nil {
			s.recorder = r
		}
	}
}

func NewService(uow UnitOfWork, catalog Catalog, users Users, loans LoanReader, opts ...Option) *Service {
	s := &Service{
		uow:      uow,
		catalog:  catalog,
		users:    users,
		loans:    loans,
		recorder: nopRecorder{},
		now:      time.Now,
		minDays:  DefaultMinDays,
		maxDays:  DefaultMaxDays,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the service clock, so handlers classify with the same instant source.
func (s *Service) Now() time.Time {
	return s.now()
}

// CreateBorrow lends one copy of a physical book for the requested number of days.
func (s *Service) CreateBorrow(ctx context.Context, bookID, userID uint, days int) (*entities.BorrowRecord, error) {
	if days < s.minDays || days > s.maxDays {
		return nil, NewError(KindInvalidDuration, opCreateBorrow,
			fmt.Errorf("requested %d days, allowed %d-%d", days, s.minDays, s.maxDays))
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return nil, lookupError(opCreateBorrow, KindUnauthorized, err)
	}

	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return nil, lookupError(opCreateBorrow, KindNotFound, err)
	}
	if !book.IsPhysical() {
		return nil, NewError(KindNotBorrowable, opCreateBorrow, nil)
	}

	now := s.now()
	record := &entities.BorrowRecord{
		BookID:     book.ID,
		UserID:     user.ID,
		BorrowedAt: now,
		DueAt:      now.Add(time.Duration(days) * 24 * time.Hour),
	}

	err = s.uow.Atomically(ctx, func(tx Tx) error {
		active, err := tx.Records().FindActive(ctx, book.ID, user.ID)
		if err != nil {
			return err
		}
		if active != nil {
			return NewError(KindDuplicateActiveBorrow, opCreateBorrow, nil)
		}
		if err := tx.Ledger().TryDecrement(ctx, book.ID); err != nil {
			return err
		}
		return tx.Records().Create(ctx, record)
	})
	if err != nil {
		if IsInconsistent(err) {
			s.reportInconsistent(ctx, opCreateBorrow, book.ID, 0, user.ID, err)
		}
		return nil, err
	}

	record.Book = *book
	record.User = *user
	s.recorder.LogBorrow(ctx, record)
	return record, nil
}

// ReturnBorrow closes a loan. Only the borrower or an admin may return it.
// Returning a closed loan yields KindAlreadyReturned, so retries are safe.
func (s *Service) ReturnBorrow(ctx context.Context, borrowID, actorID uint) (*entities.BorrowRecord, error) {
	actor, err := s.users.GetUser(ctx, actorID)
	if err != nil {
		return nil, lookupError(opReturnBorrow, KindUnauthorized, err)
	}

	record, err := s.loans.GetByID(ctx, borrowID)
	if err != nil {
		return nil, lookupError(opReturnBorrow, KindNotFound, err)
	}
	if record.UserID != actor.ID && !actor.IsAdmin() {
		return nil, NewError(KindUnauthorized, opReturnBorrow,
			fmt.Errorf("user %d does not own borrow %d", actor.ID, borrowID))
	}

	now := s.now()
	var closed *entities.BorrowRecord
	err = s.uow.Atomically(ctx, func(tx Tx) error {
		current, err := tx.Records().GetByID(ctx, borrowID)
		if err != nil {
			return err
		}
		if current.IsReturned {
			return NewError(KindAlreadyReturned, opReturnBorrow, nil)
		}
		if err := tx.Records().MarkReturned(ctx, borrowID, now, actor.ID); err != nil {
			return err
		}
		if err := tx.Ledger().Increment(ctx, current.BookID); err != nil {
			if IsInconsistent(err) {
				return err
			}
			return NewError(KindInconsistent, opReturnBorrow, err)
		}

		current.IsReturned = true
		current.ReturnedAt = &now
		current.ReturnedBy = &actor.ID
		closed = current
		return nil
	})
	if err != nil {
		if IsInconsistent(err) {
			s.reportInconsistent(ctx, opReturnBorrow, record.BookID, borrowID, actor.ID, err)
		}
		return nil, err
	}

	s.recorder.LogReturn(ctx, closed, actor.ID)
	return closed, nil
}

// Availability reports the copy counters of a catalog book.
func (s *Service) Availability(ctx context.Context, bookID uint) (*Availability, error) {
	book, err := s.catalog.GetBook(ctx, bookID)
	if err != nil {
		return nil, lookupError("availability", KindNotFound, err)
	}
	return &Availability{
		BookID:          book.ID,
		BookType:        book.BookType,
		TotalCopies:     book.TotalCopies,
		AvailableCopies: book.AvailableCopies,
	}, nil
}

func (s *Service) reportInconsistent(ctx context.Context, op string, bookID, borrowID, actorID uint, err error) {
	log.Printf("[BORROW] INCONSISTENT op=%s book=%d borrow=%d actor=%d: %v", op, bookID, borrowID, actorID, err)
	s.recorder.LogInconsistent(ctx, op, bookID, borrowID, actorID, err)
}

// lookupError turns a collaborator failure into a lending error. Missing rows become
// kind; lending errors pass through; anything else is an infrastructure failure.
func lookupError(op string, kind Kind, err error) error {
	if KindOf(err) != "" {
		if KindOf(err) == KindNotFound {
			return NewError(kind, op, err)
		}
		return err
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return NewError(kind, op, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
