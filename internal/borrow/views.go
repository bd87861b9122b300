package borrow

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrlokans/lending/internal/entities"
)

var ErrUnknownStatusFilter = errors.New("unknown status filter")

// StatusFilter selects active loans for the admin listing.
type StatusFilter string

const (
	FilterAll      StatusFilter = "all"
	FilterOverdue  StatusFilter = "overdue"
	FilterBorrowed StatusFilter = "borrowed"
)

// ParseStatusFilter accepts "", "all", "active", "overdue" and "borrowed".
func ParseStatusFilter(raw string) (StatusFilter, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "", "all", "active":
		return FilterAll, nil
	case "overdue":
		return FilterOverdue, nil
	case "borrowed":
		return FilterBorrowed, nil
	default:
		return "", ErrUnknownStatusFilter
	}
}

type BookSummary struct {
	ID       uint              `json:"id"`
	BookUUID string            `json:"book_uuid"`
	Title    string            `json:"title"`
	Author   string            `json:"author"`
	BookType entities.BookType `json:"book_type"`
}

type UserSummary struct {
	ID       uint   `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

// LoanView is a borrow record as shown to users and admins.
type LoanView struct {
	ID            uint                  `json:"id"`
	BorrowedAt    time.Time             `json:"borrowed_date"`
	DueAt         time.Time             `json:"due_date"`
	ReturnedAt    *time.Time            `json:"return_date"`
	IsReturned    bool                  `json:"is_returned"`
	Status        entities.BorrowStatus `json:"status"`
	DaysRemaining int                   `json:"days_remaining"`
	Book          BookSummary           `json:"book"`
	User          UserSummary           `json:"user"`
	BookTitle     string                `json:"book_title"`
	UserEmail     string                `json:"user_email"`
}

// NewLoanView classifies record at now. Book and User are read from the preloaded
// associations.
func NewLoanView(record entities.BorrowRecord, now time.Time) LoanView {
	return LoanView{
		ID:            record.ID,
		BorrowedAt:    record.BorrowedAt,
		DueAt:         record.DueAt,
		ReturnedAt:    record.ReturnedAt,
		IsReturned:    record.IsReturned,
		Status:        Classify(record, now),
		DaysRemaining: DaysRemaining(record, now),
		Book: BookSummary{
			ID:       record.BookID,
			BookUUID: record.Book.BookUUID,
			Title:    record.Book.Title,
			Author:   record.Book.Author,
			BookType: record.Book.BookType,
		},
		User: UserSummary{
			ID:       record.UserID,
			Username: record.User.Username,
			Email:    record.User.Email,
		},
		BookTitle: record.Book.Title,
		UserEmail: record.User.Email,
	}
}

// ActiveLoans lists the unreturned loans of a user.
func (s *Service) ActiveLoans(ctx context.Context, userID uint) ([]LoanView, error) {
	return s.list(ctx, LoanFilter{UserID: userID, Returned: boolPtr(false)}, nil)
}

// History lists the returned loans of a user.
func (s *Service) History(ctx context.Context, userID uint) ([]LoanView, error) {
	return s.list(ctx, LoanFilter{UserID: userID, Returned: boolPtr(true)}, nil)
}

// AdminActive lists every unreturned loan, optionally narrowed by status.
func (s *Service) AdminActive(ctx context.Context, filter StatusFilter) ([]LoanView, error) {
	var keep func(entities.BorrowStatus) bool
	switch filter {
	case FilterAll, "":
	case FilterOverdue, FilterBorrowed:
		want := entities.BorrowStatus(filter)
		keep = func(status entities.BorrowStatus) bool { return status == want }
	default:
		return nil, ErrUnknownStatusFilter
	}
	return s.list(ctx, LoanFilter{Returned: boolPtr(false)}, keep)
}

// Overdue lists every unreturned loan past its due instant.
func (s *Service) Overdue(ctx context.Context) ([]LoanView, error) {
	return s.AdminActive(ctx, FilterOverdue)
}

func (s *Service) list(ctx context.Context, filter LoanFilter, keep func(entities.BorrowStatus) bool) ([]LoanView, error) {
	records, err := s.loans.ListBorrowRecords(ctx, filter)
	if err != nil {
		return nil, err
	}

	now := s.now()
	views := make([]LoanView, 0, len(records))
	for _, record := range records {
		view := NewLoanView(record, now)
		if keep != nil && !keep(view.Status) {
			continue
		}
		views = append(views, view)
	}
	return views, nil
}

func boolPtr(b bool) *bool {
	return &b
}
