package reports

import (
	"context"
	"fmt"
	"time"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

// CatalogReader lists the catalog.
type CatalogReader interface {
	ListBooks(ctx context.Context) ([]entities.Book, error)
	ListCategories(ctx context.Context) ([]entities.Category, error)
}

// UserCounter counts registered users.
type UserCounter interface {
	CountUsers(ctx context.Context) (int64, error)
}

// Service loads fresh data and runs the aggregators over it.
type Service struct {
	catalog CatalogReader
	users   UserCounter
	loans   borrow.LoanReader
	now     func() time.Time
}

func NewService(catalog CatalogReader, users UserCounter, loans borrow.LoanReader) *Service {
	return &Service{catalog: catalog, users: users, loans: loans, now: time.Now}
}

// Categories returns the per-category report.
func (s *Service) Categories(ctx context.Context) ([]CategoryReport, error) {
	books, categories, err := s.loadCatalog(ctx)
	if err != nil {
		return nil, err
	}
	return AggregateByCategory(books, categories), nil
}

// Stats returns library-wide totals.
func (s *Service) Stats(ctx context.Context) (Stats, error) {
	books, categories, err := s.loadCatalog(ctx)
	if err != nil {
		return Stats{}, err
	}
	users, err := s.users.CountUsers(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to count users: %w", err)
	}
	returned := false
	loans, err := s.loans.ListBorrowRecords(ctx, borrow.LoanFilter{Returned: &returned})
	if err != nil {
		return Stats{}, fmt.Errorf("failed to list active loans: %w", err)
	}
	return LibraryStats(books, users, categories, loans, s.now()), nil
}

// ExternalSources returns book counts per external host.
func (s *Service) ExternalSources(ctx context.Context) ([]SourceCount, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	return ExternalSources(books), nil
}

func (s *Service) loadCatalog(ctx context.Context) ([]entities.Book, []entities.Category, error) {
	books, err := s.catalog.ListBooks(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list books: %w", err)
	}
	categories, err := s.catalog.ListCategories(ctx)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list categories: %w", err)
	}
	return books, categories, nil
}
