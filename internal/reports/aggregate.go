// Package reports computes dashboard counters from catalog and loan data. Nothing
// here is cached; every call recomputes from its inputs.
package reports

import (
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

// CategoryReport holds the counters of one category.
type CategoryReport struct {
	Category       string `json:"category" yaml:"category"`
	TotalBooks     int    `json:"total_books" yaml:"total_books"`
	AvailableBooks int    `json:"available_books" yaml:"available_books"`
	Ebooks         int    `json:"ebooks" yaml:"ebooks"`
	PhysicalBooks  int    `json:"physical_books" yaml:"physical_books"`
}

// Stats are library-wide totals.
type Stats struct {
	TotalBooks      int   `json:"total_books" yaml:"total_books"`
	TotalEbooks     int   `json:"total_ebooks" yaml:"total_ebooks"`
	TotalPhysical   int   `json:"total_physical" yaml:"total_physical"`
	TotalUsers      int64 `json:"total_users" yaml:"total_users"`
	TotalCategories int   `json:"total_categories" yaml:"total_categories"`
	TotalCopies     uint  `json:"total_copies" yaml:"total_copies"`
	AvailableCopies uint  `json:"available_copies" yaml:"available_copies"`
	ActiveLoans     int   `json:"active_loans" yaml:"active_loans"`
	OverdueLoans    int   `json:"overdue_loans" yaml:"overdue_loans"`
}

// SourceCount is the number of books linked to one external host.
type SourceCount struct {
	Host  string `json:"host" yaml:"host"`
	Books int    `json:"books" yaml:"books"`
}

// AggregateByCategory counts books per category. A book in several categories counts
// in each; categories without books are reported with zeros. Rows are sorted by name.
func AggregateByCategory(books []entities.Book, categories []entities.Category) []CategoryReport {
	rows := make(map[string]*CategoryReport, len(categories))
	for _, c := range categories {
		rows[c.Name] = &CategoryReport{Category: c.Name}
	}

	for _, book := range books {
		for _, c := range book.Categories {
			row, ok := rows[c.Name]
			if !ok {
				row = &CategoryReport{Category: c.Name}
				rows[c.Name] = row
			}
			row.TotalBooks++
			if accessibleNow(book) {
				row.AvailableBooks++
			}
			switch book.BookType {
			case entities.BookTypeEbook:
				row.Ebooks++
			case entities.BookTypePhysical:
				row.PhysicalBooks++
			}
		}
	}

	report := make([]CategoryReport, 0, len(rows))
	for _, row := range rows {
		report = append(report, *row)
	}
	sort.Slice(report, func(i, j int) bool {
		return report[i].Category < report[j].Category
	})
	return report
}

// LibraryStats totals the catalog and the open loans at now.
func LibraryStats(books []entities.Book, users int64, categories []entities.Category, activeLoans []entities.BorrowRecord, now time.Time) Stats {
	stats := Stats{
		TotalBooks:      len(books),
		TotalUsers:      users,
		TotalCategories: len(categories),
	}
	for _, book := range books {
		if book.IsEbook() {
			stats.TotalEbooks++
			continue
		}
		stats.TotalPhysical++
		stats.TotalCopies += book.TotalCopies
		stats.AvailableCopies += book.AvailableCopies
	}
	for _, loan := range activeLoans {
		switch borrow.Classify(loan, now) {
		case entities.BorrowStatusOverdue:
			stats.ActiveLoans++
			stats.OverdueLoans++
		case entities.BorrowStatusBorrowed:
			stats.ActiveLoans++
		}
	}
	return stats
}

// ExternalSources groups books that link to an external source by host, most
// common first.
func ExternalSources(books []entities.Book) []SourceCount {
	counts := make(map[string]int)
	for _, book := range books {
		source := strings.TrimSpace(book.ExternalSource)
		if source == "" {
			continue
		}
		counts[sourceHost(source)]++
	}

	result := make([]SourceCount, 0, len(counts))
	for host, n := range counts {
		result = append(result, SourceCount{Host: host, Books: n})
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Books != result[j].Books {
			return result[i].Books > result[j].Books
		}
		return result[i].Host < result[j].Host
	})
	return result
}

// EBOOKs are always accessible; physical books need a copy on the shelf.
func accessibleNow(book entities.Book) bool {
	return book.IsEbook() || book.AvailableCopies > 0
}

func sourceHost(source string) string {
	u, err := url.Parse(source)
	if err != nil || u.Host == "" {
		return "unknown"
	}
	return strings.TrimPrefix(strings.ToLower(u.Hostname()), "www.")
}
