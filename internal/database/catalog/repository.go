// Package catalog provides database operations for books and categories.
//
// The lending core only reads books through GetBook; the remaining methods back the
// seed command and the reports.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

var (
	ErrTitleRequired = errors.New("title is required")
	ErrInvalidCopies = errors.New("available copies cannot exceed total copies")
	ErrInvalidType   = errors.New("book type must be PHYSICAL or EBOOK")
)

const uuidAttempts = 5

var _ borrow.Catalog = (*Repository)(nil)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// GetBook retrieves a book by ID. A missing book yields gorm.ErrRecordNotFound.
func (r *Repository) GetBook(ctx context.Context, id uint) (*entities.Book, error) {
	var book entities.Book
	if err := r.db.WithContext(ctx).First(&book, id).Error; err != nil {
		return nil, err
	}
	return &book, nil
}

// GetBookByUUID retrieves a book by its public BOOK-XXXXXX identifier.
func (r *Repository) GetBookByUUID(ctx context.Context, bookUUID string) (*entities.Book, error) {
	var book entities.Book
	err := r.db.WithContext(ctx).Where("book_uuid = ?", strings.ToUpper(bookUUID)).First(&book).Error
	if err != nil {
		return nil, err
	}
	return &book, nil
}

// ListBooks returns every book with its categories.
func (r *Repository) ListBooks(ctx context.Context) ([]entities.Book, error) {
	var books []entities.Book
	err := r.db.WithContext(ctx).Preload("Categories").Order("title ASC").Find(&books).Error
	return books, err
}

// ListCategories returns every category ordered by name.
func (r *Repository) ListCategories(ctx context.Context) ([]entities.Category, error) {
	var categories []entities.Category
	err := r.db.WithContext(ctx).Order("name ASC").Find(&categories).Error
	return categories, err
}

// EnsureCategory returns the category with the given name, creating it if needed.
func (r *Repository) EnsureCategory(ctx context.Context, name, description string) (*entities.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, errors.New("category name is required")
	}

	category := entities.Category{Name: name, Description: description}
	err := r.db.WithContext(ctx).Where(entities.Category{Name: name}).FirstOrCreate(&category).Error
	if err != nil {
		return nil, fmt.Errorf("failed to ensure category %q: %w", name, err)
	}
	return &category, nil
}

// CreateBook validates and inserts a book, assigning a fresh BOOK-XXXXXX identifier
// when none is set.
func (r *Repository) CreateBook(ctx context.Context, book *entities.Book) error {
	if strings.TrimSpace(book.Title) == "" {
		return ErrTitleRequired
	}
	if book.BookType == "" {
		book.BookType = entities.BookTypePhysical
	}
	if book.BookType != entities.BookTypePhysical && book.BookType != entities.BookTypeEbook {
		return ErrInvalidType
	}
	if book.AvailableCopies > book.TotalCopies {
		return ErrInvalidCopies
	}

	generated := book.BookUUID == ""
	for attempt := 0; ; attempt++ {
		if generated {
			book.BookUUID = NewBookUUID()
		}
		err := r.db.WithContext(ctx).Create(book).Error
		if err == nil {
			return nil
		}
		if !generated || attempt+1 >= uuidAttempts || !errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("failed to create book %q: %w", book.Title, err)
		}
		book.ID = 0
	}
}

// CountBooks returns the number of catalog books.
func (r *Repository) CountBooks(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entities.Book{}).Count(&count).Error
	return count, err
}

// NewBookUUID returns "BOOK-" followed by six upper-case hex digits.
func NewBookUUID() string {
	hex := strings.ReplaceAll(uuid.NewString(), "-", "")
	return "BOOK-" + strings.ToUpper(hex[:6])
}
