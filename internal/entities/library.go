package entities

import (
	"time"

	"gorm.io/gorm"
)

type BookType string

const (
	BookTypePhysical BookType = "PHYSICAL"
	BookTypeEbook    BookType = "EBOOK"
)

type UserRole string

const (
	UserRoleUser  UserRole = "user"
	UserRoleAdmin UserRole = "admin"
)

type Category struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Name        string    `gorm:"uniqueIndex;size:100" json:"name"`
	Description string    `gorm:"type:text" json:"description,omitempty"`
	Books       []Book    `gorm:"many2many:book_categories;" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Book is owned by the catalog. Only PHYSICAL books carry meaningful copy counters;
// the ledger never touches an EBOOK row.
type Book struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	BookUUID        string         `gorm:"uniqueIndex;size:12" json:"book_uuid"`
	Title           string         `gorm:"index;size:200" json:"title"`
	Author          string         `gorm:"index;size:100" json:"author"`
	Publisher       string         `gorm:"index;size:200" json:"publisher,omitempty"`
	Description     string         `gorm:"type:text" json:"description,omitempty"`
	BookType        BookType       `gorm:"size:10;default:'PHYSICAL'" json:"book_type"`
	TotalCopies     uint           `gorm:"not null" json:"total_copies"`
	AvailableCopies uint           `gorm:"not null" json:"available_copies"`
	ExternalSource  string         `gorm:"size:2048" json:"external_source,omitempty"`
	IsFeatured      bool           `gorm:"default:false" json:"is_featured"`
	Categories      []Category     `gorm:"many2many:book_categories;" json:"categories,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsPhysical reports whether the book is lent as a counted physical copy.
func (b Book) IsPhysical() bool {
	return b.BookType == BookTypePhysical
}

// IsEbook reports whether the book is an unlimited-access electronic item.
func (b Book) IsEbook() bool {
	return b.BookType == BookTypeEbook
}

type User struct {
	ID               uint           `gorm:"primaryKey" json:"id"`
	Username         string         `gorm:"uniqueIndex;size:100" json:"username"`
	Email            string         `gorm:"uniqueIndex;size:255" json:"email"`
	FirstName        string         `gorm:"size:30" json:"first_name,omitempty"`
	LastName         string         `gorm:"size:30" json:"last_name,omitempty"`
	Role             UserRole       `gorm:"size:10;default:'user'" json:"role"`
	PasswordHash     string         `gorm:"size:255" json:"-"`
	TokenHash        string         `gorm:"index;size:64" json:"-"`
	TokenCreatedAt   *time.Time     `json:"-"`
	FailedLoginCount int            `gorm:"default:0" json:"-"`
	LockedUntil      *time.Time     `json:"-"`
	LastLoginAt      *time.Time     `json:"last_login_at,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
	DeletedAt        gorm.DeletedAt `gorm:"index" json:"-"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == UserRoleAdmin
}

func (Category) TableName() string {
	return "categories"
}

func (Book) TableName() string {
	return "books"
}

func (User) TableName() string {
	return "users"
}
