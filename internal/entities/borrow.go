package entities

import "time"

type BorrowStatus string

const (
	BorrowStatusBorrowed BorrowStatus = "borrowed"
	BorrowStatusOverdue  BorrowStatus = "overdue"
	BorrowStatusReturned BorrowStatus = "returned"
)

// BorrowRecord is one loan of a physical copy. It is written once on creation and
// once more when returned; a returned record is never reopened.
//
// A partial unique index on (book_id, user_id) WHERE is_returned = 0 is created by
// database.NewDatabase: a user holds at most one unreturned record per book.
type BorrowRecord struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	BookID     uint       `gorm:"not null;index" json:"book_id"`
	UserID     uint       `gorm:"not null;index" json:"user_id"`
	BorrowedAt time.Time  `gorm:"not null" json:"borrowed_date"`
	DueAt      time.Time  `gorm:"not null;index" json:"due_date"`
	ReturnedAt *time.Time `json:"return_date"`
	ReturnedBy *uint      `json:"returned_by,omitempty"`
	IsReturned bool       `gorm:"not null;default:false;index" json:"is_returned"`
	Book       Book       `gorm:"foreignKey:BookID" json:"-"`
	User       User       `gorm:"foreignKey:UserID" json:"-"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}

func (BorrowRecord) TableName() string {
	return "borrow_records"
}
