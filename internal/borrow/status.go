package borrow

import (
	"math"
	"time"

	"github.com/mrlokans/lending/internal/entities"
)

// Classify derives the display status of a loan. It is the only place overdue state
// is computed; user and admin listings both go through it.
//
// A loan is overdue strictly after its due instant: due_at == now is still borrowed.
func Classify(record entities.BorrowRecord, now time.Time) entities.BorrowStatus {
	if record.IsReturned {
		return entities.BorrowStatusReturned
	}
	if record.DueAt.Before(now) {
		return entities.BorrowStatusOverdue
	}
	return entities.BorrowStatusBorrowed
}

// DaysRemaining returns whole days until the loan is due, rounded up while the loan is
// current and down once it is overdue. Returned loans report 0.
func DaysRemaining(record entities.BorrowRecord, now time.Time) int {
	if Classify(record, now) == entities.BorrowStatusReturned {
		return 0
	}
	days := record.DueAt.Sub(now).Hours() / 24
	if days >= 0 {
		return int(math.Ceil(days))
	}
	return int(math.Floor(days))
}
