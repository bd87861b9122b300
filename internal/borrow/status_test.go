package borrow

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/mrlokans/lending/internal/entities"
)

func TestClassify(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)
	returnedAt := now.Add(-time.Hour)

	tests := []struct {
		name   string
		record entities.BorrowRecord
		want   entities.BorrowStatus
	}{
		{
			name:   "due in the future",
			record: entities.BorrowRecord{DueAt: now.Add(time.Hour)},
			want:   entities.BorrowStatusBorrowed,
		},
		{
			name:   "due exactly now is still borrowed",
			record: entities.BorrowRecord{DueAt: now},
			want:   entities.BorrowStatusBorrowed,
		},
		{
			name:   "one nanosecond past due",
			record: entities.BorrowRecord{DueAt: now.Add(-time.Nanosecond)},
			want:   entities.BorrowStatusOverdue,
		},
		{
			name:   "returned wins over overdue",
			record: entities.BorrowRecord{DueAt: now.Add(-72 * time.Hour), IsReturned: true, ReturnedAt: &returnedAt},
			want:   entities.BorrowStatusReturned,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.record, now))
		})
	}
}

func TestDaysRemaining(t *testing.T) {
	now := time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

	assert.Equal(t, 14, DaysRemaining(entities.BorrowRecord{DueAt: now.Add(14 * 24 * time.Hour)}, now))
	assert.Equal(t, 1, DaysRemaining(entities.BorrowRecord{DueAt: now.Add(2 * time.Hour)}, now))
	assert.Equal(t, 0, DaysRemaining(entities.BorrowRecord{DueAt: now}, now))
	assert.Equal(t, -1, DaysRemaining(entities.BorrowRecord{DueAt: now.Add(-2 * time.Hour)}, now))
	assert.Equal(t, -3, DaysRemaining(entities.BorrowRecord{DueAt: now.Add(-3 * 24 * time.Hour)}, now))
	assert.Equal(t, 0, DaysRemaining(entities.BorrowRecord{DueAt: now.Add(-3 * 24 * time.Hour), IsReturned: true}, now))
}

func TestParseStatusFilter(t *testing.T) {
	for raw, want := range map[string]StatusFilter{
		"":         FilterAll,
		"all":      FilterAll,
		"active":   FilterAll,
		"Overdue":  FilterOverdue,
		"borrowed": FilterBorrowed,
	} {
		got, err := ParseStatusFilter(raw)
		assert.NoError(t, err, raw)
		assert.Equal(t, want, got, raw)
	}

	_, err := ParseStatusFilter("lost")
	assert.ErrorIs(t, err, ErrUnknownStatusFilter)
}
