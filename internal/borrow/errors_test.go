package borrow

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesKind(t *testing.T) {
	err := NewError(KindUnavailable, "ledger.try_decrement", nil)
	wrapped := fmt.Errorf("create: %w", err)

	assert.ErrorIs(t, wrapped, ErrUnavailable)
	assert.NotErrorIs(t, wrapped, ErrNotFound)
	assert.Equal(t, KindUnavailable, KindOf(wrapped))
}

func TestError_UnwrapCause(t *testing.T) {
	cause := errors.New("disk full")
	err := NewError(KindInconsistent, "return_borrow", cause)

	assert.ErrorIs(t, err, cause)
	assert.True(t, IsInconsistent(err))
	assert.Equal(t, "return_borrow: inconsistent: disk full", err.Error())
}

func TestKindOf_ForeignError(t *testing.T) {
	assert.Equal(t, Kind(""), KindOf(errors.New("boom")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKind_Message(t *testing.T) {
	assert.Equal(t, "E-Books cannot be borrowed", KindNotBorrowable.Message())
	assert.Equal(t, "No copies available", KindUnavailable.Message())
	assert.Equal(t, "mystery", Kind("mystery").Message())
}
