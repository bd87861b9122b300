package http

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/lending/internal/entities"
)

type auditPage struct {
	Events      []entities.AuditEvent `json:"events"`
	Page        int                   `json:"page"`
	Limit       int                   `json:"limit"`
	TotalPages  int                   `json:"total_pages"`
	TotalEvents int64                 `json:"total_events"`
}

func TestAudit_ListsLendingEvents(t *testing.T) {
	s := setupServer(t)
	reader, token := s.user(t, "reader", entities.UserRoleUser)
	_, adminToken := s.user(t, "librarian", entities.UserRoleAdmin)
	book := s.book(t, "Dune", entities.BookTypePhysical, 1)

	rr := s.do(http.MethodPost, borrowPath(book.ID), token, map[string]int{"days": 7})
	require.Equal(t, http.StatusCreated, rr.Code)
	borrowID := decode[BorrowResponse](t, rr).Borrow.ID
	require.Equal(t, http.StatusNoContent,
		s.do(http.MethodPost, "/api/admin/borrows/return", adminToken, map[string]uint{"borrow_id": borrowID}).Code)
	s.audit.Wait()

	rr = s.do(http.MethodGet, "/api/admin/audit?type=borrow", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	page := decode[auditPage](t, rr)
	assert.EqualValues(t, 1, page.TotalEvents)
	require.Len(t, page.Events, 1)
	assert.Equal(t, reader.ID, page.Events[0].UserID)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 25, page.Limit)

	rr = s.do(http.MethodGet, "/api/admin/audit?type=return&limit=1", adminToken, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.EqualValues(t, 1, decode[auditPage](t, rr).TotalEvents)
}

func TestAudit_InvalidUserID(t *testing.T) {
	s := setupServer(t)
	_, adminToken := s.user(t, "librarian", entities.UserRoleAdmin)

	rr := s.do(http.MethodGet, "/api/admin/audit?user_id=abc", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}
