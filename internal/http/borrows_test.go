package http

import (
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/lending/internal/borrow"
	dbaudit "github.com/mrlokans/lending/internal/database/audit"
	"github.com/mrlokans/lending/internal/entities"
)

func borrowPath(id any) string {
	return fmt.Sprintf("/api/books/%v/borrow", id)
}

func TestBorrow_CreateReturnsDueDate(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	book := s.book(t, "Dune", entities.BookTypePhysical, 2)

	rr := s.do(http.MethodPost, borrowPath(book.ID), token, map[string]int{"days": 14})

	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	resp := decode[BorrowResponse](t, rr)
	assert.Equal(t, "Book borrowed successfully", resp.Message)
	assert.Equal(t, "2024-05-15T09:00:00Z", resp.DueDate)
	assert.Equal(t, entities.BorrowStatusBorrowed, resp.Borrow.Status)
	assert.Equal(t, 14, resp.Borrow.DaysRemaining)
	assert.Equal(t, "Dune", resp.Borrow.Book.Title)
	assert.Equal(t, "reader", resp.Borrow.User.Username)

	rr = s.do(http.MethodGet, "/api/books/"+book.BookUUID+"/availability", token, nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, fmt.Sprintf(
		`{"book_id":%d,"book_type":"PHYSICAL","total_copies":2,"available_copies":1,"borrowable":true}`, book.ID),
		rr.Body.String())
}

func TestBorrow_AcceptsBookUUID(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	book := s.book(t, "Dune", entities.BookTypePhysical, 1)

	rr := s.do(http.MethodPost, borrowPath(book.BookUUID), token, map[string]int{"days": 7})
	assert.Equal(t, http.StatusCreated, rr.Code)

	rr = s.do(http.MethodPost, borrowPath("BOOK-FFFFFF"), token, map[string]int{"days": 7})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodPost, borrowPath("dune"), token, map[string]int{"days": 7})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBorrow_ErrorKindsMapToStatus(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	_, otherToken := s.user(t, "second", entities.UserRoleUser)
	single := s.book(t, "Dune", entities.BookTypePhysical, 1)
	ebook := s.book(t, "Neuromancer", entities.BookTypeEbook, 0)

	tests := []struct {
		name   string
		token  string
		path   string
		body   any
		status int
		code   borrow.Kind
	}{
		{"zero days", token, borrowPath(single.ID), map[string]int{"days": 0}, http.StatusBadRequest, borrow.KindInvalidDuration},
		{"too many days", token, borrowPath(single.ID), map[string]int{"days": 31}, http.StatusBadRequest, borrow.KindInvalidDuration},
		{"missing book", token, borrowPath(9999), map[string]int{"days": 7}, http.StatusNotFound, borrow.KindNotFound},
		{"ebook", token, borrowPath(ebook.ID), map[string]int{"days": 7}, http.StatusUnprocessableEntity, borrow.KindNotBorrowable},
		{"first borrow", token, borrowPath(single.ID), map[string]int{"days": 7}, http.StatusCreated, ""},
		{"duplicate", token, borrowPath(single.ID), map[string]int{"days": 7}, http.StatusConflict, borrow.KindDuplicateActiveBorrow},
		{"no copies", otherToken, borrowPath(single.ID), map[string]int{"days": 7}, http.StatusConflict, borrow.KindUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := s.do(http.MethodPost, tt.path, tt.token, tt.body)
			require.Equal(t, tt.status, rr.Code, rr.Body.String())
			if tt.code != "" {
				resp := decode[ErrorResponse](t, rr)
				assert.Equal(t, string(tt.code), resp.Code)
				assert.Equal(t, tt.code.Message(), resp.Error)
			}
		})
	}
}

func TestBorrow_MissingDays(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	book := s.book(t, "Dune", entities.BookTypePhysical, 1)

	rr := s.do(http.MethodPost, borrowPath(book.ID), token, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestReturn_AdminAndBorrower(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	_, strangerToken := s.user(t, "stranger", entities.UserRoleUser)
	_, adminToken := s.user(t, "librarian", entities.UserRoleAdmin)
	book := s.book(t, "Dune", entities.BookTypePhysical, 1)

	first := decode[BorrowResponse](t, s.do(http.MethodPost, borrowPath(book.ID), token, map[string]int{"days": 7}))

	rr := s.do(http.MethodPost, fmt.Sprintf("/api/borrows/%d/return", first.Borrow.ID), strangerToken, nil)
	assert.Equal(t, http.StatusForbidden, rr.Code)

	rr = s.do(http.MethodPost, fmt.Sprintf("/api/borrows/%d/return", first.Borrow.ID), token, nil)
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	assert.Contains(t, rr.Body.String(), `"status":"returned"`)

	rr = s.do(http.MethodPost, fmt.Sprintf("/api/borrows/%d/return", first.Borrow.ID), token, nil)
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, string(borrow.KindAlreadyReturned), decode[ErrorResponse](t, rr).Code)

	second := decode[BorrowResponse](t, s.do(http.MethodPost, borrowPath(book.ID), token, map[string]int{"days": 7}))
	rr = s.do(http.MethodPost, "/api/admin/borrows/return", adminToken, map[string]uint{"borrow_id": second.Borrow.ID})
	require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())

	rr = s.do(http.MethodPost, "/api/admin/borrows/return", adminToken, map[string]uint{"borrow_id": 9999})
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = s.do(http.MethodPost, "/api/admin/borrows/return", adminToken, map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = s.do(http.MethodPost, "/api/borrows/abc/return", token, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestLoanViews_UserAndAdmin(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	_, adminToken := s.user(t, "librarian", entities.UserRoleAdmin)
	short := s.book(t, "Dune", entities.BookTypePhysical, 1)
	long := s.book(t, "Hyperion", entities.BookTypePhysical, 1)
	returned := s.book(t, "Foundation", entities.BookTypePhysical, 1)

	s.do(http.MethodPost, borrowPath(short.ID), token, map[string]int{"days": 2})
	s.do(http.MethodPost, borrowPath(long.ID), token, map[string]int{"days": 20})
	done := decode[BorrowResponse](t, s.do(http.MethodPost, borrowPath(returned.ID), token, map[string]int{"days": 5}))
	s.do(http.MethodPost, fmt.Sprintf("/api/borrows/%d/return", done.Borrow.ID), token, nil)

	s.clock.Advance(3 * 24 * time.Hour)

	active := decode[LoanListResponse](t, s.do(http.MethodGet, "/api/user/borrowed", token, nil))
	require.Equal(t, 2, active.Total)
	statuses := map[string]entities.BorrowStatus{}
	for _, loan := range active.Borrows {
		statuses[loan.Book.Title] = loan.Status
	}
	assert.Equal(t, entities.BorrowStatusOverdue, statuses["Dune"])
	assert.Equal(t, entities.BorrowStatusBorrowed, statuses["Hyperion"])

	history := decode[LoanListResponse](t, s.do(http.MethodGet, "/api/user/borrow-history", token, nil))
	require.Equal(t, 1, history.Total)
	assert.Equal(t, "Foundation", history.Borrows[0].Book.Title)
	assert.NotNil(t, history.Borrows[0].ReturnedAt)

	overdue := decode[LoanListResponse](t, s.do(http.MethodGet, "/api/admin/overdue", adminToken, nil))
	require.Equal(t, 1, overdue.Total)
	assert.Equal(t, "Dune", overdue.Borrows[0].BookTitle)
	assert.Equal(t, "reader@example.com", overdue.Borrows[0].UserEmail)
	assert.Equal(t, -1, overdue.Borrows[0].DaysRemaining)

	onlyBorrowed := decode[LoanListResponse](t, s.do(http.MethodGet, "/api/admin/borrows/active?status=borrowed", adminToken, nil))
	require.Equal(t, 1, onlyBorrowed.Total)
	assert.Equal(t, "Hyperion", onlyBorrowed.Borrows[0].Book.Title)

	all := decode[LoanListResponse](t, s.do(http.MethodGet, "/api/admin/borrows/active", adminToken, nil))
	assert.Equal(t, 2, all.Total)

	rr := s.do(http.MethodGet, "/api/admin/borrows/active?status=late", adminToken, nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestBorrow_ConcurrentRequestsNeverOverlend(t *testing.T) {
	s := setupServer(t)
	book := s.book(t, "Dune", entities.BookTypePhysical, 2)

	const borrowers = 8
	tokens := make([]string, borrowers)
	for i := range tokens {
		_, tokens[i] = s.user(t, fmt.Sprintf("reader%d", i), entities.UserRoleUser)
	}

	var wg sync.WaitGroup
	codes := make([]int, borrowers)
	for i := range tokens {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			codes[i] = s.do(http.MethodPost, borrowPath(book.ID), tokens[i], map[string]int{"days": 7}).Code
		}(i)
	}
	wg.Wait()

	created, conflicts := 0, 0
	for _, code := range codes {
		switch code {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
			conflicts++
		}
	}
	assert.Equal(t, 2, created)
	assert.Equal(t, borrowers-2, conflicts)

	var stored entities.Book
	require.NoError(t, s.db.DB.First(&stored, book.ID).Error)
	assert.Zero(t, stored.AvailableCopies)
}

func TestBorrow_AuditTrailCarriesRequestID(t *testing.T) {
	s := setupServer(t)
	_, token := s.user(t, "reader", entities.UserRoleUser)
	book := s.book(t, "Dune", entities.BookTypePhysical, 1)

	rr := s.do(http.MethodPost, borrowPath(book.ID), token, map[string]int{"days": 7})
	require.Equal(t, http.StatusCreated, rr.Code)
	requestID := rr.Header().Get(RequestIDHeader)
	require.NotEmpty(t, requestID)

	s.audit.Wait()
	events, total, err := s.audit.ListEvents(s.ctx, dbaudit.EventFilter{EventType: entities.AuditEventBorrow})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	assert.Equal(t, requestID, events[0].RequestID)
}
