package http

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/borrow"
	"github.com/mrlokans/lending/internal/entities"
)

const bookUUIDPrefix = "BOOK-"

// BookResolver finds catalog books by numeric id or public BOOK-XXXXXX id.
type BookResolver interface {
	GetBookByUUID(ctx context.Context, bookUUID string) (*entities.Book, error)
}

type BorrowRequest struct {
	Days *int `json:"days" binding:"required"`
}

type ReturnRequest struct {
	BorrowID uint `json:"borrow_id" binding:"required"`
}

type BorrowResponse struct {
	Message string          `json:"message"`
	DueDate string          `json:"due_date"`
	Borrow  borrow.LoanView `json:"borrow"`
}

type LoanListResponse struct {
	Borrows []borrow.LoanView `json:"borrows"`
	Total   int               `json:"total"`
}

// BorrowsController exposes lending over HTTP. Every mutation goes through
// borrow.Service; the controller only parses input and maps error kinds.
type BorrowsController struct {
	service *borrow.Service
	books   BookResolver
}

func NewBorrowsController(service *borrow.Service, books BookResolver) *BorrowsController {
	return &BorrowsController{service: service, books: books}
}

// CreateBorrow handles POST /api/books/:id/borrow
func (bc *BorrowsController) CreateBorrow(c *gin.Context) {
	bookID, ok := bc.resolveBookID(c)
	if !ok {
		return
	}

	var req BorrowRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "days is required")
		return
	}

	record, err := bc.service.CreateBorrow(c.Request.Context(), bookID, auth.GetUserID(c), *req.Days)
	if err != nil {
		respondBorrowError(c, err, "create borrow")
		return
	}

	c.JSON(http.StatusCreated, BorrowResponse{
		Message: "Book borrowed successfully",
		DueDate: record.DueAt.UTC().Format(time.RFC3339),
		Borrow:  borrow.NewLoanView(*record, bc.service.Now()),
	})
}

// AdminReturn handles POST /api/admin/borrows/return
func (bc *BorrowsController) AdminReturn(c *gin.Context) {
	var req ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, "borrow_id is required")
		return
	}

	if _, err := bc.service.ReturnBorrow(c.Request.Context(), req.BorrowID, auth.GetUserID(c)); err != nil {
		respondBorrowError(c, err, "return borrow")
		return
	}
	c.Status(http.StatusNoContent)
}

// ReturnOwn handles POST /api/borrows/:id/return
func (bc *BorrowsController) ReturnOwn(c *gin.Context) {
	borrowID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	record, err := bc.service.ReturnBorrow(c.Request.Context(), borrowID, auth.GetUserID(c))
	if err != nil {
		respondBorrowError(c, err, "return borrow")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Book returned successfully",
		"borrow":  borrow.NewLoanView(*record, bc.service.Now()),
	})
}

// ActiveLoans handles GET /api/user/borrowed
func (bc *BorrowsController) ActiveLoans(c *gin.Context) {
	views, err := bc.service.ActiveLoans(c.Request.Context(), auth.GetUserID(c))
	bc.respondLoans(c, views, err, "list active loans")
}

// History handles GET /api/user/borrow-history
func (bc *BorrowsController) History(c *gin.Context) {
	views, err := bc.service.History(c.Request.Context(), auth.GetUserID(c))
	bc.respondLoans(c, views, err, "list borrow history")
}

// AdminActive handles GET /api/admin/borrows/active?status=overdue|borrowed
func (bc *BorrowsController) AdminActive(c *gin.Context) {
	filter, err := borrow.ParseStatusFilter(c.Query("status"))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "unknown status filter",
			Code:    "bad_request",
			Details: []borrow.StatusFilter{borrow.FilterAll, borrow.FilterOverdue, borrow.FilterBorrowed},
		})
		return
	}

	views, err := bc.service.AdminActive(c.Request.Context(), filter)
	bc.respondLoans(c, views, err, "list admin loans")
}

// Overdue handles GET /api/admin/overdue
func (bc *BorrowsController) Overdue(c *gin.Context) {
	views, err := bc.service.Overdue(c.Request.Context())
	bc.respondLoans(c, views, err, "list overdue loans")
}

// Availability handles GET /api/books/:id/availability
func (bc *BorrowsController) Availability(c *gin.Context) {
	bookID, ok := bc.resolveBookID(c)
	if !ok {
		return
	}

	availability, err := bc.service.Availability(c.Request.Context(), bookID)
	if err != nil {
		respondBorrowError(c, err, "availability")
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"book_id":          availability.BookID,
		"book_type":        availability.BookType,
		"total_copies":     availability.TotalCopies,
		"available_copies": availability.AvailableCopies,
		"borrowable":       availability.Borrowable(),
	})
}

func (bc *BorrowsController) respondLoans(c *gin.Context, views []borrow.LoanView, err error, op string) {
	if err != nil {
		respondBorrowError(c, err, op)
		return
	}
	c.JSON(http.StatusOK, LoanListResponse{Borrows: views, Total: len(views)})
}

// resolveBookID accepts a numeric id or a BOOK-XXXXXX identifier.
func (bc *BorrowsController) resolveBookID(c *gin.Context) (uint, bool) {
	raw := c.Param("id")
	if id, err := strconv.ParseUint(raw, 10, 32); err == nil && id > 0 {
		return uint(id), true
	}

	if !strings.HasPrefix(strings.ToUpper(raw), bookUUIDPrefix) || bc.books == nil {
		respondBadRequest(c, "invalid book id")
		return 0, false
	}

	book, err := bc.books.GetBookByUUID(c.Request.Context(), raw)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		respondNotFound(c, "book")
		return 0, false
	}
	if err != nil {
		respondInternalError(c, err, "resolve book")
		return 0, false
	}
	return book.ID, true
}
