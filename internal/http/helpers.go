package http

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/lending/internal/auth"
	"github.com/mrlokans/lending/internal/borrow"
)

// ErrorResponse is the standard error response format for all API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`    // machine-readable error code
	Details any    `json:"details,omitempty"` // additional context (validation errors, etc.)
}

// respondBadRequest sends a 400 Bad Request response.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: message, Code: "bad_request"})
}

// respondNotFound sends a 404 Not Found response.
func respondNotFound(c *gin.Context, resource string) {
	c.JSON(http.StatusNotFound, ErrorResponse{Error: resource + " not found", Code: string(borrow.KindNotFound)})
}

// respondInternalError logs the error and sends a 500 Internal Server Error response.
// The actual error is logged but not exposed to the client.
func respondInternalError(c *gin.Context, err error, context string) {
	log.Printf("Internal error (%s): %v", context, err)
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal server error"})
}

// kindStatus maps every lending error kind to its HTTP status.
var kindStatus = map[borrow.Kind]int{
	borrow.KindInvalidDuration:       http.StatusBadRequest,
	borrow.KindUnauthorized:          http.StatusForbidden,
	borrow.KindDuplicateActiveBorrow: http.StatusConflict,
	borrow.KindUnavailable:           http.StatusConflict,
	borrow.KindNotFound:              http.StatusNotFound,
	borrow.KindAlreadyReturned:       http.StatusConflict,
	borrow.KindInconsistent:          http.StatusInternalServerError,
	borrow.KindNotBorrowable:         http.StatusUnprocessableEntity,
}

// statusForKind returns the HTTP status of a lending error kind. Unauthorized is 401
// for anonymous callers and 403 otherwise.
func statusForKind(kind borrow.Kind, authenticated bool) int {
	if kind == borrow.KindUnauthorized && !authenticated {
		return http.StatusUnauthorized
	}
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

// respondBorrowError renders a lending error. Errors without a kind are
// infrastructure failures and are logged but not exposed.
func respondBorrowError(c *gin.Context, err error, context string) {
	var lendingErr *borrow.Error
	if !errors.As(err, &lendingErr) {
		respondInternalError(c, err, context)
		return
	}
	if lendingErr.Kind == borrow.KindInconsistent {
		log.Printf("[HTTP] %s: %v", context, err)
	}
	c.JSON(statusForKind(lendingErr.Kind, auth.GetUserID(c) != 0), ErrorResponse{
		Error: lendingErr.Kind.Message(),
		Code:  string(lendingErr.Kind),
	})
}

// parseIDParam extracts and validates an unsigned integer ID from URL parameters.
// Returns the parsed ID or responds with a 400 error and returns 0, false.
func parseIDParam(c *gin.Context, paramName string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(paramName), 10, 32)
	if err != nil || id == 0 {
		respondBadRequest(c, "invalid "+paramName)
		return 0, false
	}
	return uint(id), true
}

// parsePagination reads page and limit query parameters.
func parsePagination(c *gin.Context, defaultLimit, maxLimit int) (page, limit int) {
	page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", strconv.Itoa(defaultLimit)))
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return page, limit
}
