package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is the application error carried across layers: an HTTP-ish
// code, a caller-facing message and an optional wrapped cause.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Common error values.
var (
	ErrBadRequest     = New(http.StatusBadRequest, "Bad request", nil)
	ErrUnauthorized   = New(http.StatusUnauthorized, "Unauthorized", nil)
	ErrNotFound       = New(http.StatusNotFound, "Not found", nil)
	ErrInternalServer = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Cart validation errors. The cart rejects rather than clamps: a
// mutation that would push a line past its stock ceiling leaves the
// cart untouched.
var (
	ErrStockExceeded   = New(http.StatusConflict, "Insufficient stock", nil)
	ErrInvalidQuantity = New(http.StatusBadRequest, "Invalid quantity", nil)
	ErrLineNotFound    = New(http.StatusNotFound, "Product not in cart", nil)
)

// Authentication errors.
var (
	ErrInvalidCredentials = New(http.StatusUnauthorized, "Invalid credentials", nil)
	ErrNoCredential       = New(http.StatusUnauthorized, "No session credential held", nil)
	ErrRefreshFailed      = New(http.StatusUnauthorized, "Token refresh failed", nil)
)

// LockedOutError is returned when a login is attempted during an
// active lockout window. RemainingSeconds lets the caller render a
// countdown.
type LockedOutError struct {
	RemainingSeconds int
}

func (e *LockedOutError) Error() string {
	return fmt.Sprintf("account temporarily locked, retry in %d seconds", e.RemainingSeconds)
}

// ServerError carries a non-2xx backend status that the service
// propagates untouched.
type ServerError struct {
	StatusCode int
	Body       string
}

func (e *ServerError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.StatusCode, e.Body)
}

// HandleGin writes an error response for a gin handler, mapping the
// application taxonomy onto HTTP statuses.
func HandleGin(c *gin.Context, err error) {
	var locked *LockedOutError
	if errors.As(err, &locked) {
		c.JSON(http.StatusTooManyRequests, gin.H{
			"error":             locked.Error(),
			"remaining_seconds": locked.RemainingSeconds,
		})
		return
	}

	// *Error outranks *ServerError: a 401 wrapping the raw backend
	// response must surface as 401, not as a gateway error.
	var app *Error
	if errors.As(err, &app) {
		c.JSON(app.Code, gin.H{"error": app.Message})
		return
	}

	var server *ServerError
	if errors.As(err, &server) {
		c.JSON(http.StatusBadGateway, gin.H{"error": "backend error", "status": server.StatusCode})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
