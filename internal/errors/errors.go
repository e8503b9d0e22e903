package errors

import (
	"context"
	"database/sql/driver"
	stderrors "errors"
	"net"
	"net/http"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/go-sql-driver/mysql"
	"gorm.io/gorm"
)

// Error codes
const (
	ErrCodeUnauthorized       = "UNAUTHORIZED"
	ErrCodeForbidden          = "FORBIDDEN"
	ErrCodeValidation         = "VALIDATION_ERROR"
	ErrCodeInvalidInput       = "INVALID_INPUT"
	ErrCodeNoFieldsToUpdate   = "NO_FIELDS_TO_UPDATE"
	ErrCodeNotFound           = "NOT_FOUND"
	ErrCodeDuplicateEntry     = "DUPLICATE_ENTRY"
	ErrCodeInternalError      = "INTERNAL_ERROR"
	ErrCodeServiceUnavailable = "SERVICE_UNAVAILABLE"
)

// FieldError describes one rejected request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// APIError represents the standard failure envelope
type APIError struct {
	Success bool         `json:"success"`
	Code    string       `json:"code"`
	Message string       `json:"message"`
	Errors  []FieldError `json:"errors,omitempty"`
	Detail  string       `json:"detail,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// NewAPIError creates a new APIError
func NewAPIError(code, message string) *APIError {
	return &APIError{
		Code:    code,
		Message: message,
	}
}

// NewValidationError creates an APIError carrying per-field failures
func NewValidationError(fields []FieldError) *APIError {
	return &APIError{
		Code:    ErrCodeValidation,
		Message: "Validation Error",
		Errors:  fields,
	}
}

// RespondWithError sends an error response
func RespondWithError(c *gin.Context, statusCode int, err *APIError) {
	c.AbortWithStatusJSON(statusCode, err)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Not authorized"
	}
	RespondWithError(c, http.StatusUnauthorized, NewAPIError(ErrCodeUnauthorized, message))
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, NewAPIError(ErrCodeForbidden, message))
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, NewAPIError(ErrCodeNotFound, message))
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeInvalidInput, message))
}

// NoFieldsToUpdate sends the 400 response for an empty partial update
func NoFieldsToUpdate(c *gin.Context) {
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeNoFieldsToUpdate, "No fields to update"))
}

// ValidationFailed sends a 400 response listing the rejected fields
func ValidationFailed(c *gin.Context, fields []FieldError) {
	RespondWithError(c, http.StatusBadRequest, NewValidationError(fields))
}

// DuplicateEntry sends the 400 response for a unique-constraint violation
func DuplicateEntry(c *gin.Context, message string) {
	if message == "" {
		message = "Duplicate entry found. This record already exists."
	}
	RespondWithError(c, http.StatusBadRequest, NewAPIError(ErrCodeDuplicateEntry, message))
}

// InternalError sends a 500 response. The underlying error text is only
// exposed while gin runs in debug mode.
func InternalError(c *gin.Context, message string, cause error) {
	if message == "" {
		message = "Internal server error"
	}
	apiErr := NewAPIError(ErrCodeInternalError, message)
	if cause != nil && gin.IsDebugging() {
		apiErr.Detail = cause.Error()
	}
	RespondWithError(c, http.StatusInternalServerError, apiErr)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service Unavailable: Database connection failed."
	}
	RespondWithError(c, http.StatusServiceUnavailable, NewAPIError(ErrCodeServiceUnavailable, message))
}

// IsDuplicateEntry reports whether err is a unique-constraint violation.
func IsDuplicateEntry(err error) bool {
	if stderrors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var myErr *mysql.MySQLError
	return stderrors.As(err, &myErr) && myErr.Number == 1062
}

// IsStoreUnavailable reports whether err means the database could not be reached.
func IsStoreUnavailable(err error) bool {
	if err == nil {
		return false
	}
	if stderrors.Is(err, driver.ErrBadConn) ||
		stderrors.Is(err, mysql.ErrInvalidConn) ||
		stderrors.Is(err, syscall.ECONNREFUSED) ||
		stderrors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var opErr *net.OpError
	return stderrors.As(err, &opErr)
}

// Respond maps store-level failures shared by every handler. It reports
// whether a response was written.
func Respond(c *gin.Context, err error) bool {
	switch {
	case IsStoreUnavailable(err):
		ServiceUnavailable(c, "")
	case IsDuplicateEntry(err):
		DuplicateEntry(c, "")
	default:
		return false
	}
	return true
}
