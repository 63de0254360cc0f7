package apperrors

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error represents an application error with an HTTP status code.
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

// Is lets errors.Is match wrapped copies against the package sentinels.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Code == t.Code && e.Message == t.Message
}

// New creates a new Error.
func New(code int, message string, err error) *Error {
	return &Error{Code: code, Message: message, Err: err}
}

// Wrap returns a copy of base carrying err as its cause.
func Wrap(base *Error, err error) *Error {
	return &Error{Code: base.Code, Message: base.Message, Err: err}
}

// Credential and authorization errors.
var (
	ErrMissingCredential = New(http.StatusUnauthorized, "Missing credential", nil)
	ErrInvalidSignature  = New(http.StatusUnauthorized, "Invalid token signature", nil)
	ErrTokenExpired      = New(http.StatusUnauthorized, "Token expired", nil)
	ErrAccountNotFound   = New(http.StatusUnauthorized, "Account not found", nil)
	ErrAccountDisabled   = New(http.StatusUnauthorized, "Account disabled", nil)
	ErrForbidden         = New(http.StatusForbidden, "Forbidden", nil)
)

// Order domain errors.
var (
	ErrInvalidTransition    = New(http.StatusBadRequest, "Invalid status transition", nil)
	ErrInvalidTotal         = New(http.StatusBadRequest, "Order total does not match subtotal - discount + shipping fee", nil)
	ErrEmptyOrder           = New(http.StatusBadRequest, "Order must contain at least one item", nil)
	ErrInvalidItem          = New(http.StatusBadRequest, "Order item has invalid quantity or price", nil)
	ErrOrderNumberCollision = New(http.StatusConflict, "Order number collision", nil)
	ErrEmailTaken           = New(http.StatusConflict, "Email already registered", nil)
	ErrInvalidCredentials   = New(http.StatusUnauthorized, "Invalid email or password", nil)
	ErrNotFound             = New(http.StatusNotFound, "Not found", nil)
	ErrValidation           = New(http.StatusBadRequest, "Validation error", nil)
	ErrStorageUnavailable   = New(http.StatusInternalServerError, "Storage unavailable", nil)
	ErrInternalServer       = New(http.StatusInternalServerError, "Internal server error", nil)
)

// Render writes err as a JSON failure response. Unknown errors are reported
// as internal server errors; the underlying detail is only echoed outside
// production.
func Render(c *gin.Context, err error, production bool) {
	var appErr *Error
	if !errors.As(err, &appErr) {
		appErr = Wrap(ErrInternalServer, err)
	}

	body := gin.H{"success": false, "message": appErr.Message}
	if !production && appErr.Err != nil {
		body["detail"] = appErr.Err.Error()
	}
	c.AbortWithStatusJSON(appErr.Code, body)
}
