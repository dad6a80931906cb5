package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Standard sentinel errors for common cases.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrForbidden     = errors.New("forbidden")
	ErrInternal      = errors.New("internal error")
	ErrConflict      = errors.New("conflict")
)

// Cart-specific sentinel errors. Every failure the cart surfaces to a caller
// wraps one of these, so callers can branch with errors.Is instead of
// matching message strings.
var (
	ErrCartUnavailable      = errors.New("cart unavailable")
	ErrNetworkUnavailable   = errors.New("network unavailable")
	ErrServerError          = errors.New("server error")
	ErrSessionExpired       = errors.New("session expired")
	ErrProductNotFound      = errors.New("product not found")
	ErrInvalidCartOperation = errors.New("invalid cart operation")
	ErrUnknownCart          = errors.New("unknown cart error")
	ErrSyncFailed           = errors.New("cart sync failed")
)

// AppError represents a structured application error with HTTP status mapping.
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// NotFound creates a 404 error.
func NotFound(resource, id string) *AppError {
	return &AppError{
		Code:    "NOT_FOUND",
		Message: fmt.Sprintf("%s with id %s not found", resource, id),
		Status:  http.StatusNotFound,
		Err:     ErrNotFound,
	}
}

// AlreadyExists creates a 409 error.
func AlreadyExists(resource, field, value string) *AppError {
	return &AppError{
		Code:    "ALREADY_EXISTS",
		Message: fmt.Sprintf("%s with %s %q already exists", resource, field, value),
		Status:  http.StatusConflict,
		Err:     ErrAlreadyExists,
	}
}

// InvalidInput creates a 400 error.
func InvalidInput(message string) *AppError {
	return &AppError{
		Code:    "INVALID_INPUT",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidInput,
	}
}

// Unauthorized creates a 401 error.
func Unauthorized(message string) *AppError {
	return &AppError{
		Code:    "UNAUTHORIZED",
		Message: message,
		Status:  http.StatusUnauthorized,
		Err:     ErrUnauthorized,
	}
}

// Forbidden creates a 403 error.
func Forbidden(message string) *AppError {
	return &AppError{
		Code:    "FORBIDDEN",
		Message: message,
		Status:  http.StatusForbidden,
		Err:     ErrForbidden,
	}
}

// Internal creates a 500 error.
func Internal(err error) *AppError {
	return &AppError{
		Code:    "INTERNAL_ERROR",
		Message: "an internal error occurred",
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

// CartUnavailable reports that the authoritative cart could not be fetched.
func CartUnavailable(err error) *AppError {
	return &AppError{
		Code:    "CART_UNAVAILABLE",
		Message: "cart is currently unavailable",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrCartUnavailable, err),
	}
}

// NetworkUnavailable reports that no response was received from the backend.
func NetworkUnavailable(err error) *AppError {
	return &AppError{
		Code:    "NETWORK_UNAVAILABLE",
		Message: "no response received from server, check network connectivity",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrNetworkUnavailable, err),
	}
}

// ServerError reports a 5xx response from the backend.
func ServerError(status int, message string) *AppError {
	if message == "" {
		message = "server error, please try again later"
	}
	return &AppError{
		Code:    "SERVER_ERROR",
		Message: message,
		Status:  status,
		Err:     ErrServerError,
	}
}

// SessionExpired reports a 401 from the cart backend.
func SessionExpired() *AppError {
	return &AppError{
		Code:    "SESSION_EXPIRED",
		Message: "session expired, please log in again",
		Status:  http.StatusUnauthorized,
		Err:     ErrSessionExpired,
	}
}

// ProductNotFound reports a 404 from the cart backend.
func ProductNotFound(message string) *AppError {
	if message == "" {
		message = "product does not exist"
	}
	return &AppError{
		Code:    "PRODUCT_NOT_FOUND",
		Message: message,
		Status:  http.StatusNotFound,
		Err:     ErrProductNotFound,
	}
}

// InvalidCartOperation reports a 400 from the cart backend.
func InvalidCartOperation(message string) *AppError {
	if message == "" {
		message = "invalid product or insufficient stock"
	}
	return &AppError{
		Code:    "INVALID_CART_OPERATION",
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     ErrInvalidCartOperation,
	}
}

// UnknownCart wraps an unclassified cart backend failure.
func UnknownCart(status int, message string) *AppError {
	return &AppError{
		Code:    "UNKNOWN_CART_ERROR",
		Message: fmt.Sprintf("unexpected cart error (status %d): %s", status, message),
		Status:  status,
		Err:     ErrUnknownCart,
	}
}

// SyncFailed wraps a failure during the one-time local-to-remote cart sync.
// The local cart is preserved; retry is the caller's decision.
func SyncFailed(err error) *AppError {
	return &AppError{
		Code:    "SYNC_FAILED",
		Message: "could not sync cart, please try again",
		Status:  http.StatusServiceUnavailable,
		Err:     fmt.Errorf("%w: %w", ErrSyncFailed, err),
	}
}

// Wrap wraps an error with additional context.
func Wrap(err error, message string) error {
	return fmt.Errorf("%s: %w", message, err)
}

// HTTPStatus returns the HTTP status code for the given error.
func HTTPStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}

	switch {
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidCartOperation):
		return http.StatusBadRequest
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrSessionExpired):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}
