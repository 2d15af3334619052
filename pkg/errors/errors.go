/*
Package errors - application level error codes.

The domain packages return sentinel-wrapped errors with no transport
concepts; this package maps them onto stable string codes that the API
layer translates into HTTP statuses. The mapping by sentinel (errors.Is)
keeps "dependency unavailable" strictly apart from the not-found family:
a transient outage must never be reported as permanent non-existence.
*/
package errors

import (
	"errors"

	"bookcart/domain/cart"
	"bookcart/domain/catalog"
	"bookcart/domain/identity"
	"bookcart/domain/shared"
)

// ErrorCode stable machine-readable error code
type ErrorCode string

const (
	// Generic codes
	CodeInternal       ErrorCode = "INTERNAL_ERROR"
	CodeBadRequest     ErrorCode = "BAD_REQUEST"
	CodeNotFound       ErrorCode = "NOT_FOUND"
	CodeConflict       ErrorCode = "CONFLICT"
	CodeTooManyRequest ErrorCode = "TOO_MANY_REQUESTS"
	CodeValidation     ErrorCode = "VALIDATION_ERROR"

	// Business codes
	CodeCustomerNotFound      ErrorCode = "CUSTOMER_NOT_FOUND"
	CodeBookNotFound          ErrorCode = "BOOK_NOT_FOUND"
	CodeCartItemNotFound      ErrorCode = "CART_ITEM_NOT_FOUND"
	CodeStockExceeded         ErrorCode = "STOCK_EXCEEDED"
	CodeDependencyUnavailable ErrorCode = "DEPENDENCY_UNAVAILABLE"
	CodeConcurrentModify      ErrorCode = "CONCURRENT_MODIFICATION"
)

// AppError application error
type AppError struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Err     error     `json:"-"`
	// Details optional structured payload for the client (e.g. available
	// stock on STOCK_EXCEEDED)
	Details map[string]interface{} `json:"details,omitempty"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return string(e.Code) + ": " + e.Message + " (" + e.Err.Error() + ")"
	}
	return string(e.Code) + ": " + e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// New creates a new application error.
func New(code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message}
}

// Wrap wraps an underlying error with a code and message.
func Wrap(err error, code ErrorCode, message string) *AppError {
	return &AppError{Code: code, Message: message, Err: err}
}

func BadRequest(message string) *AppError {
	return New(CodeBadRequest, message)
}

func NotFound(message string) *AppError {
	return New(CodeNotFound, message)
}

func Internal(message string) *AppError {
	return New(CodeInternal, message)
}

func Validation(message string) *AppError {
	return New(CodeValidation, message)
}

// Is reports whether err carries the given code.
func Is(err error, code ErrorCode) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// FromDomainError maps domain errors to application errors.
func FromDomainError(err error) *AppError {
	if err == nil {
		return nil
	}

	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var stockErr *cart.StockExceededError
	if errors.As(err, &stockErr) {
		return &AppError{
			Code:    CodeStockExceeded,
			Message: stockErr.Error(),
			Err:     err,
			Details: map[string]interface{}{
				"book_id":   stockErr.BookID,
				"requested": stockErr.Requested,
				"available": stockErr.Available,
			},
		}
	}

	switch {
	case errors.Is(err, identity.ErrCustomerNotFound):
		return Wrap(err, CodeCustomerNotFound, "customer not found")
	case errors.Is(err, catalog.ErrBookNotFound):
		return Wrap(err, CodeBookNotFound, "book not found")
	case errors.Is(err, catalog.ErrSourceUnavailable),
		errors.Is(err, identity.ErrSourceUnavailable):
		return Wrap(err, CodeDependencyUnavailable, "a dependent service is unavailable, please try again")
	case errors.Is(err, cart.ErrStockExceeded):
		return Wrap(err, CodeStockExceeded, err.Error())
	case errors.Is(err, cart.ErrCartItemNotFound):
		return Wrap(err, CodeCartItemNotFound, "cart item not found")
	case errors.Is(err, cart.ErrCartNotFound):
		return Wrap(err, CodeNotFound, "cart not found")
	case errors.Is(err, cart.ErrConcurrentModification):
		return Wrap(err, CodeConcurrentModify, "the cart was modified concurrently, please retry")
	case errors.Is(err, cart.ErrInvalidQuantity),
		errors.Is(err, shared.ErrInvalidInput):
		return Wrap(err, CodeValidation, err.Error())
	case errors.Is(err, shared.ErrNotFound):
		return Wrap(err, CodeNotFound, err.Error())
	case errors.Is(err, shared.ErrConflict):
		return Wrap(err, CodeConflict, err.Error())
	default:
		return Wrap(err, CodeInternal, "internal server error")
	}
}
