// Package apperrors defines the failure taxonomy of the reward ledger.
// Every engine operation fails with exactly one of these sentinels (possibly
// wrapped); the transport layer maps them to HTTP status codes in one place.
package apperrors

import (
	"errors"
	"net/http"
)

var (
	// ErrNotFound is returned when a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrPermissionDenied is returned when a role or ownership check fails.
	ErrPermissionDenied = errors.New("permission denied")
	// ErrInvalidState is returned when an operation is not legal in the
	// current task or purchase status.
	ErrInvalidState = errors.New("invalid state")
	// ErrInvalidReference is returned when a supplied foreign key does not
	// resolve.
	ErrInvalidReference = errors.New("invalid reference")
	// ErrMissingAssignee is returned when approval is attempted on a task
	// with no assignee.
	ErrMissingAssignee = errors.New("missing assignee")
	// ErrInsufficientFunds is returned when a balance is too low.
	ErrInsufficientFunds = errors.New("insufficient funds")
)

// HTTPStatus maps a domain error to an HTTP status code. Unrecognized errors
// map to 500.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrPermissionDenied):
		return http.StatusForbidden
	case errors.Is(err, ErrInvalidState):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidReference), errors.Is(err, ErrMissingAssignee):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrInsufficientFunds):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
