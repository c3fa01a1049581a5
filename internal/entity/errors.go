package entity

import (
	"errors"
	"fmt"
)

var (
	// Event errors
	ErrEventNotFound = errors.New("event not found")
	ErrSoldOut       = errors.New("event is sold out")

	// Order errors
	ErrOrderNotFound = errors.New("order not found")

	// Cart errors
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrCartEmpty        = errors.New("cart is empty")

	// Chat errors
	ErrRoomNotFound = errors.New("chat room not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")

	// Access errors
	ErrUnauthenticated  = errors.New("authentication required")
	ErrPermissionDenied = errors.New("permission denied")
	ErrForbidden        = errors.New("forbidden")
)

// ValidationError reports malformed or out-of-range caller input. These are
// user-correctable and never retried.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// InsufficientAvailabilityError is returned when a requested quantity exceeds
// the tickets remaining for an event. Remaining carries the live count so the
// caller can report it.
type InsufficientAvailabilityError struct {
	EventTitle string
	Requested  int
	Remaining  int
}

func (e *InsufficientAvailabilityError) Error() string {
	return fmt.Sprintf("only %d tickets remaining for %q, requested %d",
		e.Remaining, e.EventTitle, e.Requested)
}
