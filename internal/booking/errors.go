package booking

import (
	"errors"
	"fmt"
)

var (
	ErrWindowNotFound      = errors.New("availability window not found")
	ErrSlotNotFound        = errors.New("slot not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	ErrSlotUnavailable   = errors.New("slot has no remaining capacity")
	ErrAlreadyCancelled  = errors.New("appointment is already cancelled")
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrSlotBusy means the per-slot critical section could not be entered;
	// the caller should retry shortly.
	ErrSlotBusy = errors.New("slot is currently being booked, please retry")
)

// ValidationError reports malformed input. It is returned before any
// persistence is attempted so a failed validation never mutates the store.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func validationErr(field, format string, args ...any) error {
	return &ValidationError{Field: field, Reason: fmt.Sprintf(format, args...)}
}
