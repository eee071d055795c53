package service

import (
	"errors"
	"fmt"
)

// InvalidLayoutError rejects layout dimensions before anything is written.
type InvalidLayoutError struct {
	Field  string
	Reason string
}

func (e *InvalidLayoutError) Error() string {
	return fmt.Sprintf("invalid layout: %s %s", e.Field, e.Reason)
}

// MaterializationError reports a flight whose seats could not be created.
// The surrounding transaction has been rolled back.
type MaterializationError struct {
	BoardID   uint64
	Attempted int
	Err       error
}

func (e *MaterializationError) Error() string {
	return fmt.Sprintf("materialize %d seats from board %d: %v", e.Attempted, e.BoardID, e.Err)
}

func (e *MaterializationError) Unwrap() error { return e.Err }

var (
	ErrTicketAlreadyPaid     = errors.New("ticket already paid")
	ErrTicketAlreadyCanceled = errors.New("ticket already canceled")
	ErrTicketCanceled        = errors.New("ticket is canceled")
	ErrInvalidSeatStatus     = errors.New("seat status can only be switched between available and disabled")
	ErrInvalidCredentials    = errors.New("invalid credentials")
	ErrAccountDisabled       = errors.New("account disabled")
)

// ValidationError carries a client-facing message for malformed input.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func invalid(format string, args ...any) error {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}
