// Package booking owns the lifecycle of a single booking. It only validates
// transitions; monetary side effects belong to the orchestrator.
package booking

import "errors"

type Status string

const (
	StatusReserved  Status = "reserved"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var (
	ErrAlreadyCompleted = errors.New("booking already completed")
	ErrAlreadyCancelled = errors.New("booking already cancelled")
	ErrUnknownStatus    = errors.New("unknown booking status")
)

// Terminal reports whether no further transitions are legal.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

func (s Status) Valid() bool {
	switch s {
	case StatusReserved, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Complete validates reserved → completed.
func Complete(from Status) (Status, error) {
	if err := guard(from); err != nil {
		return from, err
	}
	return StatusCompleted, nil
}

// Cancel validates reserved → cancelled.
func Cancel(from Status) (Status, error) {
	if err := guard(from); err != nil {
		return from, err
	}
	return StatusCancelled, nil
}

func guard(from Status) error {
	switch from {
	case StatusReserved:
		return nil
	case StatusCompleted:
		return ErrAlreadyCompleted
	case StatusCancelled:
		return ErrAlreadyCancelled
	default:
		return ErrUnknownStatus
	}
}
