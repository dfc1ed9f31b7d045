package core

import (
	"errors"
	"fmt"
)

// Domain errors - centralized error definitions
var (
	// Not found errors
	ErrNotFound        = errors.New("resource not found")
	ErrChannelNotFound = fmt.Errorf("%w: channel", ErrNotFound)
	ErrNoEvents        = errors.New("no events for condition")

	// Validation errors
	ErrInsufficientTrials = errors.New("insufficient trials for analysis")
	ErrEmptyWindow        = errors.New("window selects no samples")
	ErrShapeMismatch      = errors.New("array shape mismatch")
	ErrBadBaseline        = errors.New("baseline window outside epoch")
)

// Error constructors with context
func NewChannelNotFoundError(channel string) error {
	return fmt.Errorf("%w: %q", ErrChannelNotFound, channel)
}

func NewNoEventsError(condition string) error {
	return fmt.Errorf("%w: %q", ErrNoEvents, condition)
}

func NewShapeMismatchError(want, got string) error {
	return fmt.Errorf("%w: want %s, got %s", ErrShapeMismatch, want, got)
}

// Error checking helpers
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func IsValidationError(err error) bool {
	return errors.Is(err, ErrInsufficientTrials) ||
		errors.Is(err, ErrEmptyWindow) ||
		errors.Is(err, ErrShapeMismatch) ||
		errors.Is(err, ErrBadBaseline)
}
