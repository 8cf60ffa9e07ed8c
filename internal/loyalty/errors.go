package loyalty

import (
	"errors"
	"fmt"
)

var (
	// ErrProgramDisabled is returned by mutating operations when the
	// shop's loyalty program is switched off. Preview paths report zero
	// points instead of failing.
	ErrProgramDisabled = errors.New("loyalty program is disabled")

	// ErrInvalidArgument marks caller contract violations (negative
	// amounts, zero redemptions, malformed config tables).
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientPoints is the match target for InsufficientPointsError.
	ErrInsufficientPoints = errors.New("insufficient points")
)

// InsufficientPointsError reports a redemption or adjustment that would
// take the available balance below zero, together with the actual
// balance so the caller can retry with corrected input.
type InsufficientPointsError struct {
	Requested int
	Available int
}

func (e *InsufficientPointsError) Error() string {
	return fmt.Sprintf("insufficient points: requested %d, available %d", e.Requested, e.Available)
}

func (e *InsufficientPointsError) Is(target error) bool {
	return target == ErrInsufficientPoints
}
