package dlmm

import (
	"errors"
	"fmt"
)

var (
	// ErrSizeMismatch is returned when a buffer does not have the fixed layout size.
	ErrSizeMismatch = errors.New("size mismatch")

	// ErrDiscriminatorMismatch is returned when an account carries another type tag.
	ErrDiscriminatorMismatch = errors.New("discriminator mismatch")
)

// DecodeError describes why an account could not be decoded.
type DecodeError struct {
	Err  error
	What string
	Want int // Expected length, size mismatches only
	Got  int
}

func (e *DecodeError) Error() string {
	if errors.Is(e.Err, ErrSizeMismatch) {
		return fmt.Sprintf("%s: %v: want %d bytes, got %d", e.What, e.Err, e.Want, e.Got)
	}
	return fmt.Sprintf("%v: %s", e.Err, e.What)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}
