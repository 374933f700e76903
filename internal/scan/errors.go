package scan

import (
	"errors"
	"fmt"

	"dlmm-binscan/internal/dlmm"
)

var (
	// ErrEncoding is returned when account data is not valid base64.
	ErrEncoding = errors.New("invalid account data encoding")

	// ErrAddressMismatch is returned when an account address differs from the
	// bin array address derived from its own lb pair and index.
	ErrAddressMismatch = errors.New("address does not match bin array PDA")

	// ErrWrongOwner is returned when an inspected account is not owned by the program.
	ErrWrongOwner = errors.New("account not owned by program")

	// ErrAccountNotFound is returned when an inspected account does not exist.
	ErrAccountNotFound = errors.New("account not found")
)

// Failure reasons used for metrics labels.
const (
	ReasonSizeMismatch          = "size_mismatch"
	ReasonDiscriminatorMismatch = "discriminator_mismatch"
	ReasonEncoding              = "encoding"
	ReasonAddressMismatch       = "address_mismatch"
	ReasonOther                 = "other"
)

// Reason classifies a per-account error.
func Reason(err error) string {
	switch {
	case errors.Is(err, dlmm.ErrSizeMismatch):
		return ReasonSizeMismatch
	case errors.Is(err, dlmm.ErrDiscriminatorMismatch):
		return ReasonDiscriminatorMismatch
	case errors.Is(err, ErrEncoding):
		return ReasonEncoding
	case errors.Is(err, ErrAddressMismatch):
		return ReasonAddressMismatch
	default:
		return ReasonOther
	}
}

// AccountError is returned by Run under PolicyAbort for the first account that
// failed, in RPC result order.
type AccountError struct {
	Position int
	Address  string
	Err      error
}

func (e *AccountError) Error() string {
	return fmt.Sprintf("account %s (#%d): %v", e.Address, e.Position, e.Err)
}

func (e *AccountError) Unwrap() error {
	return e.Err
}
