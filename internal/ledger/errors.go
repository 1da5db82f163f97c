package ledger

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the service and storage layers. Callers
// match them with errors.Is.
var (
	// ErrNotFound reports an unknown bill, expense, or settlement ID.
	ErrNotFound = errors.New("splitledger: not found")

	// ErrPermissionDenied reports an actor who is not authorized for the
	// bill or is not the correct party for a settlement transition.
	ErrPermissionDenied = errors.New("splitledger: permission denied")

	// ErrInvalidState reports a transition that the current state
	// forbids, such as rejecting a confirmed settlement.
	ErrInvalidState = errors.New("splitledger: invalid state")
)

// ValidationError reports a rejected input field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("splitledger: invalid %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
