package invoice

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// ErrStoreUnavailable marks transient record-store failures. The whole
// operation is safe to retry; number allocation must re-read the latest
// maximum on retry, never reuse a stale one.
var ErrStoreUnavailable = errors.New("record store unavailable")

// ErrSequenceConflict marks a write-time uniqueness violation on the invoice
// number. The assembler retries allocation a bounded number of times before
// surfacing it.
var ErrSequenceConflict = errors.New("invoice number already taken")

// ErrNotFound means the referenced invoice does not exist for this issuer.
var ErrNotFound = errors.New("invoice not found")

// ValidationError reports bad input shape or values. Line is the zero-based
// index of the offending line, or -1 when the problem is not line-scoped.
type ValidationError struct {
	Line   int
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Line < 0 {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("line %d: invalid %s: %s", e.Line, e.Field, e.Reason)
}

// UnknownServiceError means a line references a service that does not exist
// or has been retired.
type UnknownServiceError struct {
	ServiceID uuid.UUID
}

func (e *UnknownServiceError) Error() string {
	return fmt.Sprintf("unknown or inactive billable service %s", e.ServiceID)
}

// InvalidTransitionError reports a forbidden status change.
type InvalidTransitionError struct {
	From Status
	To   Status
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot transition invoice from %s to %s", e.From, e.To)
}
