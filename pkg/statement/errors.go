package statement

import (
	"errors"
	"fmt"
)

// Reason classifies why a statement was rejected. Reasons are comparable
// with errors.Is against any error returned by a predicate.
type Reason string

const (
	// WitnessMismatch means a value recomputed from the witness differs from
	// the value supplied for it (commitment, leaf, certificate field, root,
	// signer).
	WitnessMismatch Reason = "witness_mismatch"

	// ConstraintViolation means a numeric or business rule failed
	// (insufficient balance, zero amount, identical assets, expired
	// certificate, underflow).
	ConstraintViolation Reason = "constraint_violation"

	// StructuralError means an input had the wrong shape (short certificate,
	// mismatched proof lengths, truncated record, missing capability).
	StructuralError Reason = "structural_error"
)

// Error implements the error interface for Reason.
func (r Reason) Error() string {
	return string(r)
}

// Rejection is the terminal outcome of a failed evaluation. No output is
// produced alongside a Rejection.
type Rejection struct {
	Reason Reason
	// Check names the failed check, e.g. "commitment" or "min_balance".
	Check string
	// Detail is optional human-readable context.
	Detail string
}

func (r *Rejection) Error() string {
	if r.Detail == "" {
		return fmt.Sprintf("statement: %s: %s", r.Reason, r.Check)
	}
	return fmt.Sprintf("statement: %s: %s: %s", r.Reason, r.Check, r.Detail)
}

// Unwrap returns the rejection reason so errors.Is matches it.
func (r *Rejection) Unwrap() error {
	return r.Reason
}

// Reject builds a Rejection with a formatted detail.
func Reject(reason Reason, check, format string, args ...any) *Rejection {
	return &Rejection{Reason: reason, Check: check, Detail: fmt.Sprintf(format, args...)}
}

// ReasonOf extracts the rejection reason from err. It returns false when err
// is not a statement rejection.
func ReasonOf(err error) (Reason, bool) {
	var r Reason
	if errors.As(err, &r) {
		return r, true
	}
	return "", false
}
