// Package errs defines the semantic error kinds propagated out of the feeds
// core (spec §7). Handlers return these instead of ad-hoc strings so the API
// layer can map failures to transport status without sniffing messages.
package errs

import "github.com/pkg/errors"

// Kind classifies why an operation failed.
type Kind int

const (
	// InvalidArgument: malformed identifiers, oversized/empty title, a
	// authorCommitment that isn't exactly 32 bytes, missing required fields.
	InvalidArgument Kind = iota
	// PermissionDenied: a non-admin requested an admin action, or a
	// non-participant requested per-feed data.
	PermissionDenied
	// NotFound: group/attachment/message absent, or a cross-feed mismatch.
	NotFound
	// FailedPrecondition: group deleted, member already in target state,
	// cooldown not elapsed.
	FailedPrecondition
	// Conflict: duplicate addresses in a participant list or rotation.
	Conflict
	// CryptoFailure: key generation failed, identity missing, key malformed.
	CryptoFailure
	// Capacity: group would exceed the maximum member count.
	Capacity
	// Transient: cache or identity lookup failure; safe to retry.
	Transient
)

func (k Kind) String() string {
	switch k {
	case InvalidArgument:
		return "invalid_argument"
	case PermissionDenied:
		return "permission_denied"
	case NotFound:
		return "not_found"
	case FailedPrecondition:
		return "failed_precondition"
	case Conflict:
		return "conflict"
	case CryptoFailure:
		return "crypto_failure"
	case Capacity:
		return "capacity"
	case Transient:
		return "transient"
	default:
		return "unknown"
	}
}

// Error is a typed, stack-carrying error. The cause is wrapped with
// github.com/pkg/errors so handlers further up the stack can still use
// errors.Cause / %+v for diagnostics.
type Error struct {
	kind  Kind
	cause error
}

func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, cause: errors.New(msg)}
}

func Wrap(kind Kind, cause error, msg string) *Error {
	return &Error{kind: kind, cause: errors.Wrap(cause, msg)}
}

func (e *Error) Error() string { return e.cause.Error() }

func (e *Error) Cause() error { return e.cause }

func (e *Error) Kind() Kind { return e.kind }

// KindOf extracts the Kind of err if it (or something it wraps) is an *Error,
// defaulting to Transient for unrecognized errors so callers never silently
// treat an unknown failure as terminal.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.kind
	}
	return Transient
}

func Is(err error, kind Kind) bool {
	return KindOf(err) == kind
}
