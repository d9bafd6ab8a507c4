package entities

import (
	"errors"
	"fmt"
)

// ErrorKind classifies a domain failure. The HTTP layer maps kinds to status
// codes; services and validators only ever speak in kinds.
type ErrorKind string

const (
	KindNotFound           ErrorKind = "not_found"
	KindAccessDenied       ErrorKind = "access_denied"
	KindStructuralConflict ErrorKind = "structural_conflict"
	KindDependencyBlocked  ErrorKind = "dependency_blocked"
	KindValidationFailed   ErrorKind = "validation_failed"
	KindStorageFailure     ErrorKind = "storage_failure"
)

// DomainError carries an error kind plus a human-readable reason. Reasons are
// written for end users, never raw storage errors.
type DomainError struct {
	Kind   ErrorKind
	Reason string
	Err    error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Reason)
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is match any two domain errors of the same kind, so
// sentinel comparisons like errors.Is(err, ErrListNotFound) work across
// wrapping layers.
func (e *DomainError) Is(target error) bool {
	var de *DomainError
	if !errors.As(target, &de) {
		return false
	}
	return e.Kind == de.Kind && (de.Reason == "" || de.Reason == e.Reason)
}

func NotFound(reason string) *DomainError {
	return &DomainError{Kind: KindNotFound, Reason: reason}
}

func AccessDenied(reason string) *DomainError {
	return &DomainError{Kind: KindAccessDenied, Reason: reason}
}

func StructuralConflict(reason string) *DomainError {
	return &DomainError{Kind: KindStructuralConflict, Reason: reason}
}

func DependencyBlocked(reason string) *DomainError {
	return &DomainError{Kind: KindDependencyBlocked, Reason: reason}
}

func ValidationFailed(reason string) *DomainError {
	return &DomainError{Kind: KindValidationFailed, Reason: reason}
}

func StorageFailure(reason string, err error) *DomainError {
	return &DomainError{Kind: KindStorageFailure, Reason: reason, Err: err}
}

// Common sentinels used by the repository layer.
var (
	ErrUserNotFound = NotFound("user not found")
	ErrListNotFound = NotFound("list not found")
	ErrTaskNotFound = NotFound("task not found")
)

// KindOf extracts the kind from an error chain, defaulting to storage
// failure for anything that is not a DomainError.
func KindOf(err error) ErrorKind {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Kind
	}
	return KindStorageFailure
}

// ReasonOf extracts the user-facing reason from an error chain.
func ReasonOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Reason
	}
	return "internal error"
}
