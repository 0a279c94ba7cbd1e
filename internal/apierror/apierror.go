// Package apierror defines the error taxonomy shared by services and handlers.
// Services attach a Kind to every business-rule rejection; handlers map kinds
// to HTTP statuses. Internal details (SQL errors, stack traces) never reach
// clients through this package.
package apierror

import (
	"errors"
	"fmt"
)

// Kind classifies why an operation was rejected.
type Kind string

const (
	KindNotFound           Kind = "not_found"
	KindDuplicateKey       Kind = "duplicate_key"
	KindConflict           Kind = "conflict"
	KindCircularDependency Kind = "circular_dependency"
	KindValidationFailed   Kind = "validation_failed"
)

// Error is the canonical business error. Reasons is only populated for
// KindValidationFailed, where every violation is reported, not just the first.
type Error struct {
	Kind    Kind     `json:"kind"`
	Detail  string   `json:"detail"`
	Reasons []string `json:"reasons,omitempty"`
}

func (e *Error) Error() string {
	if len(e.Reasons) > 0 {
		return fmt.Sprintf("%s: %s (%d violations)", e.Kind, e.Detail, len(e.Reasons))
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

func New(kind Kind, detail string) *Error {
	return &Error{Kind: kind, Detail: detail}
}

func Newf(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Detail: fmt.Sprintf(format, args...)}
}

// NotFound builds a KindNotFound error for the named entity.
func NotFound(entity string) *Error {
	return &Error{Kind: KindNotFound, Detail: entity + " not found"}
}

// Validation wraps the full list of field violations.
func Validation(reasons []string) *Error {
	return &Error{Kind: KindValidationFailed, Detail: "validation failed", Reasons: reasons}
}

// Is reports whether err carries the given kind anywhere in its chain.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
