package index

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Category classifies a store failure for retry decisions.
type Category string

// Category values. Schema and constraint failures are fatal and never
// retried; connection, timeout, lock, memory and network failures are
// transient and retried with backoff.
const (
	CategorySchema     Category = "schema"
	CategoryConstraint Category = "constraint"
	CategoryConnection Category = "connection"
	CategoryTimeout    Category = "timeout"
	CategoryLock       Category = "lock"
	CategoryMemory     Category = "memory"
	CategoryNetwork    Category = "network"
	CategoryPermission Category = "permission"
	CategoryFilesystem Category = "filesystem"
	CategoryDatabase   Category = "database"
	CategoryTable      Category = "table"
	CategoryUnknown    Category = "unknown"
)

// Transient reports whether failures of this category are worth retrying.
func (c Category) Transient() bool {
	switch c {
	case CategoryConnection, CategoryTimeout, CategoryLock, CategoryMemory, CategoryNetwork:
		return true
	default:
		return false
	}
}

// Infrastructure reports whether the category indicates the backing
// resource itself is unavailable. A reconciliation pass abandons its
// remaining work when it sees one of these, instead of compounding
// retries against a dead resource.
func (c Category) Infrastructure() bool {
	return c == CategoryConnection || c == CategoryNetwork
}

// ValidationError indicates invalid caller input. Never retried.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError creates a ValidationError.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// InitializationError indicates the store could not reach its Ready state.
type InitializationError struct {
	Cat Category
	Err error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("store initialization failed (%s): %v", e.Cat, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

// Category returns the failure category.
func (e *InitializationError) Category() Category { return e.Cat }

// StoreError indicates a categorized failure of a store operation
// (upsert, delete, query, search) after any retries were exhausted.
type StoreError struct {
	Op  string
	Cat Category
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Cat, e.Err)
}

func (e *StoreError) Unwrap() error { return e.Err }

// Category returns the failure category.
func (e *StoreError) Category() Category { return e.Cat }

// PartialDeleteError reports a batch delete where some ids could not be
// removed. All reachable batches were attempted before this is returned.
type PartialDeleteError struct {
	Deleted int
	Failed  int
	Sample  []string
	Err     error
}

func (e *PartialDeleteError) Error() string {
	return fmt.Sprintf("partial delete: %d deleted, %d failed (sample: %s): %v",
		e.Deleted, e.Failed, strings.Join(e.Sample, ", "), e.Err)
}

func (e *PartialDeleteError) Unwrap() error { return e.Err }

// Classify maps an error onto a failure Category by inspecting the error
// chain and, as a last resort, the driver's message text. SQLite and GORM
// do not expose structured error codes for every failure mode, so string
// matching on well-known fragments is the pragmatic fallback.
func Classify(err error) Category {
	if err == nil {
		return CategoryUnknown
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CategoryTimeout
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"),
		strings.Contains(msg, "constraint failed"),
		strings.Contains(msg, "foreign key"):
		return CategoryConstraint
	case strings.Contains(msg, "no such table"),
		strings.Contains(msg, "no such column"),
		strings.Contains(msg, "syntax error"),
		strings.Contains(msg, "datatype mismatch"):
		return CategorySchema
	case strings.Contains(msg, "database is locked"),
		strings.Contains(msg, "table is locked"),
		strings.Contains(msg, "busy"):
		return CategoryLock
	case strings.Contains(msg, "timeout"),
		strings.Contains(msg, "deadline exceeded"):
		return CategoryTimeout
	case strings.Contains(msg, "out of memory"):
		return CategoryMemory
	case strings.Contains(msg, "connection refused"),
		strings.Contains(msg, "connection reset"),
		strings.Contains(msg, "broken pipe"),
		strings.Contains(msg, "database is closed"),
		strings.Contains(msg, "bad connection"):
		return CategoryConnection
	case strings.Contains(msg, "network"),
		strings.Contains(msg, "no such host"),
		strings.Contains(msg, "service unavailable"):
		return CategoryNetwork
	case strings.Contains(msg, "permission denied"),
		strings.Contains(msg, "read-only"),
		strings.Contains(msg, "readonly"),
		strings.Contains(msg, "access is denied"):
		return CategoryPermission
	case strings.Contains(msg, "no such file"),
		strings.Contains(msg, "unable to open database file"),
		strings.Contains(msg, "disk i/o error"),
		strings.Contains(msg, "not a directory"):
		return CategoryFilesystem
	default:
		return CategoryUnknown
	}
}

// Transient reports whether err should be retried. Validation errors are
// never transient regardless of their message text.
func Transient(err error) bool {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return false
	}
	return Classify(err).Transient()
}

// Infrastructure reports whether err indicates the backing store itself is
// unreachable (see Category.Infrastructure).
func Infrastructure(err error) bool {
	var serr *StoreError
	if errors.As(err, &serr) {
		return serr.Cat.Infrastructure()
	}
	return Classify(err).Infrastructure()
}
