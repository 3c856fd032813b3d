package domain

import (
	"fmt"
	"strings"
)

// ValidationError indicates structured input is missing or invalid. The
// caller can correct the input and retry. Missing holds the specific
// items when the failure is a completeness check.
type ValidationError struct {
	Message string
	Missing []string
}

func (e *ValidationError) Error() string {
	if len(e.Missing) == 0 {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Message, strings.Join(e.Missing, ", "))
}

// NewIncompleteError creates a ValidationError carrying missing items
func NewIncompleteError(message string, missing []string) *ValidationError {
	return &ValidationError{Message: message, Missing: missing}
}

// NotFoundError indicates a referenced transaction, customer or report
// does not exist
type NotFoundError struct {
	Entity string
	ID     string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.ID)
}

// NewNotFoundError creates a NotFoundError for the given entity and id
func NewNotFoundError(entity, id string) *NotFoundError {
	return &NotFoundError{Entity: entity, ID: id}
}

// StateConflictError indicates an operation is invalid for the current
// report state, including duplicate report creation for a transaction
type StateConflictError struct {
	Operation string
	Current   string
	Message   string
}

func (e *StateConflictError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("cannot %s report in status %s", e.Operation, e.Current)
}

// NewStateConflictError creates a StateConflictError for a bad transition
func NewStateConflictError(operation string, current ReportStatus) *StateConflictError {
	return &StateConflictError{Operation: operation, Current: string(current)}
}

// NewDuplicateReportError creates the conflict raised when a report
// already references the transaction
func NewDuplicateReportError(transactionID string) *StateConflictError {
	return &StateConflictError{
		Operation: "create",
		Message:   fmt.Sprintf("a report already exists for transaction %s", transactionID),
	}
}

// DependencyUnavailableError indicates a downstream lookup failed or
// timed out; the operation is recoverable via retry
type DependencyUnavailableError struct {
	Dependency string
	Err        error
}

func (e *DependencyUnavailableError) Error() string {
	return fmt.Sprintf("dependency %s unavailable: %v", e.Dependency, e.Err)
}

func (e *DependencyUnavailableError) Unwrap() error {
	return e.Err
}

// NewDependencyUnavailableError wraps a downstream failure
func NewDependencyUnavailableError(dependency string, err error) *DependencyUnavailableError {
	return &DependencyUnavailableError{Dependency: dependency, Err: err}
}
