package domain

import (
	"errors"
	"fmt"
)

// Category classifies a checkout failure. The orchestrator's contract has
// exactly three recoverable categories; anything unexpected is re-classified
// as infrastructure at the transaction boundary.
type Category string

const (
	CategoryValidation     Category = "validation"
	CategoryDomain         Category = "domain"
	CategoryInfrastructure Category = "infrastructure"
)

// Error is a categorized checkout failure.
type Error struct {
	Category Category
	Reason   string
	Cause    error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Category, e.Reason, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Category, e.Reason)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// ValidationError reports a caller-supplied input failing a precondition.
// Always raised before any row lock is taken.
func ValidationError(reason string) error {
	return &Error{Category: CategoryValidation, Reason: reason}
}

// DomainError reports a business-rule or consistency violation discovered
// after locking. The surrounding transaction rolls back in full.
func DomainError(reason string) error {
	return &Error{Category: CategoryDomain, Reason: reason}
}

// InfrastructureError wraps an underlying storage failure.
func InfrastructureError(reason string, cause error) error {
	return &Error{Category: CategoryInfrastructure, Reason: reason, Cause: cause}
}

// Classify passes through already-categorized errors and wraps everything
// else as infrastructure.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	var categorized *Error
	if errors.As(err, &categorized) {
		return err
	}
	return InfrastructureError("storage failure", err)
}

// CategoryOf returns the failure category, or empty for nil/uncategorized.
func CategoryOf(err error) Category {
	var categorized *Error
	if errors.As(err, &categorized) {
		return categorized.Category
	}
	return ""
}

func IsValidation(err error) bool     { return CategoryOf(err) == CategoryValidation }
func IsDomain(err error) bool         { return CategoryOf(err) == CategoryDomain }
func IsInfrastructure(err error) bool { return CategoryOf(err) == CategoryInfrastructure }
