// Package errors provides the typed errors returned by the catalog.
// Each failure class the catalog can hit has its own type so callers can
// branch with errors.Is / errors.As instead of matching message text.
package errors

import (
	"errors"
	"fmt"
)

// New returns an error that formats as the given text.
// It's an alias for the standard library errors.New for convenience.
var New = errors.New

// Is, As and Join re-export the standard library helpers so callers only
// need one errors import.
var (
	Is   = errors.Is
	As   = errors.As
	Join = errors.Join
)

// Sentinel errors matched by the typed errors below.
var (
	// ErrNotFound indicates that a requested document was not found
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates that provided input was invalid
	ErrInvalidInput = errors.New("invalid input")

	// ErrFrameMissing indicates that the image a caller claims to have
	// written is not present in its run directory
	ErrFrameMissing = errors.New("frame file missing")

	// ErrMalformed indicates an on-disk document that cannot be parsed
	ErrMalformed = errors.New("malformed document")

	// ErrConflict indicates two distinct frame records for one valid time
	ErrConflict = errors.New("frame conflict")
)

// NotFoundError represents an error when a document is not found
type NotFoundError struct {
	Resource string
	ID       string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// Is implements errors.Is support
func (e *NotFoundError) Is(target error) bool {
	return target == ErrNotFound
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(resource, id string) *NotFoundError {
	return &NotFoundError{Resource: resource, ID: id}
}

// ValidationError represents a validation failure
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed for field %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// Is implements errors.Is support
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalidInput
}

// NewValidationError creates a new ValidationError
func NewValidationError(field string, value interface{}, message string) *ValidationError {
	return &ValidationError{Field: field, Value: value, Message: message}
}

// PreconditionError reports that a frame image was not on disk when the
// catalog was asked to record it.
type PreconditionError struct {
	ProductID int
	Path      string
}

// Error implements the error interface
func (e *PreconditionError) Error() string {
	return fmt.Sprintf("product %d: frame image %s does not exist", e.ProductID, e.Path)
}

// Is implements errors.Is support
func (e *PreconditionError) Is(target error) bool {
	return target == ErrFrameMissing
}

// NewPreconditionError creates a new PreconditionError
func NewPreconditionError(productID int, path string) *PreconditionError {
	return &PreconditionError{ProductID: productID, Path: path}
}

// ParseError represents a document that could not be decoded into its
// expected shape.
type ParseError struct {
	Format  string // "json", "yaml", "timestamp"
	File    string
	Message string
	Err     error
}

// Error implements the error interface
func (e *ParseError) Error() string {
	if e.File != "" {
		return fmt.Sprintf("parse error in %s file %s: %s", e.Format, e.File, e.Message)
	}
	return fmt.Sprintf("%s parse error: %s", e.Format, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ParseError) Unwrap() error {
	return e.Err
}

// Is implements errors.Is support
func (e *ParseError) Is(target error) bool {
	return target == ErrMalformed
}

// NewParseError creates a new ParseError
func NewParseError(format, file string, message string, err error) *ParseError {
	return &ParseError{
		Format:  format,
		File:    file,
		Message: message,
		Err:     err,
	}
}

// IOError represents an error during filesystem operations
type IOError struct {
	Operation string // "read", "write", "create", "rename", "list", "chmod"
	Path      string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("IO error during %s of %s: %s", e.Operation, e.Path, e.Message)
	}
	return fmt.Sprintf("IO error during %s: %s", e.Operation, e.Message)
}

// Unwrap implements errors.Unwrap
func (e *IOError) Unwrap() error {
	return e.Err
}

// NewIOError creates a new IOError
func NewIOError(operation, path string, err error) *IOError {
	message := ""
	if err != nil {
		message = err.Error()
	}
	return &IOError{
		Operation: operation,
		Path:      path,
		Message:   message,
		Err:       err,
	}
}

// ConflictError reports frames that share a valid time but differ in some
// other attribute. It is only returned under the strict conflict policy;
// other policies resolve the conflict and report it without failing.
type ConflictError struct {
	ProductID int
	Run       string
	Valids    []string
}

// Error implements the error interface
func (e *ConflictError) Error() string {
	return fmt.Sprintf("product %d run %s: conflicting frame records for valid times %v", e.ProductID, e.Run, e.Valids)
}

// Is implements errors.Is support
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

// NewConflictError creates a new ConflictError
func NewConflictError(productID int, run string, valids []string) *ConflictError {
	return &ConflictError{ProductID: productID, Run: run, Valids: valids}
}

// ConfigError represents a configuration error
type ConfigError struct {
	Component string
	Message   string
	Err       error
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	if e.Component != "" {
		return fmt.Sprintf("configuration error in %s: %s", e.Component, e.Message)
	}
	return fmt.Sprintf("configuration error: %s", e.Message)
}

// Unwrap implements errors.Unwrap
func (e *ConfigError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a new ConfigError
func NewConfigError(component, message string, err error) *ConfigError {
	return &ConfigError{
		Component: component,
		Message:   message,
		Err:       err,
	}
}

// IsNotFound checks if an error is a not found error
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}

// IsFrameMissing checks if an error is a missing-frame precondition failure
func IsFrameMissing(err error) bool {
	return errors.Is(err, ErrFrameMissing)
}

// IsMalformed checks if an error comes from an unparsable document
func IsMalformed(err error) bool {
	return errors.Is(err, ErrMalformed)
}

// IsConflict checks if an error is a frame conflict
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// WrapIO wraps an error as an IOError
func WrapIO(operation, path string, err error) error {
	if err == nil {
		return nil
	}
	return NewIOError(operation, path, err)
}

// WrapParse wraps an error as a ParseError
func WrapParse(format, file string, err error) error {
	if err == nil {
		return nil
	}
	return NewParseError(format, file, err.Error(), err)
}

// WrapValidation wraps an error as a ValidationError
func WrapValidation(field string, err error) error {
	if err == nil {
		return nil
	}
	return &ValidationError{Field: field, Message: err.Error()}
}
