// Package util provides utility functions and common error types.
package util

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for the push pipeline
var (
	ErrUnknownCommand   = errors.New("unknown command")
	ErrSchemaInvalid    = errors.New("invalid schema")
	ErrValidationFailed = errors.New("validation failed")
	ErrRenderFailed     = errors.New("render failed")
	ErrAuthFailed       = errors.New("authentication failed")
	ErrTransport        = errors.New("transport failure")
	ErrController       = errors.New("controller rejected request")
	ErrTableNotFound    = errors.New("table not found")
)

// SchemaError is fatal to a run: the command or its schema cannot be used.
type SchemaError struct {
	Command string
	Reason  string
	Err     error
}

func (e *SchemaError) Error() string {
	msg := "schema error"
	if e.Command != "" {
		msg += " for " + e.Command
	}
	msg += ": " + e.Reason
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *SchemaError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrSchemaInvalid
}

// NewSchemaError creates a schema error. err may be nil.
func NewSchemaError(command, reason string, err error) *SchemaError {
	return &SchemaError{Command: command, Reason: reason, Err: err}
}

// ValidationError represents one or more validation failures
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	if len(e.Errors) == 1 {
		return "validation failed: " + e.Errors[0]
	}
	return fmt.Sprintf("validation failed:\n  - %s", strings.Join(e.Errors, "\n  - "))
}

func (e *ValidationError) Unwrap() error {
	return ErrValidationFailed
}

// NewValidationError creates a validation error from messages
func NewValidationError(messages ...string) *ValidationError {
	return &ValidationError{Errors: messages}
}

// ValidationBuilder helps accumulate validation errors
type ValidationBuilder struct {
	errors []string
}

// Add adds an error message if condition is false
func (v *ValidationBuilder) Add(condition bool, message string) *ValidationBuilder {
	if !condition {
		v.errors = append(v.errors, message)
	}
	return v
}

// AddErrorf adds a formatted error message
func (v *ValidationBuilder) AddErrorf(format string, args ...interface{}) *ValidationBuilder {
	v.errors = append(v.errors, fmt.Sprintf(format, args...))
	return v
}

// HasErrors returns true if there are validation errors
func (v *ValidationBuilder) HasErrors() bool {
	return len(v.errors) > 0
}

// Build returns the validation error or nil if no errors
func (v *ValidationBuilder) Build() error {
	if len(v.errors) == 0 {
		return nil
	}
	return &ValidationError{Errors: v.errors}
}

// RenderError means a template referenced a field the row does not carry,
// or produced output that is not valid JSON. It indicates a template
// authoring bug, not bad operator input.
type RenderError struct {
	Template string
	Field    string
	Reason   string
}

func (e *RenderError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("render %s: unresolved field %q", e.Template, e.Field)
	}
	return fmt.Sprintf("render %s: %s", e.Template, e.Reason)
}

func (e *RenderError) Unwrap() error {
	return ErrRenderFailed
}

// TransportError wraps a network-level failure (timeout, DNS, refused).
type TransportError struct {
	URI string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport failure posting %s: %v", e.URI, e.Err)
}

func (e *TransportError) Unwrap() []error {
	return []error{ErrTransport, e.Err}
}

// ControllerError is a non-success status returned by the controller.
type ControllerError struct {
	URI        string
	StatusCode int
	Text       string
}

func (e *ControllerError) Error() string {
	if e.Text != "" {
		return fmt.Sprintf("controller returned %d for %s: %s", e.StatusCode, e.URI, e.Text)
	}
	return fmt.Sprintf("controller returned %d for %s", e.StatusCode, e.URI)
}

func (e *ControllerError) Unwrap() error {
	return ErrController
}
