// Package errors provides standardized error types and helpers for the standoff codebase.
package errors

import (
	"errors"
	"fmt"
)

// Sentinel errors for common cases
var (
	// ErrMismatchedDelimiters indicates an odd number of anchor delimiters in a corpus text file
	ErrMismatchedDelimiters = errors.New("mismatched anchor delimiters")
	// ErrCorruptAnnotation indicates a malformed annotation file
	ErrCorruptAnnotation = errors.New("corrupt annotation")
	// ErrUnknownAnchor indicates an anchor that cannot be resolved to a position
	ErrUnknownAnchor = errors.New("unknown anchor")
	// ErrInvalidConfig indicates an invalid parser or pipeline configuration
	ErrInvalidConfig = errors.New("invalid configuration")
	// ErrNotFound indicates a resource was not found
	ErrNotFound = errors.New("not found")
)

// MismatchedDelimitersError reports an unpaired anchor delimiter in a corpus text file.
type MismatchedDelimitersError struct {
	Path   string // File being read
	Offset int    // Byte offset of the unmatched delimiter
}

func (e *MismatchedDelimitersError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("mismatched anchor delimiters in corpus file %s at offset %d", e.Path, e.Offset)
	}
	return fmt.Sprintf("mismatched anchor delimiters at offset %d", e.Offset)
}

func (e *MismatchedDelimitersError) Unwrap() error {
	return ErrMismatchedDelimiters
}

// CorruptAnnotationError reports an annotation line without a key/value delimiter.
type CorruptAnnotationError struct {
	Path string // File being read
	Line int    // 1-based line number
}

func (e *CorruptAnnotationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("corrupt annotation in %s: line %d has no delimiter", e.Path, e.Line)
	}
	return fmt.Sprintf("corrupt annotation: line %d has no delimiter", e.Line)
}

func (e *CorruptAnnotationError) Unwrap() error {
	return ErrCorruptAnnotation
}

// UnknownAnchorError reports an anchor that is absent from a document's anchor maps.
type UnknownAnchorError struct {
	Anchor string // The unresolvable anchor
	Edge   string // Edge the anchor came from, if any
}

func (e *UnknownAnchorError) Error() string {
	if e.Edge != "" {
		return fmt.Sprintf("unknown anchor %q in edge %q", e.Anchor, e.Edge)
	}
	return fmt.Sprintf("unknown anchor %q", e.Anchor)
}

func (e *UnknownAnchorError) Unwrap() error {
	return ErrUnknownAnchor
}

// ConfigError reports an invalid markup or pipeline configuration.
type ConfigError struct {
	Field   string // Configuration field or element spec involved
	Message string // Human-readable error message
	Err     error  // Underlying error, if any
}

func (e *ConfigError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("invalid configuration for %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("invalid configuration: %s", e.Message)
}

func (e *ConfigError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return ErrInvalidConfig
}

// IOError represents an I/O operation error with context
type IOError struct {
	Operation string // Operation being performed (e.g., "read", "write", "open")
	Path      string // File/resource path involved
	Err       error  // Underlying error
}

func (e *IOError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("failed to %s %s: %v", e.Operation, e.Path, e.Err)
	}
	return fmt.Sprintf("failed to %s: %v", e.Operation, e.Err)
}

func (e *IOError) Unwrap() error {
	return e.Err
}

// NewMismatchedDelimiters creates a MismatchedDelimitersError.
func NewMismatchedDelimiters(path string, offset int) *MismatchedDelimitersError {
	return &MismatchedDelimitersError{Path: path, Offset: offset}
}

// NewCorruptAnnotation creates a CorruptAnnotationError.
func NewCorruptAnnotation(path string, line int) *CorruptAnnotationError {
	return &CorruptAnnotationError{Path: path, Line: line}
}

// NewUnknownAnchor creates an UnknownAnchorError.
func NewUnknownAnchor(anchor, edge string) *UnknownAnchorError {
	return &UnknownAnchorError{Anchor: anchor, Edge: edge}
}

// NewConfig creates a ConfigError.
func NewConfig(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewIO creates an IOError.
func NewIO(operation, path string, err error) *IOError {
	return &IOError{Operation: operation, Path: path, Err: err}
}

// Is reports whether any error in err's chain matches target.
// Re-exported so callers don't need to import both this package and stdlib errors.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool {
	return errors.As(err, target)
}

// New returns an error that formats as the given text.
func New(text string) error {
	return errors.New(text)
}
