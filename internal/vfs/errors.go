// Package vfs provides the in-memory virtual filesystem shared by the
// desktop, the file browser and the terminal.
//
// This file contains error types and error handling utilities.
package vfs

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates a path does not resolve to any entry, or an
	// intermediate segment is not a directory
	ErrNotFound = errors.New("No such file or directory")

	// ErrNotADirectory indicates a directory was required
	ErrNotADirectory = errors.New("Not a directory")

	// ErrIsADirectory indicates a file was required but a directory was found
	ErrIsADirectory = errors.New("Is a directory")

	// ErrAlreadyExists indicates the target name is taken by a sibling
	ErrAlreadyExists = errors.New("File exists")

	// ErrInvalidPath indicates a name-requiring operation targeted the root
	// or an otherwise impossible location
	ErrInvalidPath = errors.New("Invalid argument")

	// ErrMissingOperand indicates a command was run without a required argument
	ErrMissingOperand = errors.New("missing operand")
)

// Error wraps filesystem errors with the operation and the affected path.
// Its message reads like the corresponding shell diagnostic, e.g.
// "cannot create directory 'docs': File exists".
type Error struct {
	Op   string // Operation that failed, one of the Op constants
	Path string // Affected path or name
	Err  error  // Underlying sentinel error
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("%s '%s': %v", describeOp(e.Op), e.Path, e.Err)
}

// Unwrap implements error unwrapping for the errors.Is/As functions
func (e *Error) Unwrap() error {
	return e.Err
}

// newError builds an *Error and logs it at debug level.
func newError(op, path string, err error) *Error {
	fsErr := &Error{
		Op:   op,
		Path: path,
		Err:  err,
	}
	errLogger.Debug("%s failed: %v", op, fsErr)
	return fsErr
}

// Operation names for consistent logging and error reporting
const (
	OpCreate = "create" // Creating a new file
	OpMkdir  = "mkdir"  // Creating a new directory
	OpWrite  = "write"  // Rewriting file content
	OpRemove = "remove" // Removing a file or directory
	OpRename = "rename" // Moving a file or directory
)

func describeOp(op string) string {
	switch op {
	case OpCreate:
		return "cannot create file"
	case OpMkdir:
		return "cannot create directory"
	case OpWrite:
		return "cannot write file"
	case OpRemove:
		return "cannot remove"
	case OpRename:
		return "cannot move"
	default:
		return "cannot " + op
	}
}

// IsNotFound reports whether err is, or wraps, ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
