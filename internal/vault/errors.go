// Package vault provides snapshot versioning, restore and diffing for
// prompt projects. This file contains the error taxonomy.
package vault

import (
	"errors"
	"fmt"
	"strings"
)

// NotFoundError indicates that a referenced project or snapshot id is absent.
type NotFoundError struct {
	Kind string // "project" or "snapshot"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Kind, e.ID)
}

// NewProjectNotFound creates a NotFoundError for a project id.
func NewProjectNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "project", ID: id}
}

// NewSnapshotNotFound creates a NotFoundError for a snapshot id.
func NewSnapshotNotFound(id string) *NotFoundError {
	return &NotFoundError{Kind: "snapshot", ID: id}
}

// IsNotFound checks if an error is a NotFoundError.
func IsNotFound(err error) bool {
	var notFound *NotFoundError
	return errors.As(err, &notFound)
}

// ValidationError indicates that a bulk-import payload is malformed.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid data: %s", strings.Join(e.Problems, "; "))
}

// IsValidation checks if an error is a ValidationError.
func IsValidation(err error) bool {
	var validation *ValidationError
	return errors.As(err, &validation)
}

// StorageError wraps a failed persistence call. A failed write never leaves
// a partially-updated state; a failed read prevents the operation from
// starting at all.
type StorageError struct {
	Op  string // "read" or "write"
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s failed: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// NewStorageError wraps err with the failed operation name.
// Returns nil if err is nil.
func NewStorageError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// IsStorage checks if an error is a StorageError.
func IsStorage(err error) bool {
	var storage *StorageError
	return errors.As(err, &storage)
}
