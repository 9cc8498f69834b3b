// Package services implements the entity consistency workflows: the
// multi-document update sequences that keep denormalized back-references
// (a user's post/comment/like lists, a post's comment/like lists) consistent
// across the users, posts and comments collections.
//
// None of the multi-document sequences here are transactional. A failure
// between two writes leaves the collections inconsistent; workflows surface
// the first failure they detect and never roll back writes already committed.
package services

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by workflows. Controllers map these to HTTP statuses
// with errors.Is/As; anything else is an internal failure whose detail is
// logged and withheld from the response.
var (
	// ErrNotFound indicates a referenced entity is absent.
	ErrNotFound = errors.New("not found")
	// ErrForbidden indicates the requester does not own the resource.
	ErrForbidden = errors.New("forbidden")
	// ErrConflict indicates a uniqueness clash, e.g. duplicate registration.
	ErrConflict = errors.New("conflict")
	// ErrInvalidCredentials indicates a failed username/password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// ValidationError reports a missing or malformed required field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation: %s %s", e.Field, e.Reason)
}

func required(field string) *ValidationError {
	return &ValidationError{Field: field, Reason: "is required"}
}
