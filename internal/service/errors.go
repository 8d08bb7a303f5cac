package service

import (
	"fmt"
)

// ClientError reports a malformed or incomplete request (HTTP 400).
// Err is either validator.ValidationErrors from boundary validation or
// a storage.ErrInvalidUser from the backend.
type ClientError struct {
	Err error
}

func (e *ClientError) Error() string { return e.Err.Error() }
func (e *ClientError) Unwrap() error { return e.Err }

// NotFoundError reports that no user matches ID (HTTP 404).
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string { return fmt.Sprintf("user %s not found", e.ID) }

// StoreError reports a persistence failure (HTTP 500).
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("%s: %s", e.Op, e.Err) }
func (e *StoreError) Unwrap() error { return e.Err }
