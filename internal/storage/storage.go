// Package storage defines the Storage interface, a contract that any
// database backend must satisfy to work with this application.
//
// The service layer depends only on this interface. The concrete backend
// (MongoDB, sqlite or the in-memory store) is picked in main from config
// and injected, so tests can pass the memory store or a stub instead.
package storage

import (
	"context"
	"errors"

	"github.com/aanand-mishra/users-api/internal/types"
)

var (
	// ErrNotFound is returned when no user matches the given id. Backends
	// also return it for ids that are malformed for their id format, since
	// such an id cannot match any record.
	ErrNotFound = errors.New("user not found")

	// ErrInvalidUser is returned when the backend itself refuses a write
	// because a required field is missing or has the wrong type.
	ErrInvalidUser = errors.New("user document failed validation")
)

// Storage is the database contract.
// All methods must be safe for concurrent use.
type Storage interface {
	// ListUsers returns every user in the store's natural order.
	// Returns an empty slice (not nil) if there are no users.
	ListUsers(ctx context.Context) ([]types.User, error)

	// CreateUser persists a new user and returns it with its assigned id.
	CreateUser(ctx context.Context, in types.UserInput) (types.User, error)

	// GetUserByID fetches a single user. Returns ErrNotFound if missing.
	GetUserByID(ctx context.Context, id string) (types.User, error)

	// UpdateUserByID replaces name, age and gender of an existing user and
	// returns the stored result. Returns ErrNotFound if missing.
	UpdateUserByID(ctx context.Context, id string, in types.UserInput) (types.User, error)

	// DeleteUserByID removes a user permanently. Returns ErrNotFound if missing.
	DeleteUserByID(ctx context.Context, id string) error

	// Ping verifies the connection is alive.
	Ping(ctx context.Context) error

	// Close releases the underlying connection.
	Close(ctx context.Context) error
}
