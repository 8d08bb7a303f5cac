// Package memory provides an in-memory storage.Storage implementation.
// It is intended for tests and local development.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

// Store keeps users in a map plus a slice of ids in insertion order,
// which is the order ListUsers returns.
type Store struct {
	mu sync.RWMutex

	users map[string]types.User
	order []string

	closed bool
}

var _ storage.Storage = (*Store)(nil)

// New creates an empty in-memory store.
func New() *Store {
	return &Store{users: make(map[string]types.User)}
}

// ListUsers returns a copy of all users.
func (s *Store) ListUsers(ctx context.Context) ([]types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, errClosed
	}

	users := make([]types.User, 0, len(s.order))
	for _, id := range s.order {
		users = append(users, s.users[id])
	}
	return users, nil
}

// CreateUser stores a new user under a fresh UUID.
func (s *Store) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	if err := checkRequired(in); err != nil {
		return types.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.User{}, errClosed
	}

	u := in.Apply(types.User{ID: uuid.NewString()})
	s.users[u.ID] = u
	s.order = append(s.order, u.ID)
	return u, nil
}

// GetUserByID returns the user with the given id.
func (s *Store) GetUserByID(ctx context.Context, id string) (types.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return types.User{}, errClosed
	}

	u, ok := s.users[id]
	if !ok {
		return types.User{}, storage.ErrNotFound
	}
	return u, nil
}

// UpdateUserByID replaces the business fields of an existing user.
func (s *Store) UpdateUserByID(ctx context.Context, id string, in types.UserInput) (types.User, error) {
	if err := checkRequired(in); err != nil {
		return types.User{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return types.User{}, errClosed
	}

	u, ok := s.users[id]
	if !ok {
		return types.User{}, storage.ErrNotFound
	}
	u = in.Apply(u)
	s.users[id] = u
	return u, nil
}

// DeleteUserByID removes a user.
func (s *Store) DeleteUserByID(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errClosed
	}

	if _, ok := s.users[id]; !ok {
		return storage.ErrNotFound
	}
	delete(s.users, id)
	for i, v := range s.order {
		if v == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return nil
}

// Ping reports an error once the store has been closed.
func (s *Store) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return errClosed
	}
	return nil
}

// Close marks the store as closed. Later calls fail.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var errClosed = errors.New("memory store is closed")

// checkRequired mirrors the presence rules the document store enforces
// with its collection validator.
func checkRequired(in types.UserInput) error {
	switch {
	case in.Name == "":
		return fmt.Errorf("name is required: %w", storage.ErrInvalidUser)
	case in.Age == 0:
		return fmt.Errorf("age is required: %w", storage.ErrInvalidUser)
	case in.Gender == "":
		return fmt.Errorf("gender is required: %w", storage.ErrInvalidUser)
	}
	return nil
}
