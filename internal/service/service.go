// Package service holds the user operations exposed by the API. It
// validates input at the boundary, delegates persistence to an injected
// storage.Storage, and classifies every failure as a ClientError,
// NotFoundError or StoreError.
package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

// Users implements list/create/get/update/delete over one collection.
type Users struct {
	store    storage.Storage
	validate *validator.Validate
	log      *slog.Logger
}

// New returns a Users service backed by store.
func New(store storage.Storage, log *slog.Logger) *Users {
	return &Users{
		store:    store,
		validate: NewValidator(),
		log:      log,
	}
}

// List returns the whole collection.
func (s *Users) List(ctx context.Context) ([]types.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, s.storeError("list users", err)
	}
	return users, nil
}

// Create validates in and persists a new user.
func (s *Users) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return types.User{}, &ClientError{Err: err}
	}

	u, err := s.store.CreateUser(ctx, in)
	if err != nil {
		if errors.Is(err, storage.ErrInvalidUser) {
			return types.User{}, &ClientError{Err: err}
		}
		return types.User{}, s.storeError("create user", err)
	}

	s.log.Debug("user created", slog.String("id", u.ID))
	return u, nil
}

// Get returns a single user.
func (s *Users) Get(ctx context.Context, id string) (types.User, error) {
	u, err := s.store.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return types.User{}, &NotFoundError{ID: id}
		}
		return types.User{}, s.storeError("get user", err)
	}
	return u, nil
}

// Update replaces name, age and gender of user id.
func (s *Users) Update(ctx context.Context, id string, in types.UserInput) (types.User, error) {
	if err := s.validate.Struct(in); err != nil {
		return types.User{}, &ClientError{Err: err}
	}

	u, err := s.store.UpdateUserByID(ctx, id, in)
	if err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			return types.User{}, &NotFoundError{ID: id}
		case errors.Is(err, storage.ErrInvalidUser):
			return types.User{}, &ClientError{Err: err}
		}
		return types.User{}, s.storeError("update user", err)
	}

	s.log.Debug("user updated", slog.String("id", id))
	return u, nil
}

// Delete removes user id.
func (s *Users) Delete(ctx context.Context, id string) error {
	if err := s.store.DeleteUserByID(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return &NotFoundError{ID: id}
		}
		return s.storeError("delete user", err)
	}

	s.log.Debug("user deleted", slog.String("id", id))
	return nil
}

// Ping reports whether the store is reachable.
func (s *Users) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return s.storeError("ping store", err)
	}
	return nil
}

func (s *Users) storeError(op string, err error) error {
	s.log.Error("store failure", slog.String("op", op), slog.String("error", err.Error()))
	return &StoreError{Op: op, Err: err}
}
