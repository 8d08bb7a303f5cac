// Package ui is the user-management front end: a Model holding the last
// fetched collection plus banner state, and a Handler rendering it as a
// single htmx-driven page. Every mutation goes through the API and is
// followed by a full re-fetch of the collection.
package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/aanand-mishra/users-api/internal/types"
)

// Banner messages, one per operation category.
const (
	MsgCreateFailed = "Failed to create user"
	MsgUpdateFailed = "Failed to update user"
	MsgDeleteFailed = "Failed to delete user"
	msgLoadFailed   = "Failed to load users. Make sure your API server is running at %s"
)

// ErrBusy is returned when a mutation is attempted while another one is
// still in flight.
var ErrBusy = errors.New("another change is still being saved")

// API is the part of the users API client the UI needs.
type API interface {
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, in types.UserInput) (types.User, error)
	Update(ctx context.Context, id string, in types.UserInput) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// State is a point-in-time copy of the model.
type State struct {
	Users      []types.User
	Loading    bool
	Error      string
	Submitting bool
}

// Model owns the UI state. It is safe for concurrent use; at most one
// mutation runs at a time.
type Model struct {
	api        API
	loadFailed string
	log        *slog.Logger

	mu         sync.Mutex
	users      []types.User
	loading    bool
	errMsg     string
	submitting bool
}

// NewModel returns a model that talks to api. apiURL only appears in the
// load-failure banner.
func NewModel(api API, apiURL string, log *slog.Logger) *Model {
	return &Model{
		api:        api,
		loadFailed: fmt.Sprintf(msgLoadFailed, apiURL),
		log:        log,
		users:      []types.User{},
	}
}

// Snapshot returns a copy of the current state.
func (m *Model) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()

	users := make([]types.User, len(m.users))
	copy(users, m.users)
	return State{
		Users:      users,
		Loading:    m.loading,
		Error:      m.errMsg,
		Submitting: m.submitting,
	}
}

// Find returns the cached user with the given id.
func (m *Model) Find(id string) (types.User, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, u := range m.users {
		if u.ID == id {
			return u, true
		}
	}
	return types.User{}, false
}

// Load replaces the cached collection with a fresh copy from the API.
// On failure the previous collection is kept and the load banner is set.
func (m *Model) Load(ctx context.Context) error {
	m.mu.Lock()
	m.loading = true
	m.errMsg = ""
	m.mu.Unlock()

	users, err := m.api.List(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.loading = false
	if err != nil {
		m.errMsg = m.loadFailed
		m.log.Error("error loading users", slog.String("error", err.Error()))
		return err
	}
	m.users = users
	return nil
}

// Create submits a new user, then re-fetches the collection. An
// incomplete form is rejected before any request is made.
func (m *Model) Create(ctx context.Context, f Form) error {
	in, err := f.Input()
	if err != nil {
		return err
	}

	return m.mutate(ctx, "creating", MsgCreateFailed, func() error {
		_, err := m.api.Create(ctx, in)
		return err
	})
}

// Update replaces user id's fields, then re-fetches the collection.
func (m *Model) Update(ctx context.Context, id string, f Form) error {
	in, err := f.Input()
	if err != nil {
		return err
	}

	return m.mutate(ctx, "updating", MsgUpdateFailed, func() error {
		_, err := m.api.Update(ctx, id, in)
		return err
	})
}

// Delete removes user id and re-fetches the collection. Nothing is sent
// unless the user confirmed.
func (m *Model) Delete(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return nil
	}

	return m.mutate(ctx, "deleting", MsgDeleteFailed, func() error {
		return m.api.Delete(ctx, id)
	})
}

// mutate runs call as the single in-flight mutation. On success the
// collection is re-fetched; a failed re-fetch sets its own banner but
// does not turn the mutation into a failure.
func (m *Model) mutate(ctx context.Context, verb, banner string, call func() error) error {
	m.mu.Lock()
	if m.submitting {
		m.mu.Unlock()
		return ErrBusy
	}
	m.submitting = true
	m.errMsg = ""
	m.mu.Unlock()

	defer func() {
		m.mu.Lock()
		m.submitting = false
		m.mu.Unlock()
	}()

	if err := call(); err != nil {
		m.mu.Lock()
		m.errMsg = banner
		m.mu.Unlock()
		m.log.Error("error "+verb+" user", slog.String("error", err.Error()))
		return err
	}

	_ = m.Load(ctx)
	return nil
}
