package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"runtime"
	"strconv"
	"sync"
	"testing"

	"github.com/aanand-mishra/users-api/internal/types"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeAPI is an in-memory API that records every call.
type fakeAPI struct {
	mu     sync.Mutex
	users  []types.User
	nextID int
	calls  []string

	listErr   error
	createErr error
	updateErr error
	deleteErr error

	// block, when set, is received from inside Create.
	block chan struct{}
}

func (f *fakeAPI) record(call string) {
	f.mu.Lock()
	f.calls = append(f.calls, call)
	f.mu.Unlock()
}

func (f *fakeAPI) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.calls...)
}

func (f *fakeAPI) List(ctx context.Context) ([]types.User, error) {
	f.record("list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]types.User{}, f.users...), nil
}

func (f *fakeAPI) Create(ctx context.Context, in types.UserInput) (types.User, error) {
	f.record("create")
	if f.block != nil {
		<-f.block
	}
	if f.createErr != nil {
		return types.User{}, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	u := in.Apply(types.User{ID: strconv.Itoa(f.nextID)})
	f.users = append(f.users, u)
	return u, nil
}

func (f *fakeAPI) Update(ctx context.Context, id string, in types.UserInput) (types.User, error) {
	f.record("update " + id)
	if f.updateErr != nil {
		return types.User{}, f.updateErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			f.users[i] = in.Apply(u)
			return f.users[i], nil
		}
	}
	return types.User{}, errors.New("not found")
}

func (f *fakeAPI) Delete(ctx context.Context, id string) error {
	f.record("delete " + id)
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, u := range f.users {
		if u.ID == id {
			f.users = append(f.users[:i], f.users[i+1:]...)
			return nil
		}
	}
	return errors.New("not found")
}

func equalCalls(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestModel_LoadFailureBanner(t *testing.T) {
	api := &fakeAPI{listErr: errors.New("connection refused")}
	m := NewModel(api, "http://localhost:3001", discard)

	if err := m.Load(context.Background()); err == nil {
		t.Fatal("Load() should fail")
	}

	s := m.Snapshot()
	want := "Failed to load users. Make sure your API server is running at http://localhost:3001"
	if s.Error != want {
		t.Errorf("Error = %q, want %q", s.Error, want)
	}
	if s.Loading {
		t.Error("Loading still set after Load returned")
	}
	if s.Users == nil || len(s.Users) != 0 {
		t.Errorf("Users = %#v, want empty", s.Users)
	}
}

func TestModel_MutationsRefetch(t *testing.T) {
	api := &fakeAPI{}
	m := NewModel(api, "", discard)
	ctx := context.Background()

	if err := m.Create(ctx, Form{Name: "Ana", Age: "30", Gender: "Female"}); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if err := m.Update(ctx, "1", Form{Name: "Ana", Age: "31", Gender: "Female"}); err != nil {
		t.Fatalf("Update() error = %v", err)
	}

	s := m.Snapshot()
	if len(s.Users) != 1 || s.Users[0].Age != 31 {
		t.Fatalf("Users = %+v", s.Users)
	}

	if err := m.Delete(ctx, "1", true); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s := m.Snapshot(); len(s.Users) != 0 {
		t.Fatalf("Users after delete = %+v", s.Users)
	}

	want := []string{"create", "list", "update 1", "list", "delete 1", "list"}
	if got := api.Calls(); !equalCalls(got, want) {
		t.Errorf("calls = %v, want %v", got, want)
	}
}

func TestModel_UnconfirmedDeleteSendsNothing(t *testing.T) {
	api := &fakeAPI{users: []types.User{{ID: "1", Name: "Ana", Age: 30, Gender: "Female"}}}
	m := NewModel(api, "", discard)

	if err := m.Delete(context.Background(), "1", false); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if calls := api.Calls(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestModel_IncompleteFormSendsNothing(t *testing.T) {
	api := &fakeAPI{}
	m := NewModel(api, "", discard)
	ctx := context.Background()

	tests := []struct {
		name string
		form Form
		want error
	}{
		{"missing name", Form{Age: "30", Gender: "Male"}, ErrIncompleteForm},
		{"blank name", Form{Name: "  ", Age: "30", Gender: "Male"}, ErrIncompleteForm},
		{"missing age", Form{Name: "Ana", Gender: "Male"}, ErrIncompleteForm},
		{"missing gender", Form{Name: "Ana", Age: "30"}, ErrIncompleteForm},
		{"age not a number", Form{Name: "Ana", Age: "thirty", Gender: "Male"}, ErrInvalidAge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := m.Create(ctx, tt.form); !errors.Is(err, tt.want) {
				t.Errorf("Create() error = %v, want %v", err, tt.want)
			}
			if err := m.Update(ctx, "1", tt.form); !errors.Is(err, tt.want) {
				t.Errorf("Update() error = %v, want %v", err, tt.want)
			}
		})
	}

	if calls := api.Calls(); len(calls) != 0 {
		t.Errorf("calls = %v, want none", calls)
	}
}

func TestModel_FailureBanners(t *testing.T) {
	boom := errors.New("boom")
	api := &fakeAPI{
		users:     []types.User{{ID: "1", Name: "Ana", Age: 30, Gender: "Female"}},
		createErr: boom,
		updateErr: boom,
		deleteErr: boom,
	}
	m := NewModel(api, "", discard)
	ctx := context.Background()
	valid := Form{Name: "Ana", Age: "30", Gender: "Female"}

	tests := []struct {
		name string
		run  func() error
		want string
	}{
		{"create", func() error { return m.Create(ctx, valid) }, MsgCreateFailed},
		{"update", func() error { return m.Update(ctx, "1", valid) }, MsgUpdateFailed},
		{"delete", func() error { return m.Delete(ctx, "1", true) }, MsgDeleteFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); !errors.Is(err, boom) {
				t.Fatalf("error = %v, want %v", err, boom)
			}
			s := m.Snapshot()
			if s.Error != tt.want {
				t.Errorf("Error = %q, want %q", s.Error, tt.want)
			}
			if s.Submitting {
				t.Error("Submitting still set after failure")
			}
		})
	}

	// Failed mutations do not re-fetch.
	for _, c := range api.Calls() {
		if c == "list" {
			t.Errorf("unexpected list call in %v", api.Calls())
		}
	}
}

func TestModel_SuccessClearsBanner(t *testing.T) {
	api := &fakeAPI{createErr: errors.New("boom")}
	m := NewModel(api, "", discard)
	ctx := context.Background()
	valid := Form{Name: "Ana", Age: "30", Gender: "Female"}

	_ = m.Create(ctx, valid)
	if m.Snapshot().Error == "" {
		t.Fatal("banner not set")
	}

	api.createErr = nil
	if err := m.Create(ctx, valid); err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if s := m.Snapshot(); s.Error != "" {
		t.Errorf("Error = %q, want cleared", s.Error)
	}
}

func TestModel_OneMutationAtATime(t *testing.T) {
	api := &fakeAPI{block: make(chan struct{})}
	m := NewModel(api, "", discard)
	ctx := context.Background()
	valid := Form{Name: "Ana", Age: "30", Gender: "Female"}

	done := make(chan error, 1)
	go func() { done <- m.Create(ctx, valid) }()

	// Wait until the first Create is inside the API call.
	for len(api.Calls()) == 0 {
		runtime.Gosched()
	}
	if !m.Snapshot().Submitting {
		t.Error("Submitting not set while a create is in flight")
	}

	if err := m.Delete(ctx, "1", true); !errors.Is(err, ErrBusy) {
		t.Errorf("Delete() during create error = %v, want ErrBusy", err)
	}

	close(api.block)
	if err := <-done; err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if m.Snapshot().Submitting {
		t.Error("Submitting still set after create")
	}
}
