// Package storagetest holds the behavioural suite every storage.Storage
// implementation must pass. Backend packages call Run from their own tests.
package storagetest

import (
	"context"
	"errors"
	"testing"

	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

// Factory returns a fresh, empty store for a single subtest.
type Factory func(t *testing.T) storage.Storage

// MissingID is an id that no backend will ever assign. It is well-formed
// for the ObjectID, UUID and free-form id formats alike.
const MissingID = "0123456789abcdef01234567"

// Run executes the full suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	t.Run("Ping", func(t *testing.T) {
		testPing(t, newStore(t))
	})
	t.Run("CreateAndList", func(t *testing.T) {
		testCreateAndList(t, newStore(t))
	})
	t.Run("ListEmpty", func(t *testing.T) {
		testListEmpty(t, newStore(t))
	})
	t.Run("CreateRejectsMissingFields", func(t *testing.T) {
		testCreateRejectsMissingFields(t, newStore(t))
	})
	t.Run("GetByID", func(t *testing.T) {
		testGetByID(t, newStore(t))
	})
	t.Run("Update", func(t *testing.T) {
		testUpdate(t, newStore(t))
	})
	t.Run("UpdateMissing", func(t *testing.T) {
		testUpdateMissing(t, newStore(t))
	})
	t.Run("Delete", func(t *testing.T) {
		testDelete(t, newStore(t))
	})
	t.Run("DeleteMissing", func(t *testing.T) {
		testDeleteMissing(t, newStore(t))
	})
	t.Run("MalformedID", func(t *testing.T) {
		testMalformedID(t, newStore(t))
	})
}

var (
	ana   = types.UserInput{Name: "Ana", Age: 30, Gender: "Female"}
	bruno = types.UserInput{Name: "Bruno", Age: 41, Gender: "Male"}
)

func testPing(t *testing.T, s storage.Storage) {
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("Ping() error = %v", err)
	}
}

func testCreateAndList(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if first.ID == "" {
		t.Fatal("CreateUser() returned an empty id")
	}
	if first.Name != ana.Name || first.Age != ana.Age || first.Gender != ana.Gender {
		t.Errorf("CreateUser() = %+v, want fields of %+v", first, ana)
	}

	second, err := s.CreateUser(ctx, bruno)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	if second.ID == first.ID {
		t.Fatalf("CreateUser() reused id %q", first.ID)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 2 {
		t.Fatalf("ListUsers() returned %d users, want 2", len(users))
	}
	if users[0] != first || users[1] != second {
		t.Errorf("ListUsers() = %+v, want [%+v %+v]", users, first, second)
	}
}

func testListEmpty(t *testing.T, s storage.Storage) {
	users, err := s.ListUsers(context.Background())
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if users == nil {
		t.Fatal("ListUsers() returned nil, want empty slice")
	}
	if len(users) != 0 {
		t.Errorf("ListUsers() returned %d users, want 0", len(users))
	}
}

func testCreateRejectsMissingFields(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	tests := []struct {
		name string
		in   types.UserInput
	}{
		{"missing name", types.UserInput{Age: 30, Gender: "Female"}},
		{"missing age", types.UserInput{Name: "Ana", Gender: "Female"}},
		{"missing gender", types.UserInput{Name: "Ana", Age: 30}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.CreateUser(ctx, tt.in)
			if !errors.Is(err, storage.ErrInvalidUser) {
				t.Errorf("CreateUser() error = %v, want ErrInvalidUser", err)
			}
		})
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("rejected creates persisted %d users", len(users))
	}
}

func testGetByID(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	got, err := s.GetUserByID(ctx, created.ID)
	if err != nil {
		t.Fatalf("GetUserByID() error = %v", err)
	}
	if got != created {
		t.Errorf("GetUserByID() = %+v, want %+v", got, created)
	}

	if _, err := s.GetUserByID(ctx, MissingID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByID(missing) error = %v, want ErrNotFound", err)
	}
}

func testUpdate(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	updated, err := s.UpdateUserByID(ctx, created.ID, bruno)
	if err != nil {
		t.Fatalf("UpdateUserByID() error = %v", err)
	}
	want := types.User{ID: created.ID, Name: bruno.Name, Age: bruno.Age, Gender: bruno.Gender}
	if updated != want {
		t.Errorf("UpdateUserByID() = %+v, want %+v", updated, want)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0] != want {
		t.Errorf("ListUsers() after update = %+v, want [%+v]", users, want)
	}
}

func testUpdateMissing(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if _, err := s.UpdateUserByID(ctx, MissingID, bruno); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("UpdateUserByID(missing) error = %v, want ErrNotFound", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0] != created {
		t.Errorf("collection changed after failed update: %+v", users)
	}
}

func testDelete(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	first, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}
	second, err := s.CreateUser(ctx, bruno)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := s.DeleteUserByID(ctx, first.ID); err != nil {
		t.Fatalf("DeleteUserByID() error = %v", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0] != second {
		t.Errorf("ListUsers() after delete = %+v, want [%+v]", users, second)
	}

	if _, err := s.GetUserByID(ctx, first.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("GetUserByID(deleted) error = %v, want ErrNotFound", err)
	}
}

func testDeleteMissing(t *testing.T, s storage.Storage) {
	ctx := context.Background()

	created, err := s.CreateUser(ctx, ana)
	if err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	if err := s.DeleteUserByID(ctx, MissingID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("DeleteUserByID(missing) error = %v, want ErrNotFound", err)
	}

	users, err := s.ListUsers(ctx)
	if err != nil {
		t.Fatalf("ListUsers() error = %v", err)
	}
	if len(users) != 1 || users[0] != created {
		t.Errorf("collection changed after failed delete: %+v", users)
	}
}

func testMalformedID(t *testing.T, s storage.Storage) {
	ctx := context.Background()
	const bad = "not-an-id"

	if _, err := s.UpdateUserByID(ctx, bad, ana); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("UpdateUserByID(%q) error = %v, want ErrNotFound", bad, err)
	}
	if err := s.DeleteUserByID(ctx, bad); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("DeleteUserByID(%q) error = %v, want ErrNotFound", bad, err)
	}
}
