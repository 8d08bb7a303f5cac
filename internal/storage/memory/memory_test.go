package memory

import (
	"context"
	"testing"

	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/storage/storagetest"
	"github.com/aanand-mishra/users-api/internal/types"
)

func TestStore(t *testing.T) {
	storagetest.Run(t, func(t *testing.T) storage.Storage {
		return New()
	})
}

func TestStore_Closed(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Close(ctx); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := s.Ping(ctx); err == nil {
		t.Error("Ping() after Close() should fail")
	}
	if _, err := s.ListUsers(ctx); err == nil {
		t.Error("ListUsers() after Close() should fail")
	}
	if _, err := s.CreateUser(ctx, types.UserInput{Name: "Ana", Age: 30, Gender: "Female"}); err == nil {
		t.Error("CreateUser() after Close() should fail")
	}
}

func TestStore_ListReturnsCopy(t *testing.T) {
	s := New()
	ctx := context.Background()

	if _, err := s.CreateUser(ctx, types.UserInput{Name: "Ana", Age: 30, Gender: "Female"}); err != nil {
		t.Fatalf("CreateUser() error = %v", err)
	}

	users, _ := s.ListUsers(ctx)
	users[0].Name = "changed"

	again, _ := s.ListUsers(ctx)
	if again[0].Name != "Ana" {
		t.Errorf("mutating the returned slice changed the store: %+v", again[0])
	}
}
