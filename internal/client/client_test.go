package client

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/http/router"
	"github.com/aanand-mishra/users-api/internal/service"
	"github.com/aanand-mishra/users-api/internal/storage/memory"
	"github.com/aanand-mishra/users-api/internal/types"
)

func newAPI(t *testing.T) *Client {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	srv := httptest.NewServer(router.New(service.New(memory.New(), log), config.HTTPServer{AllowedOrigins: []string{"*"}}, log))
	t.Cleanup(srv.Close)
	// A trailing slash must not produce "//" paths.
	return New(srv.URL+"/", srv.Client())
}

func TestClient_CRUD(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	users, err := c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if users == nil || len(users) != 0 {
		t.Fatalf("List() = %#v, want empty slice", users)
	}

	created, err := c.Create(ctx, types.UserInput{Name: "Ana", Age: 30, Gender: "Female"})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	updated, err := c.Update(ctx, created.ID, types.UserInput{Name: "Ana", Age: 31, Gender: "Female"})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.ID != created.ID || updated.Age != 31 {
		t.Errorf("Update() = %+v", updated)
	}

	if err := c.Delete(ctx, created.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	users, err = c.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(users) != 0 {
		t.Errorf("List() after delete = %+v", users)
	}
}

func TestClient_Errors(t *testing.T) {
	c := newAPI(t)
	ctx := context.Background()

	_, err := c.Create(ctx, types.UserInput{Name: "Ana"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusBadRequest {
		t.Fatalf("Create() error = %v, want 400 APIError", err)
	}
	if apiErr.Message == "" {
		t.Error("APIError.Message is empty")
	}

	if err := c.Delete(ctx, "missing"); !IsNotFound(err) {
		t.Errorf("Delete() error = %v, want 404", err)
	}
	if _, err := c.Update(ctx, "missing", types.UserInput{Name: "A", Age: 1, Gender: "Male"}); !IsNotFound(err) {
		t.Errorf("Update() error = %v, want 404", err)
	}
}

func TestClient_PlainTextError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream unavailable", http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := New(srv.URL, nil).List(context.Background())
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("List() error = %v, want *APIError", err)
	}
	if apiErr.StatusCode != http.StatusBadGateway || apiErr.Message != "upstream unavailable" {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClient_Unreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	if _, err := New(url, nil).List(context.Background()); err == nil {
		t.Fatal("List() against a closed server should fail")
	}
}
