// Package user contains all HTTP handlers related to the User resource.
//
// HANDLER PATTERN USED HERE: THE CLOSURE / FACTORY PATTERN:
// ────────────────────────────────────────────────────────────
// Each exported function accepts its dependency (the Service) once at
// startup and returns the http.HandlerFunc the router calls on every
// request:
//
//	mux.HandleFunc("POST /{$}", user.New(svc))
package user

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/aanand-mishra/users-api/internal/service"
	"github.com/aanand-mishra/users-api/internal/types"
	"github.com/aanand-mishra/users-api/internal/utils/response"
)

// DeletedMessage is the confirmation returned by a successful delete.
const DeletedMessage = "User deleted successfully"

// maxBodyBytes caps request bodies; a user record is a few dozen bytes.
const maxBodyBytes = 1 << 20

// Service is what the handlers need from the service layer.
// *service.Users satisfies it.
type Service interface {
	List(ctx context.Context) ([]types.User, error)
	Create(ctx context.Context, in types.UserInput) (types.User, error)
	Get(ctx context.Context, id string) (types.User, error)
	Update(ctx context.Context, id string, in types.UserInput) (types.User, error)
	Delete(ctx context.Context, id string) error
}

// ─────────────────────────────────────────────────────────────────────────────
// GetList handles GET /
// Returns a JSON array of all users, [] (not null) when there are none.
//
// Error responses:
//
//	500 Internal:     store error
//
// ─────────────────────────────────────────────────────────────────────────────
func GetList(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("getting all users")

		users, err := svc.List(r.Context())
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, users)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// New handles POST /
// Creates a new user from the JSON request body.
//
// Request body (JSON):
//
//	{ "name": "Ana", "age": 30, "gender": "Female" }
//
// Success response (201 Created), the stored user:
//
//	{ "id": "66f1c2...", "name": "Ana", "age": 30, "gender": "Female" }
//
// Error responses:
//
//	400 Bad Request:  empty body, malformed JSON, or failed validation
//	500 Internal:     store error
//
// ─────────────────────────────────────────────────────────────────────────────
func New(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		slog.Info("creating a user")

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		created, err := svc.Create(r.Context(), in)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("user created", slog.String("id", created.ID))
		response.WriteJSON(w, http.StatusCreated, created)
	}
}

// GetByID handles GET /{id}.
func GetByID(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("getting a user", slog.String("id", id))

		u, err := svc.Get(r.Context(), id)
		if err != nil {
			writeError(w, err)
			return
		}

		response.WriteJSON(w, http.StatusOK, u)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Update handles PUT /{id}
// Replaces name, age and gender of an existing user. All three are required,
// as for creation.
//
// Error responses:
//
//	400 Bad Request:  empty body, malformed JSON, or failed validation
//	404 Not Found:    no user with that id
//	500 Internal:     store error
//
// ─────────────────────────────────────────────────────────────────────────────
func Update(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("updating a user", slog.String("id", id))

		in, ok := decodeInput(w, r)
		if !ok {
			return
		}

		updated, err := svc.Update(r.Context(), id, in)
		if err != nil {
			writeError(w, err)
			return
		}

		slog.Info("user updated", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, updated)
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Delete handles DELETE /{id}
//
// Success response (200 OK):
//
//	{ "status": "ok", "message": "User deleted successfully" }
//
// Error responses:
//
//	404 Not Found:    no user with that id
//	500 Internal:     store error
//
// ─────────────────────────────────────────────────────────────────────────────
func Delete(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := r.PathValue("id")
		slog.Info("deleting a user", slog.String("id", id))

		if err := svc.Delete(r.Context(), id); err != nil {
			writeError(w, err)
			return
		}

		slog.Info("user deleted", slog.String("id", id))
		response.WriteJSON(w, http.StatusOK, response.Message(DeletedMessage))
	}
}

// decodeInput reads the JSON body into a UserInput. On failure it writes
// the 400 response itself and returns ok == false.
func decodeInput(w http.ResponseWriter, r *http.Request) (in types.UserInput, ok bool) {
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&in)

	if errors.Is(err, io.EOF) {
		// io.EOF means the body was completely empty; nothing to decode.
		response.WriteJSON(w, http.StatusBadRequest,
			response.GeneralError(errors.New("request body is empty")))
		return in, false
	}
	if err != nil {
		// Malformed JSON, wrong types ("age": "thirty"), oversized body.
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
		return in, false
	}
	return in, true
}

// writeError maps the service error kinds onto HTTP status codes.
func writeError(w http.ResponseWriter, err error) {
	var (
		clientErr   *service.ClientError
		notFoundErr *service.NotFoundError
		validateErr validator.ValidationErrors
	)

	switch {
	case errors.As(err, &validateErr):
		response.WriteJSON(w, http.StatusBadRequest, response.ValidationError(validateErr))
	case errors.As(err, &clientErr):
		response.WriteJSON(w, http.StatusBadRequest, response.GeneralError(err))
	case errors.As(err, &notFoundErr):
		response.WriteJSON(w, http.StatusNotFound,
			response.GeneralError(errors.New("user not found")))
	default:
		slog.Error("request failed", slog.String("error", err.Error()))
		response.WriteJSON(w, http.StatusInternalServerError, response.GeneralError(err))
	}
}
