// Package router assembles the API's http.Handler: routes plus the
// middleware stack every request passes through.
package router

import (
	"context"
	"log/slog"
	"net/http"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/http/handlers/user"
	"github.com/aanand-mishra/users-api/internal/http/middleware"
	"github.com/aanand-mishra/users-api/internal/utils/response"
)

// Service is the full API surface the router wires up.
type Service interface {
	user.Service
	Ping(ctx context.Context) error
}

// New builds the API handler.
//
// Route table:
//
//	GET    /         → list all users
//	POST   /         → create a user
//	GET    /health   → store liveness
//	GET    /{id}     → get one user
//	PUT    /{id}     → replace a user's fields
//	DELETE /{id}     → delete a user
//
// "/{$}" matches the root exactly; without it "GET /" would swallow every
// path. "/health" is more specific than "/{id}", so it wins.
func New(svc Service, cfg config.HTTPServer, log *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", user.GetList(svc))
	mux.HandleFunc("POST /{$}", user.New(svc))
	mux.HandleFunc("GET /health", health(svc))
	mux.HandleFunc("GET /{id}", user.GetByID(svc))
	mux.HandleFunc("PUT /{id}", user.Update(svc))
	mux.HandleFunc("DELETE /{id}", user.Delete(svc))

	// The UI is served from another origin, so browsers need CORS.
	corsHandler := cors.Handler(cors.Options{
		AllowedOrigins: cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		MaxAge:         300,
	})

	// Outermost first: request id → access log → panic recovery → CORS → mux.
	var h http.Handler = mux
	h = corsHandler(h)
	h = chimw.Recoverer(h)
	h = middleware.Logger(log)(h)
	h = chimw.RequestID(h)
	return h
}

func health(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := svc.Ping(r.Context()); err != nil {
			response.WriteJSON(w, http.StatusServiceUnavailable, response.GeneralError(err))
			return
		}
		response.WriteJSON(w, http.StatusOK, response.Response{Status: response.StatusOK})
	}
}
