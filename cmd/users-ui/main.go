// main is the entry point of the Users UI, a server-rendered htmx page
// that manages users through the Users API.
//
// RUNNING THE UI:
//
//	go run ./cmd/users-ui --config=config/local.yaml
//
// The API must be reachable at ui.api_base_url (API_ENDPOINT).
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/aanand-mishra/users-api/internal/client"
	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/logger"
	"github.com/aanand-mishra/users-api/internal/ui"
)

func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	log.Info("starting users-ui",
		slog.String("env", cfg.Env),
		slog.String("api", cfg.UI.APIBaseURL),
	)

	api := client.New(cfg.UI.APIBaseURL, &http.Client{Timeout: cfg.UI.RequestTimeout})
	model := ui.NewModel(api, api.BaseURL(), log)

	handler, err := ui.NewHandler(model, log)
	if err != nil {
		log.Error("failed to parse templates", slog.String("error", err.Error()))
		os.Exit(1)
	}

	server := &http.Server{
		Addr:         cfg.UI.Addr,
		Handler:      handler.Routes(),
		ReadTimeout:  cfg.HTTPServer.ReadTimeout,
		WriteTimeout: cfg.HTTPServer.WriteTimeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	go func() {
		log.Info("ui started", slog.String("address", cfg.UI.Addr))

		if err := server.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.Error("ui server encountered an error",
				slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGTERM)
	<-done

	log.Info("shutdown signal received, stopping ui...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.HTTPServer.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("failed to shutdown ui gracefully",
			slog.String("error", err.Error()))
		os.Exit(1)
	}

	log.Info("ui stopped gracefully")
}
