package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
env: "prod"
storage:
  driver: "sqlite"
  path: "/tmp/users.db"
http_server:
  address: "localhost:8082"
  cors_allowed_origins: ["http://localhost:3000", "http://example.com"]
ui:
  api_base_url: "http://api.local"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Env != "prod" {
		t.Errorf("Env = %q, want prod", cfg.Env)
	}
	if cfg.Storage.Driver != DriverSQLite || cfg.Storage.Path != "/tmp/users.db" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.HTTPServer.Addr != "localhost:8082" {
		t.Errorf("HTTPServer.Addr = %q", cfg.HTTPServer.Addr)
	}
	if len(cfg.HTTPServer.AllowedOrigins) != 2 {
		t.Errorf("AllowedOrigins = %v, want 2 entries", cfg.HTTPServer.AllowedOrigins)
	}
	if cfg.UI.APIBaseURL != "http://api.local" {
		t.Errorf("UI.APIBaseURL = %q", cfg.UI.APIBaseURL)
	}
	// Unset keys fall back to env-default.
	if cfg.HTTPServer.ReadTimeout != 10*time.Second {
		t.Errorf("ReadTimeout = %v, want 10s", cfg.HTTPServer.ReadTimeout)
	}
	if cfg.UI.Addr != ":3000" {
		t.Errorf("UI.Addr = %q, want :3000", cfg.UI.Addr)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
storage:
  driver: "mongo"
  uri: "mongodb://file:27017"
`)
	t.Setenv("MONGO_URI", "mongodb://env:27017")
	t.Setenv("HTTP_SERVER_ADDR", ":9999")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.URI != "mongodb://env:27017" {
		t.Errorf("Storage.URI = %q, want env value", cfg.Storage.URI)
	}
	if cfg.HTTPServer.Addr != ":9999" {
		t.Errorf("HTTPServer.Addr = %q, want :9999", cfg.HTTPServer.Addr)
	}
}

func TestLoad_EnvOnly(t *testing.T) {
	t.Setenv("STORAGE_DRIVER", DriverMemory)
	t.Setenv("API_ENDPOINT", "http://localhost:4000")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Storage.Driver != DriverMemory {
		t.Errorf("Storage.Driver = %q, want memory", cfg.Storage.Driver)
	}
	if cfg.UI.APIBaseURL != "http://localhost:4000" {
		t.Errorf("UI.APIBaseURL = %q", cfg.UI.APIBaseURL)
	}
	if cfg.Storage.Timeout != 5*time.Second {
		t.Errorf("Storage.Timeout = %v, want 5s", cfg.Storage.Timeout)
	}
}

func TestLoad_Errors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := Load(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
			t.Fatal("Load() should fail for a missing file")
		}
	})

	t.Run("unknown driver", func(t *testing.T) {
		path := writeConfig(t, "storage:\n  driver: \"cassandra\"\n")
		if _, err := Load(path); err == nil {
			t.Fatal("Load() should reject an unknown driver")
		}
	})
}
