// Package config handles loading and parsing application configuration.
// It supports three sources (in priority order):
//  1. An environment variable:  CONFIG_PATH=/path/to/config.yaml
//  2. A command-line flag:      --config=/path/to/config.yaml
//  3. Environment variables only, when neither of the above is set
//
// A .env file in the working directory, if present, is loaded into the
// process environment first, so its values take part in all three.
package config

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Storage drivers accepted in Storage.Driver.
const (
	DriverMongo  = "mongo"
	DriverSQLite = "sqlite"
	DriverMemory = "memory"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden
// by the corresponding environment variable (env:"...").
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "dev", "staging", "prod"
	Env string `yaml:"env" env:"ENV" env-default:"dev"`

	Storage    Storage    `yaml:"storage"`
	HTTPServer HTTPServer `yaml:"http_server"`
	UI         UI         `yaml:"ui"`
}

// Storage selects and configures the persistence backend.
type Storage struct {
	// Driver is one of DriverMongo, DriverSQLite, DriverMemory.
	Driver string `yaml:"driver" env:"STORAGE_DRIVER" env-default:"mongo"`

	// URI is the MongoDB connection string.
	URI        string `yaml:"uri"        env:"MONGO_URI"        env-default:"mongodb://localhost:27017"`
	Database   string `yaml:"database"   env:"MONGO_DATABASE"   env-default:"users"`
	Collection string `yaml:"collection" env:"MONGO_COLLECTION" env-default:"users"`

	// Path is the filesystem path to the SQLite .db file.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"storage/storage.db"`

	// Timeout bounds connecting to the store and each single query.
	Timeout time.Duration `yaml:"timeout" env:"STORAGE_TIMEOUT" env-default:"5s"`
}

// HTTPServer holds settings specific to the API's HTTP server.
type HTTPServer struct {
	// Addr is the TCP address the server listens on, e.g. "localhost:3001".
	Addr string `yaml:"address" env:"HTTP_SERVER_ADDR" env-default:":3001"`

	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_SERVER_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_SERVER_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SERVER_SHUTDOWN_TIMEOUT" env-default:"5s"`

	// AllowedOrigins is the CORS origin list. The UI usually runs on a
	// different port, so the default allows any origin.
	AllowedOrigins []string `yaml:"cors_allowed_origins" env:"HTTP_SERVER_CORS_ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
}

// UI configures the users-ui binary.
type UI struct {
	Addr string `yaml:"address" env:"UI_ADDR" env-default:":3000"`

	// APIBaseURL is where the UI finds the API service's collection root.
	APIBaseURL string `yaml:"api_base_url" env:"API_ENDPOINT" env-default:"http://localhost:3001"`

	// RequestTimeout bounds each call the UI makes to the API.
	RequestTimeout time.Duration `yaml:"request_timeout" env:"UI_REQUEST_TIMEOUT" env-default:"10s"`
}

// MustLoad reads, validates, and returns the application config.
// It terminates the process if the config cannot be loaded.
func MustLoad() *Config {
	// ── Source 0: .env file ───────────────────────────────────────────
	// Missing .env is normal outside local development.
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("cannot read .env file: %s", err)
	}

	// ── Source 1: environment variable ───────────────────────────────
	configPath := os.Getenv("CONFIG_PATH")

	// ── Source 2: command-line flag ───────────────────────────────────
	if configPath == "" {
		flags := flag.String("config", "", "Path to the configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatalf("cannot read config: %s", err)
	}
	return cfg
}

// Load reads the YAML file at path (if path is non-empty) and applies
// environment overrides and defaults. With an empty path only the
// environment is consulted.
func Load(path string) (*Config, error) {
	var cfg Config

	if path == "" {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("read env: %w", err)
		}
	} else {
		// A clear message beats a cryptic "open: no such file" later.
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	switch c.Storage.Driver {
	case DriverMongo:
		if c.Storage.URI == "" {
			return errors.New("storage.uri is required for the mongo driver")
		}
	case DriverSQLite:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the sqlite driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	return nil
}
