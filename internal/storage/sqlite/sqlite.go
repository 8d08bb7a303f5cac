// Package sqlite provides a SQLite-backed implementation of the
// storage.Storage interface using Go's standard database/sql package.
//
// SQLite stores everything in a single file on disk, with no separate
// server process, which makes it the zero-setup alternative to MongoDB
// for local runs. Each user is one row; the CHECK constraints play the
// role of the document store's collection validator.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/aanand-mishra/users-api/internal/config"
	"github.com/aanand-mishra/users-api/internal/storage"
	"github.com/aanand-mishra/users-api/internal/types"
)

// SQLite is the concrete implementation of storage.Storage.
// It holds a *sql.DB which is a connection pool managed by database/sql.
// A single *sql.DB is safe for concurrent use by multiple goroutines.
type SQLite struct {
	Db *sql.DB
}

var _ storage.Storage = (*SQLite)(nil)

// New opens the SQLite database at cfg.Storage.Path, creating the parent
// directory if needed, and prepares the users table.
func New(cfg *config.Config) (*SQLite, error) {
	if dir := filepath.Dir(cfg.Storage.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("sqlite.New: create dir: %w", err)
		}
	}

	// sql.Open does NOT open a real connection yet; it just validates
	// the driver name and data source name (DSN).
	db, err := sql.Open("sqlite3", cfg.Storage.Path)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: open db: %w", err)
	}

	s, err := FromDB(db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// FromDB wraps an already opened *sql.DB and creates the users table if
// it does not exist yet.
func FromDB(db *sql.DB) (*SQLite, error) {
	// CREATE TABLE IF NOT EXISTS is idempotent, safe to run on every
	// startup.
	//
	// Schema:
	//   id:     UUID assigned on insert, never changed
	//   name:   non-empty text
	//   age:    positive integer
	//   gender: non-empty text
	//
	// Rows come back in rowid order, i.e. insertion order.
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS users (
			id     TEXT    PRIMARY KEY,
			name   TEXT    NOT NULL CHECK (name <> ''),
			age    INTEGER NOT NULL CHECK (age > 0),
			gender TEXT    NOT NULL CHECK (gender <> '')
		)
	`)
	if err != nil {
		return nil, fmt.Errorf("sqlite.New: create table: %w", err)
	}

	return &SQLite{Db: db}, nil
}

// CreateUser inserts a new row under a fresh UUID.
func (s *SQLite) CreateUser(ctx context.Context, in types.UserInput) (types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"INSERT INTO users (id, name, age, gender) VALUES (?, ?, ?, ?)",
	)
	if err != nil {
		return types.User{}, fmt.Errorf("CreateUser: prepare: %w", err)
	}
	defer stmt.Close()

	u := in.Apply(types.User{ID: uuid.NewString()})

	// Order matters: the arguments fill the ? placeholders left to right.
	if _, err := stmt.ExecContext(ctx, u.ID, u.Name, u.Age, u.Gender); err != nil {
		return types.User{}, fmt.Errorf("CreateUser: exec: %w", mapConstraint(err))
	}

	return u, nil
}

// GetUserByID fetches exactly one row matched by id.
func (s *SQLite) GetUserByID(ctx context.Context, id string) (types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age, gender FROM users WHERE id = ? LIMIT 1",
	)
	if err != nil {
		return types.User{}, fmt.Errorf("GetUserByID: prepare: %w", err)
	}
	defer stmt.Close()

	var u types.User

	// QueryRow returns exactly one row. If the query finds no match the
	// error surfaces only when you call Scan.
	err = stmt.QueryRowContext(ctx, id).Scan(&u.ID, &u.Name, &u.Age, &u.Gender)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, storage.ErrNotFound
		}
		return types.User{}, fmt.Errorf("GetUserByID: scan: %w", err)
	}

	return u, nil
}

// ListUsers returns all rows as a slice.
func (s *SQLite) ListUsers(ctx context.Context) ([]types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"SELECT id, name, age, gender FROM users ORDER BY rowid",
	)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: prepare: %w", err)
	}
	defer stmt.Close()

	rows, err := stmt.QueryContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("ListUsers: query: %w", err)
	}
	defer rows.Close()

	// Non-nil so an empty table encodes as [] rather than null.
	users := make([]types.User, 0)

	for rows.Next() {
		var u types.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Age, &u.Gender); err != nil {
			return nil, fmt.Errorf("ListUsers: scan row: %w", err)
		}
		users = append(users, u)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListUsers: rows iteration: %w", err)
	}

	return users, nil
}

// UpdateUserByID replaces a user's business fields and returns the row
// as stored.
func (s *SQLite) UpdateUserByID(ctx context.Context, id string, in types.UserInput) (types.User, error) {
	stmt, err := s.Db.PrepareContext(ctx,
		"UPDATE users SET name = ?, age = ?, gender = ? WHERE id = ?",
	)
	if err != nil {
		return types.User{}, fmt.Errorf("UpdateUserByID: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, in.Name, in.Age, in.Gender, id)
	if err != nil {
		return types.User{}, fmt.Errorf("UpdateUserByID: exec: %w", mapConstraint(err))
	}

	n, err := res.RowsAffected()
	if err != nil {
		return types.User{}, fmt.Errorf("UpdateUserByID: rows affected: %w", err)
	}
	if n == 0 {
		return types.User{}, storage.ErrNotFound
	}

	// Re-fetch the record so we return exactly what is stored in the DB.
	return s.GetUserByID(ctx, id)
}

// DeleteUserByID removes a row by id.
func (s *SQLite) DeleteUserByID(ctx context.Context, id string) error {
	stmt, err := s.Db.PrepareContext(ctx, "DELETE FROM users WHERE id = ?")
	if err != nil {
		return fmt.Errorf("DeleteUserByID: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := stmt.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("DeleteUserByID: exec: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DeleteUserByID: rows affected: %w", err)
	}
	if n == 0 {
		return storage.ErrNotFound
	}

	return nil
}

// Ping checks that the database file is reachable.
func (s *SQLite) Ping(ctx context.Context) error {
	return s.Db.PingContext(ctx)
}

// Close closes the connection pool.
func (s *SQLite) Close(ctx context.Context) error {
	return s.Db.Close()
}

// mapConstraint turns NOT NULL / CHECK violations into ErrInvalidUser.
func mapConstraint(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
		return fmt.Errorf("%s: %w", sqliteErr.Error(), storage.ErrInvalidUser)
	}
	return err
}
