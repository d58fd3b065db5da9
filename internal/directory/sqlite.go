// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package directory implements the Directory Store (spec.md §4.2): the
// encrypted-at-rest users table, keyed by username, plus an in-memory
// sender-tag index that serves the reverse lookup by sender tag without
// a decrypt-and-scan (spec.md §9 Option (b)).
package directory

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/nymproject/directory-relay/internal/logger"
	"github.com/nymproject/directory-relay/migrations"
)

// DB wraps a *sql.DB connection to the directory's sqlite file.
type DB struct {
	*sql.DB
	logger *logger.Logger
}

// Open creates the sqlite file at path if it does not exist, opens a
// connection, verifies it with a ping, and applies all pending migrations.
func Open(ctx context.Context, path string, log *logger.Logger) (*DB, error) {
	if err := createFileIfNotExists(path); err != nil {
		return nil, fmt.Errorf("directory: create db file: %w", err)
	}

	conn, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("directory: open db: %w", err)
	}

	if err := conn.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("directory: ping db: %w", err)
	}

	if err := migrations.Migrate(conn); err != nil {
		return nil, fmt.Errorf("directory: migrate db: %w", err)
	}

	return &DB{DB: conn, logger: log}, nil
}

func createFileIfNotExists(path string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	return f.Close()
}
