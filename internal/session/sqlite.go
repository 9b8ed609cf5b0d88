// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite" // Pure Go SQLite driver

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/security"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS sessions (
	profile    TEXT PRIMARY KEY,
	data       BLOB NOT NULL,
	updated_at INTEGER NOT NULL
);`

const dbTimeout = 5 * time.Second

// SQLiteStore keeps one row per profile in a local SQLite database.
type SQLiteStore struct {
	db      *sql.DB
	profile string
	codec   codec
	log     *zap.Logger
}

// NewSQLiteStore opens (creating if needed) the database at path.
func NewSQLiteStore(path, profile string, sealer *security.Sealer, log *zap.Logger) (*SQLiteStore, error) {
	if log == nil {
		log = logging.Nop()
	}
	if profile == "" {
		profile = DefaultProfile
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	pragmas := []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to set pragma: %w", err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, profile: profile, codec: newCodec(sealer), log: log}, nil
}

// Load implements Store.
func (s *SQLiteStore) Load() (auth.Identity, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE profile = ?", s.profile).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return auth.Identity{}, false
	}
	if err != nil {
		logLoadFailure(s.log, "sqlite", err)
		return auth.Identity{}, false
	}

	id, err := s.codec.decode(data)
	if err != nil {
		logLoadFailure(s.log, "sqlite", err)
		return auth.Identity{}, false
	}
	return id, true
}

// Save implements Store.
func (s *SQLiteStore) Save(id auth.Identity) error {
	data, err := s.codec.encode(id)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO sessions (profile, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(profile) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		s.profile, data, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logSaved(s.log, "sqlite", id)
	return nil
}

// Clear implements Store.
func (s *SQLiteStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), dbTimeout)
	defer cancel()

	if _, err := s.db.ExecContext(ctx, "DELETE FROM sessions WHERE profile = ?", s.profile); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// putRaw writes bytes for the profile without encoding. Test helper.
func (s *SQLiteStore) putRaw(data []byte) error {
	_, err := s.db.Exec(`
		INSERT INTO sessions (profile, data, updated_at) VALUES (?, ?, 0)
		ON CONFLICT(profile) DO UPDATE SET data = excluded.data`, s.profile, data)
	return err
}
