// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/security"
	"github.com/jeranaias/authfront/internal/util"
)

// maxFileSize bounds what Load will read. A session record is well under 1 KiB.
const maxFileSize = 64 * 1024

// FileStore keeps the session in one file, written atomically with 0600
// permissions.
type FileStore struct {
	path  string
	codec codec
	log   *zap.Logger
}

// NewFileStore creates a file store. A nil sealer stores plain JSON.
func NewFileStore(path string, sealer *security.Sealer, log *zap.Logger) *FileStore {
	if log == nil {
		log = logging.Nop()
	}
	return &FileStore{path: path, codec: newCodec(sealer), log: log}
}

// Path returns the session file location.
func (s *FileStore) Path() string {
	return s.path
}

// Load implements Store.
func (s *FileStore) Load() (auth.Identity, bool) {
	info, err := os.Stat(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return auth.Identity{}, false
	}
	if err != nil {
		logLoadFailure(s.log, "file", err)
		return auth.Identity{}, false
	}
	if info.Size() > maxFileSize {
		logLoadFailure(s.log, "file", fmt.Errorf("%w: file is %d bytes", errCorrupt, info.Size()))
		return auth.Identity{}, false
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		logLoadFailure(s.log, "file", err)
		return auth.Identity{}, false
	}

	id, err := s.codec.decode(data)
	if err != nil {
		logLoadFailure(s.log, "file", err)
		return auth.Identity{}, false
	}
	return id, true
}

// Save implements Store.
func (s *FileStore) Save(id auth.Identity) error {
	data, err := s.codec.encode(id)
	if err != nil {
		return err
	}
	if err := util.AtomicWriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logSaved(s.log, "file", id)
	return nil
}

// Clear implements Store.
func (s *FileStore) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
