// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package security

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/jeranaias/authfront/internal/util"
)

// =============================================================================
// KEYSTORE INTERFACE
// =============================================================================

// KeyStore stores one raw encryption key.
type KeyStore interface {
	Store(key []byte) error
	Retrieve() ([]byte, error)
	Delete() error
	Exists() bool
}

// =============================================================================
// FILE-BASED KEYSTORE
// =============================================================================

// FileKeyStore keeps the key in a file readable only by the owner.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a file-based key store.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// Path returns the key file location.
func (f *FileKeyStore) Path() string {
	return f.path
}

// Store writes the key atomically with 0600 permissions.
func (f *FileKeyStore) Store(key []byte) error {
	if err := util.AtomicWriteFileWithDir(f.path, key, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Retrieve reads the key file.
func (f *FileKeyStore) Retrieve() ([]byte, error) {
	key, err := os.ReadFile(f.path)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}
	return key, nil
}

// Delete removes the key file. A missing file is not an error.
func (f *FileKeyStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists reports whether the key file exists.
func (f *FileKeyStore) Exists() bool {
	_, err := os.Stat(f.path)
	return err == nil
}

// LoadOrCreateKey returns the stored key, generating and storing a new one
// on first use. A stored key of the wrong size is an error, not replaced.
func LoadOrCreateKey(ks KeyStore) ([]byte, error) {
	if ks.Exists() {
		key, err := ks.Retrieve()
		if err != nil {
			return nil, err
		}
		if len(key) != KeySize {
			ZeroBytes(key)
			return nil, ErrInvalidKey
		}
		return key, nil
	}

	key, err := GenerateKey()
	if err != nil {
		return nil, err
	}
	if err := ks.Store(key); err != nil {
		ZeroBytes(key)
		return nil, err
	}
	return key, nil
}
