// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sync"

	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
)

// MemoryStore keeps the encoded session in process memory.
type MemoryStore struct {
	mu    sync.Mutex
	data  []byte
	codec codec
	log   *zap.Logger
	loads int
}

// NewMemoryStore creates an empty store.
func NewMemoryStore(log *zap.Logger) *MemoryStore {
	if log == nil {
		log = logging.Nop()
	}
	return &MemoryStore{codec: newCodec(nil), log: log}
}

// NewMemoryStoreWith creates a store already holding id.
func NewMemoryStoreWith(id auth.Identity, log *zap.Logger) (*MemoryStore, error) {
	s := NewMemoryStore(log)
	if err := s.Save(id); err != nil {
		return nil, err
	}
	return s, nil
}

// SetRaw replaces the stored bytes verbatim.
func (s *MemoryStore) SetRaw(data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = append([]byte(nil), data...)
}

// Load implements Store.
func (s *MemoryStore) Load() (auth.Identity, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loads++

	if s.data == nil {
		return auth.Identity{}, false
	}
	id, err := s.codec.decode(s.data)
	if err != nil {
		logLoadFailure(s.log, "memory", err)
		return auth.Identity{}, false
	}
	return id, true
}

// Save implements Store.
func (s *MemoryStore) Save(id auth.Identity) error {
	data, err := s.codec.encode(id)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.data = data
	s.mu.Unlock()
	return nil
}

// Clear implements Store.
func (s *MemoryStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = nil
	return nil
}

// Close implements Store.
func (s *MemoryStore) Close() error { return nil }

// Loads returns how many times Load has been called.
func (s *MemoryStore) Loads() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loads
}
