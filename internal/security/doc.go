// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package security provides encryption at rest for persisted sessions.
//
// Values are sealed with AES-256-GCM. Keys come either from a random key
// file kept with 0600 permissions or from a passphrase run through
// PBKDF2-SHA-256.
//
// # Key Types
//
//   - Sealer: AES-256-GCM seal/open with the ENC: text encoding
//   - KeyStore: Storage for a raw key
//   - FileKeyStore: KeyStore backed by a permission-restricted file
//
// # Usage
//
//	ks := security.NewFileKeyStore(filepath.Join(dir, "session.key"))
//	key, err := security.LoadOrCreateKey(ks)
//	if err != nil {
//	    return err
//	}
//	defer security.ZeroBytes(key)
//
//	s, err := security.NewSealer(key)
//	sealed, err := s.SealString(`{"email":"a@b.com"}`)
package security
