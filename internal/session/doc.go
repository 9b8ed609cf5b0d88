// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session persists the authenticated identity across runs.
//
// Every Store follows the same contract: Load never fails loudly. Missing,
// unreadable, undecryptable, malformed or already-expired data loads as "no
// session" and is logged as SESSION_CORRUPT (or SESSION_EXPIRED). Save and
// Clear report errors to the caller.
//
// # Key Types
//
//   - Store: Load/Save/Clear/Close over one identity
//   - MemoryStore: Process-local store for tests and --demo runs
//   - FileStore: Single file, optionally AES-256-GCM sealed
//   - SQLiteStore: Row per profile in a local SQLite database
//   - RedisStore: Key per profile, for shared kiosks
//   - Watcher: Token expiry tracking with Bubble Tea tick messages
//
// # Usage
//
//	store, err := session.Open(session.Options{Kind: "file", Path: path, Encrypt: true})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if id, ok := store.Load(); ok {
//	    fmt.Println("welcome back", id.Email)
//	}
//
// # Token Expiry
//
// Session tokens shaped like JWTs have their exp claim read without
// signature verification. Verification belongs to the server; the client
// only uses exp to avoid restoring a session that is certainly dead.
package session
