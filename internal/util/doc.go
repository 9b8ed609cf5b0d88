// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small file and text helpers shared by authfront.
//
// # Key Functions
//
//   - AtomicWriteFile: Crash-safe file replacement (temp file, fsync, rename)
//   - StringWidth, TruncateWidth: Display-width aware text handling
//   - PadRight, PadLeft, MaxWidth: Label alignment for CJK and Hebrew forms
package util
