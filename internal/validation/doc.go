// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package validation implements the local form rules for customer setup and login.
//
// The functions are pure and do no I/O. Every field
// check and the cross-field password confirmation run independently, so a
// Result always reports every failing field at once.
//
// # Rules
//
//   - firstName, lastName, companyName: "required" when blank after trimming
//   - email: "invalid format" unless it looks like local@domain.tld
//   - password: "too short" under 8 characters
//   - confirmPassword (setup only): "mismatch" when it differs from password
package validation
