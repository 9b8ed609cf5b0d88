// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line parsing and execution for authfront.
//
// With no command, authfront opens the full-screen form when stdin and
// stdout are terminals and falls back to line-mode prompts when only stdout
// is redirected (or with --plain). Every form needs stdin to be a terminal.
//
// # Key Types
//
//   - Command: Enumeration of the available commands
//   - Args: Parsed global flags and command arguments
//   - App: Lazily built config, logger, session store, backend and controller
//   - Plain: Line-mode front end driving the controller through a Prompter
//   - JSONResponse: Envelope for --json output
//
// # Usage
//
//	os.Exit(cli.Main(ctx, os.Args[1:]))
//
// # Commands Overview
//
//   - tui: Full-screen setup and login form (default)
//   - login, setup, provider: Line-mode forms
//   - status: Persisted session, token expiry and store
//   - logout: Clear the persisted session
//   - config: Show the effective configuration, its path or one key, or set a key
//   - version: Build information
package cli
