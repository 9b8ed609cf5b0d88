// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package logging builds the zap logger used across authfront.
//
// The terminal belongs to the view, so logs are written to a file (or
// discarded). Emails and session tokens are never logged in clear; use
// MaskEmail and MaskToken.
//
// # Usage
//
//	log, err := logging.New(logging.Options{Level: "info", Path: cfg.Logging.Path})
//	if err != nil {
//	    return err
//	}
//	defer log.Sync()
//
//	log.Info("AUTH_SUBMIT", zap.String("email", logging.MaskEmail(email)))
package logging
