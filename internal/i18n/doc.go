// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package i18n provides the message catalogs for the authfront views.
//
// Catalogs for English, Spanish, Hebrew and Japanese are embedded as TOML
// files. Lookups fall back from the requested language to English and then
// to the key itself, so a missing translation never produces an empty label.
//
// # Key Types
//
//   - Catalog: Loaded set of locales with a language matcher
//   - Locale: One language's metadata and messages
//
// # Usage
//
//	label := i18n.Translate("es", "loginWith", map[string]string{"provider": "Google"})
//	// "Iniciar sesión con Google"
//
// Regional and unknown tags are matched to the closest supported language:
//
//	i18n.Canonical("es-MX") // "es"
//	i18n.Canonical("xx")    // "xx" (kept; lookups use English)
package i18n
