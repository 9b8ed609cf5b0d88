// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"golang.org/x/text/language"
)

//go:embed locales/*.toml
var localeFS embed.FS

// DefaultLanguage is used when nothing else matches.
const DefaultLanguage = "en"

// Locale is one language's catalog.
type Locale struct {
	Meta struct {
		Code      string `toml:"code"`
		Name      string `toml:"name"`
		Direction string `toml:"direction"`
	} `toml:"meta"`
	Messages map[string]string `toml:"messages"`
}

// RTL reports whether the language is written right to left.
func (l *Locale) RTL() bool {
	return strings.EqualFold(l.Meta.Direction, "rtl")
}

// Catalog holds every loaded locale.
type Catalog struct {
	locales map[string]*Locale
	codes   []string
	matcher language.Matcher
}

// =============================================================================
// LOADING
// =============================================================================

// Load parses every *.toml file under dir in fsys. The default language must
// be present.
func Load(fsys fs.FS, dir string) (*Catalog, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read locales: %w", err)
	}

	c := &Catalog{locales: make(map[string]*Locale)}
	for _, e := range entries {
		if e.IsDir() || path.Ext(e.Name()) != ".toml" {
			continue
		}
		data, err := fs.ReadFile(fsys, path.Join(dir, e.Name()))
		if err != nil {
			return nil, fmt.Errorf("read locale %s: %w", e.Name(), err)
		}
		var loc Locale
		if _, err := toml.Decode(string(data), &loc); err != nil {
			return nil, fmt.Errorf("parse locale %s: %w", e.Name(), err)
		}
		if loc.Meta.Code == "" {
			loc.Meta.Code = strings.TrimSuffix(e.Name(), ".toml")
		}
		c.locales[loc.Meta.Code] = &loc
	}

	if _, ok := c.locales[DefaultLanguage]; !ok {
		return nil, fmt.Errorf("locale %q missing", DefaultLanguage)
	}

	// Default first: the matcher falls back to the first tag.
	c.codes = append(c.codes, DefaultLanguage)
	rest := make([]string, 0, len(c.locales)-1)
	for code := range c.locales {
		if code != DefaultLanguage {
			rest = append(rest, code)
		}
	}
	sort.Strings(rest)
	c.codes = append(c.codes, rest...)

	tags := make([]language.Tag, len(c.codes))
	for i, code := range c.codes {
		tags[i] = language.Make(code)
	}
	c.matcher = language.NewMatcher(tags)

	return c, nil
}

var (
	defaultCatalog *Catalog
	defaultOnce    sync.Once
)

// Default returns the embedded catalog. It panics if the embedded files are
// malformed, which is a build defect.
func Default() *Catalog {
	defaultOnce.Do(func() {
		c, err := Load(localeFS, "locales")
		if err != nil {
			panic(err)
		}
		defaultCatalog = c
	})
	return defaultCatalog
}

// =============================================================================
// LOOKUP
// =============================================================================

// Languages returns the supported language codes, default first.
func (c *Catalog) Languages() []string {
	out := make([]string, len(c.codes))
	copy(out, c.codes)
	return out
}

// Supported reports whether code names a loaded locale exactly.
func (c *Catalog) Supported(code string) bool {
	_, ok := c.locales[code]
	return ok
}

// Canonical maps a language tag to a supported code ("es-MX" becomes "es").
// Tags with no reasonable match are returned trimmed and lowercased.
func (c *Catalog) Canonical(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return DefaultLanguage
	}
	if c.Supported(code) {
		return code
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	_, idx, conf := c.matcher.Match(tag)
	if conf == language.No {
		return code
	}
	return c.codes[idx]
}

// Locale returns the locale used for code, falling back to the default.
func (c *Catalog) Locale(code string) *Locale {
	if loc, ok := c.locales[c.Canonical(code)]; ok {
		return loc
	}
	return c.locales[DefaultLanguage]
}

// Translate looks up key for lang and interpolates {name} placeholders.
func (c *Catalog) Translate(lang, key string, params map[string]string) string {
	msg, ok := c.Locale(lang).Messages[key]
	if !ok || msg == "" {
		msg, ok = c.locales[DefaultLanguage].Messages[key]
	}
	if !ok || msg == "" {
		msg = key
	}
	return interpolate(msg, params)
}

// IsRTL reports whether lang is written right to left.
func (c *Catalog) IsRTL(lang string) bool {
	return c.Locale(lang).RTL()
}

// DisplayName returns the language's own name ("Español" for es).
func (c *Catalog) DisplayName(lang string) string {
	return c.Locale(lang).Meta.Name
}

func interpolate(msg string, params map[string]string) string {
	if len(params) == 0 || !strings.Contains(msg, "{") {
		return msg
	}
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	pairs := make([]string, 0, len(params)*2)
	for _, k := range keys {
		pairs = append(pairs, "{"+k+"}", params[k])
	}
	return strings.NewReplacer(pairs...).Replace(msg)
}

// =============================================================================
// PACKAGE HELPERS
// =============================================================================

// Translate uses the embedded catalog.
func Translate(lang, key string, params map[string]string) string {
	return Default().Translate(lang, key, params)
}

// Canonical uses the embedded catalog.
func Canonical(code string) string {
	return Default().Canonical(code)
}

// IsRTL uses the embedded catalog.
func IsRTL(lang string) bool {
	return Default().IsRTL(lang)
}

// Languages uses the embedded catalog.
func Languages() []string {
	return Default().Languages()
}
