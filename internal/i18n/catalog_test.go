// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package i18n

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultCatalogLoads(t *testing.T) {
	c := Default()
	assert.Equal(t, []string{"en", "es", "he", "ja"}, c.Languages())
}

func TestLocalesHaveSameKeys(t *testing.T) {
	c := Default()
	en := c.Locale("en").Messages
	for _, code := range c.Languages() {
		loc := c.Locale(code)
		for key := range en {
			assert.NotEmpty(t, loc.Messages[key], "%s missing %s", code, key)
		}
		for key := range loc.Messages {
			_, ok := en[key]
			assert.True(t, ok, "%s has extra key %s", code, key)
		}
	}
}

func TestTranslate(t *testing.T) {
	tests := []struct {
		lang   string
		key    string
		params map[string]string
		want   string
	}{
		{"en", "appTitle", nil, "Authentication Service"},
		{"es", "passwordMismatch", nil, "Las contraseñas no coinciden."},
		{"ja", "loginWith", map[string]string{"provider": "Google"}, "Google でログイン"},
		{"en", "loginWith", map[string]string{"provider": "Apple"}, "Login with Apple"},
		{"es-MX", "login", nil, "Iniciar sesión"},
		{"xx", "login", nil, "Login"},
		{"", "login", nil, "Login"},
		{"he", "noSuchKey", nil, "noSuchKey"},
		{"en", "loginWith", nil, "Login with {provider}"},
	}

	for _, tt := range tests {
		t.Run(tt.lang+"/"+tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, Translate(tt.lang, tt.key, tt.params))
		})
	}
}

func TestTranslate_FallsBackToDefaultLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.toml": {Data: []byte("[meta]\ncode = \"en\"\n[messages]\nhello = \"Hello\"\nbye = \"Bye\"\n")},
		"l/es.toml": {Data: []byte("[meta]\ncode = \"es\"\n[messages]\nhello = \"Hola\"\n")},
	}
	c, err := Load(fsys, "l")
	require.NoError(t, err)

	assert.Equal(t, "Hola", c.Translate("es", "hello", nil))
	assert.Equal(t, "Bye", c.Translate("es", "bye", nil))
	assert.Equal(t, "missing", c.Translate("es", "missing", nil))
}

func TestLoad_RequiresDefaultLocale(t *testing.T) {
	fsys := fstest.MapFS{
		"l/es.toml": {Data: []byte("[meta]\ncode = \"es\"\n")},
	}
	_, err := Load(fsys, "l")
	assert.Error(t, err)
}

func TestLoad_RejectsMalformedToml(t *testing.T) {
	fsys := fstest.MapFS{
		"l/en.toml": {Data: []byte("[meta\n")},
	}
	_, err := Load(fsys, "l")
	assert.Error(t, err)
}

func TestCanonical(t *testing.T) {
	tests := map[string]string{
		"en":       "en",
		"ES":       "es",
		" ja ":     "ja",
		"es-MX":    "es",
		"he-IL":    "he",
		"ja-JP":    "ja",
		"":         "en",
		"xx":       "xx",
		"!!bogus!": "!!bogus!",
	}
	for in, want := range tests {
		assert.Equal(t, want, Canonical(in), in)
	}
}

func TestDirection(t *testing.T) {
	assert.True(t, IsRTL("he"))
	assert.True(t, IsRTL("he-IL"))
	assert.False(t, IsRTL("en"))
	assert.False(t, IsRTL("ja"))
	assert.False(t, IsRTL("xx"))
}

func TestDisplayName(t *testing.T) {
	c := Default()
	assert.Equal(t, "Español", c.DisplayName("es"))
	assert.Equal(t, "日本語", c.DisplayName("ja"))
	assert.Equal(t, "English", c.DisplayName("unknown"))
}
