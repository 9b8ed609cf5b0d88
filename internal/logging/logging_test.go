// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "authfront.log")

	lg, err := New(Options{Level: "debug", Path: path})
	require.NoError(t, err)

	lg.Info("AUTH_SUBMIT", zap.String("email", MaskEmail("john.doe@example.com")))
	_ = lg.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "AUTH_SUBMIT")
	assert.Contains(t, string(data), "joh***@example.com")
	assert.NotContains(t, string(data), "john.doe")
}

func TestNew_LevelFilters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.log")

	lg, err := New(Options{Level: "warn", Path: path, Format: "console"})
	require.NoError(t, err)

	lg.Info("QUIET")
	lg.Warn("LOUD")
	_ = lg.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "QUIET")
	assert.Contains(t, string(data), "LOUD")
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Level: "loud", Path: filepath.Join(t.TempDir(), "x.log")})
	assert.Error(t, err)
}

func TestNew_EmptyPathDiscards(t *testing.T) {
	lg, err := New(Options{})
	require.NoError(t, err)
	assert.NotNil(t, lg)
}

func TestMaskEmail(t *testing.T) {
	tests := map[string]string{
		"":                     "",
		"john.doe@example.com": "joh***@example.com",
		"ab@x.io":              "ab***@x.io",
		"@x.io":                "***@x.io",
		"plain":                "***",
	}
	for in, want := range tests {
		assert.Equal(t, want, MaskEmail(in), in)
	}
}

func TestMaskToken(t *testing.T) {
	assert.Equal(t, "", MaskToken(""))
	assert.Equal(t, "***", MaskToken("short"))
	assert.Equal(t, "mo***en", MaskToken("mock-auth-token"))
}
