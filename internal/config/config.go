// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/authfront/internal/util"
)

// CurrentVersion is the config schema version written by Save.
const CurrentVersion = "1"

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete authfront configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	General GeneralConfig `toml:"general" json:"general"`
	Backend BackendConfig `toml:"backend" json:"backend"`
	Session SessionConfig `toml:"session" json:"session"`
	UI      UIConfig      `toml:"ui" json:"ui"`
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// GeneralConfig holds startup defaults for the form.
type GeneralConfig struct {
	// Language is the initial display language (en, es, he, ja).
	Language string `toml:"language" json:"language"`
	// DefaultMode is the form shown first: "new" or "returning".
	DefaultMode string `toml:"default_mode" json:"default_mode"`
}

// BackendConfig selects and configures the authentication backend.
type BackendConfig struct {
	// Mode is "mock" or "http".
	Mode string `toml:"mode" json:"mode"`
	// BaseURL is the root of the authentication API (http mode).
	BaseURL string `toml:"base_url" json:"base_url"`
	// TimeoutSecs bounds each backend request.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// MockDelayMs adds latency to every mock call. 0 disables it.
	MockDelayMs int `toml:"mock_delay_ms" json:"mock_delay_ms"`
}

// SessionConfig selects where the authenticated identity is persisted.
type SessionConfig struct {
	// Store is "file", "sqlite", "redis" or "memory".
	Store string `toml:"store" json:"store"`
	// Path is the session file or database (file and sqlite stores).
	Path string `toml:"path" json:"path"`
	// Encrypt seals stored sessions with AES-256-GCM.
	Encrypt bool `toml:"encrypt" json:"encrypt"`
	// KeyPath is the key file used when no passphrase is set (default: Path + ".key").
	KeyPath string `toml:"key_path" json:"key_path"`
	// RedisAddr is host:port of the Redis server (redis store).
	RedisAddr string `toml:"redis_addr" json:"redis_addr"`
	// RedisKeyPrefix namespaces session keys in Redis.
	RedisKeyPrefix string `toml:"redis_key_prefix" json:"redis_key_prefix"`
	// Profile selects the row or key in keyed stores.
	Profile string `toml:"profile" json:"profile"`

	// Passphrase comes from AUTHFRONT_SESSION_PASSPHRASE only and is never saved.
	Passphrase string `toml:"-" json:"-"`
}

// UIConfig contains terminal UI settings.
type UIConfig struct {
	// Theme is "dark" or "light".
	Theme string `toml:"theme" json:"theme"`
	// Compact drops blank lines between form fields.
	Compact bool `toml:"compact" json:"compact"`
}

// LoggingConfig controls the structured log file.
type LoggingConfig struct {
	// Level is debug, info, warn or error.
	Level string `toml:"level" json:"level"`
	// Path is the log file. Empty disables logging.
	Path string `toml:"path" json:"path"`
	// Format is "json" or "console".
	Format string `toml:"format" json:"format"`
}

// =============================================================================
// DEFAULT CONFIGURATION
// =============================================================================

// Default returns a new Config with default values.
func Default() *Config {
	dir, err := ConfigDir()
	if err != nil {
		dir = ".authfront"
	}
	return &Config{
		Version: CurrentVersion,
		General: GeneralConfig{
			Language:    "en",
			DefaultMode: "new",
		},
		Backend: BackendConfig{
			Mode:        "mock",
			TimeoutSecs: 15,
		},
		Session: SessionConfig{
			Store:          "file",
			Path:           filepath.Join(dir, "session.json"),
			Encrypt:        true,
			RedisAddr:      "localhost:6379",
			RedisKeyPrefix: "authfront:session:",
			Profile:        "default",
		},
		UI: UIConfig{
			Theme: "dark",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Path:   filepath.Join(dir, "authfront.log"),
			Format: "json",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the authfront configuration directory. AUTHFRONT_HOME
// overrides the default of ~/.authfront.
func ConfigDir() (string, error) {
	if dir := os.Getenv("AUTHFRONT_HOME"); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".authfront"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// ensureSecurePermissions tightens a config file to 0600.
func ensureSecurePermissions(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if mode := info.Mode().Perm(); mode != 0600 {
		if err := os.Chmod(path, 0600); err != nil {
			return fmt.Errorf("failed to fix insecure permissions (was %o): %w", mode, err)
		}
	}
	return nil
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from ~/.authfront/config.toml, then config.json,
// then built-in defaults. Environment overrides are applied last. A file that
// fails to parse is reported alongside the defaults.
func Load() (*Config, error) {
	var loadErr error

	for _, candidate := range []func() (string, error){ConfigPathTOML, ConfigPathJSON} {
		path, err := candidate()
		if err != nil {
			continue
		}
		if _, statErr := os.Stat(path); statErr != nil {
			continue
		}
		cfg, err := LoadFromPath(path)
		if err == nil {
			return cfg, nil
		}
		loadErr = err
		break
	}

	cfg := Default()
	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadFromPath loads configuration from a specific TOML or JSON file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	var err error
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		err = LoadJSON(cfg, path)
	} else {
		err = LoadTOML(cfg, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
	}

	if err := cfg.finish(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// finish runs the post-load pipeline shared by every source.
func (c *Config) finish() error {
	c.ApplyEnvOverrides()
	if err := c.Migrate(); err != nil {
		return fmt.Errorf("config migration failed: %w", err)
	}
	c.SetDefaults()
	if err := c.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// LoadTOML decodes a TOML file over cfg.
func LoadTOML(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg.
func LoadJSON(cfg *Config, path string) error {
	if err := ensureSecurePermissions(path); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not ensure secure permissions on %s: %v\n", path, err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes cfg as TOML with 0600 permissions.
func SaveTOML(cfg *Config, path string) error {
	var b strings.Builder
	b.WriteString("# authfront configuration file\n")
	b.WriteString("# Generated by authfront - edit with care\n\n")
	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, []byte(b.String()), 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveTo writes cfg to path, as JSON for a .json file and TOML otherwise.
func SaveTo(cfg *Config, path string) error {
	if strings.HasSuffix(strings.ToLower(path), ".json") {
		return SaveJSON(cfg, path)
	}
	return SaveTOML(cfg, path)
}

// SaveJSON writes cfg as indented JSON with 0600 permissions.
func SaveJSON(cfg *Config, path string) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	if err := util.AtomicWriteFileWithDir(path, data, 0600, 0700); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

func oneOf(field, value string, allowed ...string) *ValidationError {
	for _, a := range allowed {
		if strings.EqualFold(value, a) {
			return nil
		}
	}
	return &ValidationError{
		Field:   field,
		Message: fmt.Sprintf("invalid value '%s', must be one of: %s", value, strings.Join(allowed, ", ")),
	}
}

// Validate validates the configuration and returns ValidateErrors on failure.
func (c *Config) Validate() error {
	var errs ValidateErrors
	add := func(e *ValidationError) {
		if e != nil {
			errs = append(errs, *e)
		}
	}

	// General
	add(oneOf("general.default_mode", c.General.DefaultMode, "new", "returning"))

	// Backend
	add(oneOf("backend.mode", c.Backend.Mode, "mock", "http"))
	if strings.EqualFold(c.Backend.Mode, "http") {
		u, err := url.Parse(c.Backend.BaseURL)
		switch {
		case c.Backend.BaseURL == "":
			add(&ValidationError{Field: "backend.base_url", Message: "required when backend.mode is http"})
		case err != nil:
			add(&ValidationError{Field: "backend.base_url", Message: fmt.Sprintf("invalid URL: %v", err)})
		case u.Scheme != "http" && u.Scheme != "https":
			add(&ValidationError{Field: "backend.base_url", Message: "scheme must be http or https"})
		}
	}
	if c.Backend.TimeoutSecs <= 0 || c.Backend.TimeoutSecs > 300 {
		add(&ValidationError{Field: "backend.timeout_secs", Message: "must be between 1 and 300"})
	}
	if c.Backend.MockDelayMs < 0 {
		add(&ValidationError{Field: "backend.mock_delay_ms", Message: "cannot be negative"})
	}

	// Session
	add(oneOf("session.store", c.Session.Store, "file", "sqlite", "redis", "memory"))
	switch strings.ToLower(c.Session.Store) {
	case "file", "sqlite":
		if c.Session.Path == "" {
			add(&ValidationError{Field: "session.path", Message: "required for file and sqlite stores"})
		}
	case "redis":
		if c.Session.RedisAddr == "" {
			add(&ValidationError{Field: "session.redis_addr", Message: "required for the redis store"})
		}
	}

	// UI
	add(oneOf("ui.theme", c.UI.Theme, "dark", "light"))

	// Logging
	add(oneOf("logging.level", c.Logging.Level, "debug", "info", "warn", "error"))
	add(oneOf("logging.format", c.Logging.Format, "json", "console"))

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills empty fields with defaults.
func (c *Config) SetDefaults() {
	d := Default()

	if c.Version == "" {
		c.Version = d.Version
	}
	if c.General.Language == "" {
		c.General.Language = d.General.Language
	}
	if c.General.DefaultMode == "" {
		c.General.DefaultMode = d.General.DefaultMode
	}
	if c.Backend.Mode == "" {
		c.Backend.Mode = d.Backend.Mode
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = d.Backend.TimeoutSecs
	}
	if c.Session.Store == "" {
		c.Session.Store = d.Session.Store
	}
	if c.Session.Path == "" {
		c.Session.Path = d.Session.Path
		if strings.EqualFold(c.Session.Store, "sqlite") {
			c.Session.Path = filepath.Join(filepath.Dir(d.Session.Path), "session.db")
		}
	}
	if c.Session.RedisKeyPrefix == "" {
		c.Session.RedisKeyPrefix = d.Session.RedisKeyPrefix
	}
	if c.Session.Profile == "" {
		c.Session.Profile = d.Session.Profile
	}
	if c.UI.Theme == "" {
		c.UI.Theme = d.UI.Theme
	}
	if c.Logging.Level == "" {
		c.Logging.Level = d.Logging.Level
	}
	if c.Logging.Format == "" {
		c.Logging.Format = d.Logging.Format
	}
}

// Migrate normalizes older spellings.
func (c *Config) Migrate() error {
	switch strings.ToLower(c.General.DefaultMode) {
	case "setup", "newcustomer":
		c.General.DefaultMode = "new"
	case "login", "returningcustomer":
		c.General.DefaultMode = "returning"
	}
	if strings.EqualFold(c.Session.Store, "sqlite3") {
		c.Session.Store = "sqlite"
	}
	if strings.EqualFold(c.Logging.Level, "warning") {
		c.Logging.Level = "warn"
	}
	return nil
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - AUTHFRONT_LANG: overrides general.language
//   - AUTHFRONT_BACKEND_MODE: overrides backend.mode
//   - AUTHFRONT_BACKEND_URL: overrides backend.base_url
//   - AUTHFRONT_SESSION_STORE: overrides session.store
//   - AUTHFRONT_SESSION_PATH: overrides session.path
//   - AUTHFRONT_SESSION_PASSPHRASE: sets the session encryption passphrase
//   - AUTHFRONT_REDIS_ADDR: overrides session.redis_addr
//   - AUTHFRONT_LOG_LEVEL: overrides logging.level
func (c *Config) ApplyEnvOverrides() {
	if lang := os.Getenv("AUTHFRONT_LANG"); lang != "" {
		c.General.Language = lang
	}
	if mode := os.Getenv("AUTHFRONT_BACKEND_MODE"); mode != "" {
		c.Backend.Mode = mode
	}
	if u := os.Getenv("AUTHFRONT_BACKEND_URL"); u != "" {
		c.Backend.BaseURL = u
	}
	if store := os.Getenv("AUTHFRONT_SESSION_STORE"); store != "" {
		c.Session.Store = store
	}
	if path := os.Getenv("AUTHFRONT_SESSION_PATH"); path != "" {
		c.Session.Path = path
	}
	if pass := os.Getenv("AUTHFRONT_SESSION_PASSPHRASE"); pass != "" {
		c.Session.Passphrase = pass
	}
	if addr := os.Getenv("AUTHFRONT_REDIS_ADDR"); addr != "" {
		c.Session.RedisAddr = addr
	}
	if level := os.Getenv("AUTHFRONT_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
}

// =============================================================================
// GET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value by its TOML key, e.g. "backend.mode".
func (c *Config) Get(key string) (interface{}, error) {
	v, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return v.Interface(), nil
}

// Set parses value into the leaf named by key and validates the result.
// On error the configuration is left unchanged.
func (c *Config) Set(key, value string) error {
	next := c.Clone()
	v, err := next.lookup(key)
	if err != nil {
		return err
	}

	switch v.Kind() {
	case reflect.String:
		v.SetString(value)
	case reflect.Bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("%s: expected true or false, got %q", key, value)
		}
		v.SetBool(b)
	case reflect.Int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("%s: expected an integer, got %q", key, value)
		}
		v.SetInt(int64(n))
	default:
		return fmt.Errorf("%s is a section, not a value", key)
	}

	if err := next.Validate(); err != nil {
		return err
	}
	*c = *next
	return nil
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}

	v := reflect.ValueOf(c).Elem()
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
		}
		field, ok := fieldByTag(v, part)
		if !ok {
			return reflect.Value{}, fmt.Errorf("unknown key: %s", key)
		}
		v = field
	}
	return v, nil
}

func fieldByTag(v reflect.Value, name string) (reflect.Value, bool) {
	t := v.Type()
	for i := 0; i < t.NumField(); i++ {
		tag := strings.Split(t.Field(i).Tag.Get("toml"), ",")[0]
		if tag != "" && tag != "-" && tag == name {
			return v.Field(i), true
		}
	}
	return reflect.Value{}, false
}

// Keys lists every leaf key in dot notation, in declaration order.
func Keys() []string {
	var keys []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for i := 0; i < t.NumField(); i++ {
			f := t.Field(i)
			tag := strings.Split(f.Tag.Get("toml"), ",")[0]
			if tag == "" || tag == "-" {
				continue
			}
			if f.Type.Kind() == reflect.Struct {
				walk(f.Type, prefix+tag+".")
				continue
			}
			keys = append(keys, prefix+tag)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	return keys
}

// FormatValue renders a Get result for display.
func FormatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	default:
		return fmt.Sprint(val)
	}
}

// =============================================================================
// UTILITY METHODS
// =============================================================================

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns an indented JSON rendering with secrets redacted. The
// passphrase is never serialized; credentials embedded in URLs are masked.
func (c *Config) String() string {
	safe := c.Clone()
	safe.Backend.BaseURL = redactURL(safe.Backend.BaseURL)
	safe.Session.RedisAddr = redactURL(safe.Session.RedisAddr)

	data, _ := json.MarshalIndent(safe, "", "  ")
	return string(data)
}

func redactURL(raw string) string {
	if !strings.Contains(raw, "@") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil || u.User == nil {
		return "[REDACTED]"
	}
	u.User = url.User("[REDACTED]")
	return u.String()
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration, loading it on first access.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		if cfg == nil {
			cfg = Default()
		}
		globalConfigMu.Lock()
		globalConfig = cfg
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from path, or from the
// default locations when path is empty.
func ReloadGlobal(path string) error {
	var cfg *Config
	var err error
	if path != "" {
		cfg, err = LoadFromPath(path)
	} else {
		cfg, err = Load()
	}
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal replaces the global configuration.
func SetGlobal(cfg *Config) {
	globalConfigOnce.Do(func() {})
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between tests.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
