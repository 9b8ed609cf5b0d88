// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/security"
	"github.com/jeranaias/authfront/internal/util"
)

// Store kinds accepted by Open.
const (
	KindMemory = "memory"
	KindFile   = "file"
	KindSQLite = "sqlite"
	KindRedis  = "redis"
)

// DefaultProfile is the row/key used when no profile is configured.
const DefaultProfile = "default"

// Options selects and configures a Store.
type Options struct {
	Kind string
	// Path is the session file or SQLite database.
	Path string
	// Encrypt seals stored records with AES-256-GCM.
	Encrypt bool
	// KeyPath holds the random key, or the PBKDF2 salt when Passphrase is
	// set. Defaults to Path + ".key".
	KeyPath    string
	Passphrase string

	RedisAddr   string
	RedisPrefix string
	Profile     string

	Logger *zap.Logger
}

// Open builds the configured store.
func Open(opts Options) (Store, error) {
	log := opts.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.Named("session")

	kind := strings.ToLower(strings.TrimSpace(opts.Kind))
	if kind == "" {
		kind = KindFile
	}
	if kind == KindMemory {
		return NewMemoryStore(log), nil
	}

	var sealer *security.Sealer
	if opts.Encrypt {
		s, err := resolveSealer(opts)
		if err != nil {
			return nil, err
		}
		sealer = s
	}

	switch kind {
	case KindFile:
		if opts.Path == "" {
			return nil, errors.New("session: file store needs a path")
		}
		return NewFileStore(opts.Path, sealer, log), nil

	case KindSQLite:
		if opts.Path == "" {
			return nil, errors.New("session: sqlite store needs a path")
		}
		return NewSQLiteStore(opts.Path, opts.Profile, sealer, log)

	case KindRedis:
		if opts.RedisAddr == "" {
			return nil, errors.New("session: redis store needs an address")
		}
		client := redis.NewClient(&redis.Options{Addr: opts.RedisAddr})
		return NewRedisStore(client, opts.RedisPrefix, opts.Profile, sealer, log), nil

	default:
		return nil, fmt.Errorf("session: unknown store kind %q", opts.Kind)
	}
}

func resolveSealer(opts Options) (*security.Sealer, error) {
	keyPath := opts.KeyPath
	if keyPath == "" {
		if opts.Path == "" {
			return nil, errors.New("session: encryption needs a key path")
		}
		keyPath = opts.Path + ".key"
	}

	if opts.Passphrase != "" {
		salt, err := loadOrCreateSalt(keyPath + ".salt")
		if err != nil {
			return nil, err
		}
		return security.NewPassphraseSealer(opts.Passphrase, salt)
	}

	key, err := security.LoadOrCreateKey(security.NewFileKeyStore(keyPath))
	if err != nil {
		return nil, fmt.Errorf("session key: %w", err)
	}
	defer security.ZeroBytes(key)
	return security.NewSealer(key)
}

func loadOrCreateSalt(path string) ([]byte, error) {
	salt, err := os.ReadFile(path)
	if err == nil {
		if len(salt) != security.SaltSize {
			return nil, fmt.Errorf("session salt %s: wrong size", path)
		}
		return salt, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("session salt: %w", err)
	}

	salt, err = security.GenerateSalt()
	if err != nil {
		return nil, err
	}
	if err := util.AtomicWriteFile(path, salt, 0600); err != nil {
		return nil, fmt.Errorf("session salt: %w", err)
	}
	return salt, nil
}
