// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/security"
)

// Store persists at most one identity.
type Store interface {
	// Load returns the stored identity. It never fails loudly: anything
	// unusable is reported as (zero, false).
	Load() (auth.Identity, bool)
	// Save replaces the stored identity.
	Save(id auth.Identity) error
	// Clear removes the stored identity. Clearing an empty store succeeds.
	Clear() error
	// Close releases resources held by the store.
	Close() error
}

var (
	errCorrupt = errors.New("session data corrupt")
	errExpired = errors.New("session token expired")
)

// =============================================================================
// RECORD CODEC
// =============================================================================

const recordVersion = 1

type record struct {
	Version  int       `json:"v"`
	Email    string    `json:"email"`
	Token    string    `json:"token"`
	Provider string    `json:"provider,omitempty"`
	SavedAt  time.Time `json:"saved_at"`
}

// codec turns identities into stored bytes. With a sealer the JSON record
// is wrapped as ENC:base64(...).
type codec struct {
	sealer *security.Sealer
	now    func() time.Time
}

func newCodec(sealer *security.Sealer) codec {
	return codec{sealer: sealer, now: time.Now}
}

func (c codec) encode(id auth.Identity) ([]byte, error) {
	if id.Email == "" || id.SessionToken == "" {
		return nil, errors.New("identity must have email and token")
	}
	rec := record{
		Version:  recordVersion,
		Email:    id.Email,
		Token:    id.SessionToken,
		Provider: string(id.Provider),
		SavedAt:  c.now().UTC(),
	}
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("encode session: %w", err)
	}
	if c.sealer == nil {
		return data, nil
	}
	sealed, err := c.sealer.SealString(string(data))
	if err != nil {
		return nil, fmt.Errorf("seal session: %w", err)
	}
	return []byte(sealed), nil
}

func (c codec) decode(data []byte) (auth.Identity, error) {
	if c.sealer != nil {
		plain, err := c.sealer.OpenString(string(data))
		if err != nil {
			return auth.Identity{}, fmt.Errorf("%w: %v", errCorrupt, err)
		}
		data = []byte(plain)
	} else if security.IsEncrypted(string(data)) {
		return auth.Identity{}, fmt.Errorf("%w: sealed data but no key configured", errCorrupt)
	}

	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return auth.Identity{}, fmt.Errorf("%w: %v", errCorrupt, err)
	}
	if rec.Version != recordVersion {
		return auth.Identity{}, fmt.Errorf("%w: unsupported version %d", errCorrupt, rec.Version)
	}
	if rec.Email == "" || rec.Token == "" {
		return auth.Identity{}, fmt.Errorf("%w: missing email or token", errCorrupt)
	}

	provider := auth.Provider(rec.Provider)
	if provider == "" {
		provider = auth.ProviderPassword
	}
	if !provider.Valid() {
		return auth.Identity{}, fmt.Errorf("%w: unknown provider %q", errCorrupt, rec.Provider)
	}

	if exp, ok := TokenExpiry(rec.Token); ok && !exp.After(c.now()) {
		return auth.Identity{}, errExpired
	}

	return auth.Identity{Email: rec.Email, SessionToken: rec.Token, Provider: provider}, nil
}

// logLoadFailure records why a stored session was ignored.
func logLoadFailure(log *zap.Logger, store string, err error) {
	if errors.Is(err, errExpired) {
		log.Info("SESSION_EXPIRED", zap.String("store", store))
		return
	}
	log.Warn("SESSION_CORRUPT", zap.String("store", store), zap.Error(err))
}

func logSaved(log *zap.Logger, store string, id auth.Identity) {
	log.Info("SESSION_SAVED",
		zap.String("store", store),
		zap.String("email", logging.MaskEmail(id.Email)),
		zap.String("provider", id.Provider.String()))
}
