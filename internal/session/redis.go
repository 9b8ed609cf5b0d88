// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/jeranaias/authfront/internal/auth"
	"github.com/jeranaias/authfront/internal/logging"
	"github.com/jeranaias/authfront/internal/security"
)

// DefaultRedisPrefix namespaces session keys.
const DefaultRedisPrefix = "authfront:session:"

const redisTimeout = 3 * time.Second

// RedisStore keeps the session under prefix+profile. JWT-shaped tokens are
// stored with a TTL ending at their exp claim.
type RedisStore struct {
	client *redis.Client
	key    string
	codec  codec
	log    *zap.Logger
}

// NewRedisStore wraps an existing client. Close closes the client.
func NewRedisStore(client *redis.Client, prefix, profile string, sealer *security.Sealer, log *zap.Logger) *RedisStore {
	if log == nil {
		log = logging.Nop()
	}
	if prefix == "" {
		prefix = DefaultRedisPrefix
	}
	if profile == "" {
		profile = DefaultProfile
	}
	return &RedisStore{client: client, key: prefix + profile, codec: newCodec(sealer), log: log}
}

// Key returns the redis key used for this store.
func (s *RedisStore) Key() string {
	return s.key
}

// Load implements Store.
func (s *RedisStore) Load() (auth.Identity, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	data, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return auth.Identity{}, false
	}
	if err != nil {
		logLoadFailure(s.log, "redis", err)
		return auth.Identity{}, false
	}

	id, err := s.codec.decode(data)
	if err != nil {
		logLoadFailure(s.log, "redis", err)
		return auth.Identity{}, false
	}
	return id, true
}

// Save implements Store.
func (s *RedisStore) Save(id auth.Identity) error {
	data, err := s.codec.encode(id)
	if err != nil {
		return err
	}

	var ttl time.Duration
	if exp, ok := TokenExpiry(id.SessionToken); ok {
		ttl = time.Until(exp)
		if ttl <= 0 {
			return fmt.Errorf("save session: %w", errExpired)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Set(ctx, s.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	logSaved(s.log, "redis", id)
	return nil
}

// Clear implements Store.
func (s *RedisStore) Clear() error {
	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Close implements Store.
func (s *RedisStore) Close() error {
	return s.client.Close()
}
