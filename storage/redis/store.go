// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package redis provides a storage.EmbeddingStore backed by Redis, so
// several matcher processes can share one embedding cache.
package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
	"github.com/redis/go-redis/v9"
)

const (
	defaultPrefix      = "skillmatch:emb:"
	defaultPingTimeout = 5 * time.Second
)

// Store implements storage.EmbeddingStore on a Redis server.
type Store struct {
	client *redis.Client
	prefix string
	ttl    time.Duration
	logger *slog.Logger
}

var _ storage.EmbeddingStore = (*Store)(nil)

// Option configures a Store.
type Option func(*Store) error

// WithPrefix sets the key prefix. Default: "skillmatch:emb:".
func WithPrefix(prefix string) Option {
	return func(s *Store) error {
		if prefix == "" {
			return errors.New("redis prefix must not be empty")
		}
		s.prefix = prefix
		return nil
	}
}

// WithTTL expires stored embeddings after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) error {
		if ttl < 0 {
			return fmt.Errorf("ttl must not be negative: %s", ttl)
		}
		s.ttl = ttl
		return nil
	}
}

// WithLogger sets the logger for the store.
// If nil, the default logger is used.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Store) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "redis-embedding-store")
		return nil
	}
}

// ParseAddress converts a redis:// or rediss:// URL, or a bare host:port,
// into client options.
func ParseAddress(address string) (*redis.Options, error) {
	if strings.HasPrefix(address, "redis://") || strings.HasPrefix(address, "rediss://") {
		opts, err := redis.ParseURL(address)
		if err != nil {
			return nil, fmt.Errorf("invalid Redis URL: %w", err)
		}
		return opts, nil
	}
	if address == "" {
		return nil, errors.New("redis address is required")
	}
	return &redis.Options{Addr: address}, nil
}

// Open connects to the Redis server at address and verifies the connection.
func Open(ctx context.Context, address string, opts ...Option) (*Store, error) {
	clientOpts, err := ParseAddress(address)
	if err != nil {
		return nil, err
	}

	client := redis.NewClient(clientOpts)

	pingCtx, cancel := context.WithTimeout(ctx, defaultPingTimeout)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	s, err := NewStore(client, opts...)
	if err != nil {
		client.Close()
		return nil, err
	}
	return s, nil
}

// NewStore wraps an existing client. The store takes ownership of the client.
func NewStore(client *redis.Client, opts ...Option) (*Store, error) {
	s := &Store{
		client: client,
		prefix: defaultPrefix,
		logger: slog.Default().With("component", "redis-embedding-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

func (s *Store) key(key core.EmbeddingKey) string {
	return fmt.Sprintf("%s%016x", s.prefix, uint64(key.ID()))
}

// Get returns the vector stored for key.
func (s *Store) Get(ctx context.Context, key core.EmbeddingKey) ([]float32, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, storage.ErrNotFound
		}
		return nil, s.wrap(err)
	}

	entry, err := storage.UnmarshalEntry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	if entry.Key != key {
		s.logger.Warn("embedding key collision", "model", key.Model)
		return nil, storage.ErrNotFound
	}
	return entry.Vector, nil
}

// Put stores vector under key.
func (s *Store) Put(ctx context.Context, key core.EmbeddingKey, vector []float32) error {
	value := storage.MarshalEntry(&core.EmbeddingCacheEntry{Key: key, Vector: vector})
	return s.wrap(s.client.Set(ctx, s.key(key), value, s.ttl).Err())
}

// Delete removes the vector stored under key.
func (s *Store) Delete(ctx context.Context, key core.EmbeddingKey) error {
	return s.wrap(s.client.Del(ctx, s.key(key)).Err())
}

// Close closes the client.
func (s *Store) Close() error {
	err := s.client.Close()
	if errors.Is(err, redis.ErrClosed) {
		return nil
	}
	return err
}

func (s *Store) wrap(err error) error {
	if errors.Is(err, redis.ErrClosed) {
		return storage.ErrStorageClosed
	}
	return err
}
