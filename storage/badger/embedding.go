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


package badger

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
)

// EmbeddingStore implements storage.EmbeddingStore for BadgerDB.
type EmbeddingStore struct {
	backend     *Backend
	ttl         time.Duration
	ownsBackend bool
	logger      *slog.Logger
}

var _ storage.EmbeddingStore = (*EmbeddingStore)(nil)

// StoreOption configures an EmbeddingStore.
type StoreOption func(*EmbeddingStore) error

// WithTTL expires stored embeddings after ttl. Zero keeps them forever.
func WithTTL(ttl time.Duration) StoreOption {
	return func(s *EmbeddingStore) error {
		if ttl < 0 {
			return fmt.Errorf("ttl must not be negative: %s", ttl)
		}
		s.ttl = ttl
		return nil
	}
}

// WithLogger sets the logger for the store.
// If nil, the default logger is used.
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *EmbeddingStore) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger.With("component", "badger-embedding-store")
		return nil
	}
}

// NewEmbeddingStore creates a store on an existing backend.
// The caller keeps ownership of the backend.
func NewEmbeddingStore(backend *Backend, opts ...StoreOption) (*EmbeddingStore, error) {
	s := &EmbeddingStore{
		backend: backend,
		logger:  slog.Default().With("component", "badger-embedding-store"),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// OpenEmbeddingStore opens a backend at path and creates a store that owns it.
func OpenEmbeddingStore(path string, inMemory bool, opts ...StoreOption) (*EmbeddingStore, error) {
	backend, err := OpenBackend(path, inMemory)
	if err != nil {
		return nil, err
	}
	s, err := NewEmbeddingStore(backend, opts...)
	if err != nil {
		backend.Close()
		return nil, err
	}
	s.ownsBackend = true
	return s, nil
}

// Close closes the backend if the store opened it.
func (s *EmbeddingStore) Close() error {
	if !s.ownsBackend || s.backend.IsClosed() {
		return nil
	}
	return s.backend.Close()
}

// Get returns the vector stored for key.
func (s *EmbeddingStore) Get(ctx context.Context, key core.EmbeddingKey) ([]float32, error) {
	if s.backend.IsClosed() {
		return nil, storage.ErrStorageClosed
	}

	var entry *core.EmbeddingCacheEntry
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		entry, err = readEntry(tx, makeEmbeddingKey(key))
		return err
	}, false)
	if err != nil {
		return nil, err
	}

	if entry == nil {
		return nil, storage.ErrNotFound
	}
	if entry.Key != key {
		s.logger.Warn("embedding key collision", "model", key.Model, "stored_text_length", len(entry.Key.Text))
		return nil, storage.ErrNotFound
	}
	return entry.Vector, nil
}

// Put stores vector under key.
func (s *EmbeddingStore) Put(ctx context.Context, key core.EmbeddingKey, vector []float32) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	value := storage.MarshalEntry(&core.EmbeddingCacheEntry{Key: key, Vector: vector})
	return s.backend.WithTx(func(tx *badger.Txn) error {
		e := badger.NewEntry(makeEmbeddingKey(key), value)
		if s.ttl > 0 {
			e = e.WithTTL(s.ttl)
		}
		if err := tx.SetEntry(e); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Delete removes the vector stored under key.
func (s *EmbeddingStore) Delete(ctx context.Context, key core.EmbeddingKey) error {
	if s.backend.IsClosed() {
		return storage.ErrStorageClosed
	}

	return s.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeEmbeddingKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Count returns the number of stored embeddings.
func (s *EmbeddingStore) Count(ctx context.Context) (int, error) {
	if s.backend.IsClosed() {
		return 0, storage.ErrStorageClosed
	}

	count := 0
	err := s.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(embeddingPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			count++
		}
		return nil
	}, false)
	return count, err
}

// readEntry reads an entry within a transaction. Returns nil if not found.
func readEntry(tx *badger.Txn, key []byte) (*core.EmbeddingCacheEntry, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var entry *core.EmbeddingCacheEntry
	err = item.Value(func(val []byte) error {
		var err error
		entry, err = storage.UnmarshalEntry(val)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", storage.ErrSerializationFailed, err)
	}
	return entry, nil
}
