package oracle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/storage"
	"golang.org/x/sync/singleflight"
)

// Oracle caches embeddings in front of a lazily constructed model and
// computes similarities. It is safe for concurrent use.
//
// Returned vectors are shared with the cache and must not be modified.
type Oracle struct {
	factory  ai.ProviderFactory
	modelID  string
	capacity int
	timeout  time.Duration
	store    storage.EmbeddingStore
	logger   *slog.Logger

	cache *lru.Cache[core.EmbeddingKey, []float32]
	group singleflight.Group

	vocabMu sync.RWMutex
	vocab   map[string][]float32

	initMu sync.Mutex
	handle atomic.Pointer[modelHandle]
	closed atomic.Bool

	hits          atomic.Int64
	misses        atomic.Int64
	evictions     atomic.Int64
	storeHits     atomic.Int64
	modelCalls    atomic.Int64
	failures      atomic.Int64
	constructions atomic.Int64
}

var _ ai.Oracle = (*Oracle)(nil)

type modelHandle struct {
	provider ai.Provider
	embedder ai.Embedder
}

// New creates an oracle. The factory is not called until a model call is needed.
func New(factory ai.ProviderFactory, opts ...Option) (*Oracle, error) {
	if factory == nil {
		return nil, ErrProviderFactoryRequired
	}

	o := &Oracle{
		factory:  factory,
		modelID:  DefaultModelID,
		capacity: DefaultCapacity,
		timeout:  DefaultTimeout,
		logger:   slog.Default(),
		vocab:    make(map[string][]float32),
	}

	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, err
		}
	}
	o.logger = o.logger.With("component", "oracle", "model", o.modelID)

	cache, err := lru.NewWithEvict(o.capacity, func(core.EmbeddingKey, []float32) {
		o.evictions.Add(1)
	})
	if err != nil {
		return nil, fmt.Errorf("create embedding cache: %w", err)
	}
	o.cache = cache

	return o, nil
}

// ModelID returns the model name used to namespace cached embeddings.
func (o *Oracle) ModelID() string {
	return o.modelID
}

// Similarity returns the cosine similarity of two vectors.
func (o *Oracle) Similarity(a, b []float32) float64 {
	return Cosine(a, b)
}

// Embed returns the embedding of text, consulting the LRU, then the store,
// then the model. Concurrent misses for the same text share one model call.
func (o *Oracle) Embed(ctx context.Context, text string) ([]float32, error) {
	key := core.EmbeddingKey{Model: o.modelID, Text: text}
	if vec, ok := o.cache.Get(key); ok {
		o.hits.Add(1)
		return vec, nil
	}
	o.misses.Add(1)

	// The flight outlives any single caller; each caller waits on its own ctx.
	flightCtx := context.WithoutCancel(ctx)
	ch := o.group.DoChan(text, func() (any, error) {
		// another flight may have filled it
		if vec, ok := o.cache.Peek(key); ok {
			return vec, nil
		}
		if vec, ok := o.fromStore(flightCtx, key); ok {
			o.cache.Add(key, vec)
			return vec, nil
		}

		vec, err := o.embedOne(flightCtx, text)
		if err != nil {
			return nil, err
		}
		o.cache.Add(key, vec)
		o.toStore(flightCtx, key, vec)
		return vec, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.([]float32), nil
	case <-ctx.Done():
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, ctx.Err())
	}
}

// EmbedVocabulary returns embeddings for terms in order. Vocabulary vectors
// are pinned: they are never evicted and each term is embedded at most once.
func (o *Oracle) EmbedVocabulary(ctx context.Context, terms []string) ([][]float32, error) {
	out := make([][]float32, len(terms))
	if o.lookupVocabulary(terms, out) {
		return out, nil
	}

	o.vocabMu.Lock()
	defer o.vocabMu.Unlock()

	var missing []string
	seen := make(map[string]struct{})
	for i, term := range terms {
		if vec, ok := o.vocab[term]; ok {
			out[i] = vec
			continue
		}
		if _, dup := seen[term]; dup {
			continue
		}
		seen[term] = struct{}{}

		key := core.EmbeddingKey{Model: o.modelID, Text: term}
		if vec, ok := o.fromStore(ctx, key); ok {
			o.vocab[term] = vec
			continue
		}
		missing = append(missing, term)
	}

	if len(missing) > 0 {
		vecs, err := o.embedBatch(ctx, missing)
		if err != nil {
			return nil, err
		}
		for i, term := range missing {
			o.vocab[term] = vecs[i]
			o.toStore(ctx, core.EmbeddingKey{Model: o.modelID, Text: term}, vecs[i])
		}
	}

	for i, term := range terms {
		out[i] = o.vocab[term]
	}
	return out, nil
}

func (o *Oracle) lookupVocabulary(terms []string, out [][]float32) bool {
	o.vocabMu.RLock()
	defer o.vocabMu.RUnlock()
	for i, term := range terms {
		vec, ok := o.vocab[term]
		if !ok {
			return false
		}
		out[i] = vec
	}
	return true
}

// Warm embeds every text not yet cached with a single batched model call and
// caches the results. It returns the number of texts sent to the model.
func (o *Oracle) Warm(ctx context.Context, texts []string) (int, error) {
	var missing []string
	seen := make(map[string]struct{})
	for _, text := range texts {
		if _, dup := seen[text]; dup {
			continue
		}
		seen[text] = struct{}{}

		key := core.EmbeddingKey{Model: o.modelID, Text: text}
		if o.cache.Contains(key) {
			continue
		}
		if vec, ok := o.fromStore(ctx, key); ok {
			o.cache.Add(key, vec)
			continue
		}
		missing = append(missing, text)
	}
	if len(missing) == 0 {
		return 0, nil
	}

	vecs, err := o.embedBatch(ctx, missing)
	if err != nil {
		return 0, err
	}
	for i, text := range missing {
		key := core.EmbeddingKey{Model: o.modelID, Text: text}
		o.cache.Add(key, vecs[i])
		o.toStore(ctx, key, vecs[i])
	}
	return len(missing), nil
}

// Purge empties the LRU. Pinned vocabulary vectors are kept.
func (o *Oracle) Purge() {
	o.cache.Purge()
}

// Close purges the caches and releases the model handle, if one was built.
// Later calls that need the model fail with ErrUnavailable.
func (o *Oracle) Close() error {
	o.initMu.Lock()
	defer o.initMu.Unlock()

	if o.closed.Swap(true) {
		return nil
	}
	o.cache.Purge()
	o.vocabMu.Lock()
	o.vocab = make(map[string][]float32)
	o.vocabMu.Unlock()

	if h := o.handle.Swap(nil); h != nil {
		return h.provider.Close()
	}
	return nil
}

// embedder returns the model, constructing it on first use.
func (o *Oracle) embedder() (ai.Embedder, error) {
	if h := o.handle.Load(); h != nil {
		return h.embedder, nil
	}

	o.initMu.Lock()
	defer o.initMu.Unlock()

	if o.closed.Load() {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, errClosed)
	}
	if h := o.handle.Load(); h != nil {
		return h.embedder, nil
	}

	o.logger.Debug("constructing embedding model")
	provider, err := o.factory()
	if err != nil {
		o.logger.Warn("embedding model construction failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	if provider == nil {
		return nil, fmt.Errorf("%w: provider has no embedder", ErrUnavailable)
	}
	if provider.Embedder() == nil {
		if err := provider.Close(); err != nil {
			o.logger.Warn("closing provider without embedder failed", "err", err)
		}
		return nil, fmt.Errorf("%w: provider has no embedder", ErrUnavailable)
	}

	o.constructions.Add(1)
	h := &modelHandle{provider: provider, embedder: provider.Embedder()}
	o.handle.Store(h)
	return h.embedder, nil
}

func (o *Oracle) embedOne(ctx context.Context, text string) ([]float32, error) {
	embedder, err := o.embedder()
	if err != nil {
		o.failures.Add(1)
		return nil, err
	}

	vec, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) ([]float32, error) {
		return embedder.EmbedText(ctx, text)
	})
	o.modelCalls.Add(1)
	if err == nil && (len(vec) == 0 || isZero(vec)) {
		err = errors.New("model returned an empty embedding")
	}
	if err != nil {
		o.failures.Add(1)
		o.logger.Warn("embedding failed", "text_length", len(text), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return vec, nil
}

func (o *Oracle) embedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	embedder, err := o.embedder()
	if err != nil {
		o.failures.Add(1)
		return nil, err
	}

	vecs, err := callWithTimeout(ctx, o.timeout, func(ctx context.Context) ([][]float32, error) {
		return embedder.EmbedTexts(ctx, texts)
	})
	o.modelCalls.Add(1)
	if err == nil && len(vecs) != len(texts) {
		err = fmt.Errorf("model returned %d embeddings for %d texts", len(vecs), len(texts))
	}
	if err == nil {
		for i, vec := range vecs {
			if len(vec) == 0 || isZero(vec) {
				err = fmt.Errorf("model returned an empty embedding for text %d", i)
				break
			}
		}
	}
	if err != nil {
		o.failures.Add(1)
		o.logger.Warn("batch embedding failed", "count", len(texts), "err", err)
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return vecs, nil
}

// callWithTimeout runs fn with a deadline and returns as soon as the deadline
// passes, even if fn ignores its context. fn's result is then discarded.
func callWithTimeout[T any](ctx context.Context, timeout time.Duration, fn func(ctx context.Context) (T, error)) (T, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type result struct {
		value T
		err   error
	}
	done := make(chan result, 1)
	go func() {
		v, err := fn(ctx)
		done <- result{value: v, err: err}
	}()

	select {
	case r := <-done:
		return r.value, r.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

func (o *Oracle) fromStore(ctx context.Context, key core.EmbeddingKey) ([]float32, bool) {
	if o.store == nil {
		return nil, false
	}
	vec, err := o.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			o.logger.Warn("embedding store read failed", "err", err)
		}
		return nil, false
	}
	if len(vec) == 0 || isZero(vec) {
		return nil, false
	}
	o.storeHits.Add(1)
	return vec, true
}

func (o *Oracle) toStore(ctx context.Context, key core.EmbeddingKey, vec []float32) {
	if o.store == nil {
		return
	}
	if err := o.store.Put(ctx, key, vec); err != nil {
		o.logger.Warn("embedding store write failed", "err", err)
	}
}
