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


package warmup

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/extract"
)

// Target is what a Warmer fills. *oracle.Oracle satisfies it.
type Target interface {
	EmbedVocabulary(ctx context.Context, terms []string) ([][]float32, error)
	Warm(ctx context.Context, texts []string) (int, error)
}

// Config controls batching and retries.
type Config struct {
	BatchSize      int
	ReportInterval int
	MaxRetries     int
	RetryDelay     time.Duration
}

// DefaultConfig returns the settings used by the CLI.
func DefaultConfig() Config {
	return Config{
		BatchSize:      32,
		ReportInterval: 64,
		MaxRetries:     3,
		RetryDelay:     500 * time.Millisecond,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	if c.BatchSize <= 0 {
		return ErrInvalidBatchSize
	}
	if c.MaxRetries <= 0 {
		return ErrInvalidMaxAttempts
	}
	return nil
}

// Result summarises a warm run.
type Result struct {
	Terms         int
	Texts         int
	Embedded      int
	FailedBatches int
	Elapsed       time.Duration
}

// Warmer pre-computes embeddings so later ranking calls hit the cache or
// the persistent store.
type Warmer struct {
	target   Target
	config   Config
	progress io.Writer
	logger   *slog.Logger
}

// Option configures a Warmer.
type Option func(*Warmer)

// WithProgress sets where progress lines are written. Default is none.
func WithProgress(w io.Writer) Option {
	return func(wm *Warmer) {
		wm.progress = w
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(wm *Warmer) {
		if logger == nil {
			logger = slog.Default()
		}
		wm.logger = logger
	}
}

// NewWarmer creates a Warmer.
func NewWarmer(target Target, config Config, opts ...Option) (*Warmer, error) {
	if target == nil {
		return nil, ErrTargetRequired
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	w := &Warmer{
		target: target,
		config: config,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("component", "warmup")
	return w, nil
}

// Run embeds the vocabulary, then texts in batches. A vocabulary failure
// aborts the run. A batch that still fails after retries is skipped and
// counted in Result.FailedBatches. Cancelling ctx stops the run with
// ctx's error.
func (w *Warmer) Run(ctx context.Context, vocabulary []string, texts []string) (Result, error) {
	start := time.Now()
	result := Result{Terms: len(vocabulary), Texts: len(texts)}

	if len(vocabulary) > 0 {
		err := RetryWithBackoff(ctx, w.logger, func() error {
			_, err := w.target.EmbedVocabulary(ctx, vocabulary)
			return err
		}, w.config.MaxRetries, w.config.RetryDelay)
		if err != nil {
			return result, fmt.Errorf("embedding vocabulary: %w", err)
		}
	}

	tracker := NewProgressTracker(w.progress, "Warming", len(texts), w.config.ReportInterval)
	tracker.Start()
	defer tracker.Finish()

	for batchStart := 0; batchStart < len(texts); batchStart += w.config.BatchSize {
		batch := texts[batchStart:min(batchStart+w.config.BatchSize, len(texts))]

		var embedded int
		err := RetryWithBackoff(ctx, w.logger, func() error {
			n, err := w.target.Warm(ctx, batch)
			embedded = n
			return err
		}, w.config.MaxRetries, w.config.RetryDelay)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				result.Elapsed = time.Since(start)
				return result, err
			}
			w.logger.Warn("skipping batch", "offset", batchStart, "size", len(batch), "err", err)
			result.FailedBatches++
			continue
		}

		result.Embedded += embedded
		tracker.Increment(len(batch))
	}

	result.Elapsed = time.Since(start)
	w.logger.Info("warm complete", "terms", result.Terms, "texts", result.Texts,
		"embedded", result.Embedded, "failedBatches", result.FailedBatches, "elapsed", result.Elapsed)
	return result, nil
}

// Texts collects the texts ranking will embed for candidates and profiles,
// without duplicates, in first-seen order. Each candidate contributes its
// context text with resolved skills, as do its tasks.
func Texts(ctx context.Context, extractor *extract.Extractor, candidates []core.Candidate, profiles []core.SkillProfile) []string {
	var out []string
	seen := make(map[string]struct{})
	add := func(text string) {
		if text == "" {
			return
		}
		if _, ok := seen[text]; ok {
			return
		}
		seen[text] = struct{}{}
		out = append(out, text)
	}

	var walk func(cs []core.Candidate)
	walk = func(cs []core.Candidate) {
		for _, c := range cs {
			add(c.ContextText(extractor.ExtractFromCandidate(ctx, c).Skills))
			walk(c.Children)
		}
	}
	walk(candidates)

	for _, p := range profiles {
		add(p.EmbeddingText())
	}
	return out
}
