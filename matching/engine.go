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


package matching

import (
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/extract"
)

// Engine ranks candidates for a profile and profiles for a candidate.
// It is safe for concurrent use.
type Engine struct {
	oracle    ai.Oracle
	extractor *extract.Extractor
	pool      *ants.Pool
	logger    *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine) error

// WithPoolSize sets the number of entries scored concurrently.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(e *Engine) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if e.pool != nil {
			e.pool.Release()
		}
		e.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewEngine creates a matching engine.
func NewEngine(oracle ai.Oracle, extractor *extract.Extractor, opts ...Option) (*Engine, error) {
	if oracle == nil {
		return nil, ErrOracleRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	e := &Engine{
		oracle:    oracle,
		extractor: extractor,
		pool:      pool,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if err := opt(e); err != nil {
			e.Release()
			return nil, err
		}
	}
	e.logger = e.logger.With("component", "matching")

	return e, nil
}

// Release releases the worker pool. The engine should not be used afterwards.
func (e *Engine) Release() {
	if e.pool != nil {
		e.pool.Release()
	}
}

// runAll runs job for every index on the pool and waits for all of them.
// If the pool rejects a task it runs on the calling goroutine.
func (e *Engine) runAll(n int, job func(i int)) {
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		err := e.pool.Submit(func() {
			defer wg.Done()
			job(i)
		})
		if err != nil {
			e.logger.Debug("worker pool rejected task, running inline", "err", err)
			job(i)
			wg.Done()
		}
	}
	wg.Wait()
}
