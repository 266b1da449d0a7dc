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


package skillmatch

import (
	"context"
	"log/slog"
	"sync"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/ai/openai"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/extract"
	"github.com/poiesic/skillmatch/gaps"
	"github.com/poiesic/skillmatch/matching"
	"github.com/poiesic/skillmatch/oracle"
	"github.com/poiesic/skillmatch/storage"
	"github.com/poiesic/skillmatch/storage/badger"
	"github.com/poiesic/skillmatch/storage/redis"
	"github.com/poiesic/skillmatch/warmup"
)

// Service wires an oracle, extractor, matching engine and gap analyzer
// around one configuration.
type Service struct {
	config    *Config
	store     storage.EmbeddingStore
	oracle    *oracle.Oracle
	extractor *extract.Extractor
	engine    *matching.Engine
	analyzer  *gaps.Analyzer
	logger    *slog.Logger

	closeOnce sync.Once
	closeErr  error
}

// ServiceOption configures a Service.
type ServiceOption func(*serviceOptions)

type serviceOptions struct {
	factory ai.ProviderFactory
	logger  *slog.Logger
}

// WithProviderFactory replaces the OpenAI-compatible provider built from
// the configuration.
func WithProviderFactory(factory ai.ProviderFactory) ServiceOption {
	return func(o *serviceOptions) {
		o.factory = factory
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ServiceOption {
	return func(o *serviceOptions) {
		if logger == nil {
			logger = slog.Default()
		}
		o.logger = logger
	}
}

// NewService validates config and builds every component. The embedding
// model itself is not contacted until first use.
func NewService(ctx context.Context, config *Config, opts ...ServiceOption) (*Service, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	options := &serviceOptions{logger: slog.Default()}
	for _, opt := range opts {
		opt(options)
	}
	aiConfig := config.EmbeddingConfig()
	if options.factory == nil {
		options.factory = openai.Factory(aiConfig)
	}
	logger := options.logger

	store, err := openStore(ctx, config.Store, logger)
	if err != nil {
		return nil, err
	}

	oracleOpts := []oracle.Option{
		oracle.WithCapacity(config.CacheCapacity),
		oracle.WithTimeout(config.EmbedTimeout),
		oracle.WithModelID(aiConfig.EmbeddingModel),
		oracle.WithLogger(logger),
	}
	if store != nil {
		oracleOpts = append(oracleOpts, oracle.WithStore(store))
	}
	o, err := oracle.New(options.factory, oracleOpts...)
	if err != nil {
		closeStore(store, logger)
		return nil, err
	}

	extractOpts := []extract.Option{
		extract.WithTopK(config.TopK),
		extract.WithLogger(logger),
	}
	if config.UseSemantic {
		extractOpts = append(extractOpts, extract.WithOracle(o))
	}
	extractor, err := extract.NewExtractor(extract.NewVocabulary(config.Vocabulary), extractOpts...)
	if err != nil {
		o.Close()
		closeStore(store, logger)
		return nil, err
	}

	engineOpts := []matching.Option{matching.WithLogger(logger)}
	if config.PoolSize > 0 {
		engineOpts = append(engineOpts, matching.WithPoolSize(config.PoolSize))
	}
	engine, err := matching.NewEngine(o, extractor, engineOpts...)
	if err != nil {
		o.Close()
		closeStore(store, logger)
		return nil, err
	}

	analyzer, err := gaps.NewAnalyzer(extractor, gaps.WithLogger(logger))
	if err != nil {
		engine.Release()
		o.Close()
		closeStore(store, logger)
		return nil, err
	}

	return &Service{
		config:    config,
		store:     store,
		oracle:    o,
		extractor: extractor,
		engine:    engine,
		analyzer:  analyzer,
		logger:    logger,
	}, nil
}

func openStore(ctx context.Context, config StoreConfig, logger *slog.Logger) (storage.EmbeddingStore, error) {
	switch config.Type {
	case StoreBadger:
		return badger.OpenEmbeddingStore(config.Path, config.InMemory,
			badger.WithTTL(config.TTL), badger.WithLogger(logger))
	case StoreRedis:
		opts := []redis.Option{redis.WithTTL(config.TTL), redis.WithLogger(logger)}
		if config.Prefix != "" {
			opts = append(opts, redis.WithPrefix(config.Prefix))
		}
		return redis.Open(ctx, config.URL, opts...)
	default:
		return nil, nil
	}
}

func closeStore(store storage.EmbeddingStore, logger *slog.Logger) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		logger.Error("error closing embedding store", "err", err)
	}
}

// Close releases the worker pool, the model handle and the store, in that
// order. The first error is returned after everything has been closed.
// Later calls return the same result.
func (s *Service) Close() error {
	s.closeOnce.Do(func() {
		s.engine.Release()

		if err := s.oracle.Close(); err != nil {
			s.logger.Error("error closing oracle", "err", err)
			s.closeErr = err
		}
		if s.store != nil {
			if err := s.store.Close(); err != nil {
				s.logger.Error("error closing embedding store", "err", err)
				if s.closeErr == nil {
					s.closeErr = err
				}
			}
		}
	})
	return s.closeErr
}

// Config returns the configuration the service was built from.
func (s *Service) Config() *Config {
	return s.config
}

// Oracle returns the shared similarity oracle.
func (s *Service) Oracle() *oracle.Oracle {
	return s.oracle
}

// Extractor returns the skill extractor.
func (s *Service) Extractor() *extract.Extractor {
	return s.extractor
}

// Engine returns the matching engine.
func (s *Service) Engine() *matching.Engine {
	return s.engine
}

// Analyzer returns the gap analyzer.
func (s *Service) Analyzer() *gaps.Analyzer {
	return s.analyzer
}

// Extract returns up to the configured number of vocabulary terms for text.
func (s *Service) Extract(ctx context.Context, text string) []string {
	return s.extractor.Extract(ctx, text, s.config.TopK)
}

// RankTasks orders candidates for a volunteer profile.
func (s *Service) RankTasks(ctx context.Context, profile core.SkillProfile, candidates []core.Candidate) (core.Ranking, error) {
	return s.engine.RankCandidatesForProfile(ctx, profile, candidates, s.config.UseSemantic)
}

// RankVolunteers orders volunteer profiles for a candidate.
func (s *Service) RankVolunteers(ctx context.Context, candidate core.Candidate, profiles []core.SkillProfile) (core.Ranking, error) {
	return s.engine.RankProfilesForCandidate(ctx, candidate, profiles, s.config.UseSemantic)
}

// Recommend shortlists volunteers for a candidate that needs numRequired people.
func (s *Service) Recommend(ctx context.Context, candidate core.Candidate, profiles []core.SkillProfile, numRequired int) (core.Ranking, error) {
	return s.engine.RecommendProfiles(ctx, candidate, profiles, numRequired, s.config.Threshold, s.config.UseSemantic)
}

// AnalyzeEvent reports an event's skill coverage by volunteers.
func (s *Service) AnalyzeEvent(ctx context.Context, event core.Candidate, volunteers []core.SkillProfile) (*gaps.Report, error) {
	return s.analyzer.Analyze(ctx, event, volunteers)
}

// NewWarmer creates a warmer that fills this service's oracle.
func (s *Service) NewWarmer(config warmup.Config, opts ...warmup.Option) (*warmup.Warmer, error) {
	opts = append([]warmup.Option{warmup.WithLogger(s.logger)}, opts...)
	return warmup.NewWarmer(s.oracle, config, opts...)
}

// Warm embeds the vocabulary and every text ranking would embed for
// candidates and profiles.
func (s *Service) Warm(ctx context.Context, w *warmup.Warmer, candidates []core.Candidate, profiles []core.SkillProfile) (warmup.Result, error) {
	texts := warmup.Texts(ctx, s.extractor, candidates, profiles)
	return w.Run(ctx, s.extractor.Vocabulary().Terms(), texts)
}
