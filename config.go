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
	"fmt"
	"strings"
	"time"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/extract"
	"github.com/poiesic/skillmatch/matching"
	"github.com/poiesic/skillmatch/oracle"
	"github.com/spf13/cast"
	"github.com/spf13/viper"
)

// Store types accepted in StoreConfig.Type.
const (
	StoreNone   = "none"
	StoreBadger = "badger"
	StoreRedis  = "redis"
)

const configSection = "skillmatch"

// AIConfig selects the embedding service.
type AIConfig struct {
	Host  string `mapstructure:"host"`
	Model string `mapstructure:"model"`
	Token string `mapstructure:"token"`
}

// StoreConfig selects where embeddings persist between runs.
type StoreConfig struct {
	Type     string        `mapstructure:"type"`
	Path     string        `mapstructure:"path"`
	InMemory bool          `mapstructure:"in_memory"`
	URL      string        `mapstructure:"url"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// Config holds everything a Service needs.
type Config struct {
	// Vocabulary is decoded separately so it may be written either as a
	// list or as one comma separated string.
	Vocabulary []string `mapstructure:"-"`

	UseSemantic   bool          `mapstructure:"use_semantic"`
	TopK          int           `mapstructure:"top_k"`
	CacheCapacity int           `mapstructure:"cache_capacity"`
	EmbedTimeout  time.Duration `mapstructure:"embed_timeout"`
	PoolSize      int           `mapstructure:"pool_size"`
	Threshold     float64       `mapstructure:"recommend_threshold"`
	AI            AIConfig      `mapstructure:"ai"`
	Store         StoreConfig   `mapstructure:"store"`
}

// DefaultConfig returns a configuration that works against a local
// OpenAI-compatible embedding server with no persistent store.
func DefaultConfig() *Config {
	defaults := ai.DefaultConfig()
	return &Config{
		Vocabulary:    append([]string(nil), extract.DefaultTerms...),
		UseSemantic:   true,
		TopK:          extract.DefaultTopK,
		CacheCapacity: oracle.DefaultCapacity,
		EmbedTimeout:  oracle.DefaultTimeout,
		Threshold:     matching.DefaultThreshold,
		AI: AIConfig{
			Host:  defaults.EmbeddingHost,
			Model: defaults.EmbeddingModel,
			Token: defaults.Token,
		},
		Store: StoreConfig{Type: StoreNone},
	}
}

// LoadConfig reads the "skillmatch" section of a YAML file over the
// defaults. An empty path returns the defaults.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	if path == "" {
		return config, config.Validate()
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if err := v.UnmarshalKey(configSection, config); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	if raw := v.Get(configSection + ".vocabulary"); raw != nil {
		terms, err := parseVocabulary(raw)
		if err != nil {
			return nil, err
		}
		config.Vocabulary = terms
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

func parseVocabulary(raw any) ([]string, error) {
	if s, ok := raw.(string); ok {
		raw = strings.Split(s, ",")
	}
	items, err := cast.ToStringSliceE(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: vocabulary: %w", ErrInvalidConfig, err)
	}
	terms := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			terms = append(terms, item)
		}
	}
	return terms, nil
}

// EmbeddingConfig converts the embedding settings to a normalized ai.Config.
func (c *Config) EmbeddingConfig() *ai.Config {
	config := ai.NewConfig(
		ai.WithEmbeddingHost(c.AI.Host),
		ai.WithEmbeddingModel(c.AI.Model),
		ai.WithToken(c.AI.Token),
	)
	config.Normalize()
	return config
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if len(c.Vocabulary) == 0 {
		return fmt.Errorf("%w: vocabulary is empty", ErrInvalidConfig)
	}
	if c.TopK <= 0 {
		return fmt.Errorf("%w: top_k must be positive", ErrInvalidConfig)
	}
	if c.CacheCapacity <= 0 {
		return fmt.Errorf("%w: cache_capacity must be positive", ErrInvalidConfig)
	}
	if c.EmbedTimeout <= 0 {
		return fmt.Errorf("%w: embed_timeout must be positive", ErrInvalidConfig)
	}
	if c.PoolSize < 0 {
		return fmt.Errorf("%w: pool_size must not be negative", ErrInvalidConfig)
	}
	if c.Threshold < -1 || c.Threshold > 1 {
		return fmt.Errorf("%w: recommend_threshold must be within [-1, 1]", ErrInvalidConfig)
	}
	if err := c.EmbeddingConfig().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}

	switch c.Store.Type {
	case "", StoreNone:
	case StoreBadger:
		if c.Store.Path == "" && !c.Store.InMemory {
			return fmt.Errorf("%w: badger store needs a path", ErrInvalidConfig)
		}
	case StoreRedis:
		if c.Store.URL == "" {
			return fmt.Errorf("%w: redis store needs a url", ErrInvalidConfig)
		}
	default:
		return fmt.Errorf("%w: unknown store type %q", ErrInvalidConfig, c.Store.Type)
	}
	if c.Store.TTL < 0 {
		return fmt.Errorf("%w: store ttl must not be negative", ErrInvalidConfig)
	}
	return nil
}
