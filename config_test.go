package skillmatch

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/poiesic/skillmatch/extract"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "skillmatch.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("empty path gives defaults", func(t *testing.T) {
		config, err := LoadConfig("")
		require.NoError(t, err)
		assert.Equal(t, extract.DefaultTerms, config.Vocabulary)
		assert.True(t, config.UseSemantic)
		assert.Equal(t, StoreNone, config.Store.Type)
	})

	t.Run("overrides", func(t *testing.T) {
		path := writeConfig(t, `
skillmatch:
  use_semantic: false
  top_k: 5
  embed_timeout: 250ms
  pool_size: 2
  recommend_threshold: 0.4
  vocabulary:
    - python
    - data science
  ai:
    host: http://embeddings:8080
    model: text-embedding-3-small
  store:
    type: badger
    path: /var/lib/skillmatch
    ttl: 24h
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)

		assert.False(t, config.UseSemantic)
		assert.Equal(t, 5, config.TopK)
		assert.Equal(t, 250*time.Millisecond, config.EmbedTimeout)
		assert.Equal(t, 2, config.PoolSize)
		assert.Equal(t, 0.4, config.Threshold)
		assert.Equal(t, []string{"python", "data science"}, config.Vocabulary)
		assert.Equal(t, "http://embeddings:8080", config.AI.Host)
		assert.Equal(t, "text-embedding-3-small", config.AI.Model)
		assert.Equal(t, "none", config.AI.Token, "unset keys keep their defaults")
		assert.Equal(t, StoreBadger, config.Store.Type)
		assert.Equal(t, 24*time.Hour, config.Store.TTL)
		assert.Equal(t, "http://embeddings:8080/v1", config.EmbeddingConfig().EmbeddingHost)
	})

	t.Run("comma separated vocabulary", func(t *testing.T) {
		path := writeConfig(t, `
skillmatch:
  vocabulary: "finance, , deep learning,sales "
`)
		config, err := LoadConfig(path)
		require.NoError(t, err)
		assert.Equal(t, []string{"finance", "deep learning", "sales"}, config.Vocabulary)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		assert.ErrorIs(t, err, ErrInvalidConfig)
	})

	t.Run("invalid values", func(t *testing.T) {
		for name, body := range map[string]string{
			"empty vocabulary":  "skillmatch:\n  vocabulary: []\n",
			"unknown store":     "skillmatch:\n  store:\n    type: sqlite\n",
			"redis without url": "skillmatch:\n  store:\n    type: redis\n",
			"bad threshold":     "skillmatch:\n  recommend_threshold: 3\n",
			"zero timeout":      "skillmatch:\n  embed_timeout: 0s\n",
		} {
			t.Run(name, func(t *testing.T) {
				_, err := LoadConfig(writeConfig(t, body))
				assert.ErrorIs(t, err, ErrInvalidConfig)
			})
		}
	})
}

func TestConfig_Validate(t *testing.T) {
	config := DefaultConfig()
	require.NoError(t, config.Validate())

	config.Store = StoreConfig{Type: StoreBadger, InMemory: true}
	assert.NoError(t, config.Validate())

	config.Store = StoreConfig{Type: StoreBadger}
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)

	config = DefaultConfig()
	config.AI.Model = ""
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)

	config = DefaultConfig()
	config.TopK = 0
	assert.ErrorIs(t, config.Validate(), ErrInvalidConfig)
}
