package extract

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/poiesic/skillmatch/ai/mock"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// conceptVectors embeds each vocabulary term as its own axis. Texts that talk
// about budgets point mostly at finance, then management, then sales.
func conceptVectors(terms []string) func(ctx context.Context, text string) ([]float32, error) {
	index := make(map[string]int, len(terms))
	for i, term := range terms {
		index[term] = i
	}
	return func(_ context.Context, text string) ([]float32, error) {
		vec := make([]float32, len(terms)+1)
		vec[len(terms)] = 0.01
		if i, ok := index[text]; ok {
			vec[i] = 1
		}
		if strings.Contains(strings.ToLower(text), "budget") {
			vec[index["finance"]] = 1
			vec[index["management"]] = 0.5
			vec[index["sales"]] = 0.2
		}
		return vec, nil
	}
}

func newSemanticExtractor(t *testing.T, opts ...Option) (*Extractor, *mock.MockEmbedder) {
	t.Helper()
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(conceptVectors(DefaultTerms))
	o, err := oracle.New(mock.NewMockProviderWithEmbedder(embedder).Factory())
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })

	e, err := NewExtractor(NewVocabulary(DefaultTerms), append([]Option{WithOracle(o)}, opts...)...)
	require.NoError(t, err)
	return e, embedder
}

func TestNewExtractor(t *testing.T) {
	t.Run("empty vocabulary", func(t *testing.T) {
		_, err := NewExtractor(NewVocabulary(nil))
		assert.ErrorIs(t, err, ErrEmptyVocabulary)
	})

	t.Run("semantic without oracle", func(t *testing.T) {
		_, err := NewExtractor(NewVocabulary(DefaultTerms), WithSemantic(true))
		assert.ErrorIs(t, err, ErrOracleRequired)
	})

	t.Run("invalid top-k", func(t *testing.T) {
		_, err := NewExtractor(NewVocabulary(DefaultTerms), WithTopK(0))
		assert.ErrorIs(t, err, ErrInvalidTopK)
	})
}

func TestExtract_Direct(t *testing.T) {
	e, err := NewExtractor(NewVocabulary(DefaultTerms))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("frequency order", func(t *testing.T) {
		got := e.Extract(ctx, "Sales training with marketing and sales", 3)
		assert.Equal(t, []string{"sales", "marketing"}, got)
	})

	t.Run("truncated to top-k", func(t *testing.T) {
		got := e.Extract(ctx, "finance, sales, marketing, statistics", 2)
		assert.Equal(t, []string{"finance", "marketing"}, got)
	})

	t.Run("default top-k", func(t *testing.T) {
		got := e.Extract(ctx, "finance, sales, marketing, statistics", 0)
		assert.Len(t, got, DefaultTopK)
	})

	t.Run("no semantic fallback", func(t *testing.T) {
		assert.Empty(t, e.Extract(ctx, "prepare the yearly budget", 3))
	})
}

func TestExtract_Semantic(t *testing.T) {
	ctx := context.Background()

	t.Run("fills from similarity", func(t *testing.T) {
		e, _ := newSemanticExtractor(t)
		got := e.Extract(ctx, "Help us prepare the yearly budget", 3)
		assert.Equal(t, []string{"finance", "management", "sales"}, got)
	})

	t.Run("direct matches come first", func(t *testing.T) {
		e, _ := newSemanticExtractor(t)
		got := e.Extract(ctx, "Marketing push to hit the budget", 3)
		assert.Equal(t, []string{"marketing", "finance", "management"}, got)
	})

	t.Run("no model call when direct path suffices", func(t *testing.T) {
		e, embedder := newSemanticExtractor(t)
		got := e.Extract(ctx, "sales, marketing, finance", 3)
		assert.Len(t, got, 3)
		assert.Equal(t, 0, embedder.CallCount())
	})

	t.Run("idempotent", func(t *testing.T) {
		e, _ := newSemanticExtractor(t)
		text := "Budget review with the sales team"
		assert.Equal(t, e.Extract(ctx, text, 3), e.Extract(ctx, text, 3))
	})

	t.Run("semantic disabled by option", func(t *testing.T) {
		e, embedder := newSemanticExtractor(t, WithSemantic(false))
		assert.Empty(t, e.Extract(ctx, "prepare the yearly budget", 3))
		assert.Equal(t, 0, embedder.CallCount())
	})

	t.Run("oracle unavailable keeps direct result", func(t *testing.T) {
		e, embedder := newSemanticExtractor(t)
		embedder.WithEmbedTextFunc(func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("model offline")
		})

		got := e.Extract(ctx, "Marketing push to hit the budget", 3)
		assert.Equal(t, []string{"marketing"}, got)
	})
}

func TestExtractFromCandidate(t *testing.T) {
	e, err := NewExtractor(NewVocabulary(DefaultTerms))
	require.NoError(t, err)
	ctx := context.Background()

	t.Run("explicit skills win", func(t *testing.T) {
		c := core.Candidate{
			ID:       "t1",
			Name:     "Sales drive",
			Skills:   core.NewSkillSet("Python", "Design"),
			Children: []core.Candidate{{ID: "c1", Skills: core.NewSkillSet("finance")}},
		}
		res := e.ExtractFromCandidate(ctx, c)
		assert.Equal(t, SourceExplicit, res.Source)
		assert.Equal(t, []string{"Python", "Design"}, res.Skills.Items())
	})

	t.Run("folds task skills", func(t *testing.T) {
		c := core.Candidate{
			ID:   "e1",
			Name: "Sales drive",
			Children: []core.Candidate{
				{ID: "t1", Skills: core.NewSkillSet("python", "design")},
				{ID: "t2", Skills: core.NewSkillSet("Design", "sales")},
				{ID: "t3", Children: []core.Candidate{{ID: "s1", Skills: core.NewSkillSet("finance")}}},
			},
		}
		res := e.ExtractFromCandidate(ctx, c)
		assert.Equal(t, SourceChildren, res.Source)
		assert.Equal(t, []string{"python", "design", "sales", "finance"}, res.Skills.Items())
	})

	t.Run("infers from display text", func(t *testing.T) {
		c := core.Candidate{ID: "t1", Name: "Marketing booth", Description: "Hand out marketing flyers and track sales"}
		res := e.ExtractFromCandidate(ctx, c)
		assert.Equal(t, SourceInferred, res.Source)
		assert.Equal(t, []string{"marketing", "sales"}, res.Skills.Items())
	})

	t.Run("nothing to resolve", func(t *testing.T) {
		res := e.ExtractFromCandidate(ctx, core.Candidate{ID: "t1", Name: "Gardening"})
		assert.Equal(t, SourceNone, res.Source)
		assert.True(t, res.Skills.IsEmpty())
		assert.Equal(t, "none", res.Source.String())
	})

	t.Run("explicit skills are copied", func(t *testing.T) {
		c := core.Candidate{ID: "t1", Skills: core.NewSkillSet("python")}
		res := e.ExtractFromCandidate(ctx, c)
		res.Skills.Add("design")
		assert.Equal(t, 1, c.Skills.Len())
	})
}
