package matching

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/poiesic/skillmatch/ai/mock"
	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/extract"
	"github.com/poiesic/skillmatch/oracle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// axisVectors puts python, design and sales on their own axes, with a small
// bias so no text embeds to the zero vector.
func axisVectors(_ context.Context, text string) ([]float32, error) {
	lower := strings.ToLower(text)
	vec := []float32{0, 0, 0, 0.1}
	for i, word := range []string{"python", "design", "sales"} {
		if strings.Contains(lower, word) {
			vec[i] = 1
		}
	}
	return vec, nil
}

func failingOn(substr string) func(context.Context, string) ([]float32, error) {
	return func(ctx context.Context, text string) ([]float32, error) {
		if strings.Contains(text, substr) {
			return nil, errors.New("model rejected input")
		}
		return axisVectors(ctx, text)
	}
}

func newTestEngine(t *testing.T, embed func(context.Context, string) ([]float32, error), opts ...Option) *Engine {
	t.Helper()
	embedder := mock.NewMockEmbedder().WithEmbedTextFunc(embed)
	o, err := oracle.New(mock.NewMockProviderWithEmbedder(embedder).Factory())
	require.NoError(t, err)
	t.Cleanup(func() { o.Close() })

	ex, err := extract.NewExtractor(extract.NewVocabulary(extract.DefaultTerms))
	require.NoError(t, err)

	e, err := NewEngine(o, ex, opts...)
	require.NoError(t, err)
	t.Cleanup(e.Release)
	return e
}

type recordingMonitor struct {
	mu       sync.Mutex
	started  int
	queryErr error
	semantic map[string]float64
	keyword  map[string]error
	finished *core.Ranking
}

func newRecordingMonitor() *recordingMonitor {
	return &recordingMonitor{semantic: map[string]float64{}, keyword: map[string]error{}}
}

func (m *recordingMonitor) Start(_ string, n int) {
	m.started = n
}

func (m *recordingMonitor) QueryFallback(err error) {
	m.queryErr = err
}

func (m *recordingMonitor) SemanticScored(id string, score float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.semantic[id] = score
}

func (m *recordingMonitor) KeywordScored(id string, _ float64, cause error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.keyword[id] = cause
}

func (m *recordingMonitor) Finish(r core.Ranking) {
	m.finished = &r
}

func scores(r core.Ranking) []float64 {
	out := make([]float64, len(r.Results))
	for i, res := range r.Results {
		out[i] = res.Score
	}
	return out
}

var semanticCandidates = []core.Candidate{
	{ID: "A", Name: "Sales pitch", Skills: core.NewSkillSet("sales")},
	{ID: "B", Name: "Build scraper", Skills: core.NewSkillSet("python")},
	{ID: "C", Name: "Brochure", Skills: core.NewSkillSet("design", "python")},
}

func TestNewEngine(t *testing.T) {
	ex, err := extract.NewExtractor(extract.NewVocabulary(extract.DefaultTerms))
	require.NoError(t, err)
	o, err := oracle.New(mock.NewMockProvider().Factory())
	require.NoError(t, err)

	_, err = NewEngine(nil, ex)
	assert.ErrorIs(t, err, ErrOracleRequired)

	_, err = NewEngine(o, nil)
	assert.ErrorIs(t, err, ErrExtractorRequired)

	e, err := NewEngine(o, ex, WithPoolSize(0), WithLogger(nil))
	require.NoError(t, err)
	e.Release()
}

func TestRankCandidatesForProfile_Keyword(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	ctx := context.Background()

	profile := core.NewProfile("u1", "python, design")
	candidates := []core.Candidate{
		{ID: "A", Skills: core.NewSkillSet("python", "marketing")},
		{ID: "B", Skills: core.NewSkillSet("design")},
	}

	ranking, err := e.RankCandidatesForProfile(ctx, profile, candidates, false)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "A"}, ranking.IDs())
	assert.Equal(t, []float64{1.0, 0.5}, scores(ranking))
	assert.False(t, ranking.Personalized, "keyword-only ranking")

	a := ranking.Results[1]
	assert.Equal(t, []string{"python"}, a.MatchingSkills.Items())
	assert.Equal(t, []string{"marketing"}, a.MissingSkills.Items())
	assert.False(t, a.UsedSemantic)
	assert.Equal(t, 50.0, a.Percent())
}

func TestRankCandidatesForProfile_EmptyInputs(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	ctx := context.Background()

	t.Run("empty profile keeps input order", func(t *testing.T) {
		candidates := []core.Candidate{
			{ID: "X", Skills: core.NewSkillSet("sales")},
			{ID: "Y", Skills: core.NewSkillSet("python")},
			{ID: "Z"},
		}
		for _, useSemantic := range []bool{true, false} {
			ranking, err := e.RankCandidatesForProfile(ctx, core.NewProfile("u1", ""), candidates, useSemantic)
			require.NoError(t, err)
			assert.Equal(t, []string{"X", "Y", "Z"}, ranking.IDs())
			assert.Equal(t, []float64{0, 0, 0}, scores(ranking))
			assert.False(t, ranking.Personalized)
			assert.Equal(t, []string{"sales"}, ranking.Results[0].MissingSkills.Items())
		}
	})

	t.Run("no candidates", func(t *testing.T) {
		ranking, err := e.RankCandidatesForProfile(ctx, core.NewProfile("u1", "python"), nil, true)
		require.NoError(t, err)
		assert.Empty(t, ranking.Results)
		assert.False(t, ranking.Personalized)
	})

	t.Run("candidate without skills scores zero", func(t *testing.T) {
		candidates := []core.Candidate{{ID: "X", Name: "Gardening"}, {ID: "Y", Skills: core.NewSkillSet("python")}}
		ranking, err := e.RankCandidatesForProfile(ctx, core.NewProfile("u1", "python"), candidates, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"Y", "X"}, ranking.IDs())
		assert.Equal(t, 0.0, ranking.Results[1].Score)
	})
}

func TestRankCandidatesForProfile_InvalidCandidate(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	candidates := []core.Candidate{{ID: "A"}, {Name: "missing id"}}

	_, err := e.RankCandidatesForProfile(context.Background(), core.NewProfile("u1", "python"), candidates, true)
	assert.ErrorIs(t, err, core.ErrInvalidCandidate)
}

func TestRankCandidatesForProfile_Semantic(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	monitor := newRecordingMonitor()

	ranking, err := e.RankCandidatesForProfileWithMonitor(context.Background(), core.NewProfile("u1", "python"), semanticCandidates, true, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, ranking.IDs())
	assert.True(t, ranking.Personalized)
	for _, r := range ranking.Results {
		assert.True(t, r.UsedSemantic, r.CandidateID)
	}
	assert.InDelta(t, 1.0, ranking.Results[0].Score, 1e-6)

	// overlap is reported on the semantic path too
	c := ranking.Results[1]
	assert.Equal(t, []string{"python"}, c.MatchingSkills.Items())
	assert.Equal(t, []string{"design"}, c.MissingSkills.Items())

	assert.Equal(t, 3, monitor.started)
	assert.Len(t, monitor.semantic, 3)
	assert.Empty(t, monitor.keyword)
	require.NotNil(t, monitor.finished)
	assert.Equal(t, ranking.IDs(), monitor.finished.IDs())
}

func TestRankCandidatesForProfile_FailureIsolation(t *testing.T) {
	e := newTestEngine(t, failingOn("Brochure"))
	monitor := newRecordingMonitor()

	ranking, err := e.RankCandidatesForProfileWithMonitor(context.Background(), core.NewProfile("u1", "python"), semanticCandidates, true, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, ranking.IDs())
	assert.True(t, ranking.Personalized)

	byID := map[string]core.MatchResult{}
	for _, r := range ranking.Results {
		byID[r.CandidateID] = r
	}
	assert.True(t, byID["A"].UsedSemantic)
	assert.True(t, byID["B"].UsedSemantic)
	assert.False(t, byID["C"].UsedSemantic)
	assert.Equal(t, 0.5, byID["C"].Score)

	assert.Len(t, monitor.semantic, 2)
	require.Contains(t, monitor.keyword, "C")
	assert.ErrorIs(t, monitor.keyword["C"], oracle.ErrUnavailable)
}

func TestRankCandidatesForProfile_QueryUnavailable(t *testing.T) {
	e := newTestEngine(t, func(ctx context.Context, text string) ([]float32, error) {
		if text == "python" {
			return nil, errors.New("model offline")
		}
		return axisVectors(ctx, text)
	})
	monitor := newRecordingMonitor()

	ranking, err := e.RankCandidatesForProfileWithMonitor(context.Background(), core.NewProfile("u1", "python"), semanticCandidates, true, monitor)
	require.NoError(t, err)

	assert.Equal(t, []string{"B", "C", "A"}, ranking.IDs())
	assert.Equal(t, []float64{1, 0.5, 0}, scores(ranking))
	assert.False(t, ranking.Personalized)
	assert.ErrorIs(t, monitor.queryErr, oracle.ErrUnavailable)
	assert.Len(t, monitor.keyword, 3)
}

func TestRankCandidatesForProfile_PermutationAndStability(t *testing.T) {
	e := newTestEngine(t, axisVectors, WithPoolSize(4))

	patterns := [][]string{{"python"}, {"sales"}, {"python", "sales"}, {"design", "python", "sales", "finance"}}
	candidates := make([]core.Candidate, 40)
	index := map[string]int{}
	for i := range candidates {
		id := fmt.Sprintf("c%02d", i)
		candidates[i] = core.Candidate{ID: id, Skills: core.NewSkillSet(patterns[i%len(patterns)]...)}
		index[id] = i
	}

	for _, useSemantic := range []bool{false, true} {
		ranking, err := e.RankCandidatesForProfile(context.Background(), core.NewProfile("u1", "python"), candidates, useSemantic)
		require.NoError(t, err)
		require.Len(t, ranking.Results, len(candidates))

		ids := make([]string, 0, len(candidates))
		for _, c := range candidates {
			ids = append(ids, c.ID)
		}
		assert.ElementsMatch(t, ids, ranking.IDs())

		for i := 1; i < len(ranking.Results); i++ {
			prev, cur := ranking.Results[i-1], ranking.Results[i]
			assert.GreaterOrEqual(t, prev.Score, cur.Score)
			if prev.Score == cur.Score {
				assert.Less(t, index[prev.CandidateID], index[cur.CandidateID], "ties keep input order")
			}
		}
	}
}

func TestRankProfilesForCandidate(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	ctx := context.Background()

	task := core.Candidate{ID: "t1", Name: "Dashboard", Skills: core.NewSkillSet("python", "design")}
	profiles := []core.SkillProfile{
		core.NewProfile("p1", "python"),
		core.NewProfile("p2", "python, design, sales"),
		core.NewProfile("p3", ""),
		core.NewProfile("p4", "sales"),
	}

	t.Run("keyword", func(t *testing.T) {
		ranking, err := e.RankProfilesForCandidate(ctx, task, profiles, false)
		require.NoError(t, err)

		assert.Equal(t, []string{"p2", "p1", "p3", "p4"}, ranking.IDs())
		assert.Equal(t, []float64{1, 0.5, 0, 0}, scores(ranking))
		assert.False(t, ranking.Personalized)
		assert.Equal(t, []string{"design"}, ranking.Results[1].MissingSkills.Items())
	})

	t.Run("semantic", func(t *testing.T) {
		ranking, err := e.RankProfilesForCandidate(ctx, task, profiles, true)
		require.NoError(t, err)

		assert.Equal(t, "p2", ranking.IDs()[0])
		assert.True(t, ranking.Personalized)
		for _, r := range ranking.Results {
			if r.CandidateID == "p3" {
				assert.False(t, r.UsedSemantic, "empty profile has nothing to embed")
				assert.Equal(t, 0.0, r.Score)
			} else {
				assert.True(t, r.UsedSemantic, r.CandidateID)
			}
		}
	})

	t.Run("invalid profile", func(t *testing.T) {
		_, err := e.RankProfilesForCandidate(ctx, task, []core.SkillProfile{{Name: "anon"}}, false)
		assert.ErrorIs(t, err, core.ErrInvalidProfile)
	})

	t.Run("invalid candidate", func(t *testing.T) {
		_, err := e.RankProfilesForCandidate(ctx, core.Candidate{Name: "x"}, profiles, false)
		assert.ErrorIs(t, err, core.ErrInvalidCandidate)
	})

	t.Run("empty candidate", func(t *testing.T) {
		ranking, err := e.RankProfilesForCandidate(ctx, core.Candidate{ID: "t0"}, profiles, true)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p3", "p4"}, ranking.IDs())
		assert.False(t, ranking.Personalized)
	})
}

func TestKeywordScore(t *testing.T) {
	assert.Equal(t, 0.0, KeywordScore(core.NewSkillSet("python"), core.SkillSet{}))
	assert.Equal(t, 0.5, KeywordScore(core.NewSkillSet("PYTHON"), core.NewSkillSet("python", "marketing")))
	assert.Equal(t, 1.0, KeywordScore(core.NewSkillSet("python", "design"), core.NewSkillSet("design")))
}
