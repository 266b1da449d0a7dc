package matching

import (
	"context"
	"testing"

	"github.com/poiesic/skillmatch/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecommendProfiles(t *testing.T) {
	e := newTestEngine(t, axisVectors)
	ctx := context.Background()

	task := core.Candidate{ID: "t1", Skills: core.NewSkillSet("python", "design")}
	profiles := []core.SkillProfile{
		core.NewProfile("p1", "python, design"),
		core.NewProfile("p2", "python"),
		core.NewProfile("p3", "sales"),
		core.NewProfile("p4", "design"),
		core.NewProfile("p5", "finance"),
	}

	t.Run("shortlist when few pass threshold", func(t *testing.T) {
		ranking, err := e.RecommendProfiles(ctx, task, profiles, 1, DefaultThreshold, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2"}, ranking.IDs())
	})

	t.Run("threshold filter", func(t *testing.T) {
		ranking, err := e.RecommendProfiles(ctx, task, profiles, 1, 0.5, false)
		require.NoError(t, err)
		assert.Equal(t, []string{"p1", "p2", "p4"}, ranking.IDs())
		assert.False(t, ranking.Personalized)
	})

	t.Run("shortlist capped by available profiles", func(t *testing.T) {
		ranking, err := e.RecommendProfiles(ctx, task, profiles, 10, DefaultThreshold, false)
		require.NoError(t, err)
		assert.Len(t, ranking.Results, len(profiles))
	})

	t.Run("non-positive required counts as one", func(t *testing.T) {
		ranking, err := e.RecommendProfiles(ctx, task, profiles, 0, 0.99, false)
		require.NoError(t, err)
		assert.Len(t, ranking.Results, 2)
	})

	t.Run("invalid threshold", func(t *testing.T) {
		_, err := e.RecommendProfiles(ctx, task, profiles, 1, 1.5, false)
		assert.ErrorIs(t, err, ErrInvalidThreshold)
	})
}
