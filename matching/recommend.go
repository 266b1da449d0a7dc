package matching

import (
	"context"

	"github.com/poiesic/skillmatch/core"
)

// DefaultThreshold is the minimum score for a recommended profile.
const DefaultThreshold = 0.6

// RecommendProfiles ranks profiles for candidate and keeps those scoring at
// least threshold. If that leaves fewer than twice numRequired, the top
// 2*numRequired profiles are returned instead, so a task always has a
// shortlist to pick from. numRequired below 1 counts as 1.
func (e *Engine) RecommendProfiles(ctx context.Context, candidate core.Candidate, profiles []core.SkillProfile, numRequired int, threshold float64, useSemantic bool) (core.Ranking, error) {
	if threshold < -1 || threshold > 1 {
		return core.Ranking{}, ErrInvalidThreshold
	}
	if numRequired < 1 {
		numRequired = 1
	}

	ranking, err := e.RankProfilesForCandidate(ctx, candidate, profiles, useSemantic)
	if err != nil {
		return core.Ranking{}, err
	}

	var kept []core.MatchResult
	for _, r := range ranking.Results {
		if r.Score >= threshold {
			kept = append(kept, r)
		}
	}

	if minimum := 2 * numRequired; len(kept) < minimum {
		return ranking.Top(minimum), nil
	}
	return core.Ranking{Results: kept, Personalized: ranking.Personalized}, nil
}
