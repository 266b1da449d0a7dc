package matching

import (
	"cmp"
	"context"
	"slices"
	"strings"

	"github.com/poiesic/skillmatch/core"
)

// entry is one side of a comparison, normalized so both ranking directions
// share the scoring code. requirement is always the task side.
type entry struct {
	id          string
	text        string
	profile     core.SkillSet
	requirement core.SkillSet
}

// RankCandidatesForProfile orders candidates by relevance to profile.
func (e *Engine) RankCandidatesForProfile(ctx context.Context, profile core.SkillProfile, candidates []core.Candidate, useSemantic bool) (core.Ranking, error) {
	return e.RankCandidatesForProfileWithMonitor(ctx, profile, candidates, useSemantic, nil)
}

// RankCandidatesForProfileWithMonitor orders candidates by relevance to
// profile, reporting each scoring decision to monitor.
//
// Candidates are scored semantically when useSemantic is set and the oracle
// can embed both sides; any candidate the oracle fails on is scored by skill
// overlap instead. The result is a stable, descending permutation of the
// input. An empty profile yields the input order with zero scores. The only
// error is a candidate without an ID.
func (e *Engine) RankCandidatesForProfileWithMonitor(ctx context.Context, profile core.SkillProfile, candidates []core.Candidate, useSemantic bool, monitor Monitor) (core.Ranking, error) {
	for i := range candidates {
		if err := core.ValidateCandidate(&candidates[i]); err != nil {
			return core.Ranking{}, err
		}
	}

	q := entry{
		id:      profile.ID,
		text:    profile.EmbeddingText(),
		profile: profile.Skills,
	}
	build := func(ctx context.Context, i int) entry {
		c := candidates[i]
		skills := e.extractor.ExtractFromCandidate(ctx, c).Skills
		return entry{
			id:          c.ID,
			text:        c.ContextText(skills),
			profile:     profile.Skills,
			requirement: skills,
		}
	}

	return e.rank(ctx, q, profile.IsEmpty(), len(candidates), build, useSemantic, monitor), nil
}

// RankProfilesForCandidate orders profiles by relevance to candidate.
func (e *Engine) RankProfilesForCandidate(ctx context.Context, candidate core.Candidate, profiles []core.SkillProfile, useSemantic bool) (core.Ranking, error) {
	return e.RankProfilesForCandidateWithMonitor(ctx, candidate, profiles, useSemantic, nil)
}

// RankProfilesForCandidateWithMonitor is RankCandidatesForProfileWithMonitor
// with the roles reversed: the candidate is the query and profiles are ranked.
// Keyword scores are the share of the candidate's skills a profile covers.
func (e *Engine) RankProfilesForCandidateWithMonitor(ctx context.Context, candidate core.Candidate, profiles []core.SkillProfile, useSemantic bool, monitor Monitor) (core.Ranking, error) {
	if err := core.ValidateCandidate(&candidate); err != nil {
		return core.Ranking{}, err
	}
	for i := range profiles {
		if err := core.ValidateProfile(&profiles[i]); err != nil {
			return core.Ranking{}, err
		}
	}

	skills := e.extractor.ExtractFromCandidate(ctx, candidate).Skills
	q := entry{
		id:          candidate.ID,
		text:        candidate.ContextText(skills),
		requirement: skills,
	}
	queryEmpty := skills.IsEmpty() && strings.TrimSpace(q.text) == ""

	build := func(_ context.Context, i int) entry {
		p := profiles[i]
		return entry{
			id:          p.ID,
			text:        p.EmbeddingText(),
			profile:     p.Skills,
			requirement: skills,
		}
	}

	return e.rank(ctx, q, queryEmpty, len(profiles), build, useSemantic, monitor), nil
}

func (e *Engine) rank(ctx context.Context, q entry, queryEmpty bool, n int, build func(context.Context, int) entry, useSemantic bool, monitor Monitor) core.Ranking {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(q.id, n)

	var queryVec []float32
	if useSemantic && !queryEmpty && n > 0 {
		vec, err := e.oracle.Embed(ctx, q.text)
		if err != nil {
			e.logger.Warn("query embedding unavailable, using keyword scores", "id", q.id, "err", err)
			monitor.QueryFallback(err)
		} else {
			queryVec = vec
		}
	}

	results := make([]core.MatchResult, n)
	e.runAll(n, func(i int) {
		en := build(ctx, i)
		res := core.MatchResult{
			CandidateID:    en.id,
			MatchingSkills: en.requirement.Intersect(en.profile),
			MissingSkills:  en.requirement.Difference(en.profile),
		}
		if queryEmpty {
			results[i] = res
			return
		}

		var cause error
		if queryVec != nil && strings.TrimSpace(en.text) != "" {
			vec, err := e.oracle.Embed(ctx, en.text)
			if err == nil {
				res.Score = e.oracle.Similarity(queryVec, vec)
				res.UsedSemantic = true
				monitor.SemanticScored(en.id, res.Score)
				results[i] = res
				return
			}
			cause = err
			e.logger.Debug("entry embedding unavailable, using keyword score", "id", en.id, "err", err)
		}

		res.Score = KeywordScore(en.profile, en.requirement)
		monitor.KeywordScored(en.id, res.Score, cause)
		results[i] = res
	})

	ranking := core.Ranking{Results: results}
	if !queryEmpty && n > 0 {
		slices.SortStableFunc(ranking.Results, func(a, b core.MatchResult) int {
			return cmp.Compare(b.Score, a.Score)
		})
		ranking.Personalized = anySemantic(results)
	}

	monitor.Finish(ranking)
	return ranking
}

// KeywordScore is the share of requirement covered by profile, or 0 when
// requirement is empty.
func KeywordScore(profile, requirement core.SkillSet) float64 {
	if requirement.IsEmpty() {
		return 0
	}
	return float64(requirement.Intersect(profile).Len()) / float64(requirement.Len())
}

func anySemantic(results []core.MatchResult) bool {
	for _, r := range results {
		if r.UsedSemantic {
			return true
		}
	}
	return false
}
