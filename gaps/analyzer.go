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


package gaps

import (
	"cmp"
	"context"
	"log/slog"
	"slices"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/extract"
)

// Analyzer compares the skills a set of candidates demands with the skills
// a set of profiles supplies.
type Analyzer struct {
	extractor *extract.Extractor
	logger    *slog.Logger
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) {
		if logger == nil {
			logger = slog.Default()
		}
		a.logger = logger
	}
}

// NewAnalyzer creates an analyzer that resolves candidate skills with extractor.
func NewAnalyzer(extractor *extract.Extractor, opts ...Option) (*Analyzer, error) {
	if extractor == nil {
		return nil, ErrExtractorRequired
	}
	a := &Analyzer{
		extractor: extractor,
		logger:    slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	a.logger = a.logger.With("component", "gaps")
	return a, nil
}

// AggregateRequired counts, for every skill, how many candidates need it.
// A candidate's effective skills are resolved the same way ranking resolves
// them, and each candidate contributes at most one to a skill.
func (a *Analyzer) AggregateRequired(ctx context.Context, candidates []core.Candidate) (core.SkillCounts, error) {
	for i := range candidates {
		if err := core.ValidateCandidate(&candidates[i]); err != nil {
			return nil, err
		}
	}

	counts := make(core.SkillCounts)
	for _, c := range candidates {
		res := a.extractor.ExtractFromCandidate(ctx, c)
		for _, key := range res.Skills.Keys() {
			counts[key]++
		}
	}
	return counts, nil
}

// AggregateAvailable counts, for every skill, how many profiles have it.
func AggregateAvailable(profiles []core.SkillProfile) core.SkillCounts {
	counts := make(core.SkillCounts)
	for _, p := range profiles {
		for _, key := range p.Skills.Keys() {
			counts[key]++
		}
	}
	return counts
}

// ComputeGaps lists the required skills that profiles cannot cover, largest
// gap first, ties by skill name.
func ComputeGaps(required, available core.SkillCounts) []core.SkillGapEntry {
	var gaps []core.SkillGapEntry
	for skill, req := range required {
		avail := available[skill]
		if gap := req - avail; gap > 0 {
			gaps = append(gaps, core.SkillGapEntry{
				Skill:          skill,
				RequiredCount:  req,
				AvailableCount: avail,
				Gap:            gap,
			})
		}
	}
	slices.SortFunc(gaps, func(a, b core.SkillGapEntry) int {
		if c := cmp.Compare(b.Gap, a.Gap); c != 0 {
			return c
		}
		return cmp.Compare(a.Skill, b.Skill)
	})
	return gaps
}

// CoveragePercentage is the share of required skill slots that available
// profiles can fill, from 0 to 100. It is 0 when nothing is required.
func CoveragePercentage(required, available core.SkillCounts) float64 {
	total := required.Total()
	if total == 0 {
		return 0
	}
	covered := 0
	for skill, req := range required {
		covered += min(req, available[skill])
	}
	return float64(covered) / float64(total) * 100
}
