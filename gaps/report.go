package gaps

import (
	"cmp"
	"context"
	"maps"
	"slices"

	"github.com/poiesic/skillmatch/core"
	"github.com/poiesic/skillmatch/extract"
)

// SkillStat is how often a skill appears across an event's tasks.
type SkillStat struct {
	Skill      string  `json:"skill"`
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// Report summarises an event's skill demand against its volunteers.
// Extracted holds the skills taken from the event itself when none of its
// tasks yielded any.
type Report struct {
	EventID         string               `json:"event_id"`
	EventName       string               `json:"event_name"`
	Skills          []string             `json:"skills"`
	Stats           []SkillStat          `json:"skill_stats"`
	Required        core.SkillCounts     `json:"required_counts"`
	Available       core.SkillCounts     `json:"volunteer_skill_counts"`
	Gaps            []core.SkillGapEntry `json:"skill_gaps"`
	Coverage        float64              `json:"coverage_percentage"`
	Extracted       []string             `json:"extracted_skills"`
	Inferred        bool                 `json:"is_ml_extracted"`
	TotalTasks      int                  `json:"total_tasks"`
	TotalVolunteers int                  `json:"total_volunteers"`
}

// Analyze builds a Report for event, whose tasks are its Children, against
// volunteers. When no task yields any skill the event's own skills are
// resolved and counted once each.
func (a *Analyzer) Analyze(ctx context.Context, event core.Candidate, volunteers []core.SkillProfile) (*Report, error) {
	if err := core.ValidateCandidate(&event); err != nil {
		return nil, err
	}

	required, err := a.AggregateRequired(ctx, event.Children)
	if err != nil {
		return nil, err
	}

	report := &Report{
		EventID:         event.ID,
		EventName:       event.Name,
		Extracted:       []string{},
		TotalTasks:      len(event.Children),
		TotalVolunteers: len(volunteers),
	}

	if len(required) == 0 {
		res := a.extractor.ExtractFromCandidate(ctx, event)
		for _, key := range res.Skills.Keys() {
			required[key]++
		}
		report.Extracted = res.Skills.Items()
		report.Inferred = res.Source == extract.SourceInferred
		a.logger.Debug("event skills resolved from event", "event", event.ID, "source", res.Source, "skills", len(report.Extracted))
	}

	supply := AggregateAvailable(volunteers)
	available := make(core.SkillCounts, len(required))
	for skill := range required {
		available[skill] = supply[skill]
	}

	report.Skills = slices.Sorted(maps.Keys(required))
	report.Required = required
	report.Available = available
	report.Gaps = ComputeGaps(required, available)
	report.Coverage = core.RoundTenth(CoveragePercentage(required, available))

	report.Stats = make([]SkillStat, 0, len(required))
	for _, skill := range report.Skills {
		stat := SkillStat{Skill: skill, Count: required[skill]}
		if report.TotalTasks > 0 {
			stat.Percentage = core.RoundTenth(float64(stat.Count) / float64(report.TotalTasks) * 100)
		}
		report.Stats = append(report.Stats, stat)
	}
	slices.SortStableFunc(report.Stats, func(x, y SkillStat) int {
		return cmp.Compare(y.Count, x.Count)
	})

	return report, nil
}
