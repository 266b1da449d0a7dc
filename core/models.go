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


package core

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
// Identical content produces identical IDs.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// EmbeddingKey identifies one cached embedding: the text and the model that embedded it.
type EmbeddingKey struct {
	Model string
	Text  string
}

// ID returns the content hash of the key.
func (k EmbeddingKey) ID() ID {
	return IDFromContent(k.Model + "\x00" + k.Text)
}

// SkillProfile is the skill holder side of a match, typically a volunteer.
type SkillProfile struct {
	ID     string   `json:"id"`
	Name   string   `json:"name,omitempty"`
	Skills SkillSet `json:"skills"`
	// Text overrides the text embedded for semantic scoring.
	Text string `json:"text,omitempty"`
}

// NewProfile builds a profile from a comma separated skill string.
func NewProfile(id, raw string) SkillProfile {
	return SkillProfile{ID: id, Skills: ParseSkillSet(raw)}
}

// NewProfileFromList builds a profile from a list of skills.
func NewProfileFromList(id string, skills []string) SkillProfile {
	return SkillProfile{ID: id, Skills: NewSkillSet(skills...)}
}

// EmbeddingText is the text embedded for semantic scoring.
func (p SkillProfile) EmbeddingText() string {
	if text := strings.TrimSpace(p.Text); text != "" {
		return text
	}
	return p.Skills.String()
}

// IsEmpty reports whether the profile carries neither skills nor text.
func (p SkillProfile) IsEmpty() bool {
	return p.Skills.IsEmpty() && strings.TrimSpace(p.Text) == ""
}

// Candidate is the requirement side of a match: a task, or an event whose
// Children are its tasks.
type Candidate struct {
	ID          string      `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description,omitempty"`
	Skills      SkillSet    `json:"required_skills"`
	Children    []Candidate `json:"tasks,omitempty"`
}

// DisplayText returns "Name. Description", or whichever part is present.
func (c Candidate) DisplayText() string {
	name := strings.TrimSpace(c.Name)
	desc := strings.TrimSpace(c.Description)
	switch {
	case name == "":
		return desc
	case desc == "":
		return name
	default:
		return name + ". " + desc
	}
}

// ContextText is the text embedded when scoring the candidate semantically:
// its display text, its tasks' display texts and its resolved skills.
func (c Candidate) ContextText(skills SkillSet) string {
	var b strings.Builder
	b.WriteString(c.DisplayText())

	if len(c.Children) > 0 {
		parts := make([]string, 0, len(c.Children))
		for _, child := range c.Children {
			if text := child.DisplayText(); text != "" {
				parts = append(parts, text)
			}
		}
		if len(parts) > 0 {
			b.WriteString(" Tasks: ")
			b.WriteString(strings.Join(parts, " | "))
		}
	}

	if !skills.IsEmpty() {
		b.WriteString(" Skills: ")
		b.WriteString(skills.String())
	}
	return strings.TrimSpace(b.String())
}

// MatchResult is one scored entry of a ranking. Score is raw: a cosine
// similarity or a keyword ratio in [0, 1].
type MatchResult struct {
	CandidateID    string
	Score          float64
	MatchingSkills SkillSet
	MissingSkills  SkillSet
	UsedSemantic   bool
}

// Percent returns the score as a percentage with one decimal.
func (r MatchResult) Percent() float64 {
	return ScoreToPercent(r.Score)
}

// Ranking is the outcome of a ranking operation.
type Ranking struct {
	Results []MatchResult
	// Personalized is true only when at least one result was scored
	// semantically against a non-empty query.
	Personalized bool
}

// Top returns the ranking truncated to limit results. A non-positive limit keeps all.
func (r Ranking) Top(limit int) Ranking {
	if limit <= 0 || limit >= len(r.Results) {
		return r
	}
	return Ranking{Results: r.Results[:limit], Personalized: r.Personalized}
}

// IDs returns the candidate IDs in ranked order.
func (r Ranking) IDs() []string {
	ids := make([]string, len(r.Results))
	for i, res := range r.Results {
		ids[i] = res.CandidateID
	}
	return ids
}

// SkillGapEntry describes one skill whose demand exceeds supply.
type SkillGapEntry struct {
	Skill          string `json:"skill"`
	RequiredCount  int    `json:"required"`
	AvailableCount int    `json:"available"`
	Gap            int    `json:"gap"`
}

// SkillCounts maps normalized skills to counts.
type SkillCounts map[string]int

// Total returns the sum of all counts.
func (c SkillCounts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// ScoreToPercent scales a raw score to 0-100 with one decimal.
func ScoreToPercent(score float64) float64 {
	p := score * 100
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return RoundTenth(p)
}

// RoundTenth rounds v to one decimal place.
func RoundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

// EmbeddingCacheEntry is a persisted embedding together with the key it was computed for.
type EmbeddingCacheEntry struct {
	Key    EmbeddingKey
	Vector []float32
}
