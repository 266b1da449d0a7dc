package core

import (
	"encoding/json"
	"strings"
)

// NormalizeSkill returns the comparison key for a skill: trimmed, inner
// whitespace collapsed, lower-cased.
func NormalizeSkill(skill string) string {
	return strings.ToLower(cleanSkill(skill))
}

func cleanSkill(skill string) string {
	return strings.Join(strings.Fields(skill), " ")
}

// SkillSet is an ordered set of skills compared case-insensitively.
// Entries keep the spelling of their first insertion. The zero value is an
// empty set ready to use. Copies share storage; Clone before mutating a copy.
type SkillSet struct {
	items []string
	index map[string]struct{}
}

// NewSkillSet builds a set from skills, dropping blanks and case-folded duplicates.
func NewSkillSet(skills ...string) SkillSet {
	var s SkillSet
	for _, skill := range skills {
		s.Add(skill)
	}
	return s
}

// ParseSkillSet splits a comma separated skill string. Malformed input
// (only separators or whitespace) yields an empty set.
func ParseSkillSet(raw string) SkillSet {
	if strings.TrimSpace(raw) == "" {
		return SkillSet{}
	}
	return NewSkillSet(strings.Split(raw, ",")...)
}

// Add inserts skill unless it is blank or already present. It reports
// whether the set changed.
func (s *SkillSet) Add(skill string) bool {
	skill = cleanSkill(skill)
	if skill == "" {
		return false
	}
	key := strings.ToLower(skill)
	if s.index == nil {
		s.index = make(map[string]struct{})
	}
	if _, ok := s.index[key]; ok {
		return false
	}
	s.index[key] = struct{}{}
	s.items = append(s.items, skill)
	return true
}

// AddAll inserts every skill of other, preserving other's order.
func (s *SkillSet) AddAll(other SkillSet) {
	for _, skill := range other.items {
		s.Add(skill)
	}
}

// Contains reports whether skill is in the set, ignoring case.
func (s SkillSet) Contains(skill string) bool {
	_, ok := s.index[NormalizeSkill(skill)]
	return ok
}

// Len returns the number of skills.
func (s SkillSet) Len() int {
	return len(s.items)
}

// IsEmpty reports whether the set has no skills.
func (s SkillSet) IsEmpty() bool {
	return len(s.items) == 0
}

// Items returns the skills in insertion order.
func (s SkillSet) Items() []string {
	out := make([]string, len(s.items))
	copy(out, s.items)
	return out
}

// Keys returns the normalized skills in insertion order.
func (s SkillSet) Keys() []string {
	out := make([]string, len(s.items))
	for i, skill := range s.items {
		out[i] = strings.ToLower(skill)
	}
	return out
}

// Clone returns an independent copy of the set.
func (s SkillSet) Clone() SkillSet {
	return NewSkillSet(s.items...)
}

// Intersect returns the skills of s that are also in other, in s's order.
func (s SkillSet) Intersect(other SkillSet) SkillSet {
	var out SkillSet
	for _, skill := range s.items {
		if other.Contains(skill) {
			out.Add(skill)
		}
	}
	return out
}

// Difference returns the skills of s missing from other, in s's order.
func (s SkillSet) Difference(other SkillSet) SkillSet {
	var out SkillSet
	for _, skill := range s.items {
		if !other.Contains(skill) {
			out.Add(skill)
		}
	}
	return out
}

// Union returns s followed by the skills of other not already in s.
func (s SkillSet) Union(other SkillSet) SkillSet {
	out := s.Clone()
	out.AddAll(other)
	return out
}

// String joins the skills with ", ".
func (s SkillSet) String() string {
	return strings.Join(s.items, ", ")
}

// MarshalJSON encodes the set as a JSON array.
func (s SkillSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Items())
}

// UnmarshalJSON accepts a JSON array of skills or a comma separated string.
func (s *SkillSet) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err == nil {
		*s = ParseSkillSet(raw)
		return nil
	}

	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*s = NewSkillSet(list...)
	return nil
}
