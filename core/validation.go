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
	"fmt"
	"strings"
)

// ValidateCandidate validates a Candidate and its tasks.
//
// Validation rules:
//   - ID must not be blank, at every level
//
// NOT validated:
//   - Skills (absent skills are inferred from text)
//   - Name and Description (may be empty)
func ValidateCandidate(c *Candidate) error {
	if c == nil {
		return fmt.Errorf("%w: candidate is nil", ErrInvalidCandidate)
	}

	if strings.TrimSpace(c.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidCandidate, ErrEmptyID)
	}

	for i := range c.Children {
		if err := ValidateCandidate(&c.Children[i]); err != nil {
			return fmt.Errorf("candidate %q task %d: %w", c.ID, i, err)
		}
	}

	return nil
}

// ValidateProfile validates a SkillProfile that is being ranked.
func ValidateProfile(p *SkillProfile) error {
	if p == nil {
		return fmt.Errorf("%w: profile is nil", ErrInvalidProfile)
	}

	if strings.TrimSpace(p.ID) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidProfile, ErrEmptyID)
	}

	return nil
}
