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


package extract

import (
	"context"
	"log/slog"
	"sort"

	"github.com/poiesic/skillmatch/ai"
	"github.com/poiesic/skillmatch/core"
)

// DefaultTopK is the number of skills extracted when no limit is given.
const DefaultTopK = 3

// Source records where a candidate's effective skills came from.
type Source int

const (
	// SourceNone means no skills could be determined.
	SourceNone Source = iota
	// SourceExplicit means the candidate listed its own skills.
	SourceExplicit
	// SourceChildren means skills were folded from the candidate's tasks.
	SourceChildren
	// SourceInferred means skills were extracted from the candidate's text.
	SourceInferred
)

func (s Source) String() string {
	switch s {
	case SourceExplicit:
		return "explicit"
	case SourceChildren:
		return "tasks"
	case SourceInferred:
		return "inferred"
	default:
		return "none"
	}
}

// Resolution is a candidate's effective skill set.
type Resolution struct {
	Skills core.SkillSet
	Source Source
}

// Extractor maps free text onto a fixed vocabulary. Safe for concurrent use.
type Extractor struct {
	vocabulary *Vocabulary
	oracle     ai.Oracle
	topK       int
	semantic   bool
	logger     *slog.Logger
}

// Option configures an Extractor.
type Option func(*Extractor) error

// WithTopK sets the default number of skills returned.
func WithTopK(k int) Option {
	return func(e *Extractor) error {
		if k <= 0 {
			return ErrInvalidTopK
		}
		e.topK = k
		return nil
	}
}

// WithSemantic turns the semantic fallback on or off. It needs an oracle.
func WithSemantic(enabled bool) Option {
	return func(e *Extractor) error {
		e.semantic = enabled
		return nil
	}
}

// WithOracle sets the oracle used by the semantic fallback and enables it.
func WithOracle(oracle ai.Oracle) Option {
	return func(e *Extractor) error {
		e.oracle = oracle
		e.semantic = oracle != nil
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(e *Extractor) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExtractor creates an extractor over vocabulary.
func NewExtractor(vocabulary *Vocabulary, opts ...Option) (*Extractor, error) {
	if vocabulary == nil || vocabulary.Len() == 0 {
		return nil, ErrEmptyVocabulary
	}

	e := &Extractor{
		vocabulary: vocabulary,
		topK:       DefaultTopK,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	if e.semantic && e.oracle == nil {
		return nil, ErrOracleRequired
	}
	e.logger = e.logger.With("component", "extractor")
	return e, nil
}

// Vocabulary returns the extractor's vocabulary.
func (e *Extractor) Vocabulary() *Vocabulary {
	return e.vocabulary
}

// Extract returns up to topK vocabulary terms for text. A non-positive topK
// uses the configured default.
//
// Terms found verbatim come first, most frequent first. If they do not fill
// topK and the semantic fallback is enabled, the remaining slots go to the
// terms closest to the text in embedding space. If the oracle is unavailable
// only the verbatim terms are returned.
func (e *Extractor) Extract(ctx context.Context, text string, topK int) []string {
	if topK <= 0 {
		topK = e.topK
	}

	var result core.SkillSet
	for _, tc := range e.vocabulary.Match(text) {
		result.Add(tc.Term)
	}
	if result.Len() >= topK {
		return result.Items()[:topK]
	}

	if e.semantic && text != "" {
		for _, term := range e.semanticTerms(ctx, text) {
			result.Add(term)
		}
	}

	items := result.Items()
	if len(items) > topK {
		items = items[:topK]
	}
	return items
}

// semanticTerms ranks the whole vocabulary by similarity to text.
func (e *Extractor) semanticTerms(ctx context.Context, text string) []string {
	terms := e.vocabulary.Terms()
	vocabVecs, err := e.oracle.EmbedVocabulary(ctx, terms)
	if err != nil {
		e.logger.Warn("semantic extraction unavailable, using direct matches", "err", err)
		return nil
	}
	textVec, err := e.oracle.Embed(ctx, text)
	if err != nil {
		e.logger.Warn("semantic extraction unavailable, using direct matches", "err", err)
		return nil
	}

	type scored struct {
		term  string
		score float64
	}
	ranked := make([]scored, len(terms))
	for i, term := range terms {
		ranked[i] = scored{term: term, score: e.oracle.Similarity(textVec, vocabVecs[i])}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	out := make([]string, len(ranked))
	for i, r := range ranked {
		out[i] = r.term
	}
	return out
}

// ExtractFromCandidate resolves a candidate's effective skills: its own
// skills if it lists any, else the union of its tasks' listed skills, else
// skills extracted from its display text.
func (e *Extractor) ExtractFromCandidate(ctx context.Context, c core.Candidate) Resolution {
	if !c.Skills.IsEmpty() {
		return Resolution{Skills: c.Skills.Clone(), Source: SourceExplicit}
	}

	var folded core.SkillSet
	foldChildSkills(&folded, c.Children)
	if !folded.IsEmpty() {
		return Resolution{Skills: folded, Source: SourceChildren}
	}

	inferred := core.NewSkillSet(e.Extract(ctx, c.DisplayText(), 0)...)
	if inferred.IsEmpty() {
		return Resolution{Source: SourceNone}
	}
	return Resolution{Skills: inferred, Source: SourceInferred}
}

func foldChildSkills(dst *core.SkillSet, children []core.Candidate) {
	for _, child := range children {
		dst.AddAll(child.Skills)
		foldChildSkills(dst, child.Children)
	}
}
