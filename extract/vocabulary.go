package extract

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultTerms is the vocabulary used when none is configured.
var DefaultTerms = []string{
	"ai-ml",
	"data science",
	"development",
	"finance",
	"management",
	"marketing",
	"sales",
	"deep learning",
	"statistics",
}

// Vocabulary is an ordered list of canonical skill terms.
type Vocabulary struct {
	terms []string
	keys  []string
}

// TermCount is a vocabulary term and how often it occurs in a text.
type TermCount struct {
	Term  string
	Count int
}

// NewVocabulary builds a vocabulary from terms, dropping blanks and
// case-insensitive duplicates. Declaration order is kept.
func NewVocabulary(terms []string) *Vocabulary {
	v := &Vocabulary{}
	seen := make(map[string]struct{}, len(terms))
	for _, term := range terms {
		term = strings.Join(strings.Fields(term), " ")
		if term == "" {
			continue
		}
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		v.terms = append(v.terms, term)
		v.keys = append(v.keys, key)
	}
	return v
}

// Terms returns the terms in declaration order.
func (v *Vocabulary) Terms() []string {
	out := make([]string, len(v.terms))
	copy(out, v.terms)
	return out
}

// Len returns the number of terms.
func (v *Vocabulary) Len() int {
	return len(v.terms)
}

// Match counts whole-word, case-insensitive occurrences of each term in text.
// Terms that do not occur are omitted. Results are sorted by count
// descending, ties broken by declaration order.
func (v *Vocabulary) Match(text string) []TermCount {
	folded := strings.ToLower(text)
	var out []TermCount
	for i, key := range v.keys {
		if n := countWholeWord(folded, key); n > 0 {
			out = append(out, TermCount{Term: v.terms[i], Count: n})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// countWholeWord counts non-overlapping occurrences of word in text that are
// not glued to a letter or digit on either side.
func countWholeWord(text, word string) int {
	if word == "" {
		return 0
	}
	count := 0
	for offset := 0; offset < len(text); {
		i := strings.Index(text[offset:], word)
		if i < 0 {
			break
		}
		start := offset + i
		end := start + len(word)
		if boundaryBefore(text, start) && boundaryAfter(text, end) {
			count++
			offset = end
			continue
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return count
}

func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	r, _ := utf8.DecodeLastRuneInString(text[:i])
	return !isWordRune(r)
}

func boundaryAfter(text string, i int) bool {
	if i >= len(text) {
		return true
	}
	r, _ := utf8.DecodeRuneInString(text[i:])
	return !isWordRune(r)
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
