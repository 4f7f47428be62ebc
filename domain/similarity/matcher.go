// Package similarity scores free-text questions for "same question"
// grouping. Questions are short, mostly Korean, and authored by hand,
// so the matcher works on keyword overlap rather than anything
// language-model shaped.
package similarity

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// particleEndings is the closed class of sentence-final particles and
// verb endings stripped once from the end of a question so that
// variants like "...던지나요" and "...던지는가" converge before
// tokenization. Text ending outside this class passes through as-is.
var particleEndings = map[rune]bool{
	'요': true,
	'까': true,
	'가': true,
	'죠': true,
	'지': true,
	'다': true,
	'나': true,
	'야': true,
	'니': true,
	'네': true,
}

// Matcher scores two question strings for similarity
type Matcher struct {
	minTokenLength int
}

// NewMatcher creates a matcher with default settings
func NewMatcher() *Matcher {
	return &Matcher{minTokenLength: 2}
}

// Score returns the similarity of two questions in [0, 1]. It never
// panics, whatever the input: empty strings, single characters, mixed
// punctuation, or text outside the expected particle pattern all
// degrade to a low or zero score.
func (m *Matcher) Score(a, b string) float64 {
	a = normalize(a)
	b = normalize(b)

	if a == "" || b == "" {
		return 0
	}
	if a == b {
		return 1
	}

	tokensA := m.tokenize(a)
	tokensB := m.tokenize(b)
	if len(tokensA) == 0 || len(tokensB) == 0 {
		return 0
	}

	intersection := 0
	for token := range tokensA {
		if tokensB[token] {
			intersection++
		}
	}
	union := len(tokensA) + len(tokensB) - intersection

	return float64(intersection) / float64(union)
}

// tokenize reduces a normalized question to its keyword set:
// terminal punctuation stripped, then one trailing particle, then
// whitespace split with short tokens dropped. Punctuation goes first
// so "...입니다?" and "...입니다" reduce to the same keyword.
func (m *Matcher) tokenize(q string) map[string]bool {
	q = strings.TrimRightFunc(q, func(r rune) bool {
		return unicode.IsPunct(r) || unicode.IsSymbol(r)
	})
	q = stripTrailingParticle(q)

	tokens := make(map[string]bool)
	for _, field := range strings.Fields(q) {
		if utf8.RuneCountInString(field) >= m.minTokenLength {
			tokens[field] = true
		}
	}
	return tokens
}

// stripTrailingParticle removes at most one particle rune from the end
func stripTrailingParticle(q string) string {
	last, size := utf8.DecodeLastRuneInString(q)
	if last == utf8.RuneError || !particleEndings[last] {
		return q
	}
	return q[:len(q)-size]
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

// Candidate is one question being grouped against a probe
type Candidate struct {
	ID       string
	Question string
}

// Match is a candidate that crossed the grouping threshold
type Match struct {
	Candidate
	Score float64
}

// Group filters candidates by score against the probe question and
// returns them sorted descending by score. Ties keep input order.
func (m *Matcher) Group(question string, candidates []Candidate, threshold float64) []Match {
	matches := []Match{}
	for _, cand := range candidates {
		score := m.Score(question, cand.Question)
		if score >= threshold {
			matches = append(matches, Match{Candidate: cand, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	return matches
}
