package similarity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreIdenticalQuestions(t *testing.T) {
	m := NewMatcher()

	questions := []string{
		"왜 고난이 있는가",
		"이 뉴스는 어떤 질문을 던지나요?",
		"why do bad things happen",
		"질문입니다",
	}
	for _, q := range questions {
		assert.Equal(t, 1.0, m.Score(q, q), "identical question must score 1: %q", q)
	}
}

func TestScoreIsSymmetric(t *testing.T) {
	m := NewMatcher()

	pairs := [][2]string{
		{"이 뉴스는 어떤 질문을 던지나요?", "이 뉴스는 어떤 질문을 던지는가?"},
		{"돈이 전부인가", "돈이 정말 전부일까?"},
		{"hello world", "another question entirely"},
	}
	for _, p := range pairs {
		assert.Equal(t, m.Score(p[0], p[1]), m.Score(p[1], p[0]))
	}
}

func TestScoreIgnoresTerminalPunctuation(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, 1.0, m.Score("질문입니다", "질문입니다?"))
	assert.Equal(t, 1.0, m.Score("질문입니다!", "질문입니다?"))
}

func TestScoreParticleVariants(t *testing.T) {
	m := NewMatcher()

	// Shared keyword tokens carry the pair over the grouping threshold
	// even though the verb endings differ.
	score := m.Score("이 뉴스는 어떤 질문을 던지나요?", "이 뉴스는 어떤 질문을 던지는가?")
	assert.Greater(t, score, 0.3)
	assert.Less(t, score, 1.0)
}

func TestScoreDegradesGracefully(t *testing.T) {
	m := NewMatcher()

	cases := [][2]string{
		{"", ""},
		{"", "질문"},
		{"?", "!"},
		{"아", "아"}, // single character, survives the exact-match shortcut
		{"...", "???"},
		{"🙂", "🙂?"},
		{"a", "b"},
	}
	for _, c := range cases {
		assert.NotPanics(t, func() {
			score := m.Score(c[0], c[1])
			assert.GreaterOrEqual(t, score, 0.0)
			assert.LessOrEqual(t, score, 1.0)
		})
	}

	// empty inputs never match anything
	assert.Equal(t, 0.0, m.Score("", ""))
	assert.Equal(t, 0.0, m.Score("", "질문입니다"))
}

func TestScoreNormalizesCaseAndSpace(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, 1.0, m.Score("  Why Suffering  ", "why suffering"))
}

func TestScoreDisjointQuestions(t *testing.T) {
	m := NewMatcher()

	assert.Equal(t, 0.0, m.Score("완전히 다른 주제의 글", "전혀 상관없는 문장입니다"))
}

func TestGroupFiltersAndSorts(t *testing.T) {
	m := NewMatcher()

	candidates := []Candidate{
		{ID: "far", Question: "전혀 상관없는 문장"},
		{ID: "close", Question: "이 뉴스는 어떤 질문을 던지는가?"},
		{ID: "exact", Question: "이 뉴스는 어떤 질문을 던지나요?"},
	}

	matches := m.Group("이 뉴스는 어떤 질문을 던지나요?", candidates, 0.3)

	if assert.Len(t, matches, 2) {
		assert.Equal(t, "exact", matches[0].ID)
		assert.Equal(t, 1.0, matches[0].Score)
		assert.Equal(t, "close", matches[1].ID)
	}
}

func TestGroupStableOnTies(t *testing.T) {
	m := NewMatcher()

	candidates := []Candidate{
		{ID: "first", Question: "돈이 전부인가?"},
		{ID: "second", Question: "돈이 전부인가!"},
	}

	matches := m.Group("돈이 전부인가", candidates, 0.3)

	if assert.Len(t, matches, 2) {
		assert.Equal(t, "first", matches[0].ID)
		assert.Equal(t, "second", matches[1].ID)
		assert.Equal(t, matches[0].Score, matches[1].Score)
	}
}
