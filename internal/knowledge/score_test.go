package knowledge

import (
	"math"
	"testing"

	"github.com/soren0/counsel/internal/config"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func defaultScoringConfig(t *testing.T) config.ScoringConfig {
	t.Helper()
	return config.ScoringConfig{
		KnowledgeQuestionContains: 0.8,
		KnowledgeQueryContains:    0.6,
		KnowledgeKeywordCap:       0.3,
		KnowledgeAnswerContains:   0.2,
		KnowledgePriorityCap:      0.1,
		KnowledgeUsageCap:         0.1,
		ArticleTitle:              0.5,
		ArticleSummary:            0.3,
		ArticleBody:               0.2,
		ArticleKeywordCap:         0.2,
	}
}

func TestScorerScore(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	tests := []struct {
		name  string
		query string
		entry *Entry
		want  float64
	}{
		{
			name:  "exact question match short-circuits to one",
			query: "how do I book a consultation?",
			entry: &Entry{
				Question: "How do I book a consultation?",
				Answer:   "Use the booking page.",
				Priority: 900,
			},
			want: 1.0,
		},
		{
			name:  "exact match is case and whitespace insensitive",
			query: "  HOW DO I BOOK A CONSULTATION?  ",
			entry: &Entry{Question: "How do I book a consultation?"},
			want:  1.0,
		},
		{
			name:  "empty query scores zero",
			query: "   ",
			entry: &Entry{Question: "anything", Priority: 1000, UsageCount: 100},
			want:  0,
		},
		{
			name:  "question contains query",
			query: "book",
			entry: &Entry{Question: "How do I book a consultation?"},
			want:  0.8,
		},
		{
			name:  "query contains question",
			query: "please tell me about pricing today",
			entry: &Entry{Question: "pricing"},
			want:  0.6,
		},
		{
			name:  "question containment wins over query containment",
			query: "pricing",
			entry: &Entry{Question: "pricing"},
			want:  1.0,
		},
		{
			name:  "answer contains query",
			query: "refund",
			entry: &Entry{Question: "cancellation policy", Answer: "We refund within 7 days."},
			want:  0.2,
		},
		{
			name:  "full keyword overlap",
			query: "booking cancel",
			entry: &Entry{Question: "unrelated", Keywords: []string{"booking", "cancel", "refund"}},
			want:  0.3,
		},
		{
			name:  "partial keyword overlap scales by fraction",
			query: "booking something",
			entry: &Entry{Question: "unrelated", Keywords: []string{"booking"}},
			want:  0.15,
		},
		{
			name:  "duplicate query tokens counted once",
			query: "booking booking",
			entry: &Entry{Question: "unrelated", Keywords: []string{"booking"}},
			want:  0.3,
		},
		{
			name:  "priority bonus capped",
			query: "zzz",
			entry: &Entry{Question: "unrelated", Priority: 5000},
			want:  0.1,
		},
		{
			name:  "priority bonus proportional below cap",
			query: "zzz",
			entry: &Entry{Question: "unrelated", Priority: 50},
			want:  0.05,
		},
		{
			name:  "negative priority adds nothing",
			query: "zzz",
			entry: &Entry{Question: "unrelated", Priority: -5},
			want:  0,
		},
		{
			name:  "usage bonus capped",
			query: "zzz",
			entry: &Entry{Question: "unrelated", UsageCount: 500},
			want:  0.1,
		},
		{
			name:  "zero usage adds nothing",
			query: "zzz",
			entry: &Entry{Question: "unrelated", UsageCount: 0},
			want:  0,
		},
		{
			name:  "terms accumulate and cap at one",
			query: "book",
			entry: &Entry{
				Question:   "How do I book?",
				Answer:     "You book online.",
				Keywords:   []string{"book"},
				Priority:   1000,
				UsageCount: 100,
			},
			// 0.8 + 0.3 + 0.2 + 0.1 + 0.1 = 1.5, capped
			want: 1.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scorer.Score(tt.query, tt.entry)
			if !almostEqual(got, tt.want) {
				t.Errorf("Score(%q) = %v, want %v", tt.query, got, tt.want)
			}
		})
	}
}

func TestScorerScoreRange(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	entries := []*Entry{
		{Question: "How do I book?", Answer: "Book online.", Keywords: []string{"book"}, Priority: 9999, UsageCount: 9999},
		{Question: "", Answer: "", Priority: -5},
		{Question: "x", Answer: "y", Keywords: []string{""}},
	}
	queries := []string{"book", "", "how do i book?", "a b c d e"}

	for _, e := range entries {
		for _, q := range queries {
			got := scorer.Score(q, e)
			if got < 0 || got > 1.0 {
				t.Errorf("Score(%q, %+v) = %v, outside [0, 1]", q, e, got)
			}
		}
	}
}

func TestScorerEmptyQuestionNoQueryContains(t *testing.T) {
	scorer := NewScorer(DefaultWeights())

	// An empty entry question must not trigger the query-contains term,
	// which would otherwise match every query.
	got := scorer.Score("anything at all", &Entry{Question: ""})
	if got != 0 {
		t.Errorf("Score with empty question = %v, want 0", got)
	}
}

func TestWeightsFromConfig(t *testing.T) {
	sc := DefaultWeights()
	// Sanity: the default mapping mirrors DefaultWeights.
	got := WeightsFromConfig(defaultScoringConfig(t))
	if got != sc {
		t.Errorf("WeightsFromConfig = %+v, want %+v", got, sc)
	}
}
