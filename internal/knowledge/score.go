package knowledge

import (
	"strings"

	"github.com/soren0/counsel/internal/config"
)

// Weights holds the additive term weights for entry scoring.
// All weights are in [0, 1]; the final score is capped at 1.0.
type Weights struct {
	QuestionContains float64 // entry question contains the query
	QueryContains    float64 // query contains the entry question
	KeywordCap       float64 // keyword overlap term, scaled by overlap fraction
	AnswerContains   float64 // entry answer contains the query
	PriorityCap      float64 // cap for the priority bonus
	UsageCap         float64 // cap for the usage bonus
}

// DefaultWeights returns the production-tuned weights.
func DefaultWeights() Weights {
	return Weights{
		QuestionContains: 0.8,
		QueryContains:    0.6,
		KeywordCap:       0.3,
		AnswerContains:   0.2,
		PriorityCap:      0.1,
		UsageCap:         0.1,
	}
}

// WeightsFromConfig maps the scoring configuration onto Weights.
func WeightsFromConfig(sc config.ScoringConfig) Weights {
	return Weights{
		QuestionContains: sc.KnowledgeQuestionContains,
		QueryContains:    sc.KnowledgeQueryContains,
		KeywordCap:       sc.KnowledgeKeywordCap,
		AnswerContains:   sc.KnowledgeAnswerContains,
		PriorityCap:      sc.KnowledgePriorityCap,
		UsageCap:         sc.KnowledgeUsageCap,
	}
}

// Scorer computes the relevance of an Entry against a query.
// It is deterministic and side-effect-free; the zero value is not useful,
// construct with NewScorer.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the relevance of entry against query, in [0, 1].
//
// Matching is case-insensitive and whitespace-trimmed; tokenization splits on
// whitespace only. An exact question match short-circuits to exactly 1.0.
// An empty query scores 0 for every entry.
func (s *Scorer) Score(query string, entry *Entry) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	question := strings.ToLower(entry.Question)
	answer := strings.ToLower(entry.Answer)

	if q == question {
		return 1.0
	}

	var score float64

	switch {
	case strings.Contains(question, q):
		score += s.weights.QuestionContains
	case question != "" && strings.Contains(q, question):
		score += s.weights.QueryContains
	}

	score += s.keywordOverlap(q, entry.Keywords)

	if strings.Contains(answer, q) {
		score += s.weights.AnswerContains
	}

	if entry.Priority > 0 {
		score += min(float64(entry.Priority)/config.PriorityNormalization, s.weights.PriorityCap)
	}

	if entry.UsageCount > 0 {
		score += min(float64(entry.UsageCount)/config.UsageNormalization, s.weights.UsageCap)
	}

	return min(score, 1.0)
}

// keywordOverlap returns the keyword term: the fraction of query tokens that
// appear in the entry's keyword set, scaled by the keyword weight cap.
func (s *Scorer) keywordOverlap(q string, keywords []string) float64 {
	tokens := strings.Fields(q)
	if len(tokens) == 0 || len(keywords) == 0 {
		return 0
	}

	keywordSet := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.ToLower(strings.TrimSpace(k))
		if k != "" {
			keywordSet[k] = struct{}{}
		}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := keywordSet[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	return s.weights.KeywordCap * float64(overlap) / float64(len(seen))
}
