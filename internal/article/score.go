package article

import (
	"strings"

	"github.com/soren0/counsel/internal/config"
)

// Weights holds the additive term weights for article scoring.
type Weights struct {
	Title      float64 // query appears in a title variant
	Summary    float64 // query appears in a summary variant
	Body       float64 // query appears in the flattened content
	KeywordCap float64 // token overlap term, scaled by overlap fraction
}

// DefaultWeights returns the production-tuned weights.
func DefaultWeights() Weights {
	return Weights{
		Title:      0.5,
		Summary:    0.3,
		Body:       0.2,
		KeywordCap: 0.2,
	}
}

// WeightsFromConfig maps the scoring configuration onto Weights.
func WeightsFromConfig(sc config.ScoringConfig) Weights {
	return Weights{
		Title:      sc.ArticleTitle,
		Summary:    sc.ArticleSummary,
		Body:       sc.ArticleBody,
		KeywordCap: sc.ArticleKeywordCap,
	}
}

// Scorer computes the relevance of an Article against a query.
// Deterministic and side-effect-free. The store excludes unpublished
// articles upstream; the scorer does not re-check status.
type Scorer struct {
	weights Weights
}

// NewScorer creates a Scorer with the given weights.
func NewScorer(w Weights) *Scorer {
	return &Scorer{weights: w}
}

// Score returns the relevance of art against query, in [0, 1].
// Substring matching is case-insensitive across all language variants.
func (s *Scorer) Score(query string, art *Article) float64 {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return 0
	}

	content := strings.ToLower(art.PlainText())

	var score float64

	// Variants are matched one at a time so a multi-word query cannot
	// match across the boundary between two of them.
	if containsAny(q, art.TitleZH, art.TitleEN) {
		score += s.weights.Title
	}
	if containsAny(q, art.SummaryZH, art.SummaryEN) {
		score += s.weights.Summary
	}
	if strings.Contains(content, q) {
		score += s.weights.Body
	}

	overlapText := strings.ToLower(strings.Join([]string{art.TitleZH, art.TitleEN, art.SummaryZH, art.SummaryEN}, " "))
	score += s.tokenOverlap(q, overlapText)

	return min(score, 1.0)
}

// containsAny reports whether q is a substring of any single variant.
func containsAny(q string, variants ...string) bool {
	for _, v := range variants {
		if v != "" && strings.Contains(strings.ToLower(v), q) {
			return true
		}
	}
	return false
}

// tokenOverlap returns the keyword term: the fraction of query tokens found
// in the title+summary token set, scaled by the keyword weight cap.
func (s *Scorer) tokenOverlap(q, haystack string) float64 {
	queryTokens := strings.Fields(q)
	if len(queryTokens) == 0 {
		return 0
	}

	haySet := make(map[string]struct{})
	for _, tok := range strings.Fields(haystack) {
		haySet[tok] = struct{}{}
	}

	overlap := 0
	seen := make(map[string]struct{}, len(queryTokens))
	for _, tok := range queryTokens {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := haySet[tok]; ok {
			overlap++
		}
	}
	if overlap == 0 {
		return 0
	}

	return s.weights.KeywordCap * float64(overlap) / float64(len(seen))
}
