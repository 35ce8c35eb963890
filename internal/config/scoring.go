package config

import "github.com/spf13/viper"

// ScoringConfig holds the relevance term weights for both scorers.
//
// The defaults are empirical constants carried over from production tuning.
// They are configuration, not invariants: operators may retune them against
// their own corpora without touching code. Every weight must stay in [0, 1]
// because both scorers cap their final score at 1.0.
type ScoringConfig struct {
	// Knowledge entry scoring
	KnowledgeQuestionContains float64 `mapstructure:"knowledge_question_contains" json:"knowledge_question_contains"` // question text contains the query
	KnowledgeQueryContains    float64 `mapstructure:"knowledge_query_contains" json:"knowledge_query_contains"`       // query contains the question text
	KnowledgeKeywordCap       float64 `mapstructure:"knowledge_keyword_cap" json:"knowledge_keyword_cap"`             // keyword overlap term, scaled by overlap fraction
	KnowledgeAnswerContains   float64 `mapstructure:"knowledge_answer_contains" json:"knowledge_answer_contains"`     // answer text contains the query
	KnowledgePriorityCap      float64 `mapstructure:"knowledge_priority_cap" json:"knowledge_priority_cap"`           // cap for the priority bonus
	KnowledgeUsageCap         float64 `mapstructure:"knowledge_usage_cap" json:"knowledge_usage_cap"`                 // cap for the usage bonus

	// Article scoring
	ArticleTitle      float64 `mapstructure:"article_title" json:"article_title"`
	ArticleSummary    float64 `mapstructure:"article_summary" json:"article_summary"`
	ArticleBody       float64 `mapstructure:"article_body" json:"article_body"`
	ArticleKeywordCap float64 `mapstructure:"article_keyword_cap" json:"article_keyword_cap"`
}

// Normalization constants for the knowledge bonus terms. An entry reaches the
// full priority bonus at priority 100 and the full usage bonus at 10 uses.
const (
	PriorityNormalization = 1000.0
	UsageNormalization    = 100.0
)

func setScoringDefaults() {
	viper.SetDefault("scoring.knowledge_question_contains", 0.8)
	viper.SetDefault("scoring.knowledge_query_contains", 0.6)
	viper.SetDefault("scoring.knowledge_keyword_cap", 0.3)
	viper.SetDefault("scoring.knowledge_answer_contains", 0.2)
	viper.SetDefault("scoring.knowledge_priority_cap", 0.1)
	viper.SetDefault("scoring.knowledge_usage_cap", 0.1)

	viper.SetDefault("scoring.article_title", 0.5)
	viper.SetDefault("scoring.article_summary", 0.3)
	viper.SetDefault("scoring.article_body", 0.2)
	viper.SetDefault("scoring.article_keyword_cap", 0.2)
}

// weights returns all scoring weights for range validation.
func (s ScoringConfig) weights() []float64 {
	return []float64{
		s.KnowledgeQuestionContains,
		s.KnowledgeQueryContains,
		s.KnowledgeKeywordCap,
		s.KnowledgeAnswerContains,
		s.KnowledgePriorityCap,
		s.KnowledgeUsageCap,
		s.ArticleTitle,
		s.ArticleSummary,
		s.ArticleBody,
		s.ArticleKeywordCap,
	}
}
