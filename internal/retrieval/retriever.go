// Package retrieval ranks knowledge entries and articles against a query.
//
// The retriever fans out to both corpora concurrently, scores every candidate
// the corpus returns, applies the configured relevance floor, and truncates to
// top-K per source. Corpus failures degrade to empty results; retrieval itself
// never fails a request.
package retrieval

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"

	"github.com/soren0/counsel/internal/article"
	"github.com/soren0/counsel/internal/knowledge"
)

// Snippet lengths carried into citations, in runes.
const (
	entrySnippetLen   = 100
	articleSnippetLen = 200
)

// KnowledgeCorpus is the read surface of the knowledge store.
// Interfaces are defined by the consumer for testability.
type KnowledgeCorpus interface {
	FindCandidates(ctx context.Context, query string) ([]*knowledge.Entry, error)
}

// ArticleCorpus is the read surface of the article store.
// Implementations return published articles only.
type ArticleCorpus interface {
	FindCandidates(ctx context.Context, query string) ([]*article.Article, error)
}

// ScoredEntry is a transient (entry, score, snippet) triple.
type ScoredEntry struct {
	Entry   *knowledge.Entry
	Score   float64
	Snippet string
}

// ScoredArticle is a transient (article, score, snippet) triple.
type ScoredArticle struct {
	Article *article.Article
	Score   float64
	Snippet string
}

// Results holds one retrieval's ranked output, already truncated to top-K.
type Results struct {
	Entries  []ScoredEntry
	Articles []ScoredArticle
}

// Empty reports whether nothing cleared the relevance floor.
func (r Results) Empty() bool {
	return len(r.Entries) == 0 && len(r.Articles) == 0
}

// Config contains all required parameters for the Retriever.
type Config struct {
	Knowledge       KnowledgeCorpus
	Articles        ArticleCorpus
	KnowledgeScorer *knowledge.Scorer
	ArticleScorer   *article.Scorer
	Logger          *slog.Logger

	TopKKnowledge int     // entries returned per retrieval
	TopKArticles  int     // articles returned per retrieval
	MinScore      float64 // relevance floor; 0 = no floor
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.Knowledge == nil {
		return errors.New("knowledge corpus is required")
	}
	if cfg.Articles == nil {
		return errors.New("article corpus is required")
	}
	if cfg.KnowledgeScorer == nil {
		return errors.New("knowledge scorer is required")
	}
	if cfg.ArticleScorer == nil {
		return errors.New("article scorer is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Retriever queries both corpora and ranks the candidates.
//
// All configuration is captured immutably at construction time, so a single
// Retriever is safe for concurrent use across requests.
type Retriever struct {
	knowledge KnowledgeCorpus
	articles  ArticleCorpus

	entryScorer   *knowledge.Scorer
	articleScorer *article.Scorer

	topKKnowledge int
	topKArticles  int
	minScore      float64

	logger *slog.Logger
}

// New creates a Retriever with required configuration.
func New(cfg Config) (*Retriever, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	topKKnowledge := cfg.TopKKnowledge
	if topKKnowledge <= 0 {
		topKKnowledge = 3
	}
	topKArticles := cfg.TopKArticles
	if topKArticles <= 0 {
		topKArticles = 2
	}

	return &Retriever{
		knowledge:     cfg.Knowledge,
		articles:      cfg.Articles,
		entryScorer:   cfg.KnowledgeScorer,
		articleScorer: cfg.ArticleScorer,
		topKKnowledge: topKKnowledge,
		topKArticles:  topKArticles,
		minScore:      cfg.MinScore,
		logger:        cfg.Logger,
	}, nil
}

// Retrieve scores both corpora against query and returns the ranked top-K
// per source. Zero results is a valid state, not an error; a failing corpus
// read is logged and contributes an empty ranking.
//
// The two corpus reads have no data dependency and run concurrently.
func (r *Retriever) Retrieve(ctx context.Context, query string) Results {
	type entryResult struct {
		entries []*knowledge.Entry
		err     error
	}
	type articleResult struct {
		articles []*article.Article
		err      error
	}

	// Buffered channels (cap 1) so the goroutines never block even if the
	// caller's context is cancelled mid-flight.
	entryCh := make(chan entryResult, 1)
	articleCh := make(chan articleResult, 1)

	go func() {
		entries, err := r.knowledge.FindCandidates(ctx, query)
		entryCh <- entryResult{entries, err}
	}()
	go func() {
		articles, err := r.articles.FindCandidates(ctx, query)
		articleCh <- articleResult{articles, err}
	}()

	var results Results

	er := <-entryCh
	if er.err != nil {
		r.logger.Warn("knowledge candidate lookup failed", "error", er.err)
	} else {
		results.Entries = r.rankEntries(query, er.entries)
	}

	ar := <-articleCh
	if ar.err != nil {
		r.logger.Warn("article candidate lookup failed", "error", ar.err)
	} else {
		results.Articles = r.rankArticles(query, ar.articles)
	}

	r.logger.Debug("retrieval complete",
		"query_len", len(query),
		"entries", len(results.Entries),
		"articles", len(results.Articles),
	)
	return results
}

// rankEntries scores, floors, sorts and truncates knowledge candidates.
// Ties break by higher priority, then lower ID, so identical inputs always
// produce an identical ordering.
func (r *Retriever) rankEntries(query string, candidates []*knowledge.Entry) []ScoredEntry {
	scored := make([]ScoredEntry, 0, len(candidates))
	for _, e := range candidates {
		score := r.entryScorer.Score(query, e)
		if score < r.minScore {
			continue
		}
		scored = append(scored, ScoredEntry{
			Entry:   e,
			Score:   score,
			Snippet: excerpt(e.Answer, entrySnippetLen),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Entry.Priority != b.Entry.Priority {
			return a.Entry.Priority > b.Entry.Priority
		}
		return a.Entry.ID < b.Entry.ID
	})

	if len(scored) > r.topKKnowledge {
		scored = scored[:r.topKKnowledge]
	}
	return scored
}

// rankArticles scores, floors, sorts and truncates article candidates.
// Ties break by newer publication, then lower ID.
func (r *Retriever) rankArticles(query string, candidates []*article.Article) []ScoredArticle {
	scored := make([]ScoredArticle, 0, len(candidates))
	for _, a := range candidates {
		score := r.articleScorer.Score(query, a)
		if score < r.minScore {
			continue
		}
		scored = append(scored, ScoredArticle{
			Article: a,
			Score:   score,
			Snippet: excerpt(a.PlainText(), articleSnippetLen),
		})
	}

	sort.Slice(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.Article.PublishedAt.Equal(b.Article.PublishedAt) {
			return a.Article.PublishedAt.After(b.Article.PublishedAt)
		}
		return a.Article.ID < b.Article.ID
	})

	if len(scored) > r.topKArticles {
		scored = scored[:r.topKArticles]
	}
	return scored
}

// excerpt truncates s to max runes, appending an ellipsis when cut.
func excerpt(s string, max int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
