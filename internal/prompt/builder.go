// Package prompt assembles the bounded generation context from ranked
// retrieval results.
//
// The payload is built in rank order: system framing, Q&A pairs, article
// excerpts, then the user's question. A character budget bounds the whole
// payload; when exceeded, the lowest-ranked items are dropped first and the
// question itself is never cut. The returned citations are exactly the items
// that survived into the payload.
package prompt

import (
	"fmt"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/soren0/counsel/internal/retrieval"
)

// Citation source types.
const (
	SourceFAQ     = "faq"
	SourceArticle = "article"
)

// Citation identifies one source that informed a generated answer.
type Citation struct {
	Type    string  `json:"type"` // "faq" | "article"
	ID      string  `json:"id"`
	Title   string  `json:"title"`
	Snippet string  `json:"snippet"`
	Score   float64 `json:"score"`
}

// Payload is the assembled generation context.
type Payload struct {
	System string
	User   string
}

// systemFraming is the fixed instruction block for every generation call.
const systemFraming = `You are a professional support assistant answering questions about the site's services, booking process and published articles.

Follow these rules:
1. Base your answer on the provided reference material.
2. If the material does not cover the question, say so politely and suggest contacting support.
3. Keep answers concise, accurate and friendly.
4. Answer in the language of the question.`

// Builder assembles payloads under a character budget.
type Builder struct {
	maxChars int
	logger   *slog.Logger
}

// NewBuilder creates a Builder. maxChars bounds the rendered payload
// (system plus user content) in runes.
func NewBuilder(maxChars int, logger *slog.Logger) *Builder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Builder{maxChars: maxChars, logger: logger}
}

// Build renders the payload for query from ranked results and returns the
// citation list matching exactly what made it into the payload.
func (b *Builder) Build(query string, results retrieval.Results) (Payload, []Citation) {
	sections := renderSections(results)
	citations := collectCitations(results)

	// The framing and the query are fixed cost; sections are trimmed
	// lowest-ranked first until the payload fits.
	budget := b.maxChars - utf8.RuneCountInString(systemFraming) - b.queryCost(query, len(sections) > 0)

	used := 0
	kept := 0
	for _, sec := range sections {
		cost := utf8.RuneCountInString(sec)
		if used+cost > budget {
			break
		}
		used += cost
		kept++
	}
	if kept < len(sections) {
		b.logger.Debug("context budget exceeded, truncating",
			"max_chars", b.maxChars,
			"dropped", len(sections)-kept,
		)
		sections = sections[:kept]
		citations = citations[:kept]
	}

	return Payload{
		System: systemFraming,
		User:   renderUser(query, sections),
	}, citations
}

// queryCost is the rendered size of the query portion of the user message,
// including the wrapper text that frames the kept sections. The with-sections
// wrapper is longer, so budgeting with it keeps the final render under the
// limit even when sections survive.
func (b *Builder) queryCost(query string, withSections bool) int {
	if withSections {
		return utf8.RuneCountInString(renderUser(query, []string{""}))
	}
	return utf8.RuneCountInString(renderUser(query, nil))
}

// renderSections renders one section per ranked item, knowledge entries
// before articles, preserving within-source rank order.
func renderSections(results retrieval.Results) []string {
	sections := make([]string, 0, len(results.Entries)+len(results.Articles))
	for i, se := range results.Entries {
		sections = append(sections, fmt.Sprintf("Q%d: %s\nA%d: %s\n\n",
			i+1, se.Entry.Question, i+1, se.Entry.Answer))
	}
	for i, sa := range results.Articles {
		sec := fmt.Sprintf("Article %d: %s\n", i+1, sa.Article.DisplayTitle())
		if summary := sa.Article.DisplaySummary(); summary != "" {
			sec += fmt.Sprintf("Summary: %s\n", summary)
		}
		sections = append(sections, sec+"\n")
	}
	return sections
}

// collectCitations lists citations in the same order as renderSections.
func collectCitations(results retrieval.Results) []Citation {
	citations := make([]Citation, 0, len(results.Entries)+len(results.Articles))
	for _, se := range results.Entries {
		citations = append(citations, Citation{
			Type:    SourceFAQ,
			ID:      se.Entry.ID,
			Title:   se.Entry.Question,
			Snippet: se.Snippet,
			Score:   se.Score,
		})
	}
	for _, sa := range results.Articles {
		citations = append(citations, Citation{
			Type:    SourceArticle,
			ID:      sa.Article.ID,
			Title:   sa.Article.DisplayTitle(),
			Snippet: sa.Snippet,
			Score:   sa.Score,
		})
	}
	return citations
}

// renderUser renders the user message: reference sections, then the question.
func renderUser(query string, sections []string) string {
	if len(sections) == 0 {
		return fmt.Sprintf("User question: %s\n\nGive a friendly answer. If you need more information, suggest contacting support.", query)
	}

	var sb strings.Builder
	sb.WriteString("Answer the user's question using the reference material below.\n\n")
	for _, sec := range sections {
		sb.WriteString(sec)
	}
	sb.WriteString(fmt.Sprintf("User question: %s\n\nGive an accurate, friendly answer based on the material above.", query))
	return sb.String()
}
