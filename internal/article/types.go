// Package article manages the long-form published corpus searched by lexical
// overlap. Articles carry multilingual title/summary/content fields; content
// is stored as structured blocks and flattened to plain text for scoring.
// Only published articles are eligible for retrieval.
package article

import (
	"errors"
	"strings"
	"time"
)

// Sentinel errors for article operations.
var (
	// ErrNotFound indicates the requested article does not exist.
	ErrNotFound = errors.New("article not found")
)

// Publication states.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusArchived  = "archived"
)

// Block is one structured content block. Only the text content participates
// in scoring; the type is presentation metadata.
type Block struct {
	Type    string `json:"type"`
	Content string `json:"content"`
}

// Article is a long-form published item. Each language variant is optional
// but at least one must be populated. Read-only to the engine.
type Article struct {
	ID          string
	Category    string
	Status      string
	TitleZH     string
	TitleEN     string
	SummaryZH   string
	SummaryEN   string
	ContentZH   []Block
	ContentEN   []Block
	Author      string
	PublishedAt time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// DisplayTitle returns the first populated title variant.
func (a *Article) DisplayTitle() string {
	if a.TitleZH != "" {
		return a.TitleZH
	}
	return a.TitleEN
}

// DisplaySummary returns the first populated summary variant.
func (a *Article) DisplaySummary() string {
	if a.SummaryZH != "" {
		return a.SummaryZH
	}
	return a.SummaryEN
}

// PlainText flattens all content blocks of both language variants into one
// plain-text string for lexical matching.
func (a *Article) PlainText() string {
	zh := FlattenBlocks(a.ContentZH)
	en := FlattenBlocks(a.ContentEN)
	switch {
	case zh == "":
		return en
	case en == "":
		return zh
	default:
		return zh + " " + en
	}
}

// FlattenBlocks strips block structure down to space-joined plain text.
func FlattenBlocks(blocks []Block) string {
	parts := make([]string, 0, len(blocks))
	for _, b := range blocks {
		if b.Content != "" {
			parts = append(parts, b.Content)
		}
	}
	return strings.Join(parts, " ")
}
