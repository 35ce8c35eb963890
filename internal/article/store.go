package article

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// candidateLimit bounds how many articles a single retrieval considers.
const candidateLimit = 50

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides read access to the article corpus for retrieval, plus
// management CRUD for the admin surface.
//
// Store is safe for concurrent use by multiple goroutines.
type Store struct {
	db     DB
	logger *slog.Logger
}

// NewStore creates a Store backed by the given database.
func NewStore(db DB, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{db: db, logger: logger}
}

const articleColumns = `id, category, status, title_zh, title_en, summary_zh, summary_en,
	content_zh, content_en, author, published_at, created_at, updated_at`

// FindCandidates returns published articles whose titles or summaries match
// any whitespace token of the query, newest first. Unpublished articles are
// excluded here, not by the scorer.
func (s *Store) FindCandidates(ctx context.Context, query string) ([]*Article, error) {
	patterns := tokenPatterns(query)

	rows, err := s.db.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE status = $1
		  AND ($2::text[] IS NULL
		       OR title_zh ILIKE ANY($2) OR title_en ILIKE ANY($2)
		       OR summary_zh ILIKE ANY($2) OR summary_en ILIKE ANY($2))
		ORDER BY published_at DESC
		LIMIT $3`,
		StatusPublished, patterns, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("querying article candidates: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("article candidates", "query_len", len(query), "count", len(articles))
	return articles, nil
}

// Create inserts a new article. A missing ID is generated and a zero
// PublishedAt defaults to now.
func (s *Store) Create(ctx context.Context, a *Article) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.Status == "" {
		a.Status = StatusPublished
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Now().UTC()
	}

	contentZH, err := json.Marshal(a.ContentZH)
	if err != nil {
		return fmt.Errorf("marshaling content blocks: %w", err)
	}
	contentEN, err := json.Marshal(a.ContentEN)
	if err != nil {
		return fmt.Errorf("marshaling content blocks: %w", err)
	}

	err = s.db.QueryRow(ctx, `
		INSERT INTO articles
			(id, category, status, title_zh, title_en, summary_zh, summary_en,
			 content_zh, content_en, author, published_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at`,
		a.ID, a.Category, a.Status, a.TitleZH, a.TitleEN, a.SummaryZH, a.SummaryEN,
		contentZH, contentEN, a.Author, a.PublishedAt,
	).Scan(&a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating article: %w", err)
	}

	s.logger.Debug("created article", "id", a.ID, "status", a.Status)
	return nil
}

// Get retrieves one article by ID.
func (s *Store) Get(ctx context.Context, id string) (*Article, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+articleColumns+`
		FROM articles
		WHERE id = $1`, id)

	a, err := scanArticle(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting article %s: %w", id, err)
	}
	return a, nil
}

// List returns articles filtered by category and/or status, newest first,
// paginated, with the total count. Empty filter values match everything.
func (s *Store) List(ctx context.Context, category, status string, page, pageSize int) ([]*Article, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	var conds []string
	var args []any
	if category != "" {
		args = append(args, category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if status != "" {
		args = append(args, status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	where := ""
	if len(conds) > 0 {
		where = "WHERE " + strings.Join(conds, " AND ")
	}

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM articles `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting articles: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.Query(ctx, `
		SELECT `+articleColumns+`
		FROM articles `+where+`
		ORDER BY published_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing articles: %w", err)
	}
	defer rows.Close()

	articles, err := scanArticles(rows)
	if err != nil {
		return nil, 0, err
	}
	return articles, total, nil
}

// Update replaces the mutable fields of an article. The ID never changes.
func (s *Store) Update(ctx context.Context, a *Article) error {
	contentZH, err := json.Marshal(a.ContentZH)
	if err != nil {
		return fmt.Errorf("marshaling content blocks: %w", err)
	}
	contentEN, err := json.Marshal(a.ContentEN)
	if err != nil {
		return fmt.Errorf("marshaling content blocks: %w", err)
	}

	tag, err := s.db.Exec(ctx, `
		UPDATE articles
		SET category = $2, status = $3, title_zh = $4, title_en = $5,
		    summary_zh = $6, summary_en = $7, content_zh = $8, content_en = $9,
		    author = $10, published_at = $11, updated_at = now()
		WHERE id = $1`,
		a.ID, a.Category, a.Status, a.TitleZH, a.TitleEN, a.SummaryZH, a.SummaryEN,
		contentZH, contentEN, a.Author, a.PublishedAt)
	if err != nil {
		return fmt.Errorf("updating article %s: %w", a.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, a.ID)
	}

	s.logger.Debug("updated article", "id", a.ID)
	return nil
}

// Delete removes an article.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM articles WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting article %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Debug("deleted article", "id", id)
	return nil
}

// tokenPatterns converts a query into ILIKE patterns, one per token.
// Returns nil for a blank query so the SQL falls back to "all published".
func tokenPatterns(query string) []string {
	tokens := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(tokens) == 0 {
		return nil
	}
	patterns := make([]string, len(tokens))
	for i, tok := range tokens {
		patterns[i] = "%" + tok + "%"
	}
	return patterns
}

func scanArticle(row pgx.Row) (*Article, error) {
	var a Article
	var contentZH, contentEN []byte
	err := row.Scan(&a.ID, &a.Category, &a.Status, &a.TitleZH, &a.TitleEN,
		&a.SummaryZH, &a.SummaryEN, &contentZH, &contentEN, &a.Author,
		&a.PublishedAt, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if len(contentZH) > 0 {
		if err := json.Unmarshal(contentZH, &a.ContentZH); err != nil {
			return nil, fmt.Errorf("unmarshaling content blocks for %s: %w", a.ID, err)
		}
	}
	if len(contentEN) > 0 {
		if err := json.Unmarshal(contentEN, &a.ContentEN); err != nil {
			return nil, fmt.Errorf("unmarshaling content blocks for %s: %w", a.ID, err)
		}
	}
	return &a, nil
}

func scanArticles(rows pgx.Rows) ([]*Article, error) {
	var articles []*Article
	for rows.Next() {
		a, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning article: %w", err)
		}
		articles = append(articles, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading articles: %w", err)
	}
	return articles, nil
}
