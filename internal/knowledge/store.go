package knowledge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// candidateLimit bounds how many entries a single retrieval considers.
const candidateLimit = 50

// DB is the subset of pgxpool.Pool the store needs.
// Following Go best practices: interfaces are defined by the consumer.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store provides read access to the knowledge corpus plus the atomic usage
// increment. Management CRUD for the admin surface lives here too.
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

const entryColumns = `id, question, answer, keywords, category, priority, is_active,
	usage_count, language, created_at, updated_at, last_used_at`

// FindCandidates returns active entries whose question, answer or keywords
// match any whitespace token of the query, ordered by priority then usage.
// An empty query returns the highest-priority active entries; the caller's
// scorer decides what is actually relevant.
func (s *Store) FindCandidates(ctx context.Context, query string) ([]*Entry, error) {
	patterns := tokenPatterns(query)

	rows, err := s.db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM knowledge_entries
		WHERE is_active
		  AND ($1::text[] IS NULL
		       OR question ILIKE ANY($1)
		       OR answer ILIKE ANY($1)
		       OR array_to_string(keywords, ' ') ILIKE ANY($1))
		ORDER BY priority DESC, usage_count DESC
		LIMIT $2`,
		patterns, candidateLimit)
	if err != nil {
		return nil, fmt.Errorf("querying knowledge candidates: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, err
	}

	s.logger.Debug("knowledge candidates", "query_len", len(query), "count", len(entries))
	return entries, nil
}

// IncrementUsage bumps the usage counter of one entry by exactly 1.
// The increment happens in the database so concurrent citations of the same
// entry never lose updates.
func (s *Store) IncrementUsage(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE knowledge_entries
		SET usage_count = usage_count + 1, last_used_at = now()
		WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("incrementing usage for entry %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return nil
}

// Create inserts a new entry. A missing ID is generated.
func (s *Store) Create(ctx context.Context, e *Entry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if e.Keywords == nil {
		e.Keywords = []string{}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO knowledge_entries
			(id, question, answer, keywords, category, priority, is_active, language)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`,
		e.ID, e.Question, e.Answer, e.Keywords, e.Category, e.Priority, e.IsActive, e.Language,
	).Scan(&e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return fmt.Errorf("creating knowledge entry: %w", err)
	}

	s.logger.Debug("created knowledge entry", "id", e.ID)
	return nil
}

// Get retrieves one entry by ID.
func (s *Store) Get(ctx context.Context, id string) (*Entry, error) {
	row := s.db.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM knowledge_entries
		WHERE id = $1`, id)

	e, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("getting knowledge entry %s: %w", id, err)
	}
	return e, nil
}

// List returns entries matching the filter, paginated, with the total count.
// Ordered by priority descending then most recently updated.
func (s *Store) List(ctx context.Context, filter ListFilter, page, pageSize int) ([]*Entry, int, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = 20
	}

	where, args := filter.clauses()

	var total int
	if err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM knowledge_entries `+where, args...,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("counting knowledge entries: %w", err)
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := s.db.Query(ctx, `
		SELECT `+entryColumns+`
		FROM knowledge_entries `+where+`
		ORDER BY priority DESC, updated_at DESC
		LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("listing knowledge entries: %w", err)
	}
	defer rows.Close()

	entries, err := scanEntries(rows)
	if err != nil {
		return nil, 0, err
	}
	return entries, total, nil
}

// Update replaces the mutable fields of an entry. The ID never changes.
func (s *Store) Update(ctx context.Context, e *Entry) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE knowledge_entries
		SET question = $2, answer = $3, keywords = $4, category = $5,
		    priority = $6, is_active = $7, language = $8, updated_at = now()
		WHERE id = $1`,
		e.ID, e.Question, e.Answer, e.Keywords, e.Category, e.Priority, e.IsActive, e.Language)
	if err != nil {
		return fmt.Errorf("updating knowledge entry %s: %w", e.ID, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, e.ID)
	}

	s.logger.Debug("updated knowledge entry", "id", e.ID)
	return nil
}

// Delete removes an entry.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM knowledge_entries WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting knowledge entry %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.logger.Debug("deleted knowledge entry", "id", id)
	return nil
}

// clauses builds the WHERE clause and arguments for List.
func (f ListFilter) clauses() (string, []any) {
	var conds []string
	var args []any

	if f.Category != "" {
		args = append(args, f.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if f.Active != nil {
		args = append(args, *f.Active)
		conds = append(conds, fmt.Sprintf("is_active = $%d", len(args)))
	}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf(
			"(question ILIKE $%d OR answer ILIKE $%d OR array_to_string(keywords, ' ') ILIKE $%d)", n, n, n))
	}

	if len(conds) == 0 {
		return "", nil
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

// tokenPatterns converts a query into ILIKE patterns, one per token.
// Returns nil for a blank query so the SQL falls back to "all active".
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

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(&e.ID, &e.Question, &e.Answer, &e.Keywords, &e.Category,
		&e.Priority, &e.IsActive, &e.UsageCount, &e.Language,
		&e.CreatedAt, &e.UpdatedAt, &e.LastUsedAt)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func scanEntries(rows pgx.Rows) ([]*Entry, error) {
	var entries []*Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning knowledge entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading knowledge entries: %w", err)
	}
	return entries, nil
}
