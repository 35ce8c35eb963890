package conversation

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of pgxpool.Pool the store needs.
type DB interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// Store persists conversation turns in PostgreSQL.
//
// Sessions have no stored record of their own: a session exists exactly in
// the turns that reference its ID. Store is safe for concurrent use.
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

// AppendTurn persists one turn. A missing ID is generated. Any database
// failure maps to ErrStorageUnavailable so callers can distinguish the one
// fatal condition with errors.Is.
func (s *Store) AppendTurn(ctx context.Context, t *Turn) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}

	var metadata []byte
	if t.Metadata != nil {
		var err error
		metadata, err = json.Marshal(t.Metadata)
		if err != nil {
			return fmt.Errorf("marshaling turn metadata: %w", err)
		}
	}

	err := s.db.QueryRow(ctx, `
		INSERT INTO conversation_turns (id, session_id, role, content, metadata)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		t.ID, t.SessionID, t.Role, t.Content, metadata,
	).Scan(&t.CreatedAt)
	if err != nil {
		return fmt.Errorf("%w: appending turn: %v", ErrStorageUnavailable, err)
	}

	s.logger.Debug("appended turn", "session_id", t.SessionID, "role", t.Role)
	return nil
}

// Turns returns one page of a session's turns in creation order.
// An unknown session yields an empty page, not an error.
func (s *Store) Turns(ctx context.Context, sessionID string, page, pageSize int) ([]*Turn, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}

	rows, err := s.db.Query(ctx, `
		SELECT id, session_id, role, content, metadata, created_at
		FROM conversation_turns
		WHERE session_id = $1
		ORDER BY created_at ASC, id ASC
		LIMIT $2 OFFSET $3`,
		sessionID, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, fmt.Errorf("querying turns for session %s: %w", sessionID, err)
	}
	defer rows.Close()

	var turns []*Turn
	for rows.Next() {
		var t Turn
		var metadata []byte
		if err := rows.Scan(&t.ID, &t.SessionID, &t.Role, &t.Content, &metadata, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning turn: %w", err)
		}
		if len(metadata) > 0 {
			t.Metadata = &Metadata{}
			if err := json.Unmarshal(metadata, t.Metadata); err != nil {
				// Metadata is advisory; a malformed blob must not hide the turn.
				s.logger.Warn("malformed turn metadata", "turn_id", t.ID, "error", err)
				t.Metadata = nil
			}
		}
		turns = append(turns, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading turns: %w", err)
	}

	return turns, nil
}

// CountTurns returns the total number of turns in a session.
func (s *Store) CountTurns(ctx context.Context, sessionID string) (int, error) {
	var total int
	err := s.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM conversation_turns WHERE session_id = $1`, sessionID,
	).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("counting turns for session %s: %w", sessionID, err)
	}
	return total, nil
}
