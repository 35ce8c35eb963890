package conversation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/soren0/counsel/internal/config"
	"github.com/soren0/counsel/internal/prompt"
	"github.com/soren0/counsel/internal/retrieval"
)

// defaultPageSize is used when a history caller passes no page size.
const defaultPageSize = 50

// HistoryStore is the persistence surface the orchestrator needs.
// Interfaces are defined by the consumer for testability.
type HistoryStore interface {
	AppendTurn(ctx context.Context, t *Turn) error
	Turns(ctx context.Context, sessionID string, page, pageSize int) ([]*Turn, error)
	CountTurns(ctx context.Context, sessionID string) (int, error)
}

// UsageRecorder records that a knowledge entry was cited in an answer.
// Implementations must increment atomically in the backing store.
type UsageRecorder interface {
	IncrementUsage(ctx context.Context, id string) error
}

// Retriever ranks both corpora against a query.
type Retriever interface {
	Retrieve(ctx context.Context, query string) retrieval.Results
}

// ContextBuilder assembles the bounded generation payload.
type ContextBuilder interface {
	Build(query string, results retrieval.Results) (prompt.Payload, []prompt.Citation)
}

// Generator produces the answer text, reporting degradation as data.
type Generator interface {
	Generate(ctx context.Context, payload prompt.Payload) (string, bool)
}

// Config contains all required parameters for the Service.
type Config struct {
	History   HistoryStore
	Usage     UsageRecorder
	Retriever Retriever
	Builder   ContextBuilder
	Generator Generator
	Logger    *slog.Logger
}

// validate checks if all required parameters are present.
func (cfg Config) validate() error {
	if cfg.History == nil {
		return errors.New("history store is required")
	}
	if cfg.Usage == nil {
		return errors.New("usage recorder is required")
	}
	if cfg.Retriever == nil {
		return errors.New("retriever is required")
	}
	if cfg.Builder == nil {
		return errors.New("context builder is required")
	}
	if cfg.Generator == nil {
		return errors.New("generator is required")
	}
	if cfg.Logger == nil {
		return errors.New("logger is required")
	}
	return nil
}

// Service is the conversation orchestrator.
//
// Service is stateless across requests; each inbound message is handled
// independently and concurrent requests share nothing but the stores.
type Service struct {
	history   HistoryStore
	usage     UsageRecorder
	retriever Retriever
	builder   ContextBuilder
	generator Generator
	logger    *slog.Logger
}

// New creates a Service with required configuration.
func New(cfg Config) (*Service, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &Service{
		history:   cfg.History,
		usage:     cfg.Usage,
		retriever: cfg.Retriever,
		builder:   cfg.Builder,
		generator: cfg.Generator,
		logger:    cfg.Logger,
	}, nil
}

// Answer handles one inbound message end to end and returns the generated
// answer with its citations.
//
// An empty sessionID mints a new opaque session identifier; a caller-supplied
// one is used verbatim. The inbound turn is persisted before retrieval begins
// so history stays consistent even if later steps fail; failure to persist it
// is the only error Answer returns. Every downstream failure degrades
// gracefully and still yields a well-formed response.
func (s *Service) Answer(ctx context.Context, sessionID, message string) (*Response, error) {
	start := time.Now()

	if strings.TrimSpace(message) == "" {
		return nil, ErrEmptyMessage
	}

	if sessionID == "" {
		sessionID = uuid.NewString()
	}

	// Step 1: persist the inbound turn. Fatal on failure.
	if err := s.history.AppendTurn(ctx, &Turn{
		SessionID: sessionID,
		Role:      RoleUser,
		Content:   message,
	}); err != nil {
		return nil, err
	}

	// Retrieve, assemble, generate. Never fatal: empty retrieval
	// still produces a minimal payload and an answer.
	results := s.retriever.Retrieve(ctx, message)
	payload, citations := s.builder.Build(message, results)
	answer, degraded := s.generator.Generate(ctx, payload)

	// Step 5: persist the outbound turn with citation metadata. Best effort.
	if err := s.history.AppendTurn(ctx, &Turn{
		SessionID: sessionID,
		Role:      RoleAssistant,
		Content:   answer,
		Metadata: &Metadata{
			Sources:   citations,
			Degraded:  degraded,
			ElapsedMS: time.Since(start).Milliseconds(),
		},
	}); err != nil {
		s.logger.Warn("persisting assistant turn failed", "session_id", sessionID, "error", err)
	}

	// Step 6: bump the usage counter once per distinct cited entry,
	// regardless of how often it was scored along the way.
	s.recordUsage(ctx, citations)

	// The reported response time covers every step of the turn,
	// persistence and usage accounting included.
	elapsed := time.Since(start)

	s.logger.Debug("answered message",
		"session_id", sessionID,
		"sources", len(citations),
		"degraded", degraded,
		"elapsed_ms", elapsed.Milliseconds(),
	)

	return &Response{
		SessionID: sessionID,
		Message:   answer,
		Sources:   citations,
		Degraded:  degraded,
		Elapsed:   elapsed,
	}, nil
}

// recordUsage increments each cited knowledge entry exactly once.
// Article citations carry no usage counter. Best effort: failures are logged.
func (s *Service) recordUsage(ctx context.Context, citations []prompt.Citation) {
	seen := make(map[string]struct{}, len(citations))
	for _, c := range citations {
		if c.Type != prompt.SourceFAQ {
			continue
		}
		if _, dup := seen[c.ID]; dup {
			continue
		}
		seen[c.ID] = struct{}{}

		if err := s.usage.IncrementUsage(ctx, c.ID); err != nil {
			s.logger.Warn("incrementing entry usage failed", "entry_id", c.ID, "error", err)
		}
	}
}

// History returns one page of a session's turns in creation order.
// An unknown session returns an empty page.
func (s *Service) History(ctx context.Context, sessionID string, page, pageSize int) (*HistoryPage, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > config.MaxPageSize {
		pageSize = config.MaxPageSize
	}

	turns, err := s.history.Turns(ctx, sessionID, page, pageSize)
	if err != nil {
		return nil, err
	}
	total, err := s.history.CountTurns(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	return &HistoryPage{
		Turns:    turns,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}
