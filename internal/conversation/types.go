// Package conversation orchestrates one answered turn: session resolution,
// history persistence, retrieval, context assembly, generation and usage
// accounting. It also exposes paginated history reads.
//
// Failure semantics: persisting the inbound turn is the only fatal step
// (ErrStorageUnavailable). Everything downstream is best effort; retrieval
// and generation failures degrade the answer, they never abort the turn.
package conversation

import (
	"errors"
	"time"

	"github.com/soren0/counsel/internal/prompt"
)

// Turn roles. The user/assistant alternation is a convention, not a
// structural constraint.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Sentinel errors for conversation operations.
var (
	// ErrStorageUnavailable indicates the history store rejected a write.
	// This is the only error Answer surfaces to the caller.
	ErrStorageUnavailable = errors.New("conversation storage unavailable")

	// ErrEmptyMessage indicates the inbound message was blank.
	ErrEmptyMessage = errors.New("empty message")
)

// Metadata is the structured payload attached to assistant turns.
type Metadata struct {
	Sources   []prompt.Citation `json:"sources,omitempty"`
	Degraded  bool              `json:"degraded,omitempty"`
	ElapsedMS int64             `json:"elapsed_ms,omitempty"`
}

// Turn is one persisted conversation message. Turns are append-only: never
// mutated after creation and never deleted by the engine.
type Turn struct {
	ID        string
	SessionID string
	Role      string
	Content   string
	Metadata  *Metadata
	CreatedAt time.Time
}

// Response is the result of one answered turn.
type Response struct {
	SessionID string            `json:"session_id"`
	Message   string            `json:"message"`
	Sources   []prompt.Citation `json:"sources"`
	Degraded  bool              `json:"degraded"`
	Elapsed   time.Duration     `json:"response_time"`
}

// HistoryPage is one page of a session's turns in creation order.
type HistoryPage struct {
	Turns    []*Turn `json:"turns"`
	Total    int     `json:"total"`
	Page     int     `json:"page"`
	PageSize int     `json:"page_size"`
}

// QuickQuestion is a suggested starter question for fresh sessions.
type QuickQuestion struct {
	ID       string `json:"id"`
	Question string `json:"question"`
	Category string `json:"category"`
}

// QuickQuestions returns the static starter-question list shown before the
// first message of a session.
func QuickQuestions() []QuickQuestion {
	return []QuickQuestion{
		{ID: "q1", Question: "How do I book a consultation?", Category: "booking"},
		{ID: "q2", Question: "How long does an appointment take?", Category: "booking"},
		{ID: "q3", Question: "How do I cancel a booking?", Category: "booking"},
		{ID: "q4", Question: "What services do you offer?", Category: "services"},
		{ID: "q5", Question: "What are your opening hours?", Category: "services"},
		{ID: "q6", Question: "How do I reach support?", Category: "other"},
	}
}
