package knowledge

import (
	"errors"
	"time"
)

// Sentinel errors for knowledge operations.
var (
	// ErrNotFound indicates the requested entry does not exist.
	ErrNotFound = errors.New("knowledge entry not found")
)

// Entry is a short question/answer pair used for direct-match lookup.
//
// The ID is immutable after creation. UsageCount is monotonically
// non-decreasing and is only ever changed through Store.IncrementUsage,
// which delegates the increment to the database (never read-modify-write).
type Entry struct {
	ID         string
	Question   string
	Answer     string
	Keywords   []string
	Category   string
	Priority   int
	IsActive   bool
	UsageCount int
	Language   string
	CreatedAt  time.Time
	UpdatedAt  time.Time
	LastUsedAt *time.Time
}

// ListFilter narrows List results. Zero values mean "no filter".
type ListFilter struct {
	Category string
	Active   *bool
	Search   string // substring match over question, answer and keywords
}
