// Package generation invokes the external text-generation capability under a
// strict timeout and degrades to a deterministic template when the capability
// is unconfigured or fails.
//
// The degradation strategy is chosen once at construction: an engine built
// without an API key carries no Completer at all and serves the template for
// every request. A configured engine makes exactly one attempt per request
// (no retries) and falls back on any failure. Degradation is data, not an
// error; callers observe it through the returned flag.
package generation

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/soren0/counsel/internal/prompt"
)

// DefaultTimeout bounds a single generation attempt.
const DefaultTimeout = 30 * time.Second

// FallbackAnswer is the deterministic template served whenever the external
// capability is unconfigured, rate-limited, times out, or fails.
const FallbackAnswer = `Thanks for your question! I can help with the following topics:

- How to book a service and what the booking steps are
- Opening hours and available time slots
- Cancelling or changing a booking
- Our published articles and announcements

Could you tell me a bit more about what you would like to know? For anything urgent, please contact our support team directly.`

// ErrEmptyResponse indicates the model returned no usable text.
var ErrEmptyResponse = errors.New("empty model response")

// Completer is the external generation capability.
// Implementations make exactly one attempt; retry policy, if any, belongs to
// the caller (and the engine deliberately has none).
type Completer interface {
	Complete(ctx context.Context, payload prompt.Payload) (string, error)
}

// Config contains the parameters for a Generator.
type Config struct {
	// Completer is the external capability. nil means unconfigured: every
	// request is answered with the fallback template.
	Completer Completer

	// Timeout bounds one generation attempt. Zero uses DefaultTimeout.
	Timeout time.Duration

	// Limiter proactively rate-limits outbound calls (nil = use default).
	Limiter *rate.Limiter

	Logger *slog.Logger
}

// Generator produces answer text for an assembled payload.
//
// Generator is safe for concurrent use; all state is captured immutably at
// construction.
type Generator struct {
	completer Completer
	timeout   time.Duration
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// New creates a Generator.
func New(cfg Config) *Generator {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	// Default: 10 requests/sec sustained, burst of 30.
	limiter := cfg.Limiter
	if limiter == nil {
		limiter = rate.NewLimiter(10, 30)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	if cfg.Completer == nil {
		logger.Info("generation capability not configured, serving template answers")
	}

	return &Generator{
		completer: cfg.Completer,
		timeout:   timeout,
		limiter:   limiter,
		logger:    logger,
	}
}

// Generate returns the answer text for payload and whether the answer is the
// degraded fallback. It never returns an error: every failure mode of the
// external capability is absorbed into the template answer.
func (g *Generator) Generate(ctx context.Context, payload prompt.Payload) (string, bool) {
	if g.completer == nil {
		return FallbackAnswer, true
	}

	if !g.limiter.Allow() {
		g.logger.Warn("generation rate limit exceeded, serving fallback")
		return FallbackAnswer, true
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	text, err := g.completer.Complete(ctx, payload)
	if err != nil {
		// Timeout, transport failure and empty responses all land here.
		// Logged, never raised: the caller still gets a well-formed answer.
		g.logger.Warn("generation failed, serving fallback", "error", err)
		return FallbackAnswer, true
	}
	if strings.TrimSpace(text) == "" {
		g.logger.Warn("model returned empty response, serving fallback")
		return FallbackAnswer, true
	}

	return text, false
}
