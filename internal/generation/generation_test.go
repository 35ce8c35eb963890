package generation

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"github.com/soren0/counsel/internal/prompt"
	"github.com/soren0/counsel/internal/testutil"
)

// stubCompleter implements Completer for testing.
type stubCompleter struct {
	text  string
	err   error
	delay time.Duration

	calls       int
	lastPayload prompt.Payload
}

func (s *stubCompleter) Complete(ctx context.Context, payload prompt.Payload) (string, error) {
	s.calls++
	s.lastPayload = payload
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", s.err
	}
	return s.text, nil
}

func TestGenerateUnconfigured(t *testing.T) {
	g := New(Config{Logger: testutil.DiscardLogger()})

	text, degraded := g.Generate(context.Background(), prompt.Payload{User: "hi"})

	if !degraded {
		t.Error("expected degraded answer without a completer")
	}
	if text != FallbackAnswer {
		t.Errorf("text = %q, want fallback template", text)
	}
}

func TestGenerateSuccess(t *testing.T) {
	stub := &stubCompleter{text: "Here is your answer."}
	g := New(Config{Completer: stub, Logger: testutil.DiscardLogger()})

	payload := prompt.Payload{System: "sys", User: "question"}
	text, degraded := g.Generate(context.Background(), payload)

	if degraded {
		t.Error("unexpected degraded flag on success")
	}
	if text != "Here is your answer." {
		t.Errorf("text = %q", text)
	}
	if stub.calls != 1 {
		t.Errorf("completer calls = %d, want 1", stub.calls)
	}
	if stub.lastPayload != payload {
		t.Errorf("payload passed through = %+v", stub.lastPayload)
	}
}

func TestGenerateCompleterError(t *testing.T) {
	stub := &stubCompleter{err: errors.New("api unavailable")}
	g := New(Config{Completer: stub, Logger: testutil.DiscardLogger()})

	text, degraded := g.Generate(context.Background(), prompt.Payload{User: "q"})

	if !degraded {
		t.Error("expected degraded answer on completer error")
	}
	if text != FallbackAnswer {
		t.Errorf("text = %q, want fallback template", text)
	}
	// Exactly one attempt, no retries.
	if stub.calls != 1 {
		t.Errorf("completer calls = %d, want 1", stub.calls)
	}
}

func TestGenerateEmptyResponse(t *testing.T) {
	stub := &stubCompleter{text: "   \n"}
	g := New(Config{Completer: stub, Logger: testutil.DiscardLogger()})

	text, degraded := g.Generate(context.Background(), prompt.Payload{User: "q"})

	if !degraded {
		t.Error("expected degraded answer on blank response")
	}
	if text != FallbackAnswer {
		t.Errorf("text = %q, want fallback template", text)
	}
}

func TestGenerateTimeout(t *testing.T) {
	stub := &stubCompleter{text: "late", delay: 200 * time.Millisecond}
	g := New(Config{
		Completer: stub,
		Timeout:   20 * time.Millisecond,
		Logger:    testutil.DiscardLogger(),
	})

	text, degraded := g.Generate(context.Background(), prompt.Payload{User: "q"})

	if !degraded {
		t.Error("expected degraded answer on timeout")
	}
	if text != FallbackAnswer {
		t.Errorf("text = %q, want fallback template", text)
	}
}

func TestGenerateRateLimited(t *testing.T) {
	stub := &stubCompleter{text: "answer"}
	g := New(Config{
		Completer: stub,
		Limiter:   rate.NewLimiter(rate.Every(time.Hour), 1),
		Logger:    testutil.DiscardLogger(),
	})

	ctx := context.Background()

	if text, degraded := g.Generate(ctx, prompt.Payload{User: "first"}); degraded || text != "answer" {
		t.Fatalf("first call: text=%q degraded=%v", text, degraded)
	}
	if _, degraded := g.Generate(ctx, prompt.Payload{User: "second"}); !degraded {
		t.Error("expected degraded answer once the burst is exhausted")
	}
	if stub.calls != 1 {
		t.Errorf("completer calls = %d, want 1 (second call limited before dispatch)", stub.calls)
	}
}
