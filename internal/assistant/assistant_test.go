package assistant

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/sashabaranov/go-openai"
)

type fakeCompleter struct {
	reply string
	err   error
	calls int
	last  openai.ChatCompletionRequest
}

func (f *fakeCompleter) CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.calls++
	f.last = req
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{Message: openai.ChatCompletionMessage{Content: f.reply}}},
	}, nil
}

func TestAdviseSendsSystemInstruction(t *testing.T) {
	fc := &fakeCompleter{reply: "Median prices rose 4% last year."}
	a := New(fc, Options{})

	got := a.Advise(context.Background(), "How is the Austin market?")
	if got != "Median prices rose 4% last year." {
		t.Errorf("reply: got %q", got)
	}
	if fc.last.Temperature != 0.7 {
		t.Errorf("temperature: got %v, want 0.7", fc.last.Temperature)
	}
	if len(fc.last.Messages) != 2 || fc.last.Messages[0].Content != SystemInstruction {
		t.Errorf("messages: got %+v", fc.last.Messages)
	}
	if fc.last.Messages[1].Content != "How is the Austin market?" {
		t.Errorf("prompt: got %q", fc.last.Messages[1].Content)
	}
}

func TestAdviseFallbacks(t *testing.T) {
	if got := New(&fakeCompleter{reply: "   "}, Options{}).Advise(context.Background(), "hi"); got != FallbackEmpty {
		t.Errorf("empty reply: got %q", got)
	}
	if got := New(&fakeCompleter{err: errors.New("dial tcp: timeout")}, Options{}).Advise(context.Background(), "hi"); got != FallbackUnavailable {
		t.Errorf("transport error: got %q", got)
	}
	if got := New(nil, Options{}).Advise(context.Background(), "hi"); got != FallbackUnavailable {
		t.Errorf("no client: got %q", got)
	}
	if got := New(&fakeCompleter{reply: "x"}, Options{}).Advise(context.Background(), "  "); got != FallbackEmpty {
		t.Errorf("blank prompt: got %q", got)
	}
}

func TestAdviseCachesReplies(t *testing.T) {
	fc := &fakeCompleter{reply: "Get pre-approved first."}
	a := New(fc, Options{CacheTTL: time.Minute})

	a.Advise(context.Background(), "First step to buying?")
	a.Advise(context.Background(), "First step to buying?")
	if fc.calls != 1 {
		t.Errorf("calls: got %d, want 1", fc.calls)
	}
}

func TestAdviseFailuresAreNotCached(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("down")}
	a := New(fc, Options{Breaker: NewCircuitBreaker(10, time.Minute)})

	a.Advise(context.Background(), "q")
	fc.err = nil
	fc.reply = "answer"
	if got := a.Advise(context.Background(), "q"); got != "answer" {
		t.Errorf("got %q, want answer", got)
	}
}

func TestBreakerShortCircuits(t *testing.T) {
	fc := &fakeCompleter{err: errors.New("down")}
	breaker := NewCircuitBreaker(2, time.Minute)
	a := New(fc, Options{Breaker: breaker})

	a.Advise(context.Background(), "a")
	a.Advise(context.Background(), "b")
	if got := a.Advise(context.Background(), "c"); got != FallbackUnavailable {
		t.Errorf("got %q", got)
	}
	if fc.calls != 2 {
		t.Errorf("calls: got %d, want 2 (third should be short-circuited)", fc.calls)
	}
	if open, _, _ := a.BreakerStatus(); !open {
		t.Error("breaker should be open")
	}
}

func TestBreakerHalfOpensAfterTimeout(t *testing.T) {
	cb := NewCircuitBreaker(1, time.Minute)
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cb.now = func() time.Time { return now }

	cb.RecordFailure()
	if cb.CanProceed() {
		t.Fatal("breaker should be open")
	}

	now = now.Add(2 * time.Minute)
	if !cb.CanProceed() {
		t.Error("breaker should half-open after the reset timeout")
	}
	if open, failures, total := cb.Status(); open || failures != 0 || total != 0 {
		t.Errorf("status after reset: open=%v failures=%d total=%d", open, failures, total)
	}
}

func TestDescribeProperty(t *testing.T) {
	fc := &fakeCompleter{reply: "A charming retreat."}
	a := New(fc, Options{})

	a.DescribeProperty(context.Background(), "Lakeside Cabin", "2 bed, lake view")
	want := `Generate a compelling real estate description for a property titled "Lakeside Cabin" with these features: 2 bed, lake view. Make it sound professional yet inviting.`
	if got := fc.last.Messages[1].Content; got != want {
		t.Errorf("prompt:\n got %q\nwant %q", got, want)
	}
}
