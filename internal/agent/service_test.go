package agent

import (
	"context"
	"errors"
	"log/slog"
	"testing"
)

type fakeProcessor struct {
	calls    int
	failures int
	reply    string
}

func (p *fakeProcessor) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	p.calls++
	if p.failures > 0 {
		p.failures--
		return nil, errors.New("model unavailable")
	}
	return &ChatResponse{Response: p.reply}, nil
}

func (p *fakeProcessor) Close() {}

func TestServiceChatSuccess(t *testing.T) {
	t.Parallel()
	proc := &fakeProcessor{reply: "hello"}
	svc := NewService(proc, slog.Default())

	resp := svc.Chat(context.Background(), ChatRequest{SessionID: "s", Message: "hi"})
	if resp.Response != "hello" {
		t.Errorf("Expected reply hello, got %q", resp.Response)
	}
	if proc.calls != 1 {
		t.Errorf("Expected 1 call, got %d", proc.calls)
	}
}

func TestServiceRetriesOnceOnBackendFailure(t *testing.T) {
	t.Parallel()
	proc := &fakeProcessor{reply: "recovered", failures: 1}
	svc := NewService(proc, slog.Default())

	resp := svc.Chat(context.Background(), ChatRequest{SessionID: "s", Message: "hi"})
	if resp.Response != "recovered" {
		t.Errorf("Expected retry to recover, got %q", resp.Response)
	}
	if proc.calls != 2 {
		t.Errorf("Expected 2 calls, got %d", proc.calls)
	}
}

func TestServiceFallsBackAfterRetryFails(t *testing.T) {
	t.Parallel()
	proc := &fakeProcessor{reply: "unused", failures: 2}
	svc := NewService(proc, slog.Default())

	resp := svc.Chat(context.Background(), ChatRequest{SessionID: "s", Message: "hi"})
	if resp.Response != FallbackReply {
		t.Errorf("Expected fallback reply, got %q", resp.Response)
	}
	if proc.calls != 2 {
		t.Errorf("Expected exactly 2 calls, got %d", proc.calls)
	}
}
