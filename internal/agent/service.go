package agent

import (
	"context"
	"log/slog"
)

// Service wraps a Processor with the delivery policy the chat layer relies
// on: every turn yields a reply. A backend failure is retried once with the
// same input; if the retry also fails the visitor gets the scripted fallback.
type Service struct {
	processor Processor
	logger    *slog.Logger
}

// NewService creates a chat service around the given processor.
func NewService(processor Processor, logger *slog.Logger) *Service {
	return &Service{
		processor: processor,
		logger:    logger,
	}
}

// Chat produces the reply for one turn. It never returns nil.
func (s *Service) Chat(ctx context.Context, req ChatRequest) *ChatResponse {
	resp, err := s.processor.Chat(ctx, req)
	if err == nil {
		return resp
	}

	s.logger.Warn("model backend failed, retrying once",
		"session_id", req.SessionID,
		"error", err)

	resp, err = s.processor.Chat(ctx, req)
	if err == nil {
		return resp
	}

	s.logger.Error("model backend failed after retry",
		"session_id", req.SessionID,
		"error", err)
	return &ChatResponse{Response: FallbackReply}
}

// Close releases the underlying processor.
func (s *Service) Close() {
	s.processor.Close()
}
