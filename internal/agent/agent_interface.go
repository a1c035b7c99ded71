package agent

import (
	"context"
)

// Processor defines the interface for AI reply generation.
// Implemented by GeminiProcessor; tests substitute fakes.
type Processor interface {
	// Chat turns a message window plus a new message into a reply,
	// invoking read-only tools as needed. Implementations degrade tool
	// failures into a scripted reply themselves (returning nil error);
	// a non-nil error means the model backend itself failed and the
	// call may be retried.
	Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error)

	// Close releases resources.
	Close()
}

// Ensure GeminiProcessor implements Processor.
var _ Processor = (*GeminiProcessor)(nil)
