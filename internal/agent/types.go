// Package agent implements the AI customer-service assistant.
package agent

import (
	"github.com/lushmoments/lush-chat/internal/domain"
)

// ChatRequest represents one conversational turn handed to the agent.
type ChatRequest struct {
	// SessionID identifies the conversation; used for logging and
	// per-session serialization, never sent to the model.
	SessionID string
	// Message is the new inbound visitor message.
	Message string
	// History is the ordered recent message window preceding Message.
	History []*domain.ChatMessage
}

// ChatResponse represents the agent's reply for one turn.
type ChatResponse struct {
	Response  string   `json:"response"`
	ToolsUsed []string `json:"tools_used,omitempty"`
}

// Scripted replies used when the pipeline degrades. The visitor always gets
// some answer; internal error detail never crosses the chat channel.
const (
	// FallbackReply is returned when the model backend fails after a retry.
	FallbackReply = "I apologize, but I'm having trouble processing your request right now. Would you like to speak with a human agent instead?"
	// ToolFailureReply is returned when a data lookup fails mid-turn.
	ToolFailureReply = "I'm sorry, I couldn't look that up just now. Could you try again in a moment, or would you like to speak with a human agent?"
)
