package domain

import (
	"time"
)

// SenderKind identifies who authored a chat message.
type SenderKind string

const (
	// SenderVisitor is the end customer on the public chat widget.
	SenderVisitor SenderKind = "visitor"
	// SenderHumanAgent is a staff member replying after handoff.
	SenderHumanAgent SenderKind = "human_agent"
	// SenderAIAgent is the automated assistant.
	SenderAIAgent SenderKind = "ai_agent"
)

// Valid reports whether k is one of the known sender kinds.
func (k SenderKind) Valid() bool {
	switch k {
	case SenderVisitor, SenderHumanAgent, SenderAIAgent:
		return true
	}
	return false
}

// ChatMessage is one immutable entry in a session's append-only message log.
// Log order is timestamp order; entries are never edited or deleted.
type ChatMessage struct {
	ID        string     `json:"id"`
	SessionID string     `json:"session_id"`
	Sender    SenderKind `json:"sender_kind"`
	Message   string     `json:"message"`
	Timestamp time.Time  `json:"timestamp"`
}
