// Package domain contains core domain types for the Lush Moments chat service.
package domain

import (
	"time"
)

// Session is a logical conversation thread identified by an opaque,
// client-generated id. It exists independently of authentication; an
// anonymous session may later be linked to a user account exactly once.
type Session struct {
	SessionID          string    `json:"session_id"`
	LinkedUserID       *string   `json:"linked_user_id,omitempty"`
	HandledByAgent     bool      `json:"is_handled_by_agent"`
	TransferredToHuman bool      `json:"transferred_to_human"`
	TransferReason     *string   `json:"transfer_reason,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
}

// CanAutoReply reports whether the AI agent may generate replies for this
// session. Once a session is transferred to a human this is false forever.
func (s *Session) CanAutoReply() bool {
	return s.HandledByAgent && !s.TransferredToHuman
}

// IsLinked reports whether the session has been bound to a user account.
func (s *Session) IsLinked() bool {
	return s.LinkedUserID != nil && *s.LinkedUserID != ""
}
