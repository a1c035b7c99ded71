package chat

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/lushmoments/lush-chat/internal/store"
)

// MergeOutcome describes what a merge call did.
type MergeOutcome string

const (
	// MergeLinked means the anonymous session is now linked to the user.
	MergeLinked MergeOutcome = "linked"
	// MergeAlreadyLinked means the session already had a linked user; the
	// existing link is kept, whether it points at this user or another.
	MergeAlreadyLinked MergeOutcome = "already_linked"
	// MergeNoSession means no session exists under that id; nothing to do.
	MergeNoSession MergeOutcome = "no_session"
)

// MergeResult reports the outcome of a merge request.
type MergeResult struct {
	Outcome      MergeOutcome
	MessageCount int
}

// MergeService links anonymous chat sessions to authenticated users after
// login or registration.
type MergeService struct {
	repo store.Repository
}

// NewMergeService creates a merge service.
func NewMergeService(repo store.Repository) *MergeService {
	return &MergeService{repo: repo}
}

// Merge associates an anonymous session with a user. The operation is
// idempotent and never hijacks: a session linked to another user keeps its
// link and the call still succeeds. Only storage failures produce an error.
func (s *MergeService) Merge(ctx context.Context, userID, sessionID string) (*MergeResult, error) {
	session, err := s.repo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if session == nil {
		return &MergeResult{Outcome: MergeNoSession}, nil
	}

	if session.IsLinked() {
		if *session.LinkedUserID != userID {
			slog.Info("Merge skipped, session linked to another user",
				"session_id", sessionID,
				"user_id", userID)
		}
		count, err := s.repo.CountMessages(ctx, sessionID)
		if err != nil {
			return nil, fmt.Errorf("count messages: %w", err)
		}
		return &MergeResult{Outcome: MergeAlreadyLinked, MessageCount: count}, nil
	}

	// Write-once at the storage layer: a concurrent merge that got there
	// first wins and this call degrades to a no-op.
	if err := s.repo.LinkUser(ctx, sessionID, userID); err != nil {
		return nil, fmt.Errorf("link user: %w", err)
	}

	count, err := s.repo.CountMessages(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("count messages: %w", err)
	}

	slog.Info("Chat session linked to user", "session_id", sessionID, "user_id", userID)
	return &MergeResult{Outcome: MergeLinked, MessageCount: count}, nil
}
