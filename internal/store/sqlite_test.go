package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/lushmoments/lush-chat/internal/domain"
)

func newTestStore(t *testing.T) Repository {
	t.Helper()
	repo, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestEnsureSessionDefaults(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	sess, err := repo.EnsureSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if !sess.HandledByAgent {
		t.Error("Expected new session to be handled by agent")
	}
	if sess.TransferredToHuman {
		t.Error("Expected new session to not be transferred")
	}
	if sess.LinkedUserID != nil {
		t.Errorf("Expected no linked user, got %v", *sess.LinkedUserID)
	}

	// Calling again must return the same session, not reset it.
	again, err := repo.EnsureSession(ctx, "sess-1")
	if err != nil {
		t.Fatalf("EnsureSession (second) failed: %v", err)
	}
	if again.SessionID != sess.SessionID {
		t.Errorf("Expected session %q, got %q", sess.SessionID, again.SessionID)
	}
}

func TestGetSessionAbsent(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	sess, err := repo.GetSession(context.Background(), "nope")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess != nil {
		t.Errorf("Expected nil for absent session, got %+v", sess)
	}
}

func TestTransferToHumanFlipsBothFlags(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-t"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if err := repo.TransferToHuman(ctx, "sess-t", "want a human"); err != nil {
		t.Fatalf("TransferToHuman failed: %v", err)
	}

	sess, err := repo.GetSession(ctx, "sess-t")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if !sess.TransferredToHuman {
		t.Error("Expected transferred_to_human to be set")
	}
	if sess.HandledByAgent {
		t.Error("Expected handled_by_agent to be cleared")
	}
	if sess.TransferReason == nil || *sess.TransferReason != "want a human" {
		t.Errorf("Expected transfer reason to be recorded, got %v", sess.TransferReason)
	}
}

func TestTransferToHumanKeepsOriginalReason(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-r"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if err := repo.TransferToHuman(ctx, "sess-r", "first reason"); err != nil {
		t.Fatalf("TransferToHuman failed: %v", err)
	}
	// A second transfer is a no-op; the first reason survives.
	if err := repo.TransferToHuman(ctx, "sess-r", "second reason"); err != nil {
		t.Fatalf("TransferToHuman (second) failed: %v", err)
	}

	sess, err := repo.GetSession(ctx, "sess-r")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.TransferReason == nil || *sess.TransferReason != "first reason" {
		t.Errorf("Expected original reason to be kept, got %v", sess.TransferReason)
	}
	if sess.HandledByAgent || !sess.TransferredToHuman {
		t.Error("Expected session to remain transferred")
	}
}

func TestLinkUserWriteOnce(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-l"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	if err := repo.LinkUser(ctx, "sess-l", "user-a"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}
	// A second link attempt, even from another user, must not overwrite.
	if err := repo.LinkUser(ctx, "sess-l", "user-b"); err != nil {
		t.Fatalf("LinkUser (second) failed: %v", err)
	}

	sess, err := repo.GetSession(ctx, "sess-l")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if sess.LinkedUserID == nil || *sess.LinkedUserID != "user-a" {
		t.Errorf("Expected link to user-a to survive, got %v", sess.LinkedUserID)
	}
}

func TestLinkUserAbsentSessionIsNoOp(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)

	if err := repo.LinkUser(context.Background(), "ghost", "user-a"); err != nil {
		t.Fatalf("Expected no error linking absent session, got %v", err)
	}
}

func TestListUserSessions(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	for _, id := range []string{"sess-u1", "sess-u2", "sess-other"} {
		if _, err := repo.EnsureSession(ctx, id); err != nil {
			t.Fatalf("EnsureSession failed: %v", err)
		}
	}
	if err := repo.LinkUser(ctx, "sess-u1", "user-x"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}
	if err := repo.LinkUser(ctx, "sess-u2", "user-x"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}

	sessions, err := repo.ListUserSessions(ctx, "user-x")
	if err != nil {
		t.Fatalf("ListUserSessions failed: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("Expected 2 sessions, got %d", len(sessions))
	}
}

func TestMessageLogPreservesReceiptOrder(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-m"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	// Identical timestamps must still come back in insertion order.
	now := time.Now()
	texts := []string{"first", "second", "third"}
	for _, text := range texts {
		err := repo.AppendMessage(ctx, &domain.ChatMessage{
			SessionID: "sess-m",
			Sender:    domain.SenderVisitor,
			Message:   text,
			Timestamp: now,
		})
		if err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	msgs, err := repo.ListMessages(ctx, "sess-m")
	if err != nil {
		t.Fatalf("ListMessages failed: %v", err)
	}
	if len(msgs) != len(texts) {
		t.Fatalf("Expected %d messages, got %d", len(texts), len(msgs))
	}
	for i, text := range texts {
		if msgs[i].Message != text {
			t.Errorf("Expected message %d to be %q, got %q", i, text, msgs[i].Message)
		}
	}
}

func TestAppendMessageFillsIDAndTimestamp(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-f"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	msg := &domain.ChatMessage{
		SessionID: "sess-f",
		Sender:    domain.SenderAIAgent,
		Message:   "hello",
	}
	if err := repo.AppendMessage(ctx, msg); err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}
	if msg.ID == "" {
		t.Error("Expected message ID to be generated")
	}
	if msg.Timestamp.IsZero() {
		t.Error("Expected timestamp to be filled")
	}
}

func TestAppendMessageRejectsInvalidSender(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-i"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	err := repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: "sess-i",
		Sender:    "robot",
		Message:   "beep",
	})
	if err == nil {
		t.Fatal("Expected error for invalid sender kind")
	}
}

func TestRecentMessagesWindow(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-w"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}

	base := time.Now()
	for i := 0; i < 5; i++ {
		err := repo.AppendMessage(ctx, &domain.ChatMessage{
			SessionID: "sess-w",
			Sender:    domain.SenderVisitor,
			Message:   string(rune('a' + i)),
			Timestamp: base.Add(time.Duration(i) * time.Second),
		})
		if err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	recent, err := repo.RecentMessages(ctx, "sess-w", 3)
	if err != nil {
		t.Fatalf("RecentMessages failed: %v", err)
	}
	if len(recent) != 3 {
		t.Fatalf("Expected 3 messages, got %d", len(recent))
	}
	if recent[0].Message != "c" || recent[2].Message != "e" {
		t.Errorf("Expected last three oldest-first, got %q..%q", recent[0].Message, recent[2].Message)
	}

	count, err := repo.CountMessages(ctx, "sess-w")
	if err != nil {
		t.Fatalf("CountMessages failed: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected 5 messages counted, got %d", count)
	}
}

func TestSeedPopulatesCatalogOnce(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	packages, err := repo.ListPackages(ctx)
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(packages) != 4 {
		t.Fatalf("Expected 4 seeded packages, got %d", len(packages))
	}
	if packages[0].Price > packages[len(packages)-1].Price {
		t.Error("Expected packages ordered by price ascending")
	}

	// Seeding again must not duplicate.
	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed (second) failed: %v", err)
	}
	packages, err = repo.ListPackages(ctx)
	if err != nil {
		t.Fatalf("ListPackages failed: %v", err)
	}
	if len(packages) != 4 {
		t.Errorf("Expected seed to be idempotent, got %d packages", len(packages))
	}
}

func TestFindPackagesByNameCaseInsensitive(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	packages, err := repo.FindPackagesByName(ctx, "ULTIMATE")
	if err != nil {
		t.Fatalf("FindPackagesByName failed: %v", err)
	}
	if len(packages) != 1 {
		t.Fatalf("Expected 1 match, got %d", len(packages))
	}
	if len(packages[0].Items) == 0 {
		t.Error("Expected package items to be loaded")
	}
}

func TestSearchFAQs(t *testing.T) {
	t.Parallel()
	repo := newTestStore(t)
	ctx := context.Background()

	if err := repo.Seed(ctx); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	faqs, err := repo.SearchFAQs(ctx, "book", 5)
	if err != nil {
		t.Fatalf("SearchFAQs failed: %v", err)
	}
	if len(faqs) == 0 {
		t.Fatal("Expected at least one FAQ about booking")
	}

	none, err := repo.SearchFAQs(ctx, "zzqqxx", 5)
	if err != nil {
		t.Fatalf("SearchFAQs failed: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("Expected no matches, got %d", len(none))
	}
}
