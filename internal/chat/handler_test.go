package chat

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/lushmoments/lush-chat/internal/domain"
	"github.com/lushmoments/lush-chat/internal/identity"
	"github.com/lushmoments/lush-chat/internal/store"
)

func newAPIServer(t *testing.T, repo store.Repository) *httptest.Server {
	t.Helper()
	handler := NewHandler(repo, NewMergeService(repo))

	r := chi.NewRouter()
	r.Use(identity.Middleware(true))
	handler.RegisterRoutes(r)

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	return body
}

func authedRequest(t *testing.T, method, url, userID, body string) *http.Request {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("NewRequest failed: %v", err)
	}
	req.Header.Set(identity.AuthUserHeader, userID)
	req.Header.Set("Content-Type", "application/json")
	return req
}

func TestCreateSessionReturnsFreshID(t *testing.T) {
	t.Parallel()
	srv := newAPIServer(t, newTestRepo(t))

	resp, err := http.Post(srv.URL+"/api/sessions", "application/json", nil)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("Expected 201, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["session_id"] == "" {
		t.Error("Expected a session_id in the response")
	}
}

func TestHistoryReturnsTranscript(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	srv := newAPIServer(t, repo)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-h"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	for _, m := range []struct {
		sender domain.SenderKind
		text   string
	}{
		{domain.SenderAIAgent, "welcome"},
		{domain.SenderVisitor, "hi"},
		{domain.SenderAIAgent, "how can I help?"},
	} {
		err := repo.AppendMessage(ctx, &domain.ChatMessage{
			SessionID: "sess-h",
			Sender:    m.sender,
			Message:   m.text,
		})
		if err != nil {
			t.Fatalf("AppendMessage failed: %v", err)
		}
	}

	resp, err := http.Get(srv.URL + "/api/chat/history/sess-h")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	messages, ok := body["messages"].([]any)
	if !ok || len(messages) != 3 {
		t.Fatalf("Expected 3 messages, got %v", body["messages"])
	}
	first := messages[0].(map[string]any)
	if first["sender_type"] != "bot" {
		t.Errorf("Expected first sender_type bot, got %v", first["sender_type"])
	}
	second := messages[1].(map[string]any)
	if second["sender_type"] != "user" {
		t.Errorf("Expected second sender_type user, got %v", second["sender_type"])
	}
}

func TestStatusNotFoundForUnknownSession(t *testing.T) {
	t.Parallel()
	srv := newAPIServer(t, newTestRepo(t))

	resp, err := http.Get(srv.URL + "/api/chat/session/ghost/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", resp.StatusCode)
	}
}

func TestStatusReflectsTransfer(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	srv := newAPIServer(t, repo)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-s"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	if err := repo.TransferToHuman(ctx, "sess-s", "escalated"); err != nil {
		t.Fatalf("TransferToHuman failed: %v", err)
	}

	resp, err := http.Get(srv.URL + "/api/chat/session/sess-s/status")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["transferred_to_human"] != true {
		t.Errorf("Expected transferred_to_human true, got %v", body["transferred_to_human"])
	}
	if body["is_handled_by_agent"] != false {
		t.Errorf("Expected is_handled_by_agent false, got %v", body["is_handled_by_agent"])
	}
	if body["transfer_reason"] != "escalated" {
		t.Errorf("Expected transfer_reason escalated, got %v", body["transfer_reason"])
	}
}

func TestMergeSessionRequiresAuth(t *testing.T) {
	t.Parallel()
	srv := newAPIServer(t, newTestRepo(t))

	resp, err := http.Post(srv.URL+"/api/chat/merge-session", "application/json",
		strings.NewReader(`{"anonymous_session_id":"sess-1"}`))
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("Expected 401 for anonymous caller, got %d", resp.StatusCode)
	}
}

func TestMergeSessionLinksAndReportsCount(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	srv := newAPIServer(t, repo)
	ctx := context.Background()

	if _, err := repo.EnsureSession(ctx, "sess-m"); err != nil {
		t.Fatalf("EnsureSession failed: %v", err)
	}
	err := repo.AppendMessage(ctx, &domain.ChatMessage{
		SessionID: "sess-m",
		Sender:    domain.SenderVisitor,
		Message:   "hello",
	})
	if err != nil {
		t.Fatalf("AppendMessage failed: %v", err)
	}

	req := authedRequest(t, http.MethodPost, srv.URL+"/api/chat/merge-session", "user-1",
		`{"anonymous_session_id":"sess-m"}`)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("Expected success true, got %v", body["success"])
	}
	if body["message_count"] != float64(1) {
		t.Errorf("Expected message_count 1, got %v", body["message_count"])
	}
}

func TestMergeSessionUnknownSessionStillSucceeds(t *testing.T) {
	t.Parallel()
	srv := newAPIServer(t, newTestRepo(t))

	req := authedRequest(t, http.MethodPost, srv.URL+"/api/chat/merge-session", "user-1",
		`{"anonymous_session_id":"ghost"}`)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("POST failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected 200 for unknown session, got %d", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["success"] != true {
		t.Errorf("Expected success true, got %v", body["success"])
	}
}

func TestMySessionsListsLinkedOnly(t *testing.T) {
	t.Parallel()
	repo := newTestRepo(t)
	srv := newAPIServer(t, repo)
	ctx := context.Background()

	for _, id := range []string{"sess-1", "sess-2", "sess-3"} {
		if _, err := repo.EnsureSession(ctx, id); err != nil {
			t.Fatalf("EnsureSession failed: %v", err)
		}
	}
	if err := repo.LinkUser(ctx, "sess-1", "user-1"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}
	if err := repo.LinkUser(ctx, "sess-2", "user-1"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}
	if err := repo.LinkUser(ctx, "sess-3", "user-2"); err != nil {
		t.Fatalf("LinkUser failed: %v", err)
	}

	req := authedRequest(t, http.MethodGet, srv.URL+"/api/chat/my-sessions", "user-1", "")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	body := decodeBody(t, resp)
	if body["total"] != float64(2) {
		t.Errorf("Expected 2 sessions for user-1, got %v", body["total"])
	}
}
