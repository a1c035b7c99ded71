package chat

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/lushmoments/lush-chat/internal/api"
	"github.com/lushmoments/lush-chat/internal/domain"
	"github.com/lushmoments/lush-chat/internal/identity"
	"github.com/lushmoments/lush-chat/internal/store"
)

// Handler serves the read-side chat HTTP API: history, session status,
// merge and session listing.
type Handler struct {
	repo  store.Repository
	merge *MergeService
}

// NewHandler creates the chat HTTP handler.
func NewHandler(repo store.Repository, merge *MergeService) *Handler {
	return &Handler{repo: repo, merge: merge}
}

// RegisterRoutes mounts the chat API routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Post("/api/sessions", h.CreateSession)
	r.Get("/api/chat/history/{session_id}", h.History)
	r.Get("/api/chat/session/{session_id}/status", h.Status)
	r.Post("/api/chat/merge-session", h.MergeSession)
	r.Get("/api/chat/my-sessions", h.MySessions)
}

// wireSender maps stored sender kinds onto the public API vocabulary.
func wireSender(k domain.SenderKind) string {
	switch k {
	case domain.SenderVisitor:
		return "user"
	case domain.SenderHumanAgent:
		return "admin"
	default:
		return "bot"
	}
}

type wireMessage struct {
	ID         string `json:"id"`
	SenderType string `json:"sender_type"`
	Message    string `json:"message"`
	Timestamp  string `json:"timestamp"`
}

func toWireMessage(m *domain.ChatMessage) wireMessage {
	return wireMessage{
		ID:         m.ID,
		SenderType: wireSender(m.Sender),
		Message:    m.Message,
		Timestamp:  m.Timestamp.UTC().Format(time.RFC3339Nano),
	}
}

// CreateSession mints a fresh anonymous chat session id. The session row
// itself is created lazily on the first WebSocket connect.
func (h *Handler) CreateSession(w http.ResponseWriter, r *http.Request) {
	api.JSON(w, http.StatusCreated, map[string]string{
		"session_id": uuid.NewString(),
	})
}

// History returns the full transcript of a session in receipt order.
func (h *Handler) History(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	messages, err := h.repo.ListMessages(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to load chat history", "error", err, "session_id", sessionID)
		api.Error(w, http.StatusInternalServerError, "failed to load chat history")
		return
	}

	wire := make([]wireMessage, 0, len(messages))
	for _, m := range messages {
		wire = append(wire, toWireMessage(m))
	}
	api.JSON(w, http.StatusOK, map[string]any{
		"session_id": sessionID,
		"messages":   wire,
	})
}

// Status reports whether a session is still on the assistant or with a
// human.
func (h *Handler) Status(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "session_id")

	session, err := h.repo.GetSession(r.Context(), sessionID)
	if err != nil {
		slog.Error("Failed to load session status", "error", err, "session_id", sessionID)
		api.Error(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	if session == nil {
		api.Error(w, http.StatusNotFound, "session not found")
		return
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"session_id":           session.SessionID,
		"is_handled_by_agent":  session.HandledByAgent,
		"transferred_to_human": session.TransferredToHuman,
		"transfer_reason":      session.TransferReason,
		"created_at":           session.CreatedAt.UTC().Format(time.RFC3339Nano),
	})
}

type mergeSessionRequest struct {
	AnonymousSessionID string `json:"anonymous_session_id"`
}

// MergeSession links an anonymous chat session to the authenticated user
// after login or registration. The call always succeeds: an unknown session
// or one already linked elsewhere is left untouched.
func (h *Handler) MergeSession(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if !identity.IsAuthenticated(r.Context()) {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req mergeSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		api.Error(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.AnonymousSessionID == "" {
		api.Error(w, http.StatusBadRequest, "anonymous_session_id is required")
		return
	}

	result, err := h.merge.Merge(r.Context(), userID, req.AnonymousSessionID)
	if err != nil {
		slog.Error("Failed to merge chat session", "error", err, "session_id", req.AnonymousSessionID)
		api.Error(w, http.StatusInternalServerError, "failed to merge chat session")
		return
	}

	resp := map[string]any{
		"success":    true,
		"session_id": req.AnonymousSessionID,
	}
	switch result.Outcome {
	case MergeLinked:
		resp["message"] = fmt.Sprintf("Successfully linked chat session with %d messages to your account", result.MessageCount)
		resp["message_count"] = result.MessageCount
	case MergeAlreadyLinked:
		resp["message"] = "Session already linked"
	case MergeNoSession:
		resp["message"] = "No chat session found to merge"
	}
	api.JSON(w, http.StatusOK, resp)
}

// MySessions lists all chat sessions linked to the authenticated user.
func (h *Handler) MySessions(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	if !identity.IsAuthenticated(r.Context()) {
		api.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	sessions, err := h.repo.ListUserSessions(r.Context(), userID)
	if err != nil {
		slog.Error("Failed to list user sessions", "error", err, "user_id", userID)
		api.Error(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}

	list := make([]map[string]any, 0, len(sessions))
	for _, session := range sessions {
		count, err := h.repo.CountMessages(r.Context(), session.SessionID)
		if err != nil {
			slog.Warn("Failed to count session messages", "error", err, "session_id", session.SessionID)
		}

		var lastMessage any
		recent, err := h.repo.RecentMessages(r.Context(), session.SessionID, 1)
		if err != nil {
			slog.Warn("Failed to load last message", "error", err, "session_id", session.SessionID)
		} else if len(recent) > 0 {
			m := toWireMessage(recent[len(recent)-1])
			lastMessage = map[string]any{
				"sender_type": m.SenderType,
				"message":     m.Message,
				"timestamp":   m.Timestamp,
			}
		}

		list = append(list, map[string]any{
			"session_id":           session.SessionID,
			"created_at":           session.CreatedAt.UTC().Format(time.RFC3339Nano),
			"message_count":        count,
			"is_handled_by_agent":  session.HandledByAgent,
			"transferred_to_human": session.TransferredToHuman,
			"last_message":         lastMessage,
		})
	}

	api.JSON(w, http.StatusOK, map[string]any{
		"sessions": list,
		"total":    len(list),
	})
}
